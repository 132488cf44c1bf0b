package summarizer

import (
	"context"
	"strings"

	"blogpulse/internal/domain/entity"
)

// Noop produces summaries and answers without calling any model. It exists
// for pipeline runs where no API key is available (local smoke tests, CI):
// summaries are mechanical excerpts of the extracted text, answers echo the
// retrieved snippets.
type Noop struct{}

// NewNoop creates the model-free adapter.
func NewNoop() *Noop {
	return &Noop{}
}

const noopTechnicalPrefix = "Summary generated without a language model from the extracted article text: "

// Summarize builds an excerpt-based summary from the content.
func (n *Noop) Summarize(ctx context.Context, post *entity.Post, content *entity.RawContent) (*entity.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	executive := firstSentence(content.Text)
	if len(executive) < 10 {
		executive = content.Title + " (excerpt)"
	}
	technical := noopTechnicalPrefix + truncateRunes(content.Text, 600)

	var bullets []string
	for _, section := range content.Sections {
		if head, _, ok := strings.Cut(section, "\n\n"); ok && strings.TrimSpace(head) != "" {
			bullets = append(bullets, strings.TrimSpace(head))
		}
		if len(bullets) == 5 {
			break
		}
	}

	return entity.NewSummary(post, executive, technical, bullets, post.Tags)
}

// Answer concatenates the retrieved snippets; no model is consulted.
func (n *Noop) Answer(ctx context.Context, question string, docs []*entity.RetrievedDoc) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Relevant blog excerpts:\n")
	for _, doc := range docs {
		b.WriteString("\n- ")
		b.WriteString(doc.Title)
		b.WriteString(": ")
		b.WriteString(truncateRunes(doc.Snippet, 300))
		b.WriteString(" (")
		b.WriteString(doc.URL)
		b.WriteString(")")
	}
	return b.String(), nil
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, ".!?"); i > 0 && i < 300 {
		return text[:i+1]
	}
	return truncateRunes(text, 200)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
