// Package summarizer provides LLM-backed summarization and answering.
// It includes adapters for Claude (Anthropic) and OpenAI APIs with retry,
// circuit breaking, and client-side rate limiting, plus the shared prompt
// construction and tolerant response parsing both adapters use.
package summarizer

import (
	"fmt"
	"strings"

	"blogpulse/internal/domain/entity"
)

// DefaultSummaryBudgetChars is the default truncation budget for article
// text embedded in the summarization prompt.
const DefaultSummaryBudgetChars = 4000

// BuildSummaryPrompt constructs the summarization prompt for one post.
// The article text is truncated to budget characters; structured sections
// are appended only while they fit inside a second budget of the same size,
// so a pathological page cannot blow up the prompt.
func BuildSummaryPrompt(content *entity.RawContent, budget int) string {
	if budget <= 0 {
		budget = DefaultSummaryBudgetChars
	}

	// Rune-safe: a budget boundary must not split a UTF-8 sequence.
	text := truncateRunes(content.Text, budget)

	var b strings.Builder
	b.WriteString("You are an expert technical writer summarizing engineering blog posts.\n\n")
	b.WriteString("Analyze the following blog post and provide a comprehensive summary in JSON format.\n\n")
	fmt.Fprintf(&b, "Blog Post Title: %s\n", content.Title)
	fmt.Fprintf(&b, "Blog Post URL: %s\n\n", content.URL)
	b.WriteString("Content:\n")
	b.WriteString(text)
	b.WriteString("\n")

	if len(content.Sections) > 0 {
		var sections strings.Builder
		for i, section := range content.Sections {
			block := fmt.Sprintf("Section %d:\n%s\n\n", i+1, section)
			if sections.Len()+len(block) > budget {
				break
			}
			sections.WriteString(block)
		}
		if sections.Len() > 0 {
			b.WriteString("\nStructured Sections:\n")
			b.WriteString(sections.String())
		}
	}

	b.WriteString(`
Provide the summary in the following JSON format (strict JSON, no markdown, no code blocks):

{
  "executive_summary": "A high-level summary in 1-3 sentences that captures the main purpose and value of this post.",
  "technical_summary": "A detailed technical summary in 2-5 paragraphs covering the key concepts, methodology, and implementation details.",
  "bullet_points": ["Key takeaway 1", "Key takeaway 2"],
  "keywords": ["keyword1", "keyword2"]
}

Requirements:
- executive_summary: at least 10 characters, accessible to non-technical readers.
- technical_summary: at least 50 characters, enough detail for engineers.
- bullet_points: array of strings; may be empty.
- keywords: array of lowercase strings; may be empty.

Return ONLY valid JSON. No markdown formatting, code block markers, or text outside the JSON object.
`)

	return b.String()
}

// BuildAnswerPrompt constructs the grounded-answer prompt: the question plus
// one context block per retrieved doc. The model is instructed to answer
// only from the provided snippets.
func BuildAnswerPrompt(question string, docs []*entity.RetrievedDoc) string {
	blocks := make([]string, 0, len(docs))
	for _, d := range docs {
		blocks = append(blocks, fmt.Sprintf("Title: %s\nURL: %s\nSnippet: %s", d.Title, d.URL, d.Snippet))
	}

	return fmt.Sprintf(
		"You are an assistant answering questions strictly based on technical blog posts.\n"+
			"Use ONLY the provided snippets. If the answer cannot be found in the snippets, "+
			"say so clearly.\n\n"+
			"Question:\n%s\n\n"+
			"Documents:\n%s\n\n"+
			"Answer:",
		question, strings.Join(blocks, "\n\n"))
}
