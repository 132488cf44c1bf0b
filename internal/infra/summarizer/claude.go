package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"blogpulse/internal/domain/entity"
)

// DefaultClaudeModel is used when the configuration names no model.
const DefaultClaudeModel = "claude-sonnet-4-5-20250929"

// Claude implements summarization and answering on Anthropic's API.
// Safe for concurrent use.
type Claude struct {
	client anthropic.Client
	core   core
}

// NewClaude creates a Claude adapter with the given API key.
func NewClaude(apiKey string, cfg Config) *Claude {
	cfg = cfg.withDefaults()
	if cfg.Model == "" {
		cfg.Model = DefaultClaudeModel
	}

	slog.Info("initialized claude summarizer",
		slog.String("model", cfg.Model),
		slog.Int("summary_budget_chars", cfg.SummaryBudgetChars),
		slog.Int("requests_per_minute", cfg.RequestsPerMinute))

	return &Claude{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		core:   newCore("claude-api", cfg),
	}
}

// Summarize produces a structured summary for one post's content.
func (c *Claude) Summarize(ctx context.Context, post *entity.Post, content *entity.RawContent) (*entity.Summary, error) {
	prompt := BuildSummaryPrompt(content, c.core.cfg.SummaryBudgetChars)

	start := time.Now()
	response, err := c.core.generate(ctx, func(ctx context.Context) (string, error) {
		return c.complete(ctx, prompt)
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("claude summarization completed",
		slog.String("post_id", post.ID),
		slog.Int("response_length", len(response)),
		slog.Duration("duration", time.Since(start)))

	return ParseSummaryResponse(post, response)
}

// Answer produces a grounded answer from the retrieved docs.
func (c *Claude) Answer(ctx context.Context, question string, docs []*entity.RetrievedDoc) (string, error) {
	prompt := BuildAnswerPrompt(question, docs)
	return c.core.generate(ctx, func(ctx context.Context) (string, error) {
		return c.complete(ctx, prompt)
	})
}

// complete performs one Messages API call and extracts the text block.
func (c *Claude) complete(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.core.cfg.Model),
		MaxTokens: int64(c.core.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected response type")
	}
	return textBlock.Text, nil
}
