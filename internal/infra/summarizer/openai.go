package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"blogpulse/internal/domain/entity"
)

// DefaultOpenAIModel is used when the configuration names no model.
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAI implements summarization and answering on OpenAI's chat API.
// Safe for concurrent use.
type OpenAI struct {
	client *openai.Client
	core   core
}

// NewOpenAI creates an OpenAI adapter with the given API key.
func NewOpenAI(apiKey string, cfg Config) *OpenAI {
	cfg = cfg.withDefaults()
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}

	slog.Info("initialized openai summarizer",
		slog.String("model", cfg.Model),
		slog.Int("summary_budget_chars", cfg.SummaryBudgetChars),
		slog.Int("requests_per_minute", cfg.RequestsPerMinute))

	return &OpenAI{
		client: openai.NewClient(apiKey),
		core:   newCore("openai-api", cfg),
	}
}

// Summarize produces a structured summary for one post's content.
func (o *OpenAI) Summarize(ctx context.Context, post *entity.Post, content *entity.RawContent) (*entity.Summary, error) {
	prompt := BuildSummaryPrompt(content, o.core.cfg.SummaryBudgetChars)

	start := time.Now()
	response, err := o.core.generate(ctx, func(ctx context.Context) (string, error) {
		return o.complete(ctx, prompt)
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("openai summarization completed",
		slog.String("post_id", post.ID),
		slog.Int("response_length", len(response)),
		slog.Duration("duration", time.Since(start)))

	return ParseSummaryResponse(post, response)
}

// Answer produces a grounded answer from the retrieved docs.
func (o *OpenAI) Answer(ctx context.Context, question string, docs []*entity.RetrievedDoc) (string, error) {
	prompt := BuildAnswerPrompt(question, docs)
	return o.core.generate(ctx, func(ctx context.Context) (string, error) {
		return o.complete(ctx, prompt)
	})
}

// complete performs one chat completion call and extracts the first choice.
func (o *OpenAI) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.core.cfg.Model,
		MaxTokens: o.core.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai api returned empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
