// Package main provides a CLI command for corpus-grounded Q&A.
// Usage: blogpulse-ask "question" [--k N] [--session ID] [--output json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"blogpulse/internal/cache"
	"blogpulse/internal/config"
	"blogpulse/internal/domain/entity"
	"blogpulse/internal/infra/ragstore"
	"blogpulse/internal/infra/summarizer"
	"blogpulse/internal/observability/tracing"
	"blogpulse/internal/usecase/qa"
)

// AskOutput is the JSON output format for Q&A results.
type AskOutput struct {
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Refused  bool           `json:"refused"`
	Cached   bool           `json:"cached"`
	Sources  []SourceOutput `json:"sources"`
}

// SourceOutput is one source post behind the answer.
type SourceOutput struct {
	PostID string  `json:"post_id"`
	Title  string  `json:"title"`
	URL    string  `json:"url"`
	Score  float64 `json:"score"`
}

func main() {
	var (
		k            int
		sessionID    string
		outputFormat string
	)

	flag.IntVar(&k, "k", qa.DefaultK, "Maximum number of blog posts to use as context")
	flag.StringVar(&sessionID, "session", "", "Session id to record this exchange under")
	flag.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: Question is required")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage: blogpulse-ask \"question\" [--k N] [--session ID] [--output json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Examples:")
		fmt.Fprintln(os.Stderr, "  blogpulse-ask \"What is GPUDirect Storage?\"")
		fmt.Fprintln(os.Stderr, "  blogpulse-ask \"How does NVLink compare to PCIe?\" --k 12")
		fmt.Fprintln(os.Stderr, "  blogpulse-ask \"What changed in CUDA 13?\" --output json")
		os.Exit(1)
	}
	question := args[0]

	logger := initLogger()

	cfg, warnings, err := config.LoadQA()
	for _, w := range warnings {
		logger.Warn(w)
	}
	if err != nil {
		logger.Error("configuration is unusable", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	shutdownTracer := tracing.InitTracer("blogpulse-ask")
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	service, err := buildQA(ctx, cfg)
	if err != nil {
		logger.Error("failed to wire QA service", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("asking question",
		slog.String("question", question),
		slog.Int("k", k))

	result, err := service.Answer(ctx, question, k, sessionID)
	if err != nil {
		logger.Error("ask failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: Ask failed: %v\n", err)
		os.Exit(1)
	}

	if outputFormat == "json" {
		outputJSON(question, result)
	} else {
		outputText(question, result)
	}
}

// buildQA wires the cached QA service from configuration.
func buildQA(ctx context.Context, cfg *config.AppConfig) (*qa.CachedService, error) {
	backend, err := ragstore.New(ctx, cfg.Backend.Kind,
		ragstore.ManagedConfig{
			Bucket:   cfg.Backend.DocsBucket,
			Prefix:   cfg.Backend.DocsPrefix,
			CorpusID: cfg.Backend.CorpusID,
			Project:  cfg.Backend.Project,
			Location: cfg.Backend.Location,
			Timeout:  cfg.Backend.Timeout,
		},
		ragstore.HTTPConfig{
			BaseURL:  cfg.Backend.HTTPBaseURL,
			APIKey:   cfg.Backend.HTTPAPIKey,
			CorpusID: cfg.Backend.CorpusID,
			Timeout:  cfg.Backend.Timeout,
		})
	if err != nil {
		return nil, fmt.Errorf("build retrieval backend: %w", err)
	}

	answerer, err := newAnswerer(cfg)
	if err != nil {
		return nil, err
	}

	responses := cache.NewResponseCache(cfg.Cache.MaxSize, cfg.Cache.TTL)
	sessions := cache.NewSessionManager(cfg.Session.TTL, cfg.Session.LogMax)

	return qa.NewCachedService(qa.NewService(backend, answerer), responses, sessions), nil
}

// newAnswerer selects the LLM adapter for answer generation.
func newAnswerer(cfg *config.AppConfig) (qa.Answerer, error) {
	llmCfg := summarizer.Config{
		Model:              cfg.LLM.Model,
		SummaryBudgetChars: cfg.LLM.SummaryBudgetChars,
		RequestsPerMinute:  cfg.LLM.RequestsPerMinute,
	}

	switch cfg.LLM.Provider {
	case "anthropic":
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
		return summarizer.NewClaude(key, llmCfg), nil
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		return summarizer.NewOpenAI(key, llmCfg), nil
	case "none":
		return summarizer.NewNoop(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// outputText prints Q&A results in human-readable format.
func outputText(question string, result *qa.Result) {
	fmt.Printf("Question: %s\n\n", question)
	fmt.Printf("%s\n", result.Answer)

	if len(result.Docs) > 0 {
		fmt.Printf("\nSources:\n")
		for i, doc := range result.Docs {
			fmt.Printf("%d. %s (Relevance: %.2f%%)\n", i+1, doc.Title, doc.Score*100)
			fmt.Printf("   URL: %s\n", doc.URL)
		}
	}
}

// outputJSON prints Q&A results in JSON format.
func outputJSON(question string, result *qa.Result) {
	output := AskOutput{
		Question: question,
		Answer:   result.Answer,
		Refused:  result.Refused,
		Cached:   result.Cached,
		Sources:  sourcesOf(result.Docs),
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
}

func sourcesOf(docs []*entity.RetrievedDoc) []SourceOutput {
	sources := make([]SourceOutput, len(docs))
	for i, doc := range docs {
		sources[i] = SourceOutput{
			PostID: doc.PostID,
			Title:  doc.Title,
			URL:    doc.URL,
			Score:  doc.Score,
		}
	}
	return sources
}

// initLogger initializes and returns a structured logger on stderr so the
// answer stays clean on stdout.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}
