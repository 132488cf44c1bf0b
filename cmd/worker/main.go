// The worker runs one full ingestion pass: discover posts from the feed,
// fetch and extract the new ones, summarize them, write them to the
// retrieval corpus, and commit the updated state. While the pass is active
// it exposes /metrics and /healthz for scraping.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogpulse/internal/config"
	"blogpulse/internal/infra/extractor"
	"blogpulse/internal/infra/feed"
	"blogpulse/internal/infra/fetcher"
	"blogpulse/internal/infra/ragstore"
	"blogpulse/internal/infra/state"
	"blogpulse/internal/infra/summarizer"
	"blogpulse/internal/observability/logging"
	"blogpulse/internal/observability/slo"
	"blogpulse/internal/observability/tracing"
	"blogpulse/internal/resilience/retry"
	"blogpulse/internal/usecase/ingest"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg, warnings, err := config.Load()
	for _, w := range warnings {
		logger.Warn(w)
	}
	if err != nil {
		logger.Error("configuration is unusable", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer := tracing.InitTracer("blogpulse-worker")
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(flushCtx); err != nil {
			logger.Error("tracer shutdown failed", slog.Any("error", err))
		}
	}()

	serverCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()
	startMetricsServer(serverCtx, logger)

	svc, err := buildPipeline(ctx, cfg)
	if err != nil {
		logger.Error("failed to wire pipeline", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting ingestion run",
		slog.String("feed_url", cfg.Feed.URL),
		slog.String("backend", cfg.Backend.Kind),
		slog.String("llm_provider", cfg.LLM.Provider),
		slog.String("state_path", cfg.State.Path))

	result, err := svc.Run(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("ingestion run canceled, nothing committed")
		return
	case err != nil:
		logger.Error("ingestion run failed", slog.Any("error", err))
		os.Exit(1)
	}

	slo.UpdateIngestSuccess(result.NewCount, result.IngestedCount)
	slo.MarkRunSuccessful(result.Timestamp)

	logger.Info("ingestion run complete",
		slog.Int("discovered", result.DiscoveredCount),
		slog.Int("new", result.NewCount),
		slog.Int("summarized", result.SummarizedCount),
		slog.Int("ingested", result.IngestedCount),
		slog.Any("new_post_ids", result.NewPostIDs))
}

// buildPipeline wires the ingestion service from configuration.
func buildPipeline(ctx context.Context, cfg *config.AppConfig) (*ingest.Service, error) {
	parser := feed.NewParser()

	client := fetcher.NewClient(fetcher.Config{
		Timeout: cfg.Fetcher.Timeout,
		Retry: retry.Config{
			MaxAttempts:    cfg.Retry.MaxAttempts,
			BaseDelay:      cfg.Retry.BaseDelay,
			MaxDelay:       cfg.Retry.MaxDelay,
			JitterFraction: cfg.Retry.Jitter,
		},
	})

	var extract ingest.ContentExtractor
	switch cfg.Fetcher.Extractor {
	case "readability":
		extract = extractor.NewReadability()
	default:
		extract = extractor.NewHeuristic()
	}

	summarize, err := newSummarizer(cfg)
	if err != nil {
		return nil, err
	}

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

	states, err := state.New(ctx, cfg.State.Path)
	if err != nil {
		return nil, fmt.Errorf("build state store: %w", err)
	}

	return ingest.NewService(
		cfg.Feed.URL, cfg.Feed.Source,
		parser, client, extract, summarize, backend, states,
		cfg.Backend.Kind,
		ingest.Config{
			FetchConcurrency:     cfg.Pipeline.FetchConcurrency,
			SummarizeConcurrency: cfg.Pipeline.SummarizeConcurrency,
			IngestConcurrency:    cfg.Pipeline.IngestConcurrency,
			HistoryMax:           cfg.Pipeline.HistoryMaxEntries,
		},
	), nil
}

// newSummarizer selects the LLM adapter. The API key comes from the
// provider's conventional environment variable, never from the config file.
func newSummarizer(cfg *config.AppConfig) (ingest.Summarizer, error) {
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
