package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"blogpulse/internal/domain/entity"
	"blogpulse/internal/observability/metrics"
	"blogpulse/internal/observability/tracing"
	"blogpulse/internal/repository"
)

// FeedParser turns a raw feed document into an ordered sequence of posts.
// Parsing is best-effort: malformed entries are dropped silently and a
// document that matches no known format yields an empty slice, not an error.
type FeedParser interface {
	Parse(ctx context.Context, document []byte, source string) ([]*entity.Post, error)
}

// ContentFetcher retrieves the HTML of one URL.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ContentExtractor reduces raw HTML to the readable article content.
type ContentExtractor interface {
	Extract(ctx context.Context, post *entity.Post, html string) (*entity.RawContent, error)
}

// Summarizer produces a structured summary for one post's content.
// The post carries the metadata (publication time, source) that the
// content alone does not.
type Summarizer interface {
	Summarize(ctx context.Context, post *entity.Post, content *entity.RawContent) (*entity.Summary, error)
}

// Config bounds the pipeline's concurrency and history retention.
type Config struct {
	// FetchConcurrency bounds concurrent content fetches (default 8).
	FetchConcurrency int

	// SummarizeConcurrency bounds concurrent LLM calls (default 4).
	SummarizeConcurrency int

	// IngestConcurrency bounds concurrent corpus writes (default 4).
	IngestConcurrency int

	// HistoryMax bounds the persisted run history (default 10).
	HistoryMax int
}

// DefaultConfig returns the default pipeline bounds.
func DefaultConfig() Config {
	return Config{
		FetchConcurrency:     8,
		SummarizeConcurrency: 4,
		IngestConcurrency:    4,
		HistoryMax:           entity.DefaultHistoryMax,
	}
}

// Service runs the ingestion pipeline. It borrows its collaborators for the
// duration of one Run call and holds no persistent handles of its own, so a
// single Service value is reentrant.
type Service struct {
	FeedURL    string
	Source     string
	Parser     FeedParser
	Fetcher    ContentFetcher
	Extractor  ContentExtractor
	Summarizer Summarizer
	Backend    repository.RetrievalBackend
	States     repository.StateStore

	cfg         Config
	backendKind string
}

// NewService creates a pipeline service.
// backendKind is a label for metrics only ("managed" or "http").
func NewService(
	feedURL, source string,
	parser FeedParser,
	fetcher ContentFetcher,
	extractor ContentExtractor,
	summarizer Summarizer,
	backend repository.RetrievalBackend,
	states repository.StateStore,
	backendKind string,
	cfg Config,
) *Service {
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = DefaultConfig().FetchConcurrency
	}
	if cfg.SummarizeConcurrency <= 0 {
		cfg.SummarizeConcurrency = DefaultConfig().SummarizeConcurrency
	}
	if cfg.IngestConcurrency <= 0 {
		cfg.IngestConcurrency = DefaultConfig().IngestConcurrency
	}
	if cfg.HistoryMax <= 0 {
		cfg.HistoryMax = DefaultConfig().HistoryMax
	}

	return &Service{
		FeedURL:     feedURL,
		Source:      source,
		Parser:      parser,
		Fetcher:     fetcher,
		Extractor:   extractor,
		Summarizer:  summarizer,
		Backend:     backend,
		States:      states,
		cfg:         cfg,
		backendKind: backendKind,
	}
}

// itemOutcome tracks what happened to one new post during a run.
type itemOutcome struct {
	post       *entity.Post
	summarized bool
	ingested   bool
}

// Run executes one full pipeline pass: discover, diff, fetch/extract,
// summarize, ingest, commit.
//
// Per-item failures are absorbed and reported through the result counts;
// the run as a whole fails only if the feed document cannot be obtained,
// the state store is unusable, or the context is canceled. A canceled run
// commits nothing.
func (s *Service) Run(ctx context.Context) (*entity.IngestionResult, error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.run")
	defer span.End()

	logger := slog.Default()
	start := time.Now()

	result, err := s.run(ctx, logger)
	duration := time.Since(start)

	switch {
	case err == nil:
		metrics.RecordPipelineRun("success", duration)
		logger.Info("pipeline run completed",
			slog.Int("discovered", result.DiscoveredCount),
			slog.Int("new", result.NewCount),
			slog.Int("summarized", result.SummarizedCount),
			slog.Int("ingested", result.IngestedCount),
			slog.Duration("duration", duration))
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		metrics.RecordPipelineRun("canceled", duration)
		logger.Warn("pipeline run canceled", slog.Any("error", err))
	default:
		metrics.RecordPipelineRun("error", duration)
		logger.Error("pipeline run failed", slog.Any("error", err))
	}

	return result, err
}

func (s *Service) run(ctx context.Context, logger *slog.Logger) (*entity.IngestionResult, error) {
	// Discover.
	document, err := s.Fetcher.Fetch(ctx, s.FeedURL)
	if err != nil {
		if isCancellation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrFeedUnavailable, s.FeedURL, err)
	}

	posts, err := s.Parser.Parse(ctx, []byte(document), s.Source)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.FeedURL, err)
	}
	metrics.RecordPostsDiscovered(s.Source, len(posts))

	// Diff against previously seen ids, preserving feed order.
	state, err := s.States.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	var newPosts []*entity.Post
	for _, p := range posts {
		if !state.HasSeen(p.ID) {
			newPosts = append(newPosts, p)
		}
	}
	metrics.RecordNewPosts(s.Source, len(newPosts))

	logger.Info("feed discovered",
		slog.String("feed_url", s.FeedURL),
		slog.Int("discovered", len(posts)),
		slog.Int("new", len(newPosts)))

	outcomes := make([]itemOutcome, len(newPosts))
	for i, p := range newPosts {
		outcomes[i] = itemOutcome{post: p}
	}

	var summarized, ingested int64
	var mu sync.Mutex

	fetchSem := make(chan struct{}, s.cfg.FetchConcurrency)
	summarySem := make(chan struct{}, s.cfg.SummarizeConcurrency)
	ingestSem := make(chan struct{}, s.cfg.IngestConcurrency)
	eg, egCtx := errgroup.WithContext(ctx)

	for i := range outcomes {
		idx := i
		post := outcomes[i].post

		eg.Go(func() error {
			// Stage 1: fetch and extract (higher parallelism, I/O bound).
			fetchSem <- struct{}{}
			content := s.fetchAndExtract(egCtx, post, logger)
			<-fetchSem

			if content == nil {
				return contextErr(egCtx)
			}

			// Stage 2: summarize (lower parallelism, the LLM is scarcer).
			summarySem <- struct{}{}
			summary := s.summarize(egCtx, post, content, logger)
			<-summarySem

			if summary == nil {
				return contextErr(egCtx)
			}

			mu.Lock()
			outcomes[idx].summarized = true
			mu.Unlock()
			atomic.AddInt64(&summarized, 1)

			// Stage 3: ingest into the retrieval corpus.
			ingestSem <- struct{}{}
			defer func() { <-ingestSem }()

			ingestStart := time.Now()
			err := s.Backend.Ingest(egCtx, summary)
			metrics.RecordDocumentIngested(s.backendKind, err == nil, time.Since(ingestStart))

			if err != nil {
				if isCancellation(err) {
					return err
				}
				logger.Warn("ingest failed, omitting post",
					slog.String("post_id", post.ID),
					slog.String("url", post.URL),
					slog.Any("error", err))
				return nil
			}

			mu.Lock()
			outcomes[idx].ingested = true
			mu.Unlock()
			atomic.AddInt64(&ingested, 1)

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		// Canceled runs commit nothing.
		return nil, err
	}

	// Commit. Reconstruct feed order so new_post_ids is deterministic.
	var newIDs []string
	for _, o := range outcomes {
		if o.ingested {
			newIDs = append(newIDs, o.post.ID)
		}
	}

	result := entity.IngestionResult{
		DiscoveredCount: len(posts),
		NewCount:        len(newPosts),
		SummarizedCount: int(atomic.LoadInt64(&summarized)),
		IngestedCount:   int(atomic.LoadInt64(&ingested)),
		NewPostIDs:      newIDs,
		Timestamp:       time.Now().UTC(),
	}

	state.MarkSeen(newIDs...)
	state.RecordResult(result, s.cfg.HistoryMax)

	if err := s.States.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("commit state: %w", err)
	}

	return &result, nil
}

// fetchAndExtract obtains a post's readable content. Inline feed content
// short-circuits the network fetch. Returns nil when the post must be
// omitted; the reason is logged here.
func (s *Service) fetchAndExtract(ctx context.Context, post *entity.Post, logger *slog.Logger) *entity.RawContent {
	var html string

	if post.InlineContent != "" {
		metrics.RecordContentFetchSkipped()
		html = post.InlineContent
	} else {
		fetchStart := time.Now()
		fetched, err := s.Fetcher.Fetch(ctx, post.URL)
		if err != nil {
			metrics.RecordContentFetchFailed(time.Since(fetchStart))
			if !isCancellation(err) {
				logger.Warn("content fetch failed, omitting post",
					slog.String("post_id", post.ID),
					slog.String("url", post.URL),
					slog.Any("error", &FetchError{URL: post.URL, Cause: err}))
			}
			return nil
		}
		metrics.RecordContentFetchSuccess(time.Since(fetchStart), len(fetched))
		html = fetched
	}

	content, err := s.Extractor.Extract(ctx, post, html)
	if err != nil {
		if !isCancellation(err) {
			logger.Warn("content extraction failed, omitting post",
				slog.String("post_id", post.ID),
				slog.String("url", post.URL),
				slog.Any("error", err))
		}
		return nil
	}

	return content
}

// summarize calls the LLM for one post. Returns nil when the post must be
// omitted; the reason is logged here.
func (s *Service) summarize(ctx context.Context, post *entity.Post, content *entity.RawContent, logger *slog.Logger) *entity.Summary {
	summaryStart := time.Now()
	summary, err := s.Summarizer.Summarize(ctx, post, content)
	duration := time.Since(summaryStart)

	metrics.RecordPostSummarized(err == nil)
	metrics.RecordSummarizationDuration(duration)

	if err != nil {
		if !isCancellation(err) {
			logger.Warn("summarization failed, omitting post",
				slog.String("post_id", post.ID),
				slog.String("url", post.URL),
				slog.Any("error", err))
		}
		return nil
	}

	return summary
}

// contextErr surfaces cancellation out of a stage that absorbed an item
// failure, so a canceled group stops instead of grinding through the rest.
func contextErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
