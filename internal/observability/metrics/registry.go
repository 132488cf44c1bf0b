// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics track feed discovery and document ingestion
var (
	// PostsDiscoveredTotal counts posts discovered in the feed by source
	PostsDiscoveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posts_discovered_total",
			Help: "Total number of posts discovered in feed documents",
		},
		[]string{"source"},
	)

	// NewPostsTotal counts posts not seen in previous runs
	NewPostsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "new_posts_total",
			Help: "Total number of previously unseen posts",
		},
		[]string{"source"},
	)

	// FeedParseDuration measures time to parse a feed document
	FeedParseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_parse_duration_seconds",
			Help:    "Time taken to parse a feed document",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"format"}, // format: atom, rss, html
	)

	// PipelineRunsTotal counts pipeline runs by outcome
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of ingestion pipeline runs",
		},
		[]string{"status"}, // status: success, canceled, error
	)

	// PipelineRunDuration measures the duration of a full pipeline run
	PipelineRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeline_run_duration_seconds",
			Help:    "Duration of a full ingestion pipeline run",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)
)

// Content fetch metrics track per-post article retrieval
var (
	// ContentFetchAttemptsTotal counts content fetch attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of content fetch attempts",
		},
		[]string{"result"}, // result: success, failure, skipped
	)

	// ContentFetchDuration measures time to fetch article content
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// ContentFetchSize measures fetched content size in bytes
	ContentFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "content_fetch_size_bytes",
			Help: "Fetched article content size in bytes",
			Buckets: []float64{
				100, 200, 400, 800, 1600, 3200, 6400, 12800,
				25600, 51200, 102400, 204800, 409600, 819200,
				1638400, 3276800, 6553600, 10485760, // up to 10MB
			},
		},
	)
)

// Summarization metrics track LLM summarization calls
var (
	// PostsSummarizedTotal counts posts summarized by status
	PostsSummarizedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posts_summarized_total",
			Help: "Total number of posts summarized",
		},
		[]string{"status"},
	)

	// SummarizationDuration measures time to summarize a post
	SummarizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summarization_duration_seconds",
			Help:    "Time taken to summarize a post",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)
)

// Corpus metrics track retrieval backend operations
var (
	// DocumentsIngestedTotal counts documents written to the retrieval corpus
	DocumentsIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_ingested_total",
			Help: "Total number of documents ingested into the retrieval corpus",
		},
		[]string{"backend", "status"},
	)

	// IngestDuration measures time to ingest one document
	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_duration_seconds",
			Help:    "Time taken to ingest one document",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	// RetrievalDuration measures time to run a corpus query
	RetrievalDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retrieval_duration_seconds",
			Help:    "Time taken to query the retrieval corpus",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"backend"},
	)

	// RetrievalResults measures the number of usable documents per query
	RetrievalResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "retrieval_results_count",
			Help:    "Number of usable documents returned per corpus query",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		},
	)
)

// QA metrics track question answering and the response cache
var (
	// AnswerRequestsTotal counts answer requests by outcome
	AnswerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "answer_requests_total",
			Help: "Total number of question answering requests",
		},
		[]string{"outcome"}, // outcome: answered, refused, error
	)

	// AnswerDuration measures end-to-end answer latency
	AnswerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "answer_duration_seconds",
			Help:    "End-to-end question answering latency",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)

	// CacheRequestsTotal counts response cache lookups by result
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Total number of response cache lookups",
		},
		[]string{"result"}, // result: hit, miss
	)

	// CacheEvictionsTotal counts entries evicted from the response cache
	CacheEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of response cache evictions",
		},
	)

	// SessionsActive tracks the number of live QA sessions
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Number of live question answering sessions",
		},
	)
)

// RecordOperationDuration records the duration of a named backend operation.
func RecordOperationDuration(backend string, duration time.Duration) {
	RetrievalDuration.WithLabelValues(backend).Observe(duration.Seconds())
}
