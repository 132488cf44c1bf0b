// Package config assembles the application configuration for the worker and
// CLI binaries. Values come from an optional YAML file overlaid by environment
// variables; invalid values fall back to defaults with warnings rather than
// aborting start-up. Only structurally required settings (the feed URL, the
// backend selection prerequisites) produce hard errors.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	pkgconfig "blogpulse/internal/pkg/config"
)

// AppConfig holds the full configuration for the ingestion pipeline and
// question answering service.
type AppConfig struct {
	Feed     FeedConfig
	Backend  BackendConfig
	Fetcher  FetcherConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
	Cache    CacheConfig
	Session  SessionConfig
	State    StateConfig
	Retry    RetryConfig
}

// FeedConfig describes the feed to ingest.
type FeedConfig struct {
	// URL is the feed to ingest. Required.
	URL string

	// Source is the label stamped on discovered posts.
	// Default: "tech_blog"
	Source string
}

// BackendConfig selects and parameterizes the retrieval backend.
type BackendConfig struct {
	// Kind is "managed" or "http". Default: "managed"
	Kind string

	// CorpusID is the backend-specific corpus identifier.
	// Required for the managed backend.
	CorpusID string

	// DocsBucket is the object-store bucket for the managed backend.
	// Required for the managed backend.
	DocsBucket string

	// DocsPrefix is the object key prefix inside the bucket.
	// Default: "docs/"
	DocsPrefix string

	// Project is the cloud project of the managed corpus.
	// Optional; ambient credentials supply it when empty.
	Project string

	// Location is the cloud region of the managed corpus.
	// Default: "us-central1"
	Location string

	// HTTPBaseURL is the base URL of the generic HTTP RAG service.
	// Required for the http backend.
	HTTPBaseURL string

	// HTTPAPIKey is sent as a bearer token to the HTTP RAG service.
	// Optional.
	HTTPAPIKey string

	// Timeout is the per-call deadline for ingest and retrieve.
	// Default: 30s
	Timeout time.Duration
}

// FetcherConfig parameterizes article content fetching and extraction.
type FetcherConfig struct {
	// Timeout is the per-fetch deadline. Default: 10s
	Timeout time.Duration

	// Extractor selects the content extractor: "heuristic" or "readability".
	// Default: "heuristic"
	Extractor string
}

// LLMConfig parameterizes the summarization and answering model.
type LLMConfig struct {
	// Provider is "anthropic", "openai", or "none" (a model-free adapter
	// for runs without credentials). Default: "anthropic"
	Provider string

	// Model overrides the provider's default model. Optional.
	Model string

	// SummaryBudgetChars is the prompt truncation threshold. Default: 4000
	SummaryBudgetChars int

	// RequestsPerMinute bounds the outbound LLM call rate. Default: 60
	RequestsPerMinute int
}

// PipelineConfig bounds the pipeline's concurrency and history.
type PipelineConfig struct {
	// FetchConcurrency bounds concurrent content fetches. Default: 8
	FetchConcurrency int

	// SummarizeConcurrency bounds concurrent LLM calls. Default: 4
	SummarizeConcurrency int

	// IngestConcurrency bounds concurrent corpus writes. Default: 4
	IngestConcurrency int

	// HistoryMaxEntries bounds the persisted run history. Default: 10
	HistoryMaxEntries int
}

// CacheConfig parameterizes the QA response cache.
type CacheConfig struct {
	// MaxSize is the cache capacity in entries. Default: 1000
	MaxSize int

	// TTL is the entry time-to-live. Default: 1h
	TTL time.Duration
}

// SessionConfig parameterizes the QA session overlay.
type SessionConfig struct {
	// TTL is the idle time after which a session expires. Default: 24h
	TTL time.Duration

	// LogMax bounds the per-session query log. Default: 50
	LogMax int
}

// StateConfig locates the persisted pipeline state.
type StateConfig struct {
	// Path is a local file path or an object-store URI
	// (e.g. "gs://bucket/state.json"). Default: "state.json"
	Path string
}

// RetryConfig parameterizes the per-item retry policy.
type RetryConfig struct {
	// MaxAttempts including the first. Default: 3
	MaxAttempts int

	// BaseDelay before the first retry. Default: 500ms
	BaseDelay time.Duration

	// MaxDelay caps the exponential backoff. Default: 2s
	MaxDelay time.Duration

	// Jitter is the symmetric jitter fraction. Default: 0.2
	Jitter float64
}

// fileConfig mirrors the YAML configuration file. Keys match the lowercase
// option names; environment variables override anything set here.
type fileConfig struct {
	FeedURL              string   `yaml:"feed_url"`
	FeedSource           string   `yaml:"feed_source"`
	Backend              string   `yaml:"backend"`
	CorpusID             string   `yaml:"corpus_id"`
	DocsBucket           string   `yaml:"docs_bucket"`
	DocsPrefix           string   `yaml:"docs_prefix"`
	GCPProject           string   `yaml:"gcp_project"`
	GCPLocation          string   `yaml:"gcp_location"`
	HTTPRagBaseURL       string   `yaml:"http_rag_base_url"`
	HTTPRagAPIKey        string   `yaml:"http_rag_api_key"`
	BackendTimeout       string   `yaml:"backend_timeout"`
	FetchTimeout         string   `yaml:"fetch_timeout"`
	Extractor            string   `yaml:"extractor"`
	LLMProvider          string   `yaml:"llm_provider"`
	LLMModel             string   `yaml:"llm_model"`
	LLMSummaryBudget     int      `yaml:"llm_summary_budget_chars"`
	LLMRequestsPerMinute int      `yaml:"llm_requests_per_minute"`
	FetchConcurrency     int      `yaml:"fetch_concurrency"`
	SummarizeConcurrency int      `yaml:"summarize_concurrency"`
	IngestConcurrency    int      `yaml:"ingest_concurrency"`
	HistoryMaxEntries    int      `yaml:"history_max_entries"`
	CacheMaxSize         int      `yaml:"cache_max_size"`
	CacheTTL             string   `yaml:"cache_ttl"`
	SessionTTL           string   `yaml:"session_ttl"`
	SessionLogMax        int      `yaml:"session_log_max"`
	StatePath            string   `yaml:"state_path"`
	RetryMaxAttempts     int      `yaml:"retry_max_attempts"`
	RetryBaseDelay       string   `yaml:"retry_base_delay"`
	RetryMaxDelay        string   `yaml:"retry_max_delay"`
	RetryJitter          *float64 `yaml:"retry_jitter"`
}

// Load builds the application configuration.
//
// Order of precedence (highest wins):
//  1. Environment variables
//  2. YAML file named by CONFIG_FILE (optional)
//  3. Built-in defaults
//
// Invalid values fall back one level down and produce a warning. The returned
// warnings should be logged by the caller. A non-nil error means the
// configuration is structurally unusable (e.g. no feed URL).
func Load() (*AppConfig, []string, error) {
	cfg, warnings, err := build()
	if err != nil {
		return nil, warnings, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, warnings, err
	}
	return cfg, warnings, nil
}

// LoadQA builds the configuration for the question-answering CLI, which
// needs a retrieval backend and an LLM but no feed.
func LoadQA() (*AppConfig, []string, error) {
	cfg, warnings, err := build()
	if err != nil {
		return nil, warnings, err
	}
	if err := cfg.ValidateQA(); err != nil {
		return nil, warnings, err
	}
	return cfg, warnings, nil
}

func build() (*AppConfig, []string, error) {
	var warnings []string

	defaults, fileWarnings, err := loadFileDefaults()
	if err != nil {
		return nil, nil, err
	}
	warnings = append(warnings, fileWarnings...)

	collect := func(r pkgconfig.ConfigLoadResult) interface{} {
		warnings = append(warnings, r.Warnings...)
		return r.Value
	}

	cfg := &AppConfig{
		Feed: FeedConfig{
			URL:    pkgconfig.LoadEnvString("FEED_URL", defaults.feedURL),
			Source: pkgconfig.LoadEnvString("FEED_SOURCE", defaults.feedSource),
		},
		Backend: BackendConfig{
			Kind: collect(pkgconfig.LoadEnvWithFallback("RAG_BACKEND", defaults.backend, func(v string) error {
				return pkgconfig.ValidateOneOf(v, "managed", "http")
			})).(string),
			CorpusID:    pkgconfig.LoadEnvString("CORPUS_ID", defaults.corpusID),
			DocsBucket:  pkgconfig.LoadEnvString("DOCS_BUCKET", defaults.docsBucket),
			DocsPrefix:  pkgconfig.LoadEnvString("DOCS_PREFIX", defaults.docsPrefix),
			Project:     pkgconfig.LoadEnvString("GCP_PROJECT", defaults.gcpProject),
			Location:    pkgconfig.LoadEnvString("GCP_LOCATION", defaults.gcpLocation),
			HTTPBaseURL: pkgconfig.LoadEnvString("HTTP_RAG_BASE_URL", defaults.httpBaseURL),
			HTTPAPIKey:  pkgconfig.LoadEnvString("HTTP_RAG_API_KEY", defaults.httpAPIKey),
			Timeout: collect(pkgconfig.LoadEnvDuration("BACKEND_TIMEOUT", defaults.backendTimeout,
				pkgconfig.ValidatePositiveDuration)).(time.Duration),
		},
		Fetcher: FetcherConfig{
			Timeout: collect(pkgconfig.LoadEnvDuration("FETCH_TIMEOUT", defaults.fetchTimeout,
				pkgconfig.ValidatePositiveDuration)).(time.Duration),
			Extractor: collect(pkgconfig.LoadEnvWithFallback("EXTRACTOR", defaults.extractor, func(v string) error {
				return pkgconfig.ValidateOneOf(v, "heuristic", "readability")
			})).(string),
		},
		LLM: LLMConfig{
			Provider: collect(pkgconfig.LoadEnvWithFallback("LLM_PROVIDER", defaults.llmProvider, func(v string) error {
				return pkgconfig.ValidateOneOf(v, "anthropic", "openai", "none")
			})).(string),
			Model: pkgconfig.LoadEnvString("LLM_MODEL", defaults.llmModel),
			SummaryBudgetChars: collect(pkgconfig.LoadEnvInt("LLM_SUMMARY_BUDGET_CHARS", defaults.llmBudget, func(v int) error {
				return pkgconfig.ValidateIntRange(v, 200, 200000)
			})).(int),
			RequestsPerMinute: collect(pkgconfig.LoadEnvInt("LLM_REQUESTS_PER_MINUTE", defaults.llmRPM, func(v int) error {
				return pkgconfig.ValidateIntRange(v, 1, 6000)
			})).(int),
		},
		Pipeline: PipelineConfig{
			FetchConcurrency: collect(pkgconfig.LoadEnvInt("FETCH_CONCURRENCY", defaults.fetchConcurrency, func(v int) error {
				return pkgconfig.ValidateIntRange(v, 1, 64)
			})).(int),
			SummarizeConcurrency: collect(pkgconfig.LoadEnvInt("SUMMARIZE_CONCURRENCY", defaults.summarizeConcurrency, func(v int) error {
				return pkgconfig.ValidateIntRange(v, 1, 64)
			})).(int),
			IngestConcurrency: collect(pkgconfig.LoadEnvInt("INGEST_CONCURRENCY", defaults.ingestConcurrency, func(v int) error {
				return pkgconfig.ValidateIntRange(v, 1, 64)
			})).(int),
			HistoryMaxEntries: collect(pkgconfig.LoadEnvInt("HISTORY_MAX_ENTRIES", defaults.historyMax, func(v int) error {
				return pkgconfig.ValidateIntRange(v, 1, 1000)
			})).(int),
		},
		Cache: CacheConfig{
			MaxSize: collect(pkgconfig.LoadEnvInt("CACHE_MAX_SIZE", defaults.cacheMaxSize, func(v int) error {
				return pkgconfig.ValidateIntRange(v, 1, 1000000)
			})).(int),
			TTL: collect(pkgconfig.LoadEnvDuration("CACHE_TTL", defaults.cacheTTL,
				pkgconfig.ValidatePositiveDuration)).(time.Duration),
		},
		Session: SessionConfig{
			TTL: collect(pkgconfig.LoadEnvDuration("SESSION_TTL", defaults.sessionTTL,
				pkgconfig.ValidatePositiveDuration)).(time.Duration),
			LogMax: collect(pkgconfig.LoadEnvInt("SESSION_LOG_MAX", defaults.sessionLogMax, func(v int) error {
				return pkgconfig.ValidateIntRange(v, 1, 10000)
			})).(int),
		},
		State: StateConfig{
			Path: pkgconfig.LoadEnvString("STATE_PATH", defaults.statePath),
		},
		Retry: RetryConfig{
			MaxAttempts: collect(pkgconfig.LoadEnvInt("RETRY_MAX_ATTEMPTS", defaults.retryMaxAttempts, func(v int) error {
				return pkgconfig.ValidateIntRange(v, 1, 10)
			})).(int),
			BaseDelay: collect(pkgconfig.LoadEnvDuration("RETRY_BASE_DELAY", defaults.retryBaseDelay,
				pkgconfig.ValidatePositiveDuration)).(time.Duration),
			MaxDelay: collect(pkgconfig.LoadEnvDuration("RETRY_MAX_DELAY", defaults.retryMaxDelay,
				pkgconfig.ValidatePositiveDuration)).(time.Duration),
			Jitter: collect(pkgconfig.LoadEnvFloat("RETRY_JITTER", defaults.retryJitter, func(v float64) error {
				if v < 0 || v > 1 {
					return fmt.Errorf("jitter must be between 0 and 1, got %g", v)
				}
				return nil
			})).(float64),
		},
	}

	return cfg, warnings, nil
}

// Validate checks the structural requirements that cannot be defaulted away.
func (c *AppConfig) Validate() error {
	if err := pkgconfig.ValidateURL(c.Feed.URL); err != nil {
		return fmt.Errorf("FEED_URL: %w", err)
	}
	return c.ValidateQA()
}

// ValidateQA checks the requirements of the question-answering path only,
// which has no feed to ingest.
func (c *AppConfig) ValidateQA() error {
	switch c.Backend.Kind {
	case "managed":
		if c.Backend.CorpusID == "" {
			return fmt.Errorf("CORPUS_ID is required for the managed backend")
		}
		if c.Backend.DocsBucket == "" {
			return fmt.Errorf("DOCS_BUCKET is required for the managed backend")
		}
	case "http":
		if err := pkgconfig.ValidateURL(c.Backend.HTTPBaseURL); err != nil {
			return fmt.Errorf("HTTP_RAG_BASE_URL: %w", err)
		}
	default:
		return fmt.Errorf("unknown backend kind %q", c.Backend.Kind)
	}

	if c.Retry.BaseDelay > c.Retry.MaxDelay {
		return fmt.Errorf("RETRY_BASE_DELAY (%v) exceeds RETRY_MAX_DELAY (%v)",
			c.Retry.BaseDelay, c.Retry.MaxDelay)
	}

	if c.State.Path == "" {
		return fmt.Errorf("STATE_PATH cannot be empty")
	}

	return nil
}

// appDefaults carries the merged built-in and file-level defaults.
type appDefaults struct {
	feedURL              string
	feedSource           string
	backend              string
	corpusID             string
	docsBucket           string
	docsPrefix           string
	gcpProject           string
	gcpLocation          string
	httpBaseURL          string
	httpAPIKey           string
	backendTimeout       time.Duration
	fetchTimeout         time.Duration
	extractor            string
	llmProvider          string
	llmModel             string
	llmBudget            int
	llmRPM               int
	fetchConcurrency     int
	summarizeConcurrency int
	ingestConcurrency    int
	historyMax           int
	cacheMaxSize         int
	cacheTTL             time.Duration
	sessionTTL           time.Duration
	sessionLogMax        int
	statePath            string
	retryMaxAttempts     int
	retryBaseDelay       time.Duration
	retryMaxDelay        time.Duration
	retryJitter          float64
}

func builtinDefaults() appDefaults {
	return appDefaults{
		feedSource:           "tech_blog",
		backend:              "managed",
		docsPrefix:           "docs/",
		gcpLocation:          "us-central1",
		backendTimeout:       30 * time.Second,
		fetchTimeout:         10 * time.Second,
		extractor:            "heuristic",
		llmProvider:          "anthropic",
		llmBudget:            4000,
		llmRPM:               60,
		fetchConcurrency:     8,
		summarizeConcurrency: 4,
		ingestConcurrency:    4,
		historyMax:           10,
		cacheMaxSize:         1000,
		cacheTTL:             time.Hour,
		sessionTTL:           24 * time.Hour,
		sessionLogMax:        50,
		statePath:            "state.json",
		retryMaxAttempts:     3,
		retryBaseDelay:       500 * time.Millisecond,
		retryMaxDelay:        2 * time.Second,
		retryJitter:          0.2,
	}
}

// loadFileDefaults overlays the optional YAML file named by CONFIG_FILE on the
// built-in defaults. A missing CONFIG_FILE variable is not an error; a named
// but unreadable or unparseable file is.
func loadFileDefaults() (appDefaults, []string, error) {
	d := builtinDefaults()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		return d, nil, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is operator supplied
	if err != nil {
		return d, nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return d, nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	var warnings []string
	overlayString := func(v string, dst *string) {
		if v != "" {
			*dst = v
		}
	}
	overlayInt := func(v int, dst *int) {
		if v != 0 {
			*dst = v
		}
	}
	overlayDuration := func(key, v string, dst *time.Duration) {
		if v == "" {
			return
		}
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed <= 0 {
			warnings = append(warnings, fmt.Sprintf(
				"Invalid %s='%s' in %s, keeping default '%v'", key, v, path, *dst))
			return
		}
		*dst = parsed
	}

	overlayString(fc.FeedURL, &d.feedURL)
	overlayString(fc.FeedSource, &d.feedSource)
	overlayString(fc.Backend, &d.backend)
	overlayString(fc.CorpusID, &d.corpusID)
	overlayString(fc.DocsBucket, &d.docsBucket)
	overlayString(fc.DocsPrefix, &d.docsPrefix)
	overlayString(fc.GCPProject, &d.gcpProject)
	overlayString(fc.GCPLocation, &d.gcpLocation)
	overlayString(fc.HTTPRagBaseURL, &d.httpBaseURL)
	overlayString(fc.HTTPRagAPIKey, &d.httpAPIKey)
	overlayString(fc.Extractor, &d.extractor)
	overlayString(fc.LLMProvider, &d.llmProvider)
	overlayString(fc.LLMModel, &d.llmModel)
	overlayString(fc.StatePath, &d.statePath)

	overlayInt(fc.LLMSummaryBudget, &d.llmBudget)
	overlayInt(fc.LLMRequestsPerMinute, &d.llmRPM)
	overlayInt(fc.FetchConcurrency, &d.fetchConcurrency)
	overlayInt(fc.SummarizeConcurrency, &d.summarizeConcurrency)
	overlayInt(fc.IngestConcurrency, &d.ingestConcurrency)
	overlayInt(fc.HistoryMaxEntries, &d.historyMax)
	overlayInt(fc.CacheMaxSize, &d.cacheMaxSize)
	overlayInt(fc.SessionLogMax, &d.sessionLogMax)
	overlayInt(fc.RetryMaxAttempts, &d.retryMaxAttempts)

	overlayDuration("backend_timeout", fc.BackendTimeout, &d.backendTimeout)
	overlayDuration("fetch_timeout", fc.FetchTimeout, &d.fetchTimeout)
	overlayDuration("cache_ttl", fc.CacheTTL, &d.cacheTTL)
	overlayDuration("session_ttl", fc.SessionTTL, &d.sessionTTL)
	overlayDuration("retry_base_delay", fc.RetryBaseDelay, &d.retryBaseDelay)
	overlayDuration("retry_max_delay", fc.RetryMaxDelay, &d.retryMaxDelay)

	if fc.RetryJitter != nil {
		if *fc.RetryJitter < 0 || *fc.RetryJitter > 1 {
			warnings = append(warnings, fmt.Sprintf(
				"Invalid retry_jitter='%g' in %s, keeping default '%g'",
				*fc.RetryJitter, path, d.retryJitter))
		} else {
			d.retryJitter = *fc.RetryJitter
		}
	}

	return d, warnings, nil
}
