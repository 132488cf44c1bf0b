package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func TestRecordPostsDiscovered(t *testing.T) {
	tests := []struct {
		name   string
		source string
		count  int
	}{
		{
			name:   "single post",
			source: "tech_blog",
			count:  1,
		},
		{
			name:   "multiple posts",
			source: "dev_blog",
			count:  10,
		},
		{
			name:   "zero posts",
			source: "empty_blog",
			count:  0,
		},
		{
			name:   "empty source name",
			source: "",
			count:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordPostsDiscovered(tt.source, tt.count)
			})
		})
	}
}

func TestRecordNewPosts(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordNewPosts("tech_blog", 3)
		RecordNewPosts("tech_blog", 0)
	})
}

func TestRecordFeedParse(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		duration time.Duration
	}{
		{
			name:     "atom feed",
			format:   "atom",
			duration: 5 * time.Millisecond,
		},
		{
			name:     "rss feed",
			format:   "rss",
			duration: 10 * time.Millisecond,
		},
		{
			name:     "html fallback",
			format:   "html",
			duration: 50 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordFeedParse(tt.format, tt.duration)
			})
		})
	}
}

func TestRecordPipelineRun(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		duration time.Duration
	}{
		{
			name:     "successful run",
			status:   "success",
			duration: 30 * time.Second,
		},
		{
			name:     "canceled run",
			status:   "canceled",
			duration: 2 * time.Second,
		},
		{
			name:     "failed run",
			status:   "error",
			duration: 5 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordPipelineRun(tt.status, tt.duration)
			})
		})
	}
}

func TestRecordContentFetch(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordContentFetchSuccess(200*time.Millisecond, 4096)
		RecordContentFetchFailed(10 * time.Second)
		RecordContentFetchSkipped()
	})
}

func TestRecordPostSummarized(t *testing.T) {
	tests := []struct {
		name    string
		success bool
	}{
		{
			name:    "success",
			success: true,
		},
		{
			name:    "failure",
			success: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordPostSummarized(tt.success)
			})
		})
	}
}

func TestRecordSummarizationDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
	}{
		{
			name:     "fast response",
			duration: 100 * time.Millisecond,
		},
		{
			name:     "normal response",
			duration: 1 * time.Second,
		},
		{
			name:     "slow response",
			duration: 5 * time.Second,
		},
		{
			name:     "zero duration",
			duration: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordSummarizationDuration(tt.duration)
			})
		})
	}
}

func TestRecordDocumentIngested(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		success bool
	}{
		{
			name:    "managed success",
			backend: "managed",
			success: true,
		},
		{
			name:    "http failure",
			backend: "http",
			success: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordDocumentIngested(tt.backend, tt.success, 50*time.Millisecond)
			})
		})
	}
}

func TestRecordRetrieval(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordRetrieval("http", 80*time.Millisecond, 4)
		RecordRetrieval("managed", 120*time.Millisecond, 0)
	})
}

func TestRecordAnswer(t *testing.T) {
	tests := []struct {
		name    string
		outcome string
	}{
		{
			name:    "answered",
			outcome: "answered",
		},
		{
			name:    "refused",
			outcome: "refused",
		},
		{
			name:    "error",
			outcome: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordAnswer(tt.outcome, 300*time.Millisecond)
			})
		})
	}
}

func TestCacheMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordCacheHit()
		RecordCacheMiss()
		RecordCacheEviction()
	})
}

func TestUpdateActiveSessions(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{
			name:  "no sessions",
			count: 0,
		},
		{
			name:  "some sessions",
			count: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateActiveSessions(tt.count)
			})
		})
	}
}

func TestMetricsRegistered(t *testing.T) {
	RecordCacheHit()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	for _, name := range []string{
		"posts_discovered_total",
		"pipeline_runs_total",
		"cache_requests_total",
		"answer_requests_total",
	} {
		if _, ok := byName[name]; !ok {
			t.Errorf("metric family %q not registered", name)
		}
	}

	if mf := byName["cache_requests_total"]; mf.GetType() != dto.MetricType_COUNTER {
		t.Errorf("cache_requests_total type = %v, want counter", mf.GetType())
	}
}

func TestMetricsFunctions_AllCallable(t *testing.T) {
	// Test that all functions can be called in sequence without panic
	assert.NotPanics(t, func() {
		RecordPostsDiscovered("tech_blog", 10)
		RecordNewPosts("tech_blog", 4)
		RecordFeedParse("atom", 5*time.Millisecond)
		RecordPipelineRun("success", 10*time.Second)
		RecordContentFetchSuccess(100*time.Millisecond, 2048)
		RecordContentFetchFailed(1 * time.Second)
		RecordContentFetchSkipped()
		RecordPostSummarized(true)
		RecordSummarizationDuration(1 * time.Second)
		RecordDocumentIngested("managed", true, 50*time.Millisecond)
		RecordRetrieval("http", 80*time.Millisecond, 3)
		RecordAnswer("answered", 200*time.Millisecond)
		RecordCacheHit()
		RecordCacheMiss()
		RecordCacheEviction()
		UpdateActiveSessions(2)
		RecordOperationDuration("managed", 10*time.Millisecond)
	})
}
