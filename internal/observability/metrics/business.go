package metrics

import (
	"time"
)

// RecordPostsDiscovered records the number of posts discovered in a feed document.
// This metric helps track feed activity per source.
func RecordPostsDiscovered(source string, count int) {
	PostsDiscoveredTotal.WithLabelValues(source).Add(float64(count))
}

// RecordNewPosts records the number of previously unseen posts in a run.
func RecordNewPosts(source string, count int) {
	NewPostsTotal.WithLabelValues(source).Add(float64(count))
}

// RecordFeedParse records the duration of parsing one feed document.
// Format should be "atom", "rss", or "html".
func RecordFeedParse(format string, duration time.Duration) {
	FeedParseDuration.WithLabelValues(format).Observe(duration.Seconds())
}

// RecordPipelineRun records the outcome and duration of one pipeline run.
// Status should be "success", "canceled", or "error".
func RecordPipelineRun(status string, duration time.Duration) {
	PipelineRunsTotal.WithLabelValues(status).Inc()
	PipelineRunDuration.Observe(duration.Seconds())
}

// RecordContentFetchSuccess records a successful content fetch operation.
// This tracks both the duration and size of fetched content.
func RecordContentFetchSuccess(duration time.Duration, size int) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
	ContentFetchSize.Observe(float64(size))
}

// RecordContentFetchFailed records a failed content fetch operation.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchSkipped records a skipped content fetch operation.
// This occurs when the feed entry carries enough inline content and
// fetching the article page is unnecessary.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}

// RecordPostSummarized records the result of a summarization operation.
// Status is either "success" or "failure".
func RecordPostSummarized(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	PostsSummarizedTotal.WithLabelValues(status).Inc()
}

// RecordSummarizationDuration records the time taken to summarize one post.
// This helps identify performance issues with the LLM service.
func RecordSummarizationDuration(duration time.Duration) {
	SummarizationDuration.Observe(duration.Seconds())
}

// RecordDocumentIngested records the result of writing one document to the
// retrieval corpus. Backend is the configured backend kind ("managed" or "http").
func RecordDocumentIngested(backend string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	DocumentsIngestedTotal.WithLabelValues(backend, status).Inc()
	IngestDuration.Observe(duration.Seconds())
}

// RecordRetrieval records the duration and usable result count of one corpus query.
func RecordRetrieval(backend string, duration time.Duration, resultCount int) {
	RetrievalDuration.WithLabelValues(backend).Observe(duration.Seconds())
	RetrievalResults.Observe(float64(resultCount))
}

// RecordAnswer records the outcome and latency of one answer request.
// Outcome should be "answered", "refused", or "error".
func RecordAnswer(outcome string, duration time.Duration) {
	AnswerRequestsTotal.WithLabelValues(outcome).Inc()
	AnswerDuration.Observe(duration.Seconds())
}

// RecordCacheHit records a response cache hit.
func RecordCacheHit() {
	CacheRequestsTotal.WithLabelValues("hit").Inc()
}

// RecordCacheMiss records a response cache miss.
func RecordCacheMiss() {
	CacheRequestsTotal.WithLabelValues("miss").Inc()
}

// RecordCacheEviction records one entry evicted from the response cache.
func RecordCacheEviction() {
	CacheEvictionsTotal.Inc()
}

// UpdateActiveSessions updates the live session gauge.
func UpdateActiveSessions(count int) {
	SessionsActive.Set(float64(count))
}
