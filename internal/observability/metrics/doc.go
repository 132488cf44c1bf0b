// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Feed discovery and content fetch metrics
//   - Summarization and corpus ingestion metrics
//   - Retrieval and question answering metrics
//   - Cache and session metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "blogpulse/internal/observability/metrics"
//
//	func runPipeline(source string) {
//	    start := time.Now()
//	    // ... discover and ingest posts ...
//	    count := 10
//
//	    metrics.RecordPostsDiscovered(source, count)
//	    metrics.RecordPipelineRun("success", time.Since(start))
//	}
package metrics
