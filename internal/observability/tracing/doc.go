// Package tracing provides OpenTelemetry tracing integration.
//
// The package installs a tracer provider for the process and exposes
// helpers for creating spans around pipeline stages and QA requests.
//
// Example usage:
//
//	import "blogpulse/internal/observability/tracing"
//
//	func main() {
//	    shutdown := tracing.InitTracer("blogpulse")
//	    defer shutdown(context.Background())
//	}
//
//	func ingest(ctx context.Context) {
//	    ctx, span := tracing.StartSpan(ctx, "pipeline.ingest")
//	    defer span.End()
//	    // ... ingest documents ...
//	}
package tracing
