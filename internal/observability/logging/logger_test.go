package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log entry %q: %v", buf.String(), err)
	}
	return entry
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger()
	if logger == nil {
		t.Fatal("expected logger, got nil")
	}
}

func TestNewTextLogger(t *testing.T) {
	logger := NewTextLogger()
	if logger == nil {
		t.Fatal("expected logger, got nil")
	}
}

func TestNewRequestID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewRequestID()
		if id == "" {
			t.Fatal("NewRequestID returned empty string")
		}
		if seen[id] {
			t.Fatalf("duplicate request ID %q", id)
		}
		seen[id] = true
	}
}

func TestWithRequestID(t *testing.T) {
	logger, buf := captureLogger()

	ctx := WithRequestIDContext(context.Background(), "req-123")
	WithRequestID(ctx, logger).Info("processing")

	entry := lastEntry(t, buf)
	if entry["request_id"] != "req-123" {
		t.Errorf("expected request_id='req-123', got %v", entry["request_id"])
	}
}

func TestWithRequestID_NoID(t *testing.T) {
	logger, buf := captureLogger()

	WithRequestID(context.Background(), logger).Info("processing")

	entry := lastEntry(t, buf)
	if _, ok := entry["request_id"]; ok {
		t.Error("expected no request_id field without context value")
	}
}

func TestRequestIDFromContext(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty request ID, got %q", got)
	}
	ctx := WithRequestIDContext(context.Background(), "req-9")
	if got := RequestIDFromContext(ctx); got != "req-9" {
		t.Errorf("expected 'req-9', got %q", got)
	}
}

func TestWithFields(t *testing.T) {
	logger, buf := captureLogger()

	WithFields(logger, map[string]interface{}{
		"feed_url": "https://example.org/rss",
		"count":    3,
	}).Info("run complete")

	entry := lastEntry(t, buf)
	if entry["feed_url"] != "https://example.org/rss" {
		t.Errorf("expected feed_url field, got %v", entry["feed_url"])
	}
	if entry["count"] != float64(3) {
		t.Errorf("expected count=3, got %v", entry["count"])
	}
}

func TestLoggerContext(t *testing.T) {
	logger, _ := captureLogger()

	ctx := WithLogger(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Error("FromContext did not return the stored logger")
	}

	if got := FromContext(context.Background()); got == nil {
		t.Error("FromContext should fall back to the default logger")
	}
}
