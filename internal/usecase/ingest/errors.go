// Package ingest implements the feed-to-corpus ingestion pipeline.
// It orchestrates feed discovery, content fetching and extraction, LLM
// summarization, and corpus ingestion, absorbing per-item failures so one
// bad post never aborts a run.
package ingest

import (
	"errors"
	"fmt"
)

// Sentinel errors for ingestion pipeline operations.
var (
	// ErrFeedUnavailable indicates that the feed document itself could not
	// be fetched. Without a feed document there is nothing to run against.
	ErrFeedUnavailable = errors.New("feed document unavailable")
)

// FetchError indicates that fetching one post's article content failed.
// Network errors, non-2xx responses, and timeouts all map here; the
// pipeline logs it and omits the post from downstream stages.
type FetchError struct {
	URL   string
	Cause error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed for %s: %v", e.URL, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// SummaryParseError indicates that the LLM response for one post could not
// be parsed into a valid summary. The post is omitted from downstream stages.
type SummaryParseError struct {
	PostID string
	Cause  error
}

// Error implements the error interface.
func (e *SummaryParseError) Error() string {
	return fmt.Sprintf("summary parse failed for post %s: %v", e.PostID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *SummaryParseError) Unwrap() error {
	return e.Cause
}
