package repository

import (
	"context"

	"blogpulse/internal/domain/entity"
)

// RetrievalBackend defines the interface to the retrieval corpus.
// Two interchangeable implementations exist (a managed vector corpus and a
// generic HTTP RAG service); callers never inspect which one they hold.
type RetrievalBackend interface {
	// Ingest writes one summary to the corpus so it becomes retrievable.
	// Re-ingesting the same post ID overwrites the previous document in place.
	// Returns an error if the write fails; the caller absorbs per-item failures.
	Ingest(ctx context.Context, summary *entity.Summary) error

	// Retrieve runs a relevance query against the corpus and returns up to k
	// usable documents ordered most relevant first. Malformed backend entries
	// are skipped, so fewer than k results is normal. An empty corpus yields
	// an empty slice (not nil is not guaranteed) and no error.
	Retrieve(ctx context.Context, query string, k int) ([]*entity.RetrievedDoc, error)
}
