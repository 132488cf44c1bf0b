package repository

import (
	"context"

	"blogpulse/internal/domain/entity"
)

// StateStore persists the pipeline state blob between runs.
// Implementations exist for a local file and for an object store; the blob
// format is identical in both.
type StateStore interface {
	// Load reads the persisted state. A missing blob is not an error:
	// it returns a fresh empty state so the first run starts cleanly.
	Load(ctx context.Context) (*entity.State, error)

	// Save atomically replaces the persisted state with the given one.
	// Readers never observe a partially written blob.
	Save(ctx context.Context, state *entity.State) error
}
