package state

import (
	"context"
	"strings"

	"blogpulse/internal/repository"
)

// New selects the store implementation from the configured path: a
// gs://bucket/key URI gets the object store, anything else is a local file
// path.
func New(ctx context.Context, path string) (repository.StateStore, error) {
	if strings.HasPrefix(path, "gs://") {
		return NewObjectStore(ctx, path)
	}
	return NewFileStore(path), nil
}
