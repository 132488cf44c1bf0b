package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"cloud.google.com/go/storage"

	"blogpulse/internal/domain/entity"
)

// ObjectStore persists the state blob as a single object in an object
// store. The write is one request, which the store applies atomically:
// readers see either the old or the new object, never a mix.
type ObjectStore struct {
	bucket *storage.BucketHandle
	key    string
}

// NewObjectStore creates an object-backed store from a gs://bucket/key URI.
func NewObjectStore(ctx context.Context, uri string) (*ObjectStore, error) {
	bucket, key, err := parseObjectURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &ObjectStore{bucket: client.Bucket(bucket), key: key}, nil
}

// parseObjectURI splits gs://bucket/key into its parts.
func parseObjectURI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("object state uri must start with gs://, got %q", uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("object state uri must be gs://bucket/key, got %q", uri)
	}
	return bucket, key, nil
}

// Load reads the state object. A missing object yields a fresh empty state.
func (s *ObjectStore) Load(ctx context.Context) (*entity.State, error) {
	r, err := s.bucket.Object(s.key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		slog.Debug("state object absent, starting fresh", slog.String("key", s.key))
		return entity.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open state object %s: %w", s.key, err)
	}
	defer func() {
		_ = r.Close()
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read state object %s: %w", s.key, err)
	}

	state := entity.NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("decode state object %s: %w", s.key, err)
	}
	return state, nil
}

// Save replaces the state object in one write.
func (s *ObjectStore) Save(ctx context.Context, state *entity.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	w := s.bucket.Object(s.key).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write state object %s: %w", s.key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("commit state object %s: %w", s.key, err)
	}
	return nil
}
