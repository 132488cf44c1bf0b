package ragstore

import (
	"context"
	"fmt"

	"blogpulse/internal/repository"
)

// Backend kinds selectable from configuration.
const (
	KindManaged = "managed"
	KindHTTP    = "http"
)

// New constructs the retrieval backend named by kind. The choice is made
// once, here; no call path afterwards may depend on which implementation
// it got.
func New(ctx context.Context, kind string, managed ManagedConfig, httpCfg HTTPConfig) (repository.RetrievalBackend, error) {
	switch kind {
	case KindManaged:
		return NewManaged(ctx, managed)
	case KindHTTP:
		return NewHTTP(httpCfg)
	default:
		return nil, fmt.Errorf("unknown retrieval backend kind %q", kind)
	}
}
