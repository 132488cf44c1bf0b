// Package cache provides the QA response cache and the session overlay.
// Both are process-wide but explicitly constructed: built at startup from
// configuration and torn down with the process, never package-level singletons.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"blogpulse/internal/domain/entity"
	"blogpulse/internal/observability/metrics"
)

// CachedAnswer is the unit stored per (question, k) pair.
type CachedAnswer struct {
	Answer string
	Docs   []*entity.RetrievedDoc
}

// Stats is a point-in-time snapshot of cache behavior.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// ResponseCache caches QA answers keyed by the normalized question and the
// retrieval depth k. Entries expire after a TTL and the capacity is bounded
// with LRU eviction. Concurrent identical questions are collapsed into a
// single computation via single-flight.
type ResponseCache struct {
	lru    *expirable.LRU[string, CachedAnswer]
	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
}

// NewResponseCache creates a bounded, expiring response cache.
func NewResponseCache(maxSize int, ttl time.Duration) *ResponseCache {
	onEvict := func(key string, value CachedAnswer) {
		metrics.RecordCacheEviction()
	}
	return &ResponseCache{
		lru: expirable.NewLRU[string, CachedAnswer](maxSize, onEvict, ttl),
	}
}

// NormalizeQuestion lowercases, trims, and collapses internal whitespace so
// trivially different spellings of the same question share a cache entry.
func NormalizeQuestion(question string) string {
	return strings.Join(strings.Fields(strings.ToLower(question)), " ")
}

// Key builds the cache key for a question at retrieval depth k.
func Key(question string, k int) string {
	return fmt.Sprintf("%s|k=%d", NormalizeQuestion(question), k)
}

// Get returns the cached answer for (question, k), if present and unexpired.
func (c *ResponseCache) Get(question string, k int) (CachedAnswer, bool) {
	answer, ok := c.lru.Get(Key(question, k))
	if ok {
		c.hits.Add(1)
		metrics.RecordCacheHit()
	} else {
		c.misses.Add(1)
		metrics.RecordCacheMiss()
	}
	return answer, ok
}

// Set stores an answer for (question, k).
func (c *ResponseCache) Set(question string, k int, answer CachedAnswer) {
	c.lru.Add(Key(question, k), answer)
}

// GetOrCompute returns the cached answer for (question, k), computing and
// caching it on a miss. Concurrent callers with the same key share one
// in-flight computation; all of them receive its result. Failed computations
// are returned to every waiter but never cached, so the next caller retries.
func (c *ResponseCache) GetOrCompute(
	ctx context.Context,
	question string,
	k int,
	compute func(ctx context.Context) (CachedAnswer, error),
) (CachedAnswer, bool, error) {
	if answer, ok := c.Get(question, k); ok {
		return answer, true, nil
	}

	key := Key(question, k)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under single-flight: a racing caller may have filled it.
		if answer, ok := c.lru.Get(key); ok {
			return answer, nil
		}
		answer, err := compute(ctx)
		if err != nil {
			return CachedAnswer{}, err
		}
		c.lru.Add(key, answer)
		return answer, nil
	})
	if err != nil {
		return CachedAnswer{}, false, err
	}
	return v.(CachedAnswer), false, nil
}

// Stats returns a snapshot of hit/miss counts and the current entry count.
func (c *ResponseCache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.lru.Len(),
	}
}

// Purge drops every entry. Used by tests and shutdown paths.
func (c *ResponseCache) Purge() {
	c.lru.Purge()
}
