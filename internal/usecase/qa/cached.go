package qa

import (
	"context"
	"time"

	"blogpulse/internal/cache"
)

// CachedService layers the response cache and the session log over the QA
// orchestrator. Refusals and failures pass through uncached; only real
// answers are stored and replayed.
type CachedService struct {
	inner    *Service
	cache    *cache.ResponseCache
	sessions *cache.SessionManager
}

// NewCachedService wraps the orchestrator with caching. Either the cache or
// the session manager may be nil to disable that layer.
func NewCachedService(inner *Service, responses *cache.ResponseCache, sessions *cache.SessionManager) *CachedService {
	return &CachedService{inner: inner, cache: responses, sessions: sessions}
}

// Answer answers the question, serving repeats of the same (question, k)
// pair from the cache. A non-empty sessionID records the exchange in that
// session's log; failed answers are neither cached nor logged.
func (s *CachedService) Answer(ctx context.Context, question string, k int, sessionID string) (*Result, error) {
	if k <= 0 {
		k = DefaultK
	}

	result, err := s.answer(ctx, question, k)
	if err != nil {
		return nil, err
	}

	if s.sessions != nil && !result.Refused {
		s.sessions.Record(sessionID, cache.SessionEntry{
			Timestamp:    time.Now(),
			Question:     question,
			AnswerLength: len(result.Answer),
			DocCount:     len(result.Docs),
		})
	}
	return result, nil
}

func (s *CachedService) answer(ctx context.Context, question string, k int) (*Result, error) {
	if s.cache == nil || cache.NormalizeQuestion(question) == "" {
		return s.inner.Answer(ctx, question, k)
	}

	var refusal *Result
	cached, hit, err := s.cache.GetOrCompute(ctx, question, k,
		func(ctx context.Context) (cache.CachedAnswer, error) {
			result, err := s.inner.Answer(ctx, question, k)
			if err != nil {
				return cache.CachedAnswer{}, err
			}
			if result.Refused {
				// Refusals bypass the cache: the corpus may grow between
				// questions, so a refusal today should not be replayed.
				refusal = result
				return cache.CachedAnswer{}, errSkipCache
			}
			return cache.CachedAnswer{Answer: result.Answer, Docs: result.Docs}, nil
		})
	if err == errSkipCache {
		if refusal != nil {
			return refusal, nil
		}
		// A concurrent caller's refusal was shared with us via single-flight;
		// answer independently so this caller gets its own request id.
		return s.inner.Answer(ctx, question, k)
	}
	if err != nil {
		return nil, err
	}

	return &Result{Answer: cached.Answer, Docs: cached.Docs, Cached: hit}, nil
}

// errSkipCache signals a refusal out of the compute callback without caching
// it. It never escapes this package.
var errSkipCache = errSentinel("skip cache")

type errSentinel string

func (e errSentinel) Error() string { return string(e) }
