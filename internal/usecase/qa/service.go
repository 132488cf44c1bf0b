// Package qa answers free-form questions grounded in the retrieval corpus.
// It orchestrates retrieval and the LLM answerer, and offers a cached
// variant layering the response cache and session log on top.
package qa

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"blogpulse/internal/domain/entity"
	"blogpulse/internal/observability/logging"
	"blogpulse/internal/observability/metrics"
	"blogpulse/internal/observability/tracing"
	"blogpulse/internal/repository"
)

// Refusal strings returned without consulting the model.
const (
	// RefusalEmptyQuestion is returned for a question that is empty after
	// trimming.
	RefusalEmptyQuestion = "Please ask a question."

	// RefusalNoContext is returned when retrieval finds nothing; the model
	// is not called.
	RefusalNoContext = "I couldn't find any blog posts related to that question. " +
		"Please try rephrasing your question or asking about a different topic."
)

// DefaultK is the retrieval depth used when the caller does not choose one.
const DefaultK = 8

// Answerer produces a grounded answer from retrieved docs.
type Answerer interface {
	Answer(ctx context.Context, question string, docs []*entity.RetrievedDoc) (string, error)
}

// Result is one answered (or refused) question.
type Result struct {
	// Answer is the model's answer, or a refusal string.
	Answer string

	// Docs are the retrieved docs the answer is grounded in. Empty on
	// refusals.
	Docs []*entity.RetrievedDoc

	// Refused reports that no model call was made.
	Refused bool

	// Cached reports that the answer was served from the response cache.
	Cached bool

	// RequestID correlates logs and traces for this question.
	RequestID string
}

// Service is the uncached QA orchestrator.
type Service struct {
	Backend  repository.RetrievalBackend
	Answerer Answerer
}

// NewService creates the QA orchestrator.
func NewService(backend repository.RetrievalBackend, answerer Answerer) *Service {
	return &Service{Backend: backend, Answerer: answerer}
}

// Answer retrieves context for the question and asks the model for a
// grounded answer. An empty question or an empty retrieval is refused
// without a model call. k values below 1 fall back to DefaultK.
func (s *Service) Answer(ctx context.Context, question string, k int) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "qa.answer")
	defer span.End()

	requestID := logging.NewRequestID()
	ctx = logging.WithRequestIDContext(ctx, requestID)
	logger := slog.Default().With(slog.String("request_id", requestID))

	if k <= 0 {
		k = DefaultK
	}
	start := time.Now()

	question = strings.TrimSpace(question)
	if question == "" {
		metrics.RecordAnswer("refused", time.Since(start))
		return &Result{Answer: RefusalEmptyQuestion, Refused: true, RequestID: requestID}, nil
	}

	docs, err := s.Backend.Retrieve(ctx, question, k)
	if err != nil {
		metrics.RecordAnswer("error", time.Since(start))
		logger.Error("retrieval failed", slog.Any("error", err))
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	if len(docs) == 0 {
		metrics.RecordAnswer("refused", time.Since(start))
		logger.Info("no context found, refusing",
			slog.String("question", question))
		return &Result{Answer: RefusalNoContext, Refused: true, RequestID: requestID}, nil
	}

	answer, err := s.Answerer.Answer(ctx, question, docs)
	if err != nil {
		metrics.RecordAnswer("error", time.Since(start))
		logger.Error("answer generation failed", slog.Any("error", err))
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	metrics.RecordAnswer("answered", time.Since(start))
	logger.Info("question answered",
		slog.Int("docs", len(docs)),
		slog.Int("answer_length", len(answer)),
		slog.Duration("duration", time.Since(start)))

	return &Result{Answer: answer, Docs: docs, RequestID: requestID}, nil
}
