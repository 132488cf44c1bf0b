package ragstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"blogpulse/internal/domain/entity"
	"blogpulse/internal/observability/metrics"
	"blogpulse/internal/resilience/circuitbreaker"
	"blogpulse/internal/resilience/retry"
)

// HTTPConfig configures the generic HTTP RAG backend.
type HTTPConfig struct {
	// BaseURL is the service root; /add_doc and /query are appended.
	// A trailing slash is stripped.
	BaseURL string

	// APIKey, when set, is sent as a bearer Authorization header.
	APIKey string

	// CorpusID is the logical corpus identifier included in every call.
	CorpusID string

	// Timeout is the per-call deadline. Default 30s.
	Timeout time.Duration
}

func (c HTTPConfig) withDefaults() HTTPConfig {
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// HTTP talks to a generic RAG service exposing /add_doc and /query.
//
// Ingest idempotency is delegated to the service, which deduplicates by the
// post_id carried in doc_metadata.
type HTTP struct {
	cfg        HTTPConfig
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	retryCfg   retry.Config
	docIndex   atomic.Int64
}

// NewHTTP creates the HTTP backend.
func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	cfg = cfg.withDefaults()
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("http backend: base url is required")
	}
	return &HTTP{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    circuitbreaker.New(circuitbreaker.BackendConfig()),
		retryCfg:   retry.BackendConfig(),
	}, nil
}

// addDocRequest is the /add_doc body.
type addDocRequest struct {
	Document    string         `json:"document"`
	DocIndex    int64          `json:"doc_index"`
	DocMetadata map[string]any `json:"doc_metadata"`
	UUID        string         `json:"uuid"`
}

// Ingest POSTs the summary's document rendering to /add_doc.
func (h *HTTP) Ingest(ctx context.Context, summary *entity.Summary) error {
	metadata := summary.ToMetadata()
	metadata["uuid"] = h.cfg.CorpusID

	payload := addDocRequest{
		Document:    summary.ToIndexableDocument(),
		DocIndex:    h.docIndex.Add(1) - 1,
		DocMetadata: metadata,
		UUID:        h.cfg.CorpusID,
	}

	_, err := h.post(ctx, "/add_doc", payload)
	if err != nil {
		return fmt.Errorf("ingest post %s: %w", summary.PostID, err)
	}

	slog.Debug("summary ingested to http backend",
		slog.String("post_id", summary.PostID))
	return nil
}

// queryRequest is the /query body.
type queryRequest struct {
	Question string `json:"question"`
	UUID     string `json:"uuid"`
	TopK     int    `json:"top_k"`
}

// queryResult is one entry of the /query response.
type queryResult struct {
	PageContent string         `json:"page_content"`
	Score       float64        `json:"score"`
	Metadata    map[string]any `json:"metadata"`
}

type queryResponse struct {
	Results []queryResult `json:"results"`
}

// Retrieve POSTs the question to /query and maps the results. Malformed
// entries are skipped; at most k docs are returned.
func (h *HTTP) Retrieve(ctx context.Context, query string, k int) ([]*entity.RetrievedDoc, error) {
	start := time.Now()
	docs, err := h.retrieve(ctx, query, k)
	metrics.RecordRetrieval("http", time.Since(start), len(docs))
	return docs, err
}

func (h *HTTP) retrieve(ctx context.Context, query string, k int) ([]*entity.RetrievedDoc, error) {
	body, err := h.post(ctx, "/query", queryRequest{
		Question: query,
		UUID:     h.cfg.CorpusID,
		TopK:     k,
	})
	if err != nil {
		return nil, fmt.Errorf("query backend: %w", err)
	}

	var parsed queryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}

	docs := make([]*entity.RetrievedDoc, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if len(docs) >= k {
			break
		}

		postID, _ := r.Metadata["post_id"].(string)
		title, _ := r.Metadata["title"].(string)
		url, _ := r.Metadata["url"].(string)

		doc, err := entity.NewRetrievedDoc(postID, title, url, r.PageContent, r.Score, r.Metadata)
		if err != nil {
			slog.Debug("skipping malformed retrieval result", slog.Any("error", err))
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// post sends one JSON request through the retry and circuit-breaker stack
// and returns the response body. Non-2xx responses are errors.
func (h *HTTP) post(ctx context.Context, route string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var respBody []byte
	retryErr := retry.WithBackoff(ctx, h.retryCfg, func() error {
		result, err := h.breaker.Execute(func() (interface{}, error) {
			return h.doPost(ctx, route, body)
		})
		if err != nil {
			return err
		}
		respBody = result.([]byte)
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}
	return respBody, nil
}

func (h *HTTP) doPost(ctx context.Context, route string, body []byte) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.BaseURL+route, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("POST %s: %s", route, resp.Status),
		}
	}
	return io.ReadAll(resp.Body)
}
