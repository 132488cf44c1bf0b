// Package ragstore implements the retrieval corpus backends: a managed
// corpus (object-store ingestion plus a managed query API) and a generic
// HTTP RAG service. Both satisfy repository.RetrievalBackend and must be
// behaviorally interchangeable from the caller's view.
package ragstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"blogpulse/internal/domain/entity"
	"blogpulse/internal/observability/metrics"
	"blogpulse/internal/resilience/circuitbreaker"
	"blogpulse/internal/resilience/retry"
)

// ManagedConfig configures the managed-corpus backend.
type ManagedConfig struct {
	// Bucket is the object-store bucket name, without any gs:// prefix.
	Bucket string

	// Prefix is the object key prefix for ingested documents. A trailing
	// slash is added when missing. Default "docs/".
	Prefix string

	// CorpusID identifies the managed retrieval corpus.
	CorpusID string

	// Project and Location identify the corpus' cloud project and region.
	Project  string
	Location string

	// QueryEndpoint overrides the derived query API URL. Mainly for tests.
	QueryEndpoint string

	// Timeout is the per-call deadline for ingest and query. Default 30s.
	Timeout time.Duration
}

func (c ManagedConfig) withDefaults() ManagedConfig {
	c.Bucket = strings.TrimSuffix(strings.TrimPrefix(c.Bucket, "gs://"), "/")
	if c.Prefix == "" {
		c.Prefix = "docs/"
	}
	if !strings.HasSuffix(c.Prefix, "/") {
		c.Prefix += "/"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.QueryEndpoint == "" {
		c.QueryEndpoint = fmt.Sprintf(
			"https://%s-aiplatform.googleapis.com/v1beta1/projects/%s/locations/%s:retrieveContexts",
			c.Location, c.Project, c.Location)
	}
	return c
}

// Managed is the managed-corpus backend. Ingestion writes two objects per
// summary to the bucket; an external indexer picks them up. Retrieval calls
// the managed query API.
//
// Ingest is idempotent by post id: object writes overwrite in place, so
// re-ingesting a summary never yields a duplicate retrievable document.
type Managed struct {
	bucket      *storage.BucketHandle
	cfg         ManagedConfig
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
	breaker     *circuitbreaker.CircuitBreaker
	retryCfg    retry.Config
}

// NewManaged creates the managed backend using ambient cloud credentials.
func NewManaged(ctx context.Context, cfg ManagedConfig) (*Managed, error) {
	cfg = cfg.withDefaults()
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("managed backend: bucket is required")
	}
	if cfg.CorpusID == "" {
		return nil, fmt.Errorf("managed backend: corpus id is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	ts, err := google.DefaultTokenSource(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return nil, fmt.Errorf("resolve credentials: %w", err)
	}

	return newManagedWith(client.Bucket(cfg.Bucket), ts, cfg), nil
}

// newManagedWith wires explicit collaborators. Tests use it to point the
// query path at a local server with a static token.
func newManagedWith(bucket *storage.BucketHandle, ts oauth2.TokenSource, cfg ManagedConfig) *Managed {
	return &Managed{
		bucket:      bucket,
		cfg:         cfg.withDefaults(),
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		tokenSource: ts,
		breaker:     circuitbreaker.New(circuitbreaker.BackendConfig()),
		retryCfg:    retry.BackendConfig(),
	}
}

// Ingest writes the summary's indexable document and its metadata object.
// The document write is the one that makes the post retrievable; a failed
// metadata write fails the ingest so the two never drift.
func (m *Managed) Ingest(ctx context.Context, summary *entity.Summary) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	docKey := m.cfg.Prefix + summary.PostID + ".txt"
	if err := m.writeObject(ctx, docKey, "text/plain", []byte(summary.ToIndexableDocument())); err != nil {
		return fmt.Errorf("write document %s: %w", docKey, err)
	}

	metadata, err := json.MarshalIndent(summary.ToMetadata(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata for %s: %w", summary.PostID, err)
	}
	metaKey := m.cfg.Prefix + summary.PostID + ".metadata.json"
	if err := m.writeObject(ctx, metaKey, "application/json", metadata); err != nil {
		return fmt.Errorf("write metadata %s: %w", metaKey, err)
	}

	slog.Debug("summary ingested to managed corpus",
		slog.String("post_id", summary.PostID),
		slog.String("object", docKey))
	return nil
}

func (m *Managed) writeObject(ctx context.Context, key, contentType string, data []byte) error {
	w := m.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// managedQuery is the request body for the managed query API.
type managedQuery struct {
	VertexRagStore struct {
		RagResources struct {
			RagCorpus string `json:"rag_corpus"`
		} `json:"rag_resources"`
	} `json:"vertex_rag_store"`
	Query struct {
		Text           string `json:"text"`
		SimilarityTopK int    `json:"similarity_top_k"`
	} `json:"query"`
}

// managedContext is one entry of the query response. The API reports
// distance, where lower is better.
type managedContext struct {
	Text      string         `json:"text"`
	SourceURI string         `json:"sourceUri"`
	Distance  float64        `json:"distance"`
	Metadata  map[string]any `json:"metadata"`
}

type managedResponse struct {
	Contexts json.RawMessage `json:"contexts"`
}

// Retrieve queries the managed corpus and maps the response. Malformed
// entries are skipped; at most k docs are returned.
func (m *Managed) Retrieve(ctx context.Context, query string, k int) ([]*entity.RetrievedDoc, error) {
	start := time.Now()
	docs, err := m.retrieve(ctx, query, k)
	metrics.RecordRetrieval("managed", time.Since(start), len(docs))
	return docs, err
}

func (m *Managed) retrieve(ctx context.Context, query string, k int) ([]*entity.RetrievedDoc, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	var payload managedQuery
	payload.VertexRagStore.RagResources.RagCorpus = fmt.Sprintf(
		"projects/%s/locations/%s/ragCorpora/%s", m.cfg.Project, m.cfg.Location, m.cfg.CorpusID)
	payload.Query.Text = query
	payload.Query.SimilarityTopK = k

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var respBody []byte
	retryErr := retry.WithBackoff(ctx, m.retryCfg, func() error {
		result, err := m.breaker.Execute(func() (interface{}, error) {
			return m.doQuery(ctx, body)
		})
		if err != nil {
			return err
		}
		respBody = result.([]byte)
		return nil
	})
	if retryErr != nil {
		return nil, fmt.Errorf("managed corpus query failed: %w", retryErr)
	}

	var parsed managedResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	return mapManagedContexts(decodeContexts(parsed.Contexts), k), nil
}

func (m *Managed) doQuery(ctx context.Context, body []byte) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.QueryEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := m.tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("obtain access token: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("query API: %s", resp.Status),
		}
	}
	return io.ReadAll(resp.Body)
}

// decodeContexts tolerates both response shapes the query API produces:
// contexts as a bare array, or nested under a second "contexts" key.
func decodeContexts(raw json.RawMessage) []managedContext {
	if len(raw) == 0 {
		return nil
	}

	var direct []managedContext
	if err := json.Unmarshal(raw, &direct); err == nil {
		return direct
	}

	var nested struct {
		Contexts []managedContext `json:"contexts"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return nested.Contexts
	}

	slog.Warn("unexpected contexts shape in query response")
	return nil
}

var (
	docTitlePattern = regexp.MustCompile(`Title:\s*([^\n]+)`)
	docURLPattern   = regexp.MustCompile(`URL:\s*(https?://\S+)`)
)

// maxSnippetLen bounds the snippet carried into answers.
const maxSnippetLen = 500

// mapManagedContexts converts query contexts to retrieved docs. Title and
// URL come from chunk metadata when present, else are recovered from the
// document rendering itself ("Title: ...", "URL: ..."); the post id falls
// back to the source object's file name. Entries that still lack the
// required fields are skipped.
func mapManagedContexts(contexts []managedContext, k int) []*entity.RetrievedDoc {
	docs := make([]*entity.RetrievedDoc, 0, len(contexts))
	for _, c := range contexts {
		if len(docs) >= k {
			break
		}

		title, _ := c.Metadata["title"].(string)
		url, _ := c.Metadata["url"].(string)
		postID, _ := c.Metadata["post_id"].(string)

		if url == "" || strings.HasPrefix(url, "gs://") {
			if match := docURLPattern.FindStringSubmatch(c.Text); match != nil {
				url = match[1]
			}
		}
		if title == "" {
			if match := docTitlePattern.FindStringSubmatch(c.Text); match != nil {
				title = strings.TrimSpace(match[1])
			}
		}
		if postID == "" && c.SourceURI != "" {
			postID = strings.TrimSuffix(path.Base(c.SourceURI), ".txt")
		}

		// Rune-safe: the cutoff must not split a UTF-8 sequence.
		snippet := c.Text
		if runes := []rune(snippet); len(runes) > maxSnippetLen {
			snippet = string(runes[:maxSnippetLen])
		}

		// Distance is lower-is-better; flip it into a score.
		score := entity.ClampScore(1.0 - c.Distance)

		doc, err := entity.NewRetrievedDoc(postID, title, url, snippet, score, c.Metadata)
		if err != nil {
			slog.Debug("skipping malformed retrieval context", slog.Any("error", err))
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}
