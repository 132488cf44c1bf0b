package ragstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogpulse/internal/domain/entity"
)

func testSummary(t *testing.T, url string) *entity.Summary {
	t.Helper()
	post, err := entity.NewPost(url, "A Post", "tech_blog")
	require.NoError(t, err)
	summary, err := entity.NewSummary(post,
		"A perfectly adequate executive summary.",
		"A technical summary long enough to pass the fifty character validation threshold easily.",
		[]string{"takeaway"}, []string{"go"})
	require.NoError(t, err)
	return summary
}

func TestHTTPIngest_PayloadShape(t *testing.T) {
	var captured addDocRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/add_doc", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	backend, err := NewHTTP(HTTPConfig{BaseURL: srv.URL + "/", APIKey: "secret", CorpusID: "corpus-1"})
	require.NoError(t, err)

	summary := testSummary(t, "https://blog.example.org/a")
	require.NoError(t, backend.Ingest(context.Background(), summary))

	assert.Equal(t, "Bearer secret", auth)
	assert.Contains(t, captured.Document, "Title: A Post")
	assert.Equal(t, "corpus-1", captured.UUID)
	assert.Equal(t, summary.PostID, captured.DocMetadata["post_id"])
	assert.Equal(t, "corpus-1", captured.DocMetadata["uuid"])
	assert.EqualValues(t, 0, captured.DocIndex)

	// The index counter advances per ingested document.
	require.NoError(t, backend.Ingest(context.Background(), testSummary(t, "https://blog.example.org/b")))
	assert.EqualValues(t, 1, captured.DocIndex)
}

func TestHTTPIngest_NonOKRaises(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	backend, err := NewHTTP(HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	err = backend.Ingest(context.Background(), testSummary(t, "https://blog.example.org/a"))
	require.Error(t, err)
}

func TestHTTPRetrieve_MapsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query", r.URL.Path)

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "what is raft?", req.Question)
		assert.Equal(t, "corpus-1", req.UUID)
		assert.Equal(t, 8, req.TopK)

		resp := queryResponse{Results: []queryResult{
			{
				PageContent: "Raft is a consensus algorithm.",
				Score:       0.93,
				Metadata:    map[string]any{"post_id": "id1", "title": "Raft", "url": "https://blog.example.org/raft"},
			},
			{
				// Missing url: skipped, not an error.
				PageContent: "orphan chunk",
				Score:       0.5,
				Metadata:    map[string]any{"title": "Orphan"},
			},
			{
				// Out-of-range score: clamped.
				PageContent: "Paxos made live.",
				Score:       1.7,
				Metadata:    map[string]any{"post_id": "id2", "title": "Paxos", "url": "https://blog.example.org/paxos"},
			},
		}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	backend, err := NewHTTP(HTTPConfig{BaseURL: srv.URL, CorpusID: "corpus-1"})
	require.NoError(t, err)

	docs, err := backend.Retrieve(context.Background(), "what is raft?", 8)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "id1", docs[0].PostID)
	assert.Equal(t, "Raft is a consensus algorithm.", docs[0].Snippet)
	assert.InDelta(t, 0.93, docs[0].Score, 1e-9)
	assert.Equal(t, 1.0, docs[1].Score, "scores are clamped to [0,1]")
}

func TestHTTPRetrieve_AtMostK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var results []queryResult
		for i := 0; i < 10; i++ {
			results = append(results, queryResult{
				PageContent: "chunk",
				Score:       0.5,
				Metadata: map[string]any{
					"post_id": "id", "title": "T", "url": "https://blog.example.org/p",
				},
			})
		}
		require.NoError(t, json.NewEncoder(w).Encode(queryResponse{Results: results}))
	}))
	defer srv.Close()

	backend, err := NewHTTP(HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	docs, err := backend.Retrieve(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestNewHTTP_RequiresBaseURL(t *testing.T) {
	_, err := NewHTTP(HTTPConfig{})
	require.Error(t, err)
}

func TestFactory_UnknownKind(t *testing.T) {
	_, err := New(context.Background(), "carrier-pigeon", ManagedConfig{}, HTTPConfig{})
	require.Error(t, err)
}

func TestFactory_HTTPKind(t *testing.T) {
	backend, err := New(context.Background(), KindHTTP, ManagedConfig{}, HTTPConfig{BaseURL: "https://rag.example.org"})
	require.NoError(t, err)
	assert.NotNil(t, backend)
}
