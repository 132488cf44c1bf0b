package ragstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestManagedConfig_Defaults(t *testing.T) {
	cfg := ManagedConfig{
		Bucket:   "gs://my-bucket/",
		CorpusID: "c1",
		Project:  "proj",
		Location: "us-central1",
	}.withDefaults()

	assert.Equal(t, "my-bucket", cfg.Bucket, "gs:// prefix and trailing slash stripped")
	assert.Equal(t, "docs/", cfg.Prefix)
	assert.Contains(t, cfg.QueryEndpoint, "us-central1-aiplatform.googleapis.com")
	assert.Contains(t, cfg.QueryEndpoint, "projects/proj")
}

func TestManagedConfig_PrefixSlash(t *testing.T) {
	cfg := ManagedConfig{Bucket: "b", Prefix: "summaries"}.withDefaults()
	assert.Equal(t, "summaries/", cfg.Prefix)
}

func TestMapManagedContexts_MetadataFields(t *testing.T) {
	contexts := []managedContext{{
		Text:     "Title: Raft Explained\nURL: https://blog.example.org/raft\n\nExecutive Summary:\nRaft.",
		Distance: 0.2,
		Metadata: map[string]any{
			"post_id": "id1",
			"title":   "Raft Explained",
			"url":     "https://blog.example.org/raft",
		},
	}}

	docs := mapManagedContexts(contexts, 8)
	require.Len(t, docs, 1)
	assert.Equal(t, "id1", docs[0].PostID)
	assert.Equal(t, "Raft Explained", docs[0].Title)
	assert.InDelta(t, 0.8, docs[0].Score, 1e-9, "distance flips into a score")
}

func TestMapManagedContexts_RecoversFromDocumentText(t *testing.T) {
	contexts := []managedContext{{
		Text:      "Title: Hidden Gem\nURL: https://blog.example.org/gem\n\nbody",
		SourceURI: "gs://bucket/docs/abc123.txt",
		Distance:  0.5,
	}}

	docs := mapManagedContexts(contexts, 8)
	require.Len(t, docs, 1)
	assert.Equal(t, "Hidden Gem", docs[0].Title)
	assert.Equal(t, "https://blog.example.org/gem", docs[0].URL)
	assert.Equal(t, "abc123", docs[0].PostID, "post id recovered from the object name")
}

func TestMapManagedContexts_SkipsMalformed(t *testing.T) {
	contexts := []managedContext{
		{Text: "no title or url here", Distance: 0.1},
		{
			Text:     "Title: Good\nURL: https://blog.example.org/good\n\nbody",
			Distance: 0.1,
		},
	}

	docs := mapManagedContexts(contexts, 8)
	require.Len(t, docs, 1)
	assert.Equal(t, "Good", docs[0].Title)
}

func TestMapManagedContexts_ClampAndLimit(t *testing.T) {
	var contexts []managedContext
	for i := 0; i < 5; i++ {
		contexts = append(contexts, managedContext{
			Text:     "Title: T\nURL: https://blog.example.org/t\n\nbody",
			Distance: -0.5, // score would be 1.5 without clamping
		})
	}

	docs := mapManagedContexts(contexts, 3)
	require.Len(t, docs, 3)
	assert.Equal(t, 1.0, docs[0].Score)
}

func TestMapManagedContexts_TruncatesSnippet(t *testing.T) {
	contexts := []managedContext{{
		Text:     "Title: T\nURL: https://blog.example.org/t\n\n" + strings.Repeat("x", 1000),
		Distance: 0.1,
	}}

	docs := mapManagedContexts(contexts, 8)
	require.Len(t, docs, 1)
	assert.Len(t, docs[0].Snippet, maxSnippetLen)
}

func TestMapManagedContexts_SnippetTruncationIsRuneSafe(t *testing.T) {
	contexts := []managedContext{{
		Text:     "Title: T\nURL: https://blog.example.org/t\n\n" + strings.Repeat("日", 600),
		Distance: 0.1,
	}}

	docs := mapManagedContexts(contexts, 8)
	require.Len(t, docs, 1)
	assert.True(t, utf8.ValidString(docs[0].Snippet), "truncation must not split a UTF-8 sequence")
	assert.Len(t, []rune(docs[0].Snippet), maxSnippetLen)
}

func TestDecodeContexts_BothShapes(t *testing.T) {
	flat := json.RawMessage(`[{"text":"a","distance":0.1}]`)
	assert.Len(t, decodeContexts(flat), 1)

	nested := json.RawMessage(`{"contexts":[{"text":"a","distance":0.1},{"text":"b","distance":0.2}]}`)
	assert.Len(t, decodeContexts(nested), 2)

	assert.Empty(t, decodeContexts(nil))
	assert.Empty(t, decodeContexts(json.RawMessage(`"garbage"`)))
}

func TestManagedRetrieve_QueryAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var payload managedQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "what is raft?", payload.Query.Text)
		assert.Equal(t, 4, payload.Query.SimilarityTopK)
		assert.Contains(t, payload.VertexRagStore.RagResources.RagCorpus, "ragCorpora/c1")

		_, _ = w.Write([]byte(`{"contexts":{"contexts":[
			{"text":"Title: Raft\nURL: https://blog.example.org/raft\n\nbody","sourceUri":"gs://b/docs/id1.txt","distance":0.3}
		]}}`))
	}))
	defer srv.Close()

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	backend := newManagedWith(nil, ts, ManagedConfig{
		Bucket:        "b",
		CorpusID:      "c1",
		Project:       "proj",
		Location:      "us-central1",
		QueryEndpoint: srv.URL,
	})

	docs, err := backend.Retrieve(context.Background(), "what is raft?", 4)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "id1", docs[0].PostID)
	assert.InDelta(t, 0.7, docs[0].Score, 1e-9)
}

func TestManagedRetrieve_NonOKRaises(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"})
	backend := newManagedWith(nil, ts, ManagedConfig{Bucket: "b", CorpusID: "c1", QueryEndpoint: srv.URL})

	_, err := backend.Retrieve(context.Background(), "q", 4)
	require.Error(t, err)
}
