package entity

import "strings"

// RetrievedDoc is a single retrieval result mapped from a backend response.
// Retrieval results are ephemeral; they are never persisted.
type RetrievedDoc struct {
	// PostID references Post.ID when the backend metadata carried one.
	PostID string

	// Title is the source post title.
	Title string

	// URL is the source post URL.
	URL string

	// Snippet is the relevant text chunk. Always non-empty.
	Snippet string

	// Score is the relevance score, clamped to [0, 1] on ingress.
	Score float64

	// Metadata carries the backend's free-form metadata for the chunk.
	Metadata map[string]any
}

// NewRetrievedDoc builds a RetrievedDoc from backend fields, clamping the
// score. Returns ErrInvalidInput when url, title or snippet is empty: callers
// skip such entries rather than failing the whole retrieval.
func NewRetrievedDoc(postID, title, url, snippet string, score float64, metadata map[string]any) (*RetrievedDoc, error) {
	title = strings.TrimSpace(title)
	url = strings.TrimSpace(url)
	snippet = strings.TrimSpace(snippet)
	if url == "" {
		return nil, &ValidationError{Field: "url", Message: "must not be empty"}
	}
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if snippet == "" {
		return nil, &ValidationError{Field: "snippet", Message: "must not be empty"}
	}
	return &RetrievedDoc{
		PostID:   postID,
		Title:    title,
		URL:      url,
		Snippet:  snippet,
		Score:    ClampScore(score),
		Metadata: metadata,
	}, nil
}

// ClampScore forces a relevance score into [0, 1]. Out-of-range backend values
// are clamped, never rejected.
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
