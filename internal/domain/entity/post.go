// Package entity defines the core domain entities and validation logic for the
// application. It contains the fundamental business objects such as Post,
// RawContent and Summary, along with their validation rules and domain-specific
// errors.
package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// DefaultSource is the source label applied to posts when the feed
// configuration does not provide one.
const DefaultSource = "tech_blog"

// Post represents a single entry discovered in a blog feed.
// Posts are created by the feed parser and never mutated afterwards.
type Post struct {
	// ID is a stable identifier derived from the URL. Equal URLs always
	// produce equal IDs, across runs and processes.
	ID string

	// URL is the absolute URL of the post.
	URL string

	// Title is the post title, trimmed and non-empty.
	Title string

	// PublishedAt is the publication timestamp if the feed carried one.
	// Nil when absent or unparseable.
	PublishedAt *time.Time

	// Tags holds the feed categories in document order. Entries are
	// trimmed; case is preserved.
	Tags []string

	// Source identifies the feed the post came from.
	Source string

	// InlineContent is the full HTML body harvested from the feed entry,
	// when the feed carried one. A non-empty value lets the pipeline skip
	// the per-post content fetch.
	InlineContent string
}

// PostID derives the stable post identifier for a URL.
// It is a pure function: the hex-encoded SHA-256 of the URL bytes.
func PostID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// NewPost creates a Post for the given URL and title.
// The URL must already be absolute; the title is trimmed.
// Returns ErrInvalidInput when either is empty after trimming.
func NewPost(url, title, source string) (*Post, error) {
	url = strings.TrimSpace(url)
	title = strings.TrimSpace(title)
	if url == "" {
		return nil, &ValidationError{Field: "url", Message: "must not be empty"}
	}
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if source == "" {
		source = DefaultSource
	}
	return &Post{
		ID:     PostID(url),
		URL:    url,
		Title:  title,
		Source: source,
	}, nil
}
