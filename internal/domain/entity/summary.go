package entity

import (
	"strings"
	"time"
)

const (
	// minExecutiveSummaryLen is the minimum accepted executive summary length.
	minExecutiveSummaryLen = 10

	// minTechnicalSummaryLen is the minimum accepted technical summary length.
	minTechnicalSummaryLen = 50
)

// Summary is the structured LLM output for one post. It is the unit that gets
// rendered into an indexable document and ingested into the retrieval corpus.
// Created once per RawContent and never mutated.
type Summary struct {
	// PostID references Post.ID.
	PostID string

	// Title is the post title.
	Title string

	// URL is the post URL.
	URL string

	// PublishedAt is the publication timestamp, if known.
	PublishedAt *time.Time

	// ExecutiveSummary is a short, high-level summary (at least 10 chars).
	ExecutiveSummary string

	// TechnicalSummary is the detailed summary (at least 50 chars).
	TechnicalSummary string

	// Bullets holds the key takeaways in order.
	Bullets []string

	// Keywords holds lowercase, deduplicated keywords in first-seen order.
	Keywords []string

	// Source identifies the feed the post came from.
	Source string
}

// NewSummary creates a Summary, validating the length invariants and
// normalizing keywords (trim, lowercase, drop empties, collapse duplicates
// while preserving first-seen order).
func NewSummary(post *Post, executive, technical string, bullets, keywords []string) (*Summary, error) {
	executive = strings.TrimSpace(executive)
	technical = strings.TrimSpace(technical)
	if len(executive) < minExecutiveSummaryLen {
		return nil, &ValidationError{Field: "executive_summary", Message: "must be at least 10 characters"}
	}
	if len(technical) < minTechnicalSummaryLen {
		return nil, &ValidationError{Field: "technical_summary", Message: "must be at least 50 characters"}
	}

	cleanBullets := make([]string, 0, len(bullets))
	for _, b := range bullets {
		if b = strings.TrimSpace(b); b != "" {
			cleanBullets = append(cleanBullets, b)
		}
	}

	return &Summary{
		PostID:           post.ID,
		Title:            post.Title,
		URL:              post.URL,
		PublishedAt:      post.PublishedAt,
		ExecutiveSummary: executive,
		TechnicalSummary: technical,
		Bullets:          cleanBullets,
		Keywords:         NormalizeKeywords(keywords),
		Source:           post.Source,
	}, nil
}

// NormalizeKeywords lowercases and trims keywords, drops empties, and removes
// duplicates while preserving first-seen order.
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// ToIndexableDocument renders the summary as the plain-text document written
// into the retrieval corpus. The rendering is deterministic: title, URL,
// optional publication date, both summaries, bullets, then keywords. Keywords
// that look like feed categories (contain "/" or more than two words) are
// listed separately from plain keywords.
func (s *Summary) ToIndexableDocument() string {
	parts := []string{
		"Title: " + s.Title,
		"URL: " + s.URL,
	}
	if s.PublishedAt != nil {
		parts = append(parts, "Published: "+s.PublishedAt.Format(time.RFC3339))
	}
	parts = append(parts,
		"",
		"Executive Summary:",
		s.ExecutiveSummary,
		"",
		"Technical Summary:",
		s.TechnicalSummary,
	)

	if len(s.Bullets) > 0 {
		parts = append(parts, "", "Key Points:")
		for _, b := range s.Bullets {
			parts = append(parts, "- "+b)
		}
	}

	if len(s.Keywords) > 0 {
		var categories, plain []string
		for _, kw := range s.Keywords {
			if strings.Contains(kw, "/") || len(strings.Fields(kw)) > 2 {
				categories = append(categories, kw)
			} else {
				plain = append(plain, kw)
			}
		}
		if len(categories) > 0 {
			parts = append(parts, "", "Categories: "+strings.Join(categories, ", "))
		}
		if len(plain) > 0 {
			parts = append(parts, "", "Keywords: "+strings.Join(plain, ", "))
		}
	}

	return strings.Join(parts, "\n")
}

// ToMetadata returns the fixed-key metadata mapping stored alongside the
// indexable document. Values are primitives (or a string slice for keywords)
// so the mapping serializes cleanly as JSON.
func (s *Summary) ToMetadata() map[string]any {
	var publishedAt any
	if s.PublishedAt != nil {
		publishedAt = s.PublishedAt.Format(time.RFC3339)
	}
	return map[string]any{
		"post_id":      s.PostID,
		"title":        s.Title,
		"url":          s.URL,
		"published_at": publishedAt,
		"keywords":     s.Keywords,
		"source":       s.Source,
	}
}
