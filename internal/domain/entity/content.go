package entity

import "strings"

// RawContent is the fetched and extracted body of a single post.
// Created once per post by the content extractor and never mutated.
type RawContent struct {
	// PostID references Post.ID.
	PostID string

	// URL is the post URL the content was extracted from.
	URL string

	// Title is the post title.
	Title string

	// HTML is the original page bytes as text, unchanged.
	HTML string

	// Text is the cleaned plain text of the article. Always non-empty:
	// when extraction yields nothing, the title is substituted so that
	// downstream stages never see empty content.
	Text string

	// Sections holds "heading\n\nparagraphs" blocks in document order.
	// May be empty.
	Sections []string
}

// NewRawContent creates a RawContent, enforcing the non-empty text invariant.
// When text is empty after trimming, the post title is used instead.
func NewRawContent(post *Post, html, text string, sections []string) *RawContent {
	text = strings.TrimSpace(text)
	if text == "" {
		text = post.Title
	}
	return &RawContent{
		PostID:   post.ID,
		URL:      post.URL,
		Title:    post.Title,
		HTML:     html,
		Text:     text,
		Sections: sections,
	}
}
