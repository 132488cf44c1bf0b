package extractor

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"blogpulse/internal/domain/entity"
)

// Readability extracts article text with the readability algorithm, which
// handles boilerplate-heavy pages better than the heuristic DOM walk.
// Sections still come from the heuristic heading scan, since readability
// flattens document structure.
type Readability struct {
	fallback *Heuristic
}

// NewReadability creates the readability-backed extractor.
func NewReadability() *Readability {
	return &Readability{fallback: NewHeuristic()}
}

// Extract produces the post's RawContent. When readability cannot find an
// article in the page, extraction degrades to the heuristic walk rather
// than failing the post.
func (r *Readability) Extract(ctx context.Context, post *entity.Post, html string) (*entity.RawContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pageURL, err := url.Parse(post.URL)
	if err != nil {
		pageURL = nil
	}

	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err != nil || strings.TrimSpace(article.TextContent) == "" {
		slog.Debug("readability found no article, using heuristic walk",
			slog.String("post_id", post.ID),
			slog.String("url", post.URL))
		return r.fallback.Extract(ctx, post, html)
	}

	text := collapseWhitespace(article.TextContent)

	var sections []string
	if doc, derr := goquery.NewDocumentFromReader(bytes.NewReader([]byte(html))); derr == nil {
		root := articleRoot(doc)
		root.Find("script, style, noscript").Remove()
		sections = sectionsFrom(root, text)
	} else if text != "" {
		sections = []string{text}
	}

	return entity.NewRawContent(post, html, text, sections), nil
}
