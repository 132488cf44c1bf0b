// Package feed parses blog feed documents into posts.
// It uses the gofeed library for Atom and RSS 2.0 and falls back to scraping
// an HTML index page when the document is not a recognizable feed.
package feed

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"blogpulse/internal/domain/entity"
	"blogpulse/internal/observability/metrics"
)

// Parser turns a feed document into an ordered sequence of posts.
// Parsing is tolerant throughout: malformed entries are dropped silently,
// and a document that matches no known format yields an empty slice rather
// than an error.
type Parser struct {
	fp *gofeed.Parser
}

// NewParser creates a feed parser.
func NewParser() *Parser {
	return &Parser{fp: gofeed.NewParser()}
}

// Parse detects the document format and extracts posts from it.
// Atom and RSS 2.0 go through gofeed; anything else is treated as an HTML
// index page. Entry order is preserved.
func (p *Parser) Parse(ctx context.Context, document []byte, source string) ([]*entity.Post, error) {
	start := time.Now()

	feedType := gofeed.DetectFeedType(bytes.NewReader(document))

	var (
		posts  []*entity.Post
		format string
	)
	switch feedType {
	case gofeed.FeedTypeAtom:
		format = "atom"
		posts = p.parseFeed(document, source)
	case gofeed.FeedTypeRSS:
		format = "rss"
		posts = p.parseFeed(document, source)
	default:
		format = "html"
		posts = parseHTMLIndex(document, source)
	}

	metrics.RecordFeedParse(format, time.Since(start))
	slog.Debug("feed parsed",
		slog.String("format", format),
		slog.Int("posts", len(posts)))

	return posts, nil
}

// parseFeed extracts posts from an Atom or RSS document via gofeed.
// A document gofeed cannot parse yields an empty slice.
func (p *Parser) parseFeed(document []byte, source string) []*entity.Post {
	feed, err := p.fp.Parse(bytes.NewReader(document))
	if err != nil {
		slog.Warn("feed document unparseable, treating as empty",
			slog.Any("error", err))
		return nil
	}

	posts := make([]*entity.Post, 0, len(feed.Items))
	for _, it := range feed.Items {
		post := itemToPost(it, source)
		if post == nil {
			continue
		}
		posts = append(posts, post)
	}
	return posts
}

// itemToPost converts one feed item, or returns nil when the item lacks the
// minimum a post needs.
func itemToPost(it *gofeed.Item, source string) *entity.Post {
	link := strings.TrimSpace(it.Link)
	if !isAbsoluteURL(link) {
		return nil
	}

	post, err := entity.NewPost(link, it.Title, source)
	if err != nil {
		return nil
	}

	// updated/published degrade to nil rather than failing the entry.
	switch {
	case it.PublishedParsed != nil:
		post.PublishedAt = it.PublishedParsed
	case it.UpdatedParsed != nil:
		post.PublishedAt = it.UpdatedParsed
	}

	for _, c := range it.Categories {
		tag := strings.TrimSpace(c)
		if tag != "" {
			post.Tags = append(post.Tags, tag)
		}
	}

	// gofeed surfaces Atom <content> and RSS content:encoded as Content;
	// RSS <description> lands in Description.
	if it.Content != "" {
		post.InlineContent = it.Content
	} else if it.Description != "" {
		post.InlineContent = it.Description
	}

	return post
}

// htmlIndexSelectors are the candidate post containers on an index page, in
// fallback priority order. The first selector that yields posts wins.
var htmlIndexSelectors = []string{"article", "div.post", "div"}

// parseHTMLIndex scrapes an HTML index page for post links. Each candidate
// container contributes at most one post: its first anchor with an absolute
// href and non-empty text.
func parseHTMLIndex(document []byte, source string) []*entity.Post {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(document))
	if err != nil {
		slog.Warn("html index unparseable, treating as empty",
			slog.Any("error", err))
		return nil
	}

	for _, selector := range htmlIndexSelectors {
		var posts []*entity.Post
		seen := make(map[string]bool)

		doc.Find(selector).Each(func(_ int, container *goquery.Selection) {
			post := anchorToPost(container, source)
			if post == nil || seen[post.ID] {
				return
			}
			seen[post.ID] = true
			posts = append(posts, post)
		})

		if len(posts) > 0 {
			return posts
		}
	}
	return nil
}

// anchorToPost finds the first usable anchor inside a container. A
// <time datetime> element in the same container supplies the publication
// timestamp when present.
func anchorToPost(container *goquery.Selection, source string) *entity.Post {
	var post *entity.Post

	container.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		title := strings.TrimSpace(a.Text())
		if !isAbsoluteURL(href) || title == "" {
			return true
		}

		p, err := entity.NewPost(href, title, source)
		if err != nil {
			return true
		}
		post = p
		return false
	})

	if post != nil {
		post.PublishedAt = publishedFrom(container)
	}
	return post
}

// timeLayouts are the datetime attribute shapes seen on blog index pages.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// publishedFrom reads the container's first <time datetime> attribute.
// Missing or unparseable values degrade to nil.
func publishedFrom(container *goquery.Selection) *time.Time {
	attr, ok := container.Find("time[datetime]").First().Attr("datetime")
	if !ok {
		return nil
	}
	attr = strings.TrimSpace(attr)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, attr); err == nil {
			return &ts
		}
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
