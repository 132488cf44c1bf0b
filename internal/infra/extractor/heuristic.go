// Package extractor reduces raw article HTML to clean text and sections.
// Two implementations exist: a heuristic DOM walk and one backed by the
// readability algorithm. Both keep the original HTML on the output untouched.
package extractor

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"blogpulse/internal/domain/entity"
)

// articleClassPattern matches div class attributes that typically wrap the
// article body on blog pages.
var articleClassPattern = regexp.MustCompile(`(?i)\b(post|article|blog-article|blog-post|content|main-content)\b`)

const headingSelector = "h1, h2, h3, h4, h5, h6"

// Heuristic extracts article text by walking the DOM: pick a plausible
// article root, strip non-content subtrees, and collapse the visible text.
type Heuristic struct{}

// NewHeuristic creates the heuristic extractor.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Extract produces the post's RawContent from its page HTML. The input HTML
// is preserved verbatim on the output. Extraction never fails on content
// grounds: a page with no usable text degrades to the post title.
func (h *Heuristic) Extract(ctx context.Context, post *entity.Post, html string) (*entity.RawContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(html)))
	if err != nil {
		// Unparseable markup degrades to the title via NewRawContent.
		return entity.NewRawContent(post, html, "", nil), nil
	}

	root := articleRoot(doc)
	root.Find("script, style, noscript").Remove()

	text := collapseWhitespace(root.Text())
	sections := sectionsFrom(root, text)

	return entity.NewRawContent(post, html, text, sections), nil
}

// articleRoot picks the most plausible article container by fallback
// cascade: article, a div with an article-ish class, main, body.
func articleRoot(doc *goquery.Document) *goquery.Selection {
	if sel := doc.Find("article").First(); sel.Length() > 0 {
		return sel
	}

	var classDiv *goquery.Selection
	doc.Find("div[class]").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		class, _ := div.Attr("class")
		if articleClassPattern.MatchString(class) {
			classDiv = div
			return false
		}
		return true
	})
	if classDiv != nil {
		return classDiv
	}

	if sel := doc.Find("main").First(); sel.Length() > 0 {
		return sel
	}
	return doc.Find("body").First()
}

// sectionsFrom builds "heading\n\nparagraphs" blocks from the root. Each
// heading claims the sibling paragraphs that follow it, up to the next
// heading. A root without headings but with text yields a single section
// holding the whole text.
func sectionsFrom(root *goquery.Selection, text string) []string {
	var sections []string

	root.Find(headingSelector).Each(func(_ int, heading *goquery.Selection) {
		title := collapseWhitespace(heading.Text())
		if title == "" {
			return
		}

		var paragraphs []string
		heading.NextUntil(headingSelector).Filter("p").Each(func(_ int, p *goquery.Selection) {
			if t := collapseWhitespace(p.Text()); t != "" {
				paragraphs = append(paragraphs, t)
			}
		})

		sections = append(sections, title+"\n\n"+strings.Join(paragraphs, "\n"))
	})

	if len(sections) == 0 && text != "" {
		sections = []string{text}
	}
	return sections
}

// collapseWhitespace reduces any whitespace run, newlines included, to a
// single space and trims the ends.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
