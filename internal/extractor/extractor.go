// Package extractor derives a title/body/image triple from fetched HTML.
package extractor

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fedrs/clipcrawl/internal/crawl"
)

var (
	scriptBlocks = regexp.MustCompile(`(?s)<script.*?</script>`)
	markupTags   = regexp.MustCompile(`<.*?>`)
)

// Extractor implements crawl.Extractor on top of goquery.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses the fetched page and resolves the content triple.
//
// The title is the text of the first h1, or the "No Title" sentinel. The
// body comes from the first non-empty stage of the chain: the configured
// selector rule (all matches, space-joined), the description meta tag, the
// first paragraph, the "No Body" sentinel. The body is treated as untrusted
// markup: script blocks and residual tags are stripped before it becomes
// plain text. The image is the og:image meta content resolved against the
// page's effective URL.
//
// Extract never fails; unparseable input degrades to sentinel values and
// the caller decides success via Content.Usable.
func (e *Extractor) Extract(page crawl.Page, selector string) crawl.Content {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return crawl.Content{Title: crawl.NoTitle, Body: crawl.NoBody}
	}

	title := crawl.NoTitle
	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		title = h1.Text()
	}

	body := ""
	if selector != "" {
		if matches := doc.Find(selector); matches.Length() > 0 {
			parts := make([]string, 0, matches.Length())
			matches.Each(func(_ int, s *goquery.Selection) {
				parts = append(parts, s.Text())
			})
			body = strings.Join(parts, " ")
		}
	}
	if body == "" {
		body = defaultBody(doc)
	}
	body = scriptBlocks.ReplaceAllString(body, "")
	body = markupTags.ReplaceAllString(body, "")
	body = strings.TrimSpace(body)

	return crawl.Content{
		Title:    title,
		Body:     body,
		ImageURL: imageURL(doc, page.URL),
	}
}

// defaultBody is the generic fallback used when no selector rule is
// configured or the rule matched nothing.
func defaultBody(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		if content != "" {
			return content
		}
	}
	if p := doc.Find("p").First(); p.Length() > 0 {
		return p.Text()
	}
	return crawl.NoBody
}

func imageURL(doc *goquery.Document, base *url.URL) string {
	content, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	if !ok || content == "" {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(content))
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
