// Package crawl defines core types shared across subsystems.
package crawl

import (
	"net/url"
	"time"
)

// Sentinel values returned by the extractor when a page carries no
// extractable heading or body text. They are distinct from the empty string:
// a sentinel title still produces an artifact, while an empty or sentinel
// body fails the page.
const (
	NoTitle = "No Title"
	NoBody  = "No Body"
)

// Task captures everything a worker needs to crawl one URL. It is built once
// by the dispatcher from the resolved per-host configuration and never
// mutated afterwards.
type Task struct {
	URL          string
	Hostname     string
	Delay        time.Duration
	BodySelector string
	TitleSearch  string
	TitleReplace string
}

// Page is the raw result of a successful fetch. URL is the effective
// response URL after any redirects, used to resolve relative image links.
type Page struct {
	URL        *url.URL
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Content is the extracted triple produced from a fetched page. ImageURL is
// already resolved to an absolute URL, or empty when the page carries no
// og:image element.
type Content struct {
	Title    string
	Body     string
	ImageURL string
}

// Usable reports whether the extraction produced enough content to persist.
// A page with no body text is a failed crawl even when a heading was found;
// a sentinel title alone does not fail the page.
func (c Content) Usable() bool {
	return c.Body != "" && c.Body != NoBody
}

// ArtifactSet names the files written for one crawled page. Image fields are
// empty when the page had no og:image or the download was skipped.
type ArtifactSet struct {
	Name         string
	TextPath     string
	URLPath      string
	ImagePath    string
	ImageURLPath string
}
