// Package collyfetcher implements crawl.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/fedrs/clipcrawl/internal/crawl"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher implements crawl.Fetcher using the Colly collector. Robots.txt is
// deliberately ignored: politeness here is the per-host dispatch delay only.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	// Clones share the visit store; the URL list may legitimately repeat.
	c.AllowURLRevisit = true
	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
	}
}

// Fetch executes a single HTTP GET. Non-200 responses, timeouts and
// transport failures all come back as *crawl.FetchError; there are no
// retries. The returned page carries the effective response URL so relative
// image links can be resolved later.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (crawl.Page, error) {
	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	var (
		page     crawl.Page
		fetchErr error
	)
	start := time.Now()

	collector.OnResponse(func(r *colly.Response) {
		if r.StatusCode != 200 {
			fetchErr = &crawl.FetchError{
				Kind:       crawl.FetchHTTPStatus,
				StatusCode: r.StatusCode,
			}
			return
		}
		page = crawl.Page{
			URL:        r.Request.URL,
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = classify(r, err)
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return crawl.Page{}, &crawl.FetchError{Kind: crawl.FetchNetwork, Err: ctx.Err()}
	case err := <-done:
		if fetchErr != nil {
			return crawl.Page{}, fetchErr
		}
		if err != nil {
			return crawl.Page{}, classify(nil, err)
		}
	}
	if page.URL == nil {
		return crawl.Page{}, &crawl.FetchError{
			Kind: crawl.FetchNetwork,
			Err:  fmt.Errorf("no response for %s", rawURL),
		}
	}
	return page, nil
}

// classify maps a colly failure onto the fetch error taxonomy.
func classify(r *colly.Response, err error) *crawl.FetchError {
	if r != nil && r.StatusCode != 0 && r.StatusCode != 200 {
		return &crawl.FetchError{Kind: crawl.FetchHTTPStatus, StatusCode: r.StatusCode, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &crawl.FetchError{Kind: crawl.FetchTimeout, Err: err}
	}
	return &crawl.FetchError{Kind: crawl.FetchNetwork, Err: err}
}
