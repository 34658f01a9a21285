// Package imagefetcher streams remote images over plain net/http.
package imagefetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fedrs/clipcrawl/internal/crawl"
)

// Downloader implements crawl.Downloader with a pooled HTTP client.
// Images are streamed rather than buffered so large files never sit fully
// in memory.
type Downloader struct {
	client *http.Client
}

// New builds a Downloader. A zero timeout falls back to 10 seconds.
func New(timeout time.Duration) *Downloader {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Downloader{
		client: &http.Client{Timeout: timeout},
	}
}

// Open issues a GET and hands the response body back to the caller, who is
// responsible for closing it. Any non-200 status is a fetch failure.
func (d *Downloader) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &crawl.FetchError{Kind: crawl.FetchNetwork, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		if cerr := resp.Body.Close(); cerr != nil {
			return nil, fmt.Errorf("close image response: %w", cerr)
		}
		return nil, &crawl.FetchError{Kind: crawl.FetchHTTPStatus, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}
