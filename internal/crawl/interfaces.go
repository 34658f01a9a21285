package crawl

import (
	"context"
	"io"
	"time"
)

// Fetcher fetches a URL and returns the raw page plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// Downloader opens a streaming reader over a remote resource, used for
// image downloads. The caller owns closing the reader.
type Downloader interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// Extractor turns a fetched page into a Content triple. It never fails: a
// page with nothing extractable yields sentinel values instead of an error.
type Extractor interface {
	Extract(page Page, selector string) Content
}

// ArtifactStore persists the extracted content for one task.
type ArtifactStore interface {
	Save(ctx context.Context, content Content, task Task) (ArtifactSet, error)
}

// Log records per-URL crawl outcomes into the run's log sinks.
type Log interface {
	Success(url string) error
	Failure(url string) error
	Record(url, status string) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
