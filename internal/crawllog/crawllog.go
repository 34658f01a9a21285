// Package crawllog appends per-URL crawl outcomes to the run's log sinks.
package crawllog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fedrs/clipcrawl/internal/crawl"
)

// Sink filenames inside the per-day log directory.
const (
	successFile = "successes.csv"
	failFile    = "fails.txt"
	genericFile = "logs.csv"
)

const timestampLayout = "2006-01-02 15:04:05"

// Log writes append-only crawl records into a directory partitioned by the
// run's calendar date. All sinks share one mutex, so concurrent workers
// never interleave partial lines: each append is one complete record.
type Log struct {
	dir   string
	clock crawl.Clock

	mu sync.Mutex
}

// New creates a Log rooted at <resultsRoot>/<YYYY-MM-DD>. The directory is
// created lazily on the first append, and creation is idempotent.
func New(resultsRoot string, clock crawl.Clock) *Log {
	day := clock.Now().Format("2006-01-02")
	return &Log{
		dir:   filepath.Join(resultsRoot, day),
		clock: clock,
	}
}

// Dir returns the per-day log directory.
func (l *Log) Dir() string {
	return l.dir
}

// Success records a successfully crawled URL in successes.csv.
func (l *Log) Success(url string) error {
	return l.appendCSV(successFile, url, "200")
}

// Record appends a (url, status, timestamp) row to the general-purpose
// logs.csv sink, usable for any status a future caller cares to record.
func (l *Log) Record(url, status string) error {
	return l.appendCSV(genericFile, url, status)
}

// Failure appends the failed URL as a bare line in fails.txt.
func (l *Log) Failure(url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.openSink(failFile)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f, "%s\n", url); err != nil {
		f.Close() //nolint:errcheck,gosec // append already failed
		return fmt.Errorf("append failure record: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", failFile, err)
	}
	return nil
}

func (l *Log) appendCSV(name, url, status string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.openSink(name)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	record := []string{url, status, l.clock.Now().Format(timestampLayout)}
	if err := w.Write(record); err != nil {
		f.Close() //nolint:errcheck,gosec // append already failed
		return fmt.Errorf("append csv record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close() //nolint:errcheck,gosec // append already failed
		return fmt.Errorf("flush csv record: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}

// openSink ensures the per-day directory exists and opens the sink for a
// single appending write.
func (l *Log) openSink(name string) (*os.File, error) {
	if err := os.MkdirAll(l.dir, 0o750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	path := filepath.Join(l.dir, name)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- path is derived from configuration
	if err != nil {
		return nil, fmt.Errorf("open log sink %s: %w", name, err)
	}
	return f, nil
}
