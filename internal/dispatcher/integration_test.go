package dispatcher_test

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fedrs/clipcrawl/internal/crawllog"
	"github.com/fedrs/clipcrawl/internal/dispatcher"
	"github.com/fedrs/clipcrawl/internal/extractor"
	collyfetcher "github.com/fedrs/clipcrawl/internal/fetcher/colly"
	imagefetcher "github.com/fedrs/clipcrawl/internal/fetcher/image"
	"github.com/fedrs/clipcrawl/internal/storage/local"
	"github.com/fedrs/clipcrawl/internal/worker"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

// buildPipeline wires real components against temp directories.
func buildPipeline(t *testing.T, timeout time.Duration) (*dispatcher.Dispatcher, string, string) {
	t.Helper()

	dataDir := t.TempDir()
	resultsDir := t.TempDir()
	logger := zap.NewNop()

	store, err := local.New(local.Config{DataDir: dataDir}, imagefetcher.New(timeout), logger)
	require.NoError(t, err)

	clk := fixedClock{now: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)}
	runLog := crawllog.New(resultsDir, clk)

	fetcher := collyfetcher.New(collyfetcher.Config{Timeout: timeout})
	w := worker.New(fetcher, extractor.New(), store, runLog, logger)
	d := dispatcher.New(&fakeRules{}, w, dispatcher.Settings{MaxConcurrency: 2}, logger)

	return d, dataDir, runLog.Dir()
}

func TestCrawlEndToEnd(t *testing.T) {
	imageBytes := []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3}
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><head>
<meta property="og:image" content="/img.png">
</head><body><h1>TitleA</h1><p>Body A</p></body></html>`))
	})
	mux.HandleFunc("/img.png", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(imageBytes)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	d, dataDir, logDir := buildPipeline(t, 2*time.Second)
	pageURL := srv.URL + "/a"
	d.Run(context.Background(), []string{pageURL})

	text, err := os.ReadFile(filepath.Join(dataDir, "TitleA.txt"))
	require.NoError(t, err)
	assert.Equal(t, "TitleA\n---\nBody A\n", string(text))

	img, err := os.ReadFile(filepath.Join(dataDir, "TitleA.png"))
	require.NoError(t, err)
	assert.Equal(t, imageBytes, img)

	imageSidecar, err := os.ReadFile(filepath.Join(dataDir, "TitleA-image.txt"))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/img.png", string(imageSidecar))

	urlSidecar, err := os.ReadFile(filepath.Join(dataDir, "TitleA-url.txt"))
	require.NoError(t, err)
	assert.Equal(t, pageURL, string(urlSidecar))

	f, err := os.Open(filepath.Join(logDir, "successes.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, pageURL, rows[0][0])
	assert.Equal(t, "200", rows[0][1])
}

func TestCrawlTimeoutEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte("<html><h1>late</h1></html>"))
	}))
	defer srv.Close()

	d, dataDir, logDir := buildPipeline(t, 100*time.Millisecond)
	pageURL := srv.URL + "/slow"
	d.Run(context.Background(), []string{pageURL})

	entries, err := os.ReadDir(dataDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no artifacts on timeout")

	fails, err := os.ReadFile(filepath.Join(logDir, "fails.txt"))
	require.NoError(t, err)
	assert.Equal(t, pageURL+"\n", string(fails))

	_, err = os.Stat(filepath.Join(logDir, "successes.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestCrawlNoUsableBodyEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>Heading Only</h1><div>nothing else</div></body></html>`))
	}))
	defer srv.Close()

	d, dataDir, logDir := buildPipeline(t, 2*time.Second)
	pageURL := srv.URL + "/bare"
	d.Run(context.Background(), []string{pageURL})

	// A heading alone is not enough: the body resolves to the sentinel and
	// the page is recorded as a failure.
	entries, err := os.ReadDir(dataDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	fails, err := os.ReadFile(filepath.Join(logDir, "fails.txt"))
	require.NoError(t, err)
	assert.Equal(t, pageURL+"\n", string(fails))
}
