// Package worker executes the per-URL crawl pipeline.
package worker

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/fedrs/clipcrawl/internal/crawl"
	"github.com/fedrs/clipcrawl/internal/metrics"
)

// Worker drives one task through fetch, extract, persist and log. Failures
// never propagate to the dispatch loop: every outcome ends in a log record.
type Worker struct {
	fetcher   crawl.Fetcher
	extractor crawl.Extractor
	store     crawl.ArtifactStore
	crawlLog  crawl.Log
	logger    *zap.Logger
}

// New constructs a Worker.
func New(
	fetcher crawl.Fetcher,
	extractor crawl.Extractor,
	store crawl.ArtifactStore,
	crawlLog crawl.Log,
	logger *zap.Logger,
) *Worker {
	return &Worker{
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		crawlLog:  crawlLog,
		logger:    logger,
	}
}

// Process crawls a single task to completion. A failed fetch, a degenerate
// extraction, or a failed persist all degrade to a fails.txt record for
// this URL only; in-flight work for other URLs is unaffected.
func (w *Worker) Process(ctx context.Context, task crawl.Task) {
	metrics.WorkerStarted()
	defer metrics.WorkerFinished()

	page, err := w.fetcher.Fetch(ctx, task.URL)
	if err != nil {
		if fe, ok := crawl.AsFetchError(err); ok && fe.Kind == crawl.FetchHTTPStatus {
			if rerr := w.crawlLog.Record(task.URL, strconv.Itoa(fe.StatusCode)); rerr != nil {
				w.logger.Error("record status failed", zap.String("url", task.URL), zap.Error(rerr))
			}
		}
		w.fail(task, "fetch failed", err)
		return
	}
	metrics.ObserveFetchDuration(task.Hostname, page.Duration)

	content := w.extractor.Extract(page, task.BodySelector)
	if !content.Usable() {
		w.fail(task, "no extractable content", nil)
		return
	}

	set, err := w.store.Save(ctx, content, task)
	if err != nil {
		w.fail(task, "persist failed", err)
		return
	}

	if err := w.crawlLog.Success(task.URL); err != nil {
		w.logger.Error("success log append failed", zap.String("url", task.URL), zap.Error(err))
	}
	metrics.ObservePage(task.Hostname, "success")
	w.logger.Info("crawled page",
		zap.String("url", task.URL),
		zap.String("artifact", set.TextPath),
		zap.String("image", set.ImagePath),
	)
}

func (w *Worker) fail(task crawl.Task, reason string, err error) {
	metrics.ObservePage(task.Hostname, "failure")
	w.logger.Warn("crawl failed",
		zap.String("url", task.URL),
		zap.String("reason", reason),
		zap.Error(err),
	)
	if lerr := w.crawlLog.Failure(task.URL); lerr != nil {
		w.logger.Error("failure log append failed", zap.String("url", task.URL), zap.Error(lerr))
	}
}
