// Package dispatcher runs the rate-gated crawl dispatch loop.
package dispatcher

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fedrs/clipcrawl/internal/crawl"
)

// Settings are the immutable global knobs the dispatch loop runs under,
// constructed once at startup and passed in explicitly.
type Settings struct {
	MaxConcurrency int
	TitleSearch    string
	TitleReplace   string
}

// RuleSource resolves the per-host crawl rules. Implementations must be
// safe for concurrent reads.
type RuleSource interface {
	DelayFor(hostname string) time.Duration
	SelectorFor(hostname string) string
}

// Processor consumes one task. The dispatcher never inspects its outcome.
type Processor interface {
	Process(ctx context.Context, task crawl.Task)
}

// Dispatcher walks the URL list in order and launches one pipeline per URL.
//
// The concurrency gate bounds the launch rate, not the number of running
// pipelines: a slot is taken before launch and given back after the
// post-launch per-host pause, so slow fetches can stack up beyond the gate
// size. That is the intended scheduling policy, not a cap on in-flight
// work.
type Dispatcher struct {
	rules    RuleSource
	proc     Processor
	settings Settings
	logger   *zap.Logger
}

// New creates a Dispatcher.
func New(rules RuleSource, proc Processor, settings Settings, logger *zap.Logger) *Dispatcher {
	if settings.MaxConcurrency <= 0 {
		settings.MaxConcurrency = 4
	}
	return &Dispatcher{
		rules:    rules,
		proc:     proc,
		settings: settings,
		logger:   logger,
	}
}

// Run dispatches every URL and returns once all launched pipelines have
// finished. Context cancellation stops further dispatch; already-launched
// pipelines are still joined before Run returns.
func (d *Dispatcher) Run(ctx context.Context, urls []string) {
	gate := make(chan struct{}, d.settings.MaxConcurrency)
	var wg sync.WaitGroup

	for _, rawURL := range urls {
		hostname, err := crawl.Hostname(rawURL)
		if err != nil {
			// Let the fetch fail and be recorded like any other bad URL.
			d.logger.Warn("unparseable url", zap.String("url", rawURL), zap.Error(err))
		}

		task := crawl.Task{
			URL:          rawURL,
			Hostname:     hostname,
			Delay:        d.rules.DelayFor(hostname),
			BodySelector: d.rules.SelectorFor(hostname),
			TitleSearch:  d.settings.TitleSearch,
			TitleReplace: d.settings.TitleReplace,
		}

		select {
		case gate <- struct{}{}:
		case <-ctx.Done():
			d.logger.Info("dispatch canceled", zap.String("next_url", rawURL))
			wg.Wait()
			return
		}

		wg.Add(1)
		go func(t crawl.Task) {
			defer wg.Done()
			d.proc.Process(ctx, t)
		}(task)

		pause(ctx, task.Delay)
		<-gate

		if ctx.Err() != nil {
			break
		}
	}

	wg.Wait()
}

// pause blocks for the per-host delay, waking early on cancellation.
func pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
