package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fedrs/clipcrawl/internal/config"
	"github.com/fedrs/clipcrawl/internal/crawllog"
	"github.com/fedrs/clipcrawl/internal/dispatcher"
	"github.com/fedrs/clipcrawl/internal/extractor"
	collyfetcher "github.com/fedrs/clipcrawl/internal/fetcher/colly"
	imagefetcher "github.com/fedrs/clipcrawl/internal/fetcher/image"
	"github.com/fedrs/clipcrawl/internal/logging"
	"github.com/fedrs/clipcrawl/internal/metrics"
	"github.com/fedrs/clipcrawl/internal/ops"
	"github.com/fedrs/clipcrawl/internal/storage/local"
	"github.com/fedrs/clipcrawl/internal/urllist"
	"github.com/fedrs/clipcrawl/internal/worker"

	systemclock "github.com/fedrs/clipcrawl/internal/clock/system"
)

// newCrawlCmd creates and configures the 'crawl' subcommand.
func newCrawlCmd() *cobra.Command {
	var urlsFile string

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawls every URL in the input list",
		Long: `Reads the URL list, resolves per-host delay and selector rules from the
configuration, and runs the rate-gated crawl pipeline until every URL has
been fetched, extracted and persisted (or recorded as a failure).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawl(cmd.Context(), urlsFile)
		},
	}

	cmd.Flags().StringVar(&urlsFile, "urls", "urls.txt", "path to the URL list file")
	return cmd
}

func runCrawl(parent context.Context, urlsFile string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	urls, err := urllist.Read(urlsFile)
	if err != nil {
		return err
	}
	logger.Info("starting crawl", zap.Int("urls", len(urls)))

	metrics.Init()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	downloader := imagefetcher.New(cfg.FetchTimeout())
	store, err := local.New(local.Config{DataDir: cfg.Storage.DataDir}, downloader, logger)
	if err != nil {
		return fmt.Errorf("init artifact store: %w", err)
	}

	clk := systemclock.New()
	runLog := crawllog.New(cfg.Logs.ResultsDir, clk)

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Crawler.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})

	w := worker.New(fetcher, extractor.New(), store, runLog, logger)
	d := dispatcher.New(cfg, w, dispatcher.Settings{
		MaxConcurrency: cfg.Crawler.MaxConcurrency,
		TitleSearch:    cfg.Crawler.TitleSearch,
		TitleReplace:   cfg.Crawler.TitleReplace,
	}, logger)

	var opsServer *ops.Server
	if cfg.Ops.Addr != "" {
		opsServer = ops.New(cfg.Ops.Addr, logger)
		opsServer.Start()
	}

	start := clk.Now()
	d.Run(ctx, urls)
	logger.Info("crawl finished",
		zap.Int("urls", len(urls)),
		zap.Duration("elapsed", clk.Now().Sub(start)),
		zap.String("logs", runLog.Dir()),
	)

	if opsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("ops shutdown", zap.Error(err))
		}
	}
	return nil
}
