package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/corpuscrawl/internal/config"
	"github.com/nao1215/corpuscrawl/internal/crawler"
	"github.com/nao1215/corpuscrawl/internal/database"
	"github.com/nao1215/corpuscrawl/internal/extractor"
	"github.com/nao1215/corpuscrawl/internal/fetcher"
	"github.com/nao1215/corpuscrawl/internal/frontier"
	"github.com/nao1215/corpuscrawl/internal/metrics"
	"github.com/nao1215/corpuscrawl/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url...]",
		Short: "Crawl the target site and write the corpus",
		Long: `Crawl fetches pages in priority order (high, medium, low tier) starting
from the seed URLs and sitemaps, extracts structured content and writes one
artifact per page into the output directory.

Pages below the word threshold and pages whose text duplicates an earlier
page are skipped. The crawl state is checkpointed every --checkpoint-every
pages and on Ctrl-C, so an interrupted crawl continues with --resume.

Seed URLs given as arguments replace the configured seeds, sitemaps and
hosts; the crawl then stays on the seed hosts.

Examples:
  # Crawl the configured site
  corpuscrawl crawl

  # Stop after 100 persisted pages
  corpuscrawl crawl --max-pages 100

  # Continue an interrupted crawl
  corpuscrawl crawl --resume

  # Keep the checkpoint in Redis and expose metrics
  corpuscrawl crawl --state-backend redis --redis-addr localhost:6379 --metrics-addr :9090

  # Crawl another site
  corpuscrawl crawl https://www.example.edu/faq`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	addStorageFlags(cmd)

	cmd.Flags().BoolP("resume", "r", false,
		"Resume from the last checkpoint instead of starting over")
	cmd.Flags().IntP("max-pages", "p", 0,
		"Stop after persisting this many pages in this run (0 = unlimited)")
	cmd.Flags().DurationP("delay", "d", config.DefaultCrawlDelay,
		"Minimum delay between the end of one request and the start of the next")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().Int("retries", config.DefaultMaxRetries,
		"Retries after a transient fetch failure")
	cmd.Flags().Int("checkpoint-every", config.DefaultCheckpointEvery,
		"Pages processed between checkpoints")
	cmd.Flags().Int("min-words", config.DefaultMinWords,
		"Visible word count below which a page is skipped")
	cmd.Flags().StringP("format", "f", "markdown",
		"Artifact format: markdown, json or both")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Bool("ignore-robots", false,
		"Do not consult robots.txt")
	cmd.Flags().String("proxy", "",
		"Proxy URL (socks5://host:port or http://host:port)")
	cmd.Flags().String("metrics-addr", "",
		"Serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().Bool("log-json", false,
		"Write logs as JSON")

	return cmd
}

func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(os.Stderr, cfg)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, saving checkpoint...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout())
}

// buildCrawlConfig layers the crawl flags over buildConfig.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()

	if len(args) > 0 {
		cfg.Seeds = args
		cfg.Sitemaps = nil
		cfg.Hosts = nil
	}
	if cfg.Resume, err = flags.GetBool("resume"); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.CrawlDelay, err = flags.GetDuration("delay"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = flags.GetInt("retries"); err != nil {
		return nil, err
	}
	if cfg.CheckpointEvery, err = flags.GetInt("checkpoint-every"); err != nil {
		return nil, err
	}
	if cfg.Format, err = flags.GetString("format"); err != nil {
		return nil, err
	}
	if cfg.ProxyURL, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.MetricsAddr, err = flags.GetString("metrics-addr"); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = flags.GetBool("log-json"); err != nil {
		return nil, err
	}

	// These three can also come from the configuration file, so the flag
	// only wins when it was given.
	if flags.Changed("min-words") {
		if cfg.MinWords, err = flags.GetInt("min-words"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("ignore-robots") {
		ignore, err := flags.GetBool("ignore-robots")
		if err != nil {
			return nil, err
		}
		cfg.RespectRobots = !ignore
	}

	return cfg, nil
}

// runCrawl wires the components for cfg and runs one crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	logger.Info("starting crawl",
		"seeds", len(cfg.Seeds),
		"sitemaps", len(cfg.Sitemaps),
		"hosts", cfg.ScopeHosts(),
		"resume", cfg.Resume,
		"maxPages", cfg.MaxPages,
		"stateBackend", cfg.StateBackend,
		"proxy", cfg.ProxyURL,
	)

	db, err := database.Open(cfg.DatabaseDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	store, closeStore, err := openStore(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("failed to close state store", "error", err)
		}
	}()

	client, err := fetcher.NewHTTPClient(fetcher.ClientOptions{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		ProxyURL:     cfg.ProxyURL,
		Headers:      cfg.Headers,
		Cookie:       cfg.Cookie,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	m := metrics.New()
	fetch := fetcher.New(client,
		fetcher.WithLimiter(fetcher.NewIntervalLimiter(cfg.CrawlDelay)),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithMaxRetries(cfg.MaxRetries),
		fetcher.WithLogger(logger),
		fetcher.WithObserver(m.ObserveFetch),
	)

	var scopeOpts []frontier.ScopeOption
	if cfg.ExcludeExtensions != nil {
		scopeOpts = append(scopeOpts, frontier.WithExcludedExtensions(cfg.ExcludeExtensions))
	}
	if cfg.ExcludePaths != nil {
		scopeOpts = append(scopeOpts, frontier.WithExcludedPaths(cfg.ExcludePaths))
	}
	scope := frontier.NewScope(cfg.ScopeHosts(), scopeOpts...)

	ex := extractor.New(
		extractor.WithMinWords(cfg.MinWords),
		extractor.WithLinkFilter(scope.Allows),
		extractor.WithLogger(logger),
	)

	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	writer := report.NewDirWriter(cfg.OutputDir, cfg.PrimaryHost(), format)

	opts := []crawler.Option{
		crawler.WithSeeds(cfg.Seeds),
		crawler.WithScope(scope),
		crawler.WithClassifier(frontier.NewClassifier(cfg.HighPriority, cfg.MediumPriority)),
		crawler.WithSitemaps(fetcher.NewSitemapReader(fetch, fetcher.WithSitemapLogger(logger)), cfg.Sitemaps),
		crawler.WithIndex(db),
		crawler.WithMetrics(m),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithCheckpointEvery(cfg.CheckpointEvery),
		crawler.WithResume(cfg.Resume),
		crawler.WithLogger(logger),
	}
	if cfg.RespectRobots {
		opts = append(opts, crawler.WithRobots(fetcher.NewRobots(fetch, config.AppName, logger)))
	}
	scheduler := crawler.New(fetch, ex, writer, store, opts...)

	var (
		result *crawler.Result
		srv    *http.Server
	)
	g, gctx := errgroup.WithContext(ctx)
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		var err error
		result, err = scheduler.Run(gctx)
		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}
		return err
	})
	err = g.Wait()

	if result != nil {
		if _, werr := report.NewSummaryWriter(out).WriteStats(result.Stats, result.Pending); werr != nil {
			logger.Warn("failed to write summary", "error", werr)
		}
		fmt.Fprintf(out, "Corpus written to %s\n", writer.Dir())
	}

	if errors.Is(err, crawler.ErrInterrupted) {
		fmt.Fprintln(out, "Crawl interrupted; run again with --resume to continue.")
		return nil
	}
	return err
}
