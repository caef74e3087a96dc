package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/sneakerdata/stockx-crawler/internal/browser"
	"github.com/sneakerdata/stockx-crawler/internal/config"
	"github.com/sneakerdata/stockx-crawler/internal/crawler"
	"github.com/sneakerdata/stockx-crawler/internal/fetch"
	"github.com/sneakerdata/stockx-crawler/internal/parser"
	"github.com/sneakerdata/stockx-crawler/internal/sink"
)

func main() {
	var (
		dataRoot     = flag.String("data", "", "Data root directory (overrides CRAWLER_DATA_ROOT)")
		headless     = flag.Bool("headless", true, "Run browser in headless mode")
		skipExisting = flag.Bool("skip-existing", false, "Skip listing pages whose CSV file already exists")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dataRoot != "" {
		cfg.Crawler.DataRoot = *dataRoot
	}
	if *skipExisting {
		cfg.Crawler.SkipExisting = true
	}
	cfg.Browser.Headless = *headless && cfg.Browser.Headless

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := setupLogger(cfg.Logging).With("run_id", uuid.NewString())
	slog.SetDefault(logger)
	logger.Info("starting sneaker crawler", "base_url", cfg.Crawler.BaseURL, "data_root", cfg.Crawler.DataRoot)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutdown signal received")
		cancel()
	}()

	engine, err := browser.NewPlaywrightEngine(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		UserAgent:      cfg.Browser.UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
	})
	if err != nil {
		logger.Error("failed to initialize browser engine", "error", err)
		os.Exit(1)
	}

	session := browser.NewSession(engine)
	defer session.Close()

	images := fetch.New(cfg.Fetch.Timeout, cfg.Fetch.RetryCount)
	defer images.Close()

	p := parser.New()
	detector := crawler.NewChallengeDetector(p)
	nav := crawler.NewNavigator(session, detector, cfg.Crawler.SettleDelay, cfg.Crawler.BlockedBackoff)
	items := crawler.NewItemExtractor(session, nav, p, images, cfg.ImagesRoot())
	pages := crawler.NewPageExtractor(items, p, cfg.Crawler.BaseURL)
	pageSink := sink.NewCSV(cfg.SneakersRoot())
	walker := crawler.NewWalker(session, nav, pages, p, pageSink, cfg.Crawler.BaseURL, cfg.Crawler.SkipExisting)
	c := crawler.NewCrawler(session, nav, walker, p, cfg.Crawler.BaseURL)

	if err := c.Run(ctx); err != nil {
		// The failing category and page number are carried in the
		// error so an operator knows where to resume.
		logger.Error("crawl failed", "error", err)
		session.Close()
		os.Exit(1)
	}

	logger.Info("crawl finished")
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
