// Command rethread reconstructs the reply threads behind the tweets
// captured in WARC files. Every extracted tweet seeds one backward
// walk over its in-reply-to chain; assembled threads stream to stdout
// or a file in text, JSON lines or WARC form.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"rethread/internal/adapters/archive"
	"rethread/internal/adapters/cache"
	"rethread/internal/adapters/output"
	"rethread/internal/adapters/scraper"
	"rethread/internal/adapters/twitter"
	"rethread/internal/config"
	"rethread/internal/domain"
	"rethread/internal/usecases"
	"rethread/pkg/log"
	"rethread/pkg/log/transporters"
)

func main() {
	var (
		configPath  = flag.String("config", "config/config.yaml", "configuration file")
		format      = flag.String("format", "text", "output format: text, jsonl or warc")
		outPath     = flag.String("o", "-", "output path, - for stdout")
		budget      = flag.Int("budget", 0, "remote lookups allowed per thread, retries included")
		retries     = flag.Int("retries", 0, "retries per lookup on transient failures")
		workers     = flag.Int("workers", 0, "threads resolved concurrently")
		resolver    = flag.String("resolver", "api", "lookup backend: api or scrape")
		repliesOnly = flag.Bool("replies-only", false, "skip seeds that are thread roots themselves")
		quiet       = flag.Bool("quiet", false, "log warnings and errors only")
		verbose     = flag.Bool("verbose", false, "log at debug level")
		debug       = flag.Bool("debug", false, "log at trace level")
		logFile     = flag.String("log", "", "also write logs to this file as JSON lines")
	)
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "rethread:", err)
		os.Exit(1)
	}

	// Flags the user actually set win over the file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "budget":
			cfg.Crawl.Budget = *budget
		case "retries":
			cfg.Crawl.Retries = *retries
		case "workers":
			cfg.Crawl.Workers = *workers
		case "log":
			cfg.Log.File = *logFile
		}
	})

	logger, err := newLogger(cfg.Log, *quiet, *verbose, *debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "rethread:", err)
		os.Exit(1)
	}
	log.SetDefault(logger)
	defer logger.Close()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: rethread [flags] <archive.warc> [archive.warc ...]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *format, *outPath, *resolver, *repliesOnly, flag.Args()); err != nil {
		log.GlobalError("crawl failed", "error", err.Error())
		logger.Close()
		os.Exit(1)
	}
}

func newLogger(cfg config.Log, quiet, verbose, debug bool) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	level = log.FromVerbosity(level, quiet, verbose, debug)

	trs := []log.Transporter{transporters.NewText()}
	if cfg.File != "" {
		jt, err := transporters.NewJSONFile(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("log file: %w", err)
		}
		trs = append(trs, jt)
	}
	return log.New(level, trs...), nil
}

func run(ctx context.Context, cfg *config.Config, format, outPath, resolver string, repliesOnly bool, paths []string) error {
	dest := io.Writer(os.Stdout)
	if outPath != "" && outPath != "-" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		dest = f
	}
	out, err := output.New(format, dest)
	if err != nil {
		return err
	}
	defer out.Close()

	lookup, cleanup, err := newLookup(cfg, resolver)
	if err != nil {
		return err
	}
	defer cleanup()

	memCache := cache.NewMemoryCache(cfg.Cache.TTL)

	// The WARC output carries no thread framing, so each record can
	// leave the moment its tweet resolves; an interrupted run keeps
	// every fetched record. Text and JSON lines frame per thread and
	// are written as each thread completes.
	var emitter usecases.Emitter
	var sink usecases.ThreadSink = out
	if format == "warc" && cfg.Crawl.Workers <= 1 {
		emitter = tweetEmitter{out}
		sink = emittedThreads{}
	}

	resolve := usecases.NewResolveThreadUseCase(lookup, memCache, emitter, usecases.Options{
		Budget:         cfg.Crawl.Budget,
		MaxRetries:     cfg.Crawl.Retries,
		InitialBackoff: cfg.Crawl.Backoff,
		MaxBackoff:     cfg.Crawl.MaxBackoff,
	})
	crawl := usecases.NewCrawlArchiveUseCase(
		usecases.NewScanArchiveUseCase(), resolve, memCache, cfg.Crawl.Workers, repliesOnly)

	var totals usecases.CrawlResult
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		// Stamp every log line from this file's crawl with its path.
		fileCtx := log.WithFields(ctx, "archive", path)
		result, err := crawl.Execute(fileCtx, archive.NewIterator(f), sink)
		f.Close()

		totals.Stats.Add(result.Stats)
		totals.Threads += result.Threads
		totals.Unresolved += result.Unresolved
		totals.Lookups += result.Lookups
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	log.GlobalInfo("crawl finished",
		"envelopes", totals.Stats.Envelopes,
		"tweets", totals.Stats.Tweets,
		"skipped", totals.Stats.Skipped,
		"empties", totals.Stats.Empties,
		"threads", totals.Threads,
		"unresolved", totals.Unresolved,
		"lookups", totals.Lookups)
	return nil
}

// newLookup builds the configured lookup backend. The cleanup func is
// always safe to call.
func newLookup(cfg *config.Config, resolver string) (usecases.TweetLookup, func(), error) {
	nop := func() {}
	switch resolver {
	case "api":
		client, err := twitter.NewClient(twitter.Config{
			BaseURL:         cfg.API.BaseURL,
			ConsumerKey:     cfg.Credentials.ConsumerKey,
			ConsumerSecret:  cfg.Credentials.ConsumerSecret,
			AccessToken:     cfg.Credentials.AccessToken,
			AccessSecret:    cfg.Credentials.AccessSecret,
			Timeout:         cfg.API.Timeout,
			WaitOnRateLimit: cfg.API.Wait,
		})
		if err != nil {
			return nil, nop, err
		}
		return client, nop, nil
	case "scrape":
		selectors, err := scraper.LoadSelectors(cfg.Scrape.Selectors)
		if err != nil {
			return nil, nop, err
		}
		browser, err := scraper.NewBrowser(nil)
		if err != nil {
			return nil, nop, err
		}
		return scraper.NewResolver(browser, selectors, cfg.Scrape.Timeout), browser.Close, nil
	default:
		return nil, nop, fmt.Errorf("unknown resolver %q", resolver)
	}
}

// tweetEmitter streams each resolved tweet straight into the output
// writer.
type tweetEmitter struct {
	out output.Writer
}

func (e tweetEmitter) EmitTweet(tweet *domain.Tweet) error {
	return e.out.WriteTweet(tweet)
}

// emittedThreads absorbs thread completions whose tweets already went
// out through the emitter.
type emittedThreads struct{}

func (emittedThreads) WriteThread(*domain.Thread) error { return nil }
