// Command server loads WARC tweet archives and serves them over HTTP,
// resolving reply threads on demand.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"

	"rethread/internal/adapters/archive"
	"rethread/internal/adapters/cache"
	"rethread/internal/adapters/scraper"
	"rethread/internal/adapters/twitter"
	"rethread/internal/adapters/web"
	"rethread/internal/config"
	"rethread/internal/domain"
	"rethread/internal/usecases"
	"rethread/pkg/log"
	"rethread/pkg/log/transporters"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "configuration file")
		addr       = flag.String("addr", "", "listen address, overrides the configured one")
		resolver   = flag.String("resolver", "api", "lookup backend: api or scrape")
		quiet      = flag.Bool("quiet", false, "log warnings and errors only")
		verbose    = flag.Bool("verbose", false, "log at debug level")
		debug      = flag.Bool("debug", false, "log at trace level")
	)
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
	logger := log.New(log.FromVerbosity(level, *quiet, *verbose, *debug), transporters.NewJSON())
	log.SetDefault(logger)
	defer logger.Close()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: server [flags] <archive.warc> [archive.warc ...]")
		os.Exit(2)
	}

	store := web.NewStore()
	memCache := cache.NewMemoryCache(cfg.Cache.TTL)
	if err := loadArchives(store, memCache, flag.Args()); err != nil {
		log.GlobalError("loading archives failed", "error", err.Error())
		logger.Close()
		os.Exit(1)
	}
	stats := store.Stats()
	log.GlobalInfo("archives loaded",
		"files", flag.NArg(),
		"tweets", store.Len(),
		"skipped", stats.Skipped,
		"empties", stats.Empties)

	lookup, cleanup, err := newLookup(cfg, *resolver)
	if err != nil {
		log.GlobalError("lookup backend failed", "error", err.Error())
		logger.Close()
		os.Exit(1)
	}
	defer cleanup()

	resolve := usecases.NewResolveThreadUseCase(lookup, memCache, nil, usecases.Options{
		Budget:         cfg.Crawl.Budget,
		MaxRetries:     cfg.Crawl.Retries,
		InitialBackoff: cfg.Crawl.Backoff,
		MaxBackoff:     cfg.Crawl.MaxBackoff,
	})
	handlers := web.NewHandlers(store, resolve)
	limiter := web.NewRateLimiter(cfg.Server.Limit, cfg.Server.Window)

	app := fiber.New(fiber.Config{AppName: "rethread"})
	app.Use(requestid.New(web.RequestIDConfig()))
	app.Use(web.RequestIDToContextMiddleware())
	app.Use(recover.New())
	app.Use(web.RequestLoggerMiddleware())
	web.SetupRoutes(app, handlers, limiter)

	log.GlobalInfo("listening", "addr", cfg.Server.Addr)
	if err := app.Listen(cfg.Server.Addr); err != nil {
		log.GlobalError("server stopped", "error", err.Error())
		logger.Close()
		os.Exit(1)
	}
}

// loadArchives scans every archive into the store. Archived tweets
// are also primed into the lookup cache, so a thread walk between
// archived statuses never calls out.
func loadArchives(store *web.Store, memCache *cache.MemoryCache, paths []string) error {
	scan := usecases.NewScanArchiveUseCase()
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		stats, err := scan.Execute(context.Background(), archive.NewIterator(f), func(tweet *domain.Tweet) error {
			store.Add(tweet)
			memCache.Set(tweet.ID, tweet, nil)
			return nil
		})
		f.Close()
		store.AddStats(stats)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

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
