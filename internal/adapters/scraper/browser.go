package scraper

import (
	"context"
	"os"
	"sync"

	"rethread/pkg/log"

	"github.com/chromedp/chromedp"
)

// Browser manages a single Chrome process and serializes page usage,
// one page at a time. Twitter rate-limits aggressive scraping, and a
// lone headless Chrome stays within a small memory footprint.
type Browser struct {
	allocCtx context.Context
	ctx      context.Context
	cancel   context.CancelFunc
	opts     []chromedp.ExecAllocatorOption

	mu      sync.Mutex
	pageSem chan struct{}
}

// NewBrowser starts one Chrome instance and allows one page at a time.
func NewBrowser(options []chromedp.ExecAllocatorOption) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		// Core
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),

		// Memory / CPU reduction
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("disable-component-update", true),
		chromedp.Flag("disable-domain-reliability", true),
		chromedp.Flag("disable-features", "Translate,BackForwardCache"),
		chromedp.Flag("metrics-recording-only", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-site-isolation-trials", true),
	)

	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
		log.GlobalInfo("using custom chrome path", "path", chromePath)
	}

	opts = append(opts, options...)

	b := &Browser{
		opts:    opts,
		pageSem: make(chan struct{}, 1),
	}

	if err := b.start(); err != nil {
		return nil, err
	}

	return b, nil
}

// start launches (or relaunches) the Chrome process.
func (b *Browser) start() error {
	if b.cancel != nil {
		b.cancel()
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), b.opts...)
	ctx, _ := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return err
	}

	b.allocCtx = allocCtx
	b.ctx = ctx
	b.cancel = cancel

	log.GlobalInfo("chrome started")
	return nil
}

// WithPage runs fn with exclusive access to a fresh page. The caller's
// context bounds both the wait for the semaphore and fn itself.
func (b *Browser) WithPage(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case b.pageSem <- struct{}{}:
		defer func() { <-b.pageSem }()
	case <-ctx.Done():
		return ctx.Err()
	}

	pageCtx, pageCancel, err := b.acquirePage()
	if err != nil {
		return err
	}
	defer pageCancel()

	// Tie the page's lifetime to the caller's context so a canceled
	// lookup tears the page down instead of leaving Chrome busy.
	runCtx, runCancel := context.WithCancel(pageCtx)
	defer runCancel()
	stop := context.AfterFunc(ctx, runCancel)
	defer stop()

	if err := fn(runCtx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// acquirePage opens a page on the running Chrome, restarting the
// process once if it has died since the last use.
func (b *Browser) acquirePage() (context.Context, context.CancelFunc, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pageCtx, pageCancel := chromedp.NewContext(b.ctx)

	// Health check. Chrome can die between uses (OOM, crash).
	if err := chromedp.Run(pageCtx); err != nil {
		pageCancel()
		log.GlobalWarn("chrome unresponsive, restarting", "error", err.Error())

		if err := b.start(); err != nil {
			return nil, nil, err
		}

		pageCtx, pageCancel = chromedp.NewContext(b.ctx)
	}

	return pageCtx, pageCancel, nil
}

// Close shuts down the Chrome process.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		b.cancel()
	}
	log.GlobalInfo("chrome stopped")
}
