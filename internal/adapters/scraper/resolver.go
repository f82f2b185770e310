package scraper

import (
	"context"
	"fmt"
	"time"

	"rethread/internal/domain"
	"rethread/pkg/log"

	"github.com/chromedp/chromedp"
)

const (
	defaultPageTimeout = 25 * time.Second
	textWaitTimeout    = 5 * time.Second
	htmlGrabTimeout    = 10 * time.Second
)

// Resolver looks statuses up by rendering their permalink pages in
// headless Chrome. It serves as the lookup backend when no API
// credentials are available.
type Resolver struct {
	browser   *Browser
	selectors *Selectors
	timeout   time.Duration
}

// NewResolver wires a resolver to a running browser. timeout bounds
// the page load; zero means the default.
func NewResolver(browser *Browser, selectors *Selectors, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = defaultPageTimeout
	}
	return &Resolver{
		browser:   browser,
		selectors: selectors,
		timeout:   timeout,
	}
}

// Lookup renders the status page and extracts the status from it.
// Deleted and nonexistent statuses surface as domain.ErrTweetNotFound.
func (r *Resolver) Lookup(ctx context.Context, statusID string) (*domain.Tweet, error) {
	url := "https://twitter.com/i/status/" + statusID
	log.GlobalDebugCtx(ctx, "rendering status page", "status_id", statusID, "url", url)

	var page string
	err := r.browser.WithPage(ctx, func(pageCtx context.Context) error {
		navCtx, navCancel := context.WithTimeout(pageCtx, r.timeout)
		defer navCancel()
		if err := chromedp.Run(navCtx,
			chromedp.Navigate(url),
			chromedp.WaitReady("body", chromedp.ByQuery),
		); err != nil {
			return err
		}

		// Tombstone pages never render the status nodes, so give the
		// client a moment and move on regardless.
		waitCtx, waitCancel := context.WithTimeout(pageCtx, textWaitTimeout)
		_ = chromedp.Run(waitCtx,
			chromedp.WaitVisible(r.selectors.Container(), chromedp.ByQuery),
			chromedp.WaitVisible(r.selectors.Text(), chromedp.ByQuery),
		)
		waitCancel()

		grabCtx, grabCancel := context.WithTimeout(pageCtx, htmlGrabTimeout)
		defer grabCancel()
		return chromedp.Run(grabCtx, chromedp.OuterHTML("html", &page))
	})
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", statusID, err)
	}

	return parsePage(page, statusID, r.selectors.Unavailable())
}
