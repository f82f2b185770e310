package web

import (
	"context"
	"errors"
	"time"

	"rethread/internal/domain"
	"rethread/internal/usecases"
	"rethread/pkg/log"

	"github.com/gofiber/fiber/v2"
)

const resolveTimeout = 30 * time.Second

// Handlers contains the HTTP handlers for the archive service.
type Handlers struct {
	store   *Store
	resolve *usecases.ResolveThreadUseCase
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store *Store, resolve *usecases.ResolveThreadUseCase) *Handlers {
	return &Handlers{
		store:   store,
		resolve: resolve,
	}
}

// Healthz reports liveness and how many tweets are loaded.
func (h *Handlers) Healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"tweets": h.store.Len(),
	})
}

// Stats returns the scan counters accumulated while loading archives.
func (h *Handlers) Stats(c *fiber.Ctx) error {
	stats := h.store.Stats()
	return c.JSON(fiber.Map{
		"envelopes": stats.Envelopes,
		"tweets":    stats.Tweets,
		"skipped":   stats.Skipped,
		"empties":   stats.Empties,
	})
}

// ListTweets returns loaded tweets in capture order. ?author= narrows
// to one handle and ?replies=true keeps only replies.
func (h *Handlers) ListTweets(c *fiber.Ctx) error {
	author := c.Query("author")
	repliesOnly := c.QueryBool("replies")

	tweets := h.store.List(author, repliesOnly)
	views := make([]tweetJSON, 0, len(tweets))
	for _, tweet := range tweets {
		views = append(views, toTweetJSON(tweet))
	}
	return c.JSON(views)
}

// GetTweet returns one loaded tweet by status id.
func (h *Handlers) GetTweet(c *fiber.Ctx) error {
	tweet, ok := h.store.Get(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "status not in the loaded archives")
	}
	return c.JSON(toTweetJSON(tweet))
}

// GetThread resolves the reply chain behind a loaded tweet, fetching
// unarchived ancestors remotely.
func (h *Handlers) GetThread(c *fiber.Ctx) error {
	seed, ok := h.store.Get(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "status not in the loaded archives")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), resolveTimeout)
	defer cancel()

	thread, err := h.resolve.Execute(ctx, seed)
	if err != nil {
		log.GlobalErrorCtx(ctx, "thread resolution failed",
			"status_id", seed.ID, "error", err.Error())
		return fiber.NewError(statusForError(err), "could not resolve the thread")
	}

	return c.JSON(toThreadJSON(thread))
}

// statusForError maps resolution failures onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrTweetNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrTweetProtected):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrRateLimited):
		return fiber.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusBadGateway
	}
}

type tweetJSON struct {
	ID        string     `json:"id"`
	Handle    string     `json:"handle,omitempty"`
	Name      string     `json:"name,omitempty"`
	Text      string     `json:"text"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Truncated bool       `json:"truncated,omitempty"`
	Permalink string     `json:"permalink"`
	InReplyTo *replyJSON `json:"in_reply_to,omitempty"`
	Links     []string   `json:"links,omitempty"`
}

type replyJSON struct {
	StatusID  string `json:"status_id"`
	Handle    string `json:"handle,omitempty"`
	Permalink string `json:"permalink"`
}

type threadJSON struct {
	Status     string          `json:"status"`
	Lookups    int             `json:"lookups"`
	Tweets     []tweetJSON     `json:"tweets"`
	Unresolved *unresolvedJSON `json:"unresolved,omitempty"`
}

type unresolvedJSON struct {
	StatusID string `json:"status_id"`
	Handle   string `json:"handle,omitempty"`
	Reason   string `json:"reason"`
}

func toTweetJSON(tweet *domain.Tweet) tweetJSON {
	view := tweetJSON{
		ID:        tweet.ID,
		Handle:    tweet.Author.Handle,
		Name:      tweet.Author.Name,
		Text:      tweet.Text,
		Truncated: tweet.LooksTruncated(),
		Permalink: tweet.PermalinkURL(),
		Links:     tweet.Links,
	}
	if !tweet.CreatedAt.IsZero() {
		createdAt := tweet.CreatedAt
		view.CreatedAt = &createdAt
	}
	if tweet.InReplyTo != nil {
		view.InReplyTo = &replyJSON{
			StatusID:  tweet.InReplyTo.StatusID,
			Handle:    tweet.InReplyTo.Handle,
			Permalink: tweet.InReplyTo.URL(),
		}
	}
	return view
}

func toThreadJSON(thread *domain.Thread) threadJSON {
	view := threadJSON{
		Status:  string(thread.Status),
		Lookups: thread.Lookups,
		Tweets:  make([]tweetJSON, 0, len(thread.Tweets)),
	}
	for _, tweet := range thread.Tweets {
		view.Tweets = append(view.Tweets, toTweetJSON(tweet))
	}
	if thread.Unresolved != nil {
		view.Unresolved = &unresolvedJSON{
			StatusID: thread.Unresolved.StatusID,
			Handle:   thread.Unresolved.Handle,
			Reason:   string(thread.Unresolved.Reason),
		}
	}
	return view
}
