package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"rethread/internal/domain"
	"rethread/pkg/log"
)

// TweetLookup defines the interface for fetching a single status from
// the service.
type TweetLookup interface {
	Lookup(ctx context.Context, statusID string) (*domain.Tweet, error)
}

// TweetCache defines the interface for caching lookup outcomes,
// failures included.
type TweetCache interface {
	Get(statusID string) (tweet *domain.Tweet, lookupErr error, ok bool)
	Set(statusID string, tweet *domain.Tweet, lookupErr error)
}

// Emitter receives each tweet the moment it joins a thread, so
// partial progress survives an interrupted run.
type Emitter interface {
	EmitTweet(tweet *domain.Tweet) error
}

// Options bound how far a single thread walk may go.
type Options struct {
	// Budget caps remote lookups per thread, retries included.
	Budget int
	// MaxRetries is the number of additional attempts after a failed
	// lookup. Zero disables retrying.
	MaxRetries int
	// InitialBackoff and MaxBackoff shape the delay between attempts.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultOptions returns the limits used when the caller has none.
func DefaultOptions() Options {
	return Options{
		Budget:         50,
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     1 * time.Minute,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Budget <= 0 {
		o.Budget = def.Budget
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = def.InitialBackoff
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = def.MaxBackoff
	}
	return o
}

// errBudgetExhausted stops a walk that would exceed its lookup budget.
var errBudgetExhausted = errors.New("lookup budget exhausted")

// errCycle stops a walk whose reply chain loops back on itself.
var errCycle = errors.New("reply chain cycle")

// ResolveThreadUseCase walks a reply chain from a seed tweet back
// toward its root, fetching each referenced status.
type ResolveThreadUseCase struct {
	lookup  TweetLookup
	cache   TweetCache
	emitter Emitter
	opts    Options
}

// NewResolveThreadUseCase creates a new ResolveThreadUseCase. emitter
// may be nil when nobody needs incremental delivery.
func NewResolveThreadUseCase(lookup TweetLookup, cache TweetCache, emitter Emitter, opts Options) *ResolveThreadUseCase {
	return &ResolveThreadUseCase{
		lookup:  lookup,
		cache:   cache,
		emitter: emitter,
		opts:    opts.withDefaults(),
	}
}

// Execute resolves the thread ending at seed. The returned thread is
// ordered earliest first, with the seed last. A walk that stops short
// of the root returns a thread marked unresolved, not an error; only
// context expiry and failed authentication abort.
func (uc *ResolveThreadUseCase) Execute(ctx context.Context, seed *domain.Tweet) (*domain.Thread, error) {
	thread := &domain.Thread{Status: domain.ThreadResolved}
	retrieved := []*domain.Tweet{seed}
	if err := uc.emit(seed); err != nil {
		return nil, err
	}

	seen := map[string]bool{seed.ID: true}
	lookups := 0
	current := seed

	for current.InReplyTo != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ref := current.InReplyTo

		if seen[ref.StatusID] {
			log.GlobalWarnCtx(ctx, "reply chain loops back on itself",
				"status_id", ref.StatusID, "seed_id", seed.ID)
			uc.stop(thread, ref, errCycle)
			break
		}
		seen[ref.StatusID] = true

		if tweet, cachedErr, ok := uc.cache.Get(ref.StatusID); ok {
			if cachedErr != nil {
				uc.stop(thread, ref, cachedErr)
				break
			}
			log.GlobalDebugCtx(ctx, "cache hit", "status_id", ref.StatusID)
			retrieved = append(retrieved, tweet)
			if err := uc.emit(tweet); err != nil {
				return nil, err
			}
			current = tweet
			continue
		}

		tweet, err := uc.lookupWithRetry(ctx, ref.StatusID, &lookups)
		if err != nil {
			if errors.Is(err, domain.ErrAuthFailed) {
				return nil, err
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, domain.ErrTweetNotFound) || errors.Is(err, domain.ErrTweetProtected) {
				uc.cache.Set(ref.StatusID, nil, err)
			}
			uc.stop(thread, ref, err)
			break
		}

		uc.cache.Set(ref.StatusID, tweet, nil)
		retrieved = append(retrieved, tweet)
		if err := uc.emit(tweet); err != nil {
			return nil, err
		}
		current = tweet
	}

	thread.Lookups = lookups
	thread.Tweets = reverse(retrieved)
	return thread, nil
}

// stop marks the thread unresolved at ref for the given cause.
func (uc *ResolveThreadUseCase) stop(thread *domain.Thread, ref *domain.Reference, cause error) {
	thread.Status = domain.ThreadUnresolved
	thread.Unresolved = &domain.UnresolvedRef{
		StatusID: ref.StatusID,
		Handle:   ref.Handle,
		Reason:   reasonFor(cause),
	}
}

func reasonFor(err error) domain.UnresolvedReason {
	switch {
	case errors.Is(err, domain.ErrTweetNotFound):
		return domain.ReasonNotFound
	case errors.Is(err, domain.ErrTweetProtected):
		return domain.ReasonProtected
	case errors.Is(err, domain.ErrRateLimited):
		return domain.ReasonRateLimited
	case errors.Is(err, errBudgetExhausted):
		return domain.ReasonBudgetExhausted
	default:
		return domain.ReasonLookupFailed
	}
}

// lookupWithRetry fetches one status, retrying transient failures up
// to the retry ceiling. Every attempt, retries included, spends one
// unit of the thread's lookup budget.
func (uc *ResolveThreadUseCase) lookupWithRetry(ctx context.Context, statusID string, lookups *int) (*domain.Tweet, error) {
	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = uc.opts.InitialBackoff
	schedule.MaxInterval = uc.opts.MaxBackoff
	schedule.MaxElapsedTime = 0

	var lastErr error
	for attempt := 0; attempt <= uc.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := schedule.NextBackOff()
			var rle *domain.RateLimitError
			if errors.As(lastErr, &rle) && rle.RetryAfter > 0 {
				wait = rle.RetryAfter
			}
			log.GlobalDebugCtx(ctx, "retrying lookup",
				"status_id", statusID, "attempt", attempt, "wait", wait.String())
			if err := sleepContext(ctx, wait); err != nil {
				return nil, err
			}
		}

		if *lookups >= uc.opts.Budget {
			return nil, errBudgetExhausted
		}
		*lookups++

		tweet, err := uc.lookup.Lookup(ctx, statusID)
		if err == nil {
			return tweet, nil
		}
		if errors.Is(err, domain.ErrTweetNotFound) ||
			errors.Is(err, domain.ErrTweetProtected) ||
			errors.Is(err, domain.ErrAuthFailed) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
		log.GlobalDebugCtx(ctx, "lookup failed",
			"status_id", statusID, "attempt", attempt, "error", err)
	}
	return nil, lastErr
}

func (uc *ResolveThreadUseCase) emit(tweet *domain.Tweet) error {
	if uc.emitter == nil {
		return nil
	}
	return uc.emitter.EmitTweet(tweet)
}

func reverse(tweets []*domain.Tweet) []*domain.Tweet {
	for i, j := 0, len(tweets)-1; i < j; i, j = i+1, j-1 {
		tweets[i], tweets[j] = tweets[j], tweets[i]
	}
	return tweets
}

// sleepContext waits d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
