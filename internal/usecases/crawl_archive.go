package usecases

import (
	"context"
	"sync"

	"rethread/internal/domain"
	"rethread/pkg/log"
)

// ThreadSink defines the interface for delivering finished threads.
type ThreadSink interface {
	WriteThread(thread *domain.Thread) error
}

// CrawlResult aggregates one crawl over one archive.
type CrawlResult struct {
	Stats      domain.ScanStats
	Threads    int
	Unresolved int
	Lookups    int
}

// CrawlArchiveUseCase scans an archive and resolves a thread for
// every seed tweet in it.
type CrawlArchiveUseCase struct {
	scan        *ScanArchiveUseCase
	resolve     *ResolveThreadUseCase
	cache       TweetCache
	workers     int
	repliesOnly bool
}

// NewCrawlArchiveUseCase creates a new CrawlArchiveUseCase.
// repliesOnly skips seeds that are thread roots themselves.
func NewCrawlArchiveUseCase(scan *ScanArchiveUseCase, resolve *ResolveThreadUseCase, cache TweetCache, workers int, repliesOnly bool) *CrawlArchiveUseCase {
	if workers < 1 {
		workers = 1
	}
	return &CrawlArchiveUseCase{
		scan:        scan,
		resolve:     resolve,
		cache:       cache,
		workers:     workers,
		repliesOnly: repliesOnly,
	}
}

// Execute crawls the archive. Every archived tweet is cached before
// its thread is resolved, so references between archived tweets never
// cost a remote lookup. Threads go to the sink one at a time; the
// sink never sees interleaved writes.
func (uc *CrawlArchiveUseCase) Execute(ctx context.Context, it TweetIterator, sink ThreadSink) (CrawlResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		result   CrawlResult
		mu       sync.Mutex
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	seeds := make(chan *domain.Tweet, uc.workers)
	for i := 0; i < uc.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for seed := range seeds {
				if ctx.Err() != nil {
					continue
				}
				thread, err := uc.resolve.Execute(ctx, seed)
				if err != nil {
					fail(err)
					return
				}

				mu.Lock()
				err = sink.WriteThread(thread)
				if err == nil {
					result.Threads++
					result.Lookups += thread.Lookups
					if thread.Status == domain.ThreadUnresolved {
						result.Unresolved++
					}
				}
				mu.Unlock()
				if err != nil {
					fail(err)
					return
				}
			}
		}()
	}

	stats, scanErr := uc.scan.Execute(ctx, it, func(tweet *domain.Tweet) error {
		uc.cache.Set(tweet.ID, tweet, nil)
		if uc.repliesOnly && tweet.InReplyTo == nil {
			return nil
		}
		select {
		case seeds <- tweet:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	close(seeds)
	wg.Wait()

	result.Stats = stats
	if firstErr != nil {
		return result, firstErr
	}
	if scanErr != nil {
		return result, scanErr
	}

	log.GlobalDebugCtx(ctx, "archive crawled",
		"threads", result.Threads,
		"unresolved", result.Unresolved,
		"lookups", result.Lookups)
	return result, nil
}
