// Package usecases contains the application's business flows.
package usecases

import (
	"context"
	"fmt"
	"io"

	"rethread/internal/domain"
	"rethread/pkg/log"
)

// TweetIterator defines the interface for walking tweets out of an
// archive stream.
type TweetIterator interface {
	Next() (*domain.Tweet, error)
	Stats() domain.ScanStats
}

// TweetFunc receives each tweet in archive order. Returning an error
// stops the scan.
type TweetFunc func(tweet *domain.Tweet) error

// ScanArchiveUseCase streams every decodable tweet in an archive to a
// callback.
type ScanArchiveUseCase struct{}

// NewScanArchiveUseCase creates a new ScanArchiveUseCase.
func NewScanArchiveUseCase() *ScanArchiveUseCase {
	return &ScanArchiveUseCase{}
}

// Execute drains the iterator, calling fn for each tweet. The stats
// are returned even when the scan stops early.
func (uc *ScanArchiveUseCase) Execute(ctx context.Context, it TweetIterator, fn TweetFunc) (domain.ScanStats, error) {
	for {
		if err := ctx.Err(); err != nil {
			return it.Stats(), err
		}

		tweet, err := it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return it.Stats(), fmt.Errorf("reading archive: %w", err)
		}
		if err := fn(tweet); err != nil {
			return it.Stats(), err
		}
	}

	stats := it.Stats()
	// A stream that produced nothing but skips was never an archive.
	if stats.Envelopes == 0 && stats.Skipped > 0 {
		return stats, domain.ErrArchiveMalformed
	}

	log.GlobalDebugCtx(ctx, "archive scanned",
		"envelopes", stats.Envelopes,
		"tweets", stats.Tweets,
		"skipped", stats.Skipped,
		"empties", stats.Empties)
	return stats, nil
}
