// Package archive turns WARC capture files into streams of tweets.
package archive

import (
	"errors"
	"io"

	"rethread/internal/adapters/twitter"
	"rethread/internal/adapters/warc"
	"rethread/internal/domain"
	"rethread/pkg/log"
)

// Iterator walks the tweets in one WARC stream, in archive order.
// Envelopes that cannot be decoded are counted and skipped; one bad
// record never costs the rest of the stream.
type Iterator struct {
	r     *warc.Reader
	stats domain.ScanStats
}

// NewIterator returns an iterator over the WARC stream r.
func NewIterator(r io.Reader) *Iterator {
	return &Iterator{r: warc.NewReader(r)}
}

// Next returns the next tweet, or io.EOF at the end of the stream.
func (it *Iterator) Next() (*domain.Tweet, error) {
	for {
		env, err := it.r.Next()
		if err == io.EOF {
			return nil, io.EOF
		}
		var ferr *warc.FormatError
		if errors.As(err, &ferr) {
			it.stats.Skipped++
			log.GlobalDebug("skipping malformed envelope", "offset", ferr.Offset, "reason", ferr.Reason)
			continue
		}
		if err != nil {
			return nil, err
		}

		it.stats.Envelopes++
		tweet, err := twitter.ExtractTweet(env.Body)
		if errors.Is(err, domain.ErrEmptyEntry) {
			it.stats.Empties++
			log.GlobalDebug("profile entry with no status", "offset", it.r.Offset())
			continue
		}
		if err != nil {
			it.stats.Skipped++
			log.GlobalDebug("skipping undecodable payload", "offset", it.r.Offset(), "error", err)
			continue
		}
		it.stats.Tweets++
		return tweet, nil
	}
}

// Stats returns the counters accumulated so far.
func (it *Iterator) Stats() domain.ScanStats {
	return it.stats
}
