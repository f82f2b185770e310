package output

import (
	"io"
	"time"

	"rethread/internal/adapters/warc"
	"rethread/internal/domain"
)

// WARC re-encodes tweets as archive records, so fetched context can
// sit next to the captures it came from.
type WARC struct {
	w *warc.Writer
}

// NewWARC creates a WARC writer on w.
func NewWARC(w io.Writer) *WARC {
	return &WARC{w: warc.NewWriter(w)}
}

// WriteTweet writes one record. The capture date is gone by the time
// a tweet reaches an output writer, so records carry the write time.
func (a *WARC) WriteTweet(tweet *domain.Tweet) error {
	body, err := TweetValue(tweet)
	if err != nil {
		return err
	}
	return a.w.WriteRecord(tweet.PermalinkURL(), time.Now(), body)
}

// WriteThread writes the thread's tweets as consecutive records,
// earliest first.
func (a *WARC) WriteThread(thread *domain.Thread) error {
	for _, tweet := range thread.Tweets {
		if err := a.WriteTweet(tweet); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op; the destination belongs to the caller.
func (a *WARC) Close() error {
	return nil
}
