package output

import (
	"fmt"
	"io"

	"rethread/internal/domain"
)

// Text renders the human-readable format: one block per tweet, blank
// line between blocks.
type Text struct {
	w io.Writer
}

// NewText creates a text writer on w.
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

// WriteTweet writes one tweet block.
func (t *Text) WriteTweet(tweet *domain.Tweet) error {
	return t.block(tweet)
}

// WriteThread writes a thread earliest first. An unresolved thread
// opens with a marker naming the reference that could not be
// followed.
func (t *Text) WriteThread(thread *domain.Thread) error {
	if thread.Status == domain.ThreadUnresolved && thread.Unresolved != nil {
		_, err := fmt.Fprintf(t.w, "[unresolved: %s %s]\n\n",
			thread.Unresolved.Reason, thread.Unresolved.StatusID)
		if err != nil {
			return err
		}
	}
	for _, tweet := range thread.Tweets {
		if err := t.block(tweet); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op; the destination belongs to the caller.
func (t *Text) Close() error {
	return nil
}

func (t *Text) block(tweet *domain.Tweet) error {
	if _, err := fmt.Fprintln(t.w, tweet.PermalinkURL()); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(t.w, tweet.Text); err != nil {
		return err
	}
	if tweet.InReplyTo != nil {
		if _, err := fmt.Fprintf(t.w, "Reply: %s\n", tweet.InReplyTo.URL()); err != nil {
			return err
		}
	}
	if tweet.LooksTruncated() {
		if _, err := fmt.Fprintln(t.w, "Looks truncated: true"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(t.w)
	return err
}
