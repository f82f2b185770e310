package output

import (
	"encoding/json"
	"io"
	"time"

	"rethread/internal/domain"
)

// JSONL writes one JSON object per line: tweets as their captured
// payloads, threads as a single wrapping object.
type JSONL struct {
	w io.Writer
}

// NewJSONL creates a JSON lines writer on w.
func NewJSONL(w io.Writer) *JSONL {
	return &JSONL{w: w}
}

// viewJSON is the synthesized payload for tweets that carry no
// captured bytes. It mirrors the capture shape, user object included,
// so the output can be scanned like an archive payload.
type viewJSON struct {
	IDStr                string       `json:"id_str"`
	Text                 string       `json:"text"`
	Truncated            bool         `json:"truncated"`
	CreatedAt            string       `json:"created_at,omitempty"`
	User                 viewUserJSON `json:"user"`
	InReplyToStatusIDStr string       `json:"in_reply_to_status_id_str,omitempty"`
	InReplyToScreenName  string       `json:"in_reply_to_screen_name,omitempty"`
}

type viewUserJSON struct {
	ScreenName string `json:"screen_name"`
	Name       string `json:"name,omitempty"`
}

type threadJSON struct {
	Status     domain.ThreadStatus `json:"status"`
	Lookups    int                 `json:"lookups"`
	Unresolved *unresolvedJSON     `json:"unresolved,omitempty"`
	Tweets     []json.RawMessage   `json:"tweets"`
}

type unresolvedJSON struct {
	StatusID string                  `json:"status_id"`
	Handle   string                  `json:"screen_name,omitempty"`
	Reason   domain.UnresolvedReason `json:"reason"`
}

// WriteTweet writes the tweet's payload as one line.
func (j *JSONL) WriteTweet(tweet *domain.Tweet) error {
	value, err := TweetValue(tweet)
	if err != nil {
		return err
	}
	return j.writeLine(value)
}

// WriteThread writes the whole thread as one line, tweets earliest
// first.
func (j *JSONL) WriteThread(thread *domain.Thread) error {
	out := threadJSON{
		Status:  thread.Status,
		Lookups: thread.Lookups,
		Tweets:  make([]json.RawMessage, 0, len(thread.Tweets)),
	}
	if thread.Unresolved != nil {
		out.Unresolved = &unresolvedJSON{
			StatusID: thread.Unresolved.StatusID,
			Handle:   thread.Unresolved.Handle,
			Reason:   thread.Unresolved.Reason,
		}
	}
	for _, tweet := range thread.Tweets {
		value, err := TweetValue(tweet)
		if err != nil {
			return err
		}
		out.Tweets = append(out.Tweets, value)
	}
	return j.writeLine(out)
}

// Close is a no-op; the destination belongs to the caller.
func (j *JSONL) Close() error {
	return nil
}

// writeLine marshals v onto a single line. Raw payloads pass through
// json.Marshal, which compacts any whitespace they carry.
func (j *JSONL) writeLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = j.w.Write(data)
	return err
}

// TweetValue returns the tweet as a JSON payload, preferring the
// captured bytes and synthesizing a capture-shaped object for tweets
// that were never captured.
func TweetValue(tweet *domain.Tweet) (json.RawMessage, error) {
	if len(tweet.Raw) > 0 {
		return tweet.Raw, nil
	}
	view := viewJSON{
		IDStr:     tweet.ID,
		Text:      tweet.Text,
		Truncated: tweet.Truncated,
		User: viewUserJSON{
			ScreenName: tweet.Author.Handle,
			Name:       tweet.Author.Name,
		},
	}
	if !tweet.CreatedAt.IsZero() {
		view.CreatedAt = tweet.CreatedAt.Format(time.RubyDate)
	}
	if tweet.InReplyTo != nil {
		view.InReplyToStatusIDStr = tweet.InReplyTo.StatusID
		view.InReplyToScreenName = tweet.InReplyTo.Handle
	}
	return json.Marshal(view)
}
