// Package output renders tweets and threads in the supported export
// formats.
package output

import (
	"fmt"
	"io"

	"rethread/internal/domain"
)

// Writer delivers tweets and threads to their destination. Writes are
// flushed as they happen so an interrupted run keeps everything
// written so far.
type Writer interface {
	WriteTweet(tweet *domain.Tweet) error
	WriteThread(thread *domain.Thread) error
	Close() error
}

// New returns the writer for a format name.
func New(format string, w io.Writer) (Writer, error) {
	switch format {
	case "text":
		return NewText(w), nil
	case "jsonl":
		return NewJSONL(w), nil
	case "warc":
		return NewWARC(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
