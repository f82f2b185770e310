// Package transporters provides the built-in log destinations.
package transporters

import (
	"fmt"
	"io"
	"os"

	"rethread/pkg/log"
)

// Text writes human-readable lines. It defaults to stderr: program
// stdout belongs to the data formats, and mixing logs into a JSON or
// WARC stream would corrupt it.
type Text struct {
	w io.Writer
}

// NewText creates a text transporter writing to os.Stderr.
func NewText() *Text {
	return &Text{w: os.Stderr}
}

// NewTextWithWriter creates a text transporter with a custom writer.
// Useful for testing.
func NewTextWithWriter(w io.Writer) *Text {
	return &Text{w: w}
}

// Name returns the transporter identifier.
func (t *Text) Name() string {
	return "text"
}

// Write renders the entry as a single line.
func (t *Text) Write(entry log.Entry) error {
	_, err := fmt.Fprintln(t.w, entry.Text())
	return err
}

// Close is a no-op for the text transporter.
func (t *Text) Close() error {
	return nil
}
