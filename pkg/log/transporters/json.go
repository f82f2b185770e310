package transporters

import (
	"encoding/json"
	"io"
	"os"

	"rethread/pkg/log"
)

// JSON writes entries as line-delimited JSON, one object per line.
// The server logs this way; the command-line tools use it for log
// files.
type JSON struct {
	w      io.Writer
	closer io.Closer
}

// NewJSON creates a JSON transporter writing to os.Stdout.
func NewJSON() *JSON {
	return &JSON{w: os.Stdout}
}

// NewJSONWithWriter creates a JSON transporter with a custom writer.
func NewJSONWithWriter(w io.Writer) *JSON {
	return &JSON{w: w}
}

// NewJSONFile creates a JSON transporter writing to the file at path.
// An existing file is overwritten. Close closes the file.
func NewJSONFile(path string) (*JSON, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSON{w: f, closer: f}, nil
}

// Name returns the transporter identifier.
func (j *JSON) Name() string {
	return "json"
}

// Write marshals the entry and appends a newline.
func (j *JSON) Write(entry log.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = j.w.Write(data)
	return err
}

// Close closes the underlying file, when there is one.
func (j *JSON) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
