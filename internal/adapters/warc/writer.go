package warc

import (
	"bytes"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Writer emits response records in the layout Reader accepts. The
// source archives never carried WARC-Record-ID headers; records
// written here always get one.
type Writer struct {
	w io.Writer
}

// NewWriter returns a writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteRecord writes one response record. targetURI is the capture
// URL, date the capture time, body the raw payload.
func (w *Writer) WriteRecord(targetURI string, date time.Time, body []byte) error {
	fields := []Field{
		{Name: "WARC-Type", Value: "response"},
		{Name: "WARC-Record-ID", Value: "<urn:uuid:" + uuid.NewString() + ">"},
		{Name: "WARC-Date", Value: date.UTC().Format(time.RFC3339)},
		{Name: "WARC-Target-URI", Value: targetURI},
		{Name: "Content-Type", Value: "application/json"},
		{Name: "Content-Length", Value: strconv.Itoa(len(body))},
	}

	// One record per Write call, so interrupted runs end on a record
	// boundary.
	var b bytes.Buffer
	b.WriteString(Version)
	b.WriteString("\r\n")
	for _, f := range fields {
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.Write(body)
	b.WriteString("\r\n\r\n")

	_, err := w.w.Write(b.Bytes())
	return err
}
