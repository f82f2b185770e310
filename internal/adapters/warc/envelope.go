// Package warc reads and writes the record envelopes the capture
// archives use: a version line, header fields, a blank line, then a
// body of exactly Content-Length bytes.
package warc

import "strings"

// Version is the version line this package emits. Reading accepts any
// WARC/ revision.
const Version = "WARC/1.0"

const versionPrefix = "WARC/"

// Envelope is a single record.
type Envelope struct {
	Version string  // e.g. "WARC/1.0"
	Fields  []Field // Header fields in file order
	Body    []byte
}

// Field is one header line. Names keep their original case.
type Field struct {
	Name  string
	Value string
}

// Get returns the value of the first field matching name,
// case-insensitively, or the empty string when the field is absent.
func (e *Envelope) Get(name string) string {
	for _, f := range e.Fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return ""
}
