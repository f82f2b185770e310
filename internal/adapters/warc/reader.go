package warc

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FormatError reports one malformed record. The reader resynchronizes
// past the bad bytes on its own, so a caller can log the error and
// keep calling Next.
type FormatError struct {
	Offset int64 // Byte offset where the bad record started
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed record at offset %d: %s", e.Offset, e.Reason)
}

// Reader is a forward-only iterator over an uncompressed WARC stream.
//
// A malformed record yields a *FormatError, and the reader skips
// ahead to the next version line. Every decodable record before and
// after a bad one still comes out, in order.
type Reader struct {
	br      *bufio.Reader
	offset  int64
	pending string // Version line found while resynchronizing
}

// NewReader returns a reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Next returns the next envelope, io.EOF at the end of the stream, or
// a *FormatError for a record that could not be decoded.
func (r *Reader) Next() (*Envelope, error) {
	version, start, err := r.version()
	if err != nil {
		return nil, err
	}

	env := &Envelope{Version: version}
	for {
		lineStart := r.offset
		line, err := r.readLine()
		if err == io.EOF {
			return nil, &FormatError{Offset: lineStart, Reason: "record cut off inside header"}
		}
		if err != nil {
			return nil, err
		}
		if line == "" {
			break
		}
		if strings.HasPrefix(line, versionPrefix) {
			// The previous record never got a body. Resume from here.
			r.pending = line
			return nil, &FormatError{Offset: start, Reason: "record has no body"}
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, r.fail(lineStart, "header line without a colon")
		}
		env.Fields = append(env.Fields, Field{Name: name, Value: strings.TrimSpace(value)})
	}

	length := env.Get("Content-Length")
	if length == "" {
		return nil, r.fail(start, "missing Content-Length")
	}
	n, err := strconv.Atoi(length)
	if err != nil || n < 0 {
		return nil, r.fail(start, "invalid Content-Length "+strconv.Quote(length))
	}

	body := make([]byte, n)
	read, err := io.ReadFull(r.br, body)
	r.offset += int64(read)
	if err != nil {
		return nil, &FormatError{Offset: start, Reason: "body cut off"}
	}
	env.Body = body
	return env, nil
}

// version finds the next version line: one remembered from a resync,
// or the next non-blank line in the stream.
func (r *Reader) version() (line string, start int64, err error) {
	if r.pending != "" {
		line, r.pending = r.pending, ""
		return line, r.offset, nil
	}
	for {
		start = r.offset
		line, err = r.readLine()
		if err != nil {
			return "", start, err
		}
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, versionPrefix) {
			return "", start, r.fail(start, "expected version line")
		}
		return line, start, nil
	}
}

// fail records a format error and skips ahead to the next version
// line so the following Next call starts clean.
func (r *Reader) fail(offset int64, reason string) error {
	r.resync()
	return &FormatError{Offset: offset, Reason: reason}
}

// resync reads lines until a version line turns up, remembering it
// for the next record.
func (r *Reader) resync() {
	for {
		line, err := r.readLine()
		if err != nil {
			return
		}
		if strings.HasPrefix(line, versionPrefix) {
			r.pending = line
			return
		}
	}
}

// readLine reads one line, accepting both \n and \r\n endings and a
// missing newline on the final line.
func (r *Reader) readLine() (string, error) {
	line, err := r.br.ReadString('\n')
	r.offset += int64(len(line))
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSuffix(line, "\r"), nil
		}
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}
