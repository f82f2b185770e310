package log

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Entry represents a structured log entry.
type Entry struct {
	Timestamp time.Time
	Level     Level
	Caller    string
	RequestID string
	Message   string
	Fields    map[string]any
}

// NewEntry creates a new log entry with the current timestamp.
func NewEntry(level Level, msg string) *Entry {
	return &Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   msg,
		Fields:    make(map[string]any),
	}
}

// With adds key-value pairs to the entry's fields.
// Keys and values are provided as alternating arguments.
// If an odd number of arguments is provided, the last key is ignored.
func (e *Entry) With(keysAndValues ...any) *Entry {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		e.Fields[key] = keysAndValues[i+1]
	}
	return e
}

// MarshalJSON implements json.Marshaler for structured JSON output.
// Fields are flattened into the root object, error values become
// their messages, and empty optional fields (caller, request_id) are
// omitted.
func (e Entry) MarshalJSON() ([]byte, error) {
	m := make(map[string]any)

	m["timestamp"] = e.Timestamp.UTC().Format(time.RFC3339)
	m["level"] = e.Level.String()
	m["msg"] = e.Message

	if e.Caller != "" {
		m["caller"] = e.Caller
	}

	if e.RequestID != "" {
		m["request_id"] = e.RequestID
	}

	// Flatten fields into root
	for k, v := range e.Fields {
		m[k] = fieldValue(v)
	}

	return json.Marshal(m)
}

// Text renders the entry in the human form the command-line tools
// write to stderr: capitalized level name, message, then the fields
// as sorted key=value pairs.
func (e Entry) Text() string {
	var b strings.Builder
	b.WriteString(e.Level.Name())
	b.WriteString(": ")
	b.WriteString(e.Message)

	if e.RequestID != "" {
		b.WriteString(" request_id=")
		b.WriteString(e.RequestID)
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(fmt.Sprint(fieldValue(e.Fields[k])))
	}

	return b.String()
}

// fieldValue keeps field payloads serializable: a bare error would
// otherwise marshal to an empty object and lose its message.
func fieldValue(v any) any {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}
