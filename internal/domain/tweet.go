// Package domain contains the core business entities and rules.
package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Tweet represents a single captured or fetched status message.
// Values are immutable once an extractor or lookup has produced them.
type Tweet struct {
	ID        string
	Author    Author
	Text      string
	CreatedAt time.Time
	Truncated bool            // Marked truncated by the service itself
	InReplyTo *Reference      // nil at a thread root
	Links     []string        // Expanded URLs and media URLs from entities
	Raw       json.RawMessage // Status payload as captured, kept for re-encoding
}

// Author represents the message author.
type Author struct {
	Handle string
	Name   string
}

// Reference points at an earlier status that another tweet replies
// to. It is a pointer into the service, not a retrieved tweet.
type Reference struct {
	StatusID string
	Handle   string
}

// PermalinkURL returns the canonical status URL. Tweets whose author
// handle is unknown use the username-free /i/ form.
func (t *Tweet) PermalinkURL() string {
	return statusURL(t.Author.Handle, t.ID)
}

// URL returns the permalink of the referenced status.
func (r *Reference) URL() string {
	return statusURL(r.Handle, r.StatusID)
}

func statusURL(handle, id string) string {
	if handle == "" {
		handle = "i"
	}
	return "https://twitter.com/" + handle + "/status/" + id
}

// LooksTruncated reports whether the text appears cut off. Payloads
// that predate extended mode carry no full_text field, and the
// service marked the cut with a horizontal ellipsis; a payload with
// full_text is always complete.
func (t *Tweet) LooksTruncated() bool {
	if len(t.Raw) > 0 {
		var probe struct {
			FullText *string `json:"full_text"`
		}
		if err := json.Unmarshal(t.Raw, &probe); err == nil && probe.FullText != nil {
			return false
		}
	}
	return strings.ContainsRune(t.Text, '…')
}
