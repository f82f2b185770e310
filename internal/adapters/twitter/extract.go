package twitter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"rethread/internal/domain"
)

// createdAtLayout is the Ruby-style date format the v1.1 API uses,
// e.g. "Wed Aug 27 13:08:45 +0000 2008".
const createdAtLayout = time.RubyDate

// ExtractTweet maps one captured payload to a domain tweet. Capture
// bodies come in two shapes: a status object, or a user profile whose
// status field embeds the account's latest status. A profile with no
// embedded status is a valid capture that just carries no tweet;
// those return domain.ErrEmptyEntry.
func ExtractTweet(payload []byte) (*domain.Tweet, error) {
	var probe struct {
		User   json.RawMessage `json:"user"`
		Status json.RawMessage `json:"status"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, fmt.Errorf("undecodable payload: %w", err)
	}

	switch {
	case present(probe.User):
		// A status object carries its author inline.
		var status statusJSON
		if err := json.Unmarshal(payload, &status); err != nil {
			return nil, fmt.Errorf("undecodable status: %w", err)
		}
		return mapStatus(&status, status.User, payload), nil

	case present(probe.Status):
		// A profile object. The author is the profile itself, and the
		// embedded status becomes the tweet's payload. The embedded
		// status has no user object of its own, so one is grafted in
		// to keep the payload self-contained for re-encoding.
		var profile profileJSON
		if err := json.Unmarshal(payload, &profile); err != nil {
			return nil, fmt.Errorf("undecodable profile: %w", err)
		}
		if profile.Status == nil {
			return nil, domain.ErrEmptyEntry
		}
		author := userJSON{ScreenName: profile.ScreenName, Name: profile.Name}
		return mapStatus(profile.Status, author, injectAuthor(probe.Status, author)), nil

	default:
		return nil, domain.ErrEmptyEntry
	}
}

// present reports whether a JSON field was there at all and not null.
func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

func mapStatus(s *statusJSON, author userJSON, raw []byte) *domain.Tweet {
	t := &domain.Tweet{
		ID:        s.IDStr,
		Author:    domain.Author{Handle: author.ScreenName, Name: author.Name},
		Text:      s.FullText,
		Truncated: s.Truncated,
		Links:     links(s),
		Raw:       append([]byte(nil), raw...),
	}
	if t.ID == "" && s.ID != 0 {
		t.ID = strconv.FormatInt(s.ID, 10)
	}
	if t.Text == "" {
		t.Text = s.Text
	}
	if ts, err := time.Parse(createdAtLayout, s.CreatedAt); err == nil {
		t.CreatedAt = ts
	}
	t.InReplyTo = replyRef(s)
	return t
}

// injectAuthor grafts a user object into raw status bytes, keeping
// the status's own fields untouched and in order.
func injectAuthor(status json.RawMessage, author userJSON) []byte {
	trimmed := bytes.TrimSpace(status)
	if len(trimmed) < 2 || trimmed[0] != '{' {
		return append([]byte(nil), status...)
	}
	user, err := json.Marshal(author)
	if err != nil {
		return append([]byte(nil), status...)
	}
	var b bytes.Buffer
	b.WriteString(`{"user":`)
	b.Write(user)
	rest := trimmed[1:]
	if !bytes.HasPrefix(bytes.TrimSpace(rest), []byte("}")) {
		b.WriteByte(',')
	}
	b.Write(rest)
	return b.Bytes()
}

func replyRef(s *statusJSON) *domain.Reference {
	id := s.InReplyToStatusIDStr
	if id == "" && s.InReplyToStatusID != 0 {
		id = strconv.FormatInt(s.InReplyToStatusID, 10)
	}
	if id == "" {
		return nil
	}
	return &domain.Reference{StatusID: id, Handle: s.InReplyToScreenName}
}

// links collects expanded URLs and media URLs from the entities.
// extended_entities supersedes entities for media when present.
func links(s *statusJSON) []string {
	var out []string
	for _, u := range s.Entities.URLs {
		switch {
		case u.ExpandedURL != "":
			out = append(out, u.ExpandedURL)
		case u.URL != "":
			out = append(out, u.URL)
		}
	}
	media := s.Entities.Media
	if len(s.ExtendedEntities.Media) > 0 {
		media = s.ExtendedEntities.Media
	}
	for _, m := range media {
		switch {
		case m.MediaURLHTTPS != "":
			out = append(out, m.MediaURLHTTPS)
		case m.MediaURL != "":
			out = append(out, m.MediaURL)
		}
	}
	return out
}
