// Package twitter decodes the v1.1 status payloads the archives carry
// and looks live statuses up against the API.
package twitter

// statusJSON mirrors the slice of a v1.1 status payload this tool
// reads. Everything else in the payload rides along untouched in the
// raw bytes.
type statusJSON struct {
	ID                   int64        `json:"id"`
	IDStr                string       `json:"id_str"`
	Text                 string       `json:"text"`
	FullText             string       `json:"full_text"`
	Truncated            bool         `json:"truncated"`
	CreatedAt            string       `json:"created_at"`
	User                 userJSON     `json:"user"`
	InReplyToStatusID    int64        `json:"in_reply_to_status_id"`
	InReplyToStatusIDStr string       `json:"in_reply_to_status_id_str"`
	InReplyToScreenName  string       `json:"in_reply_to_screen_name"`
	Entities             entitiesJSON `json:"entities"`
	ExtendedEntities     entitiesJSON `json:"extended_entities"`
}

type userJSON struct {
	ScreenName string `json:"screen_name"`
	Name       string `json:"name"`
}

type entitiesJSON struct {
	URLs  []urlJSON   `json:"urls"`
	Media []mediaJSON `json:"media"`
}

type urlJSON struct {
	URL         string `json:"url"`
	ExpandedURL string `json:"expanded_url"`
}

type mediaJSON struct {
	MediaURL      string `json:"media_url"`
	MediaURLHTTPS string `json:"media_url_https"`
}

// profileJSON mirrors a v1.1 user payload. Profile captures embed the
// account's most recent status.
type profileJSON struct {
	ScreenName string      `json:"screen_name"`
	Name       string      `json:"name"`
	Status     *statusJSON `json:"status"`
}

// errorsJSON is the body the API attaches to non-200 responses.
type errorsJSON struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}
