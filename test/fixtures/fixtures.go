// Package fixtures provides capture payloads, WARC envelopes and
// rendered page fixtures for tests.
package fixtures

import (
	"fmt"
	"strconv"
	"strings"
)

// GenerateStatusJSON builds a v1.1 status payload. replyToID and
// replyToHandle may be empty for a root status.
func GenerateStatusJSON(id, handle, text, replyToID, replyToHandle string) string {
	b := &strings.Builder{}
	b.WriteString(`{"created_at":"Wed Aug 27 13:08:45 +0000 2008"`)
	fmt.Fprintf(b, `,"id_str":%q,"text":%q,"truncated":false`, id, text)
	if replyToID != "" {
		fmt.Fprintf(b, `,"in_reply_to_status_id_str":%q,"in_reply_to_screen_name":%q`, replyToID, replyToHandle)
	} else {
		b.WriteString(`,"in_reply_to_status_id_str":null,"in_reply_to_screen_name":null`)
	}
	fmt.Fprintf(b, `,"user":{"screen_name":%q,"name":"Fixture User"},"entities":{"urls":[]}}`, handle)
	return b.String()
}

// GenerateExtendedStatusJSON builds a status payload in extended mode,
// carrying full_text instead of text.
func GenerateExtendedStatusJSON(id, handle, fullText string) string {
	return fmt.Sprintf(
		`{"created_at":"Wed Aug 27 13:08:45 +0000 2008","id_str":%q,"full_text":%q,"truncated":false,"user":{"screen_name":%q,"name":"Fixture User"},"entities":{"urls":[]}}`,
		id, fullText, handle)
}

// GenerateProfileJSON builds a user profile payload embedding the
// account's latest status, the second shape capture archives hold.
func GenerateProfileJSON(handle, statusID, text, replyToID, replyToHandle string) string {
	embedded := fmt.Sprintf(
		`{"created_at":"Wed Aug 27 13:08:45 +0000 2008","id_str":%q,"text":%q,"truncated":false,"in_reply_to_status_id_str":%s,"in_reply_to_screen_name":%s}`,
		statusID, text, stringOrNull(replyToID), stringOrNull(replyToHandle))
	return fmt.Sprintf(`{"screen_name":%q,"name":"Fixture User","followers_count":42,"status":%s}`, handle, embedded)
}

// GenerateEmptyProfileJSON builds a profile payload with no embedded
// status.
func GenerateEmptyProfileJSON(handle string) string {
	return fmt.Sprintf(`{"screen_name":%q,"name":"Fixture User","followers_count":0}`, handle)
}

func stringOrNull(s string) string {
	if s == "" {
		return "null"
	}
	return strconv.Quote(s)
}

// GenerateEnvelope wraps a payload in a well-formed WARC envelope.
func GenerateEnvelope(payload string) string {
	return "WARC/1.0\r\n" +
		"WARC-Type: response\r\n" +
		"WARC-Target-URI: https://twitter.com/i/status/0\r\n" +
		"Content-Type: application/json\r\n" +
		"Content-Length: " + strconv.Itoa(len(payload)) + "\r\n" +
		"\r\n" +
		payload + "\r\n\r\n"
}

// GenerateArchive concatenates envelopes into one WARC stream.
func GenerateArchive(envelopes ...string) string {
	return strings.Join(envelopes, "")
}

// GenerateJunk returns bytes no envelope reader should accept.
func GenerateJunk() string {
	return "this is not a warc record\nat all\n\n"
}

// GenerateStatusPage renders a minimal permalink page for one status,
// the way the service's web client lays it out.
func GenerateStatusPage(handle, id, text string) string {
	return `
<!DOCTYPE html>
<html>
<head><title>Post</title></head>
<body>
<article data-testid="tweet">
    <div data-testid="User-Name">
        <span>Fixture User</span>
        <a href="/` + handle + `/status/` + id + `">@` + handle + `</a>
    </div></div></div>
    <div data-testid="tweetText" dir="ltr">` + text + `</div>
    <time datetime="2026-01-01T12:00:00.000Z">12:00 PM · Jan 1, 2026</time>
</article>
</body>
</html>
`
}

// GenerateReplyPage renders a permalink page with the parent status
// above the focal one, as thread pages show ancestors.
func GenerateReplyPage(parentHandle, parentID, parentText, handle, id, text string) string {
	return `
<!DOCTYPE html>
<html>
<head><title>Post</title></head>
<body>
<article data-testid="tweet">
    <div data-testid="User-Name">
        <span>Parent Author</span>
        <a href="/` + parentHandle + `/status/` + parentID + `">
            <time datetime="2026-01-01T11:00:00.000Z">11:00 AM</time>
        </a>
    </div></div></div>
    <div data-testid="tweetText" dir="ltr">` + parentText + `</div>
</article>
<article data-testid="tweet">
    <div data-testid="User-Name">
        <span>Fixture User</span>
        <a href="/` + handle + `/status/` + id + `">@` + handle + `</a>
    </div></div></div>
    <div data-testid="tweetText" dir="ltr">` + text + `</div>
    <time datetime="2026-01-01T12:00:00.000Z">12:00 PM · Jan 1, 2026</time>
</article>
</body>
</html>
`
}

// GenerateUnavailablePage renders the tombstone served for deleted or
// nonexistent statuses.
func GenerateUnavailablePage() string {
	return `
<!DOCTYPE html>
<html>
<head><title>Post</title></head>
<body>
<div>Hmm...this page doesn't exist. Try searching for something else.</div>
</body>
</html>
`
}
