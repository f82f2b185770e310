package scraper

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"rethread/internal/domain"
)

var (
	articleRe    = regexp.MustCompile(`<article[^>]*data-testid="tweet"[^>]*>`)
	statusLinkRe = regexp.MustCompile(`href="/([A-Za-z0-9_]+)/status/(\d+)"`)
	tweetTextRe  = regexp.MustCompile(`data-testid="tweetText"[^>]*>([\s\S]*?)</div>`)
	userNameRe   = regexp.MustCompile(`data-testid="User-Name"[^>]*>([\s\S]*?)</div></div></div>`)
	timestampRe  = regexp.MustCompile(`<time[^>]*datetime="([^"]+)"`)
	anchorRe     = regexp.MustCompile(`<a[^>]*href="([^"]+)"[^>]*>([\s\S]*?)</a>`)
	imageAltRe   = regexp.MustCompile(`<img[^>]*alt="([^"]*)"[^>]*>`)
	lineBreakRe  = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>`)
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	hSpaceRe     = regexp.MustCompile(`[^\S\n]+`)
	multiLineRe  = regexp.MustCompile(`\n{3,}`)
)

// statusLink is one /handle/status/id anchor found in the page.
type statusLink struct {
	handle string
	id     string
	pos    int
}

// parsePage extracts the status with the given id from a rendered
// permalink page. Thread pages show ancestor statuses above the focal
// one, so every field is anchored on the article holding the focal
// permalink rather than on document order.
func parsePage(page, statusID string, unavailableMarkers []string) (*domain.Tweet, error) {
	for _, marker := range unavailableMarkers {
		if marker != "" && strings.Contains(page, marker) {
			return nil, fmt.Errorf("status %s: %w", statusID, domain.ErrTweetNotFound)
		}
	}

	links := findStatusLinks(page)

	focal := -1
	focalHandle := ""
	for _, l := range links {
		if l.id == statusID {
			focal = l.pos
			focalHandle = l.handle
			break
		}
	}

	spanStart, spanEnd := focalSpan(page, focal)
	section := page[spanStart:spanEnd]

	text, extLinks, err := findTweetText(section)
	if err != nil {
		return nil, fmt.Errorf("status %s: %w", statusID, err)
	}

	tweet := &domain.Tweet{
		ID:    statusID,
		Text:  text,
		Links: extLinks,
		Author: domain.Author{
			Handle: focalHandle,
			Name:   findAuthorName(section),
		},
	}
	if tweet.Author.Handle == "" {
		tweet.Author.Handle = handleFromUserName(section)
	}

	// The nearest ancestor permalink above the focal article is the
	// status being replied to.
	if focal >= 0 {
		for i := range links {
			if links[i].pos >= spanStart {
				break
			}
			if links[i].id != statusID {
				tweet.InReplyTo = &domain.Reference{
					StatusID: links[i].id,
					Handle:   links[i].handle,
				}
			}
		}
	}

	if m := timestampRe.FindStringSubmatch(section); m != nil {
		if ts, err := time.Parse(time.RFC3339, m[1]); err == nil {
			tweet.CreatedAt = ts.UTC()
		}
	}

	return tweet, nil
}

func findStatusLinks(page string) []statusLink {
	var links []statusLink
	for _, m := range statusLinkRe.FindAllStringSubmatchIndex(page, -1) {
		links = append(links, statusLink{
			handle: page[m[2]:m[3]],
			id:     page[m[4]:m[5]],
			pos:    m[0],
		})
	}
	return links
}

// focalSpan bounds the article containing the focal permalink. With no
// permalink to anchor on it falls back to the first article, then to
// the whole page.
func focalSpan(page string, focal int) (int, int) {
	articles := articleRe.FindAllStringIndex(page, -1)
	if len(articles) == 0 {
		return 0, len(page)
	}

	start := articles[0][0]
	if focal >= 0 {
		for _, a := range articles {
			if a[0] > focal {
				break
			}
			start = a[0]
		}
	}

	end := len(page)
	for _, a := range articles {
		if a[0] > start {
			end = a[0]
			break
		}
	}
	return start, end
}

func findTweetText(section string) (string, []string, error) {
	m := tweetTextRe.FindStringSubmatch(section)
	if m == nil {
		return "", nil, errors.New("no status text in page")
	}

	text, links := renderText(m[1])
	if text == "" {
		return "", nil, errors.New("empty status text in page")
	}
	return text, links, nil
}

// renderText flattens the markup inside a text node to plain text.
// Internal anchors (mentions, hashtags) keep their visible text,
// external anchors are replaced with their href so shortened URLs
// survive, and emoji images are replaced with their alt glyph.
func renderText(markup string) (string, []string) {
	var extLinks []string

	out := &strings.Builder{}
	last := 0
	for _, m := range anchorRe.FindAllStringSubmatchIndex(markup, -1) {
		out.WriteString(markup[last:m[0]])
		href := markup[m[2]:m[3]]
		if strings.HasPrefix(href, "http") {
			out.WriteString(href)
			extLinks = append(extLinks, href)
		} else {
			out.WriteString(markup[m[4]:m[5]])
		}
		last = m[1]
	}
	out.WriteString(markup[last:])

	text := imageAltRe.ReplaceAllString(out.String(), "$1")
	text = lineBreakRe.ReplaceAllString(text, "\n")
	text = tagRe.ReplaceAllString(text, "")
	text = html.UnescapeString(text)

	return cleanText(text), extLinks
}

// cleanText collapses runs of horizontal whitespace while preserving
// intentional line breaks.
func cleanText(text string) string {
	text = hSpaceRe.ReplaceAllString(text, " ")
	text = multiLineRe.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// findAuthorName pulls the display name out of the header block, which
// renders the name followed by the @handle.
func findAuthorName(section string) string {
	m := userNameRe.FindStringSubmatch(section)
	if m == nil {
		return ""
	}

	header, _ := renderText(m[1])
	header = strings.ReplaceAll(header, "\n", " ")
	if at := strings.Index(header, "@"); at >= 0 {
		header = header[:at]
	}
	return strings.TrimSpace(header)
}

// handleFromUserName recovers the handle from the header block when no
// permalink on the page names the author.
func handleFromUserName(section string) string {
	m := userNameRe.FindStringSubmatch(section)
	if m == nil {
		return ""
	}

	header, _ := renderText(m[1])
	at := strings.Index(header, "@")
	if at < 0 || at+1 >= len(header) {
		return ""
	}
	handle := header[at+1:]
	if sp := strings.IndexAny(handle, " \n"); sp >= 0 {
		handle = handle[:sp]
	}
	return strings.TrimSpace(handle)
}
