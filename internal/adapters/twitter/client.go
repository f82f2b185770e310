package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dghubble/oauth1"

	"rethread/internal/domain"
	"rethread/pkg/log"
)

// DefaultBaseURL is the production v1.1 endpoint root.
const DefaultBaseURL = "https://api.twitter.com/1.1"

// Config carries everything the client needs. The four credential
// values come from the application's settings on the service; they
// are read from the environment, never from configuration files.
type Config struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
	Timeout        time.Duration

	// WaitOnRateLimit makes Lookup sleep through an exhausted window
	// instead of returning a rate limit error.
	WaitOnRateLimit bool
}

// Client looks up single statuses against the v1.1 API. The raw
// response body is preserved on every tweet so it can be re-encoded
// into archive records unchanged.
type Client struct {
	base    string
	http    *http.Client
	waitOut bool

	mu   sync.Mutex
	rate RateLimit
}

// NewClient builds a client from cfg. Construction fails when any
// credential is missing; an unauthenticated client cannot make a
// single valid request, so failing early beats failing per lookup.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" ||
		cfg.AccessToken == "" || cfg.AccessSecret == "" {
		return nil, fmt.Errorf("incomplete credentials: %w", domain.ErrAuthFailed)
	}

	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	oauthCfg := oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessSecret)
	httpClient := oauthCfg.Client(oauth1.NoContext, token)
	httpClient.Timeout = timeout

	return &Client{
		base:    strings.TrimSuffix(base, "/"),
		http:    httpClient,
		waitOut: cfg.WaitOnRateLimit,
	}, nil
}

// RateLimit returns the snapshot from the most recent response.
func (c *Client) RateLimit() RateLimit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

// Lookup fetches one status by ID in extended mode.
func (c *Client) Lookup(ctx context.Context, id string) (*domain.Tweet, error) {
	if c.waitOut {
		if wait := c.RateLimit().Wait(time.Now()); wait > 0 {
			log.GlobalDebugCtx(ctx, "rate limit window exhausted, waiting",
				"status_id", id, "wait", wait.String())
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
		}
	}

	q := url.Values{}
	q.Set("id", id)
	q.Set("tweet_mode", "extended")
	q.Set("trim_user", "false")
	q.Set("include_entities", "true")
	q.Set("include_ext_alt_text", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.base+"/statuses/show.json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: reading response: %w", id, err)
	}

	if rl, ok := parseRateLimit(resp.Header); ok {
		c.mu.Lock()
		c.rate = rl
		c.mu.Unlock()
	}

	return c.decode(id, resp, body)
}

// decode turns a response into a tweet or the error that best
// describes why there is none. The numeric API error code is more
// reliable than the HTTP status, so it is consulted first.
func (c *Client) decode(id string, resp *http.Response, body []byte) (*domain.Tweet, error) {
	if resp.StatusCode == http.StatusOK {
		tweet, err := ExtractTweet(body)
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", id, err)
		}
		return tweet, nil
	}

	code := apiErrorCode(body)
	switch {
	case code == 34 || code == 144 || resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("status %s: %w", id, domain.ErrTweetNotFound)
	case code == 179 || code == 63:
		return nil, fmt.Errorf("status %s: %w", id, domain.ErrTweetProtected)
	case code == 32 || code == 215 || resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("lookup %s: %w", id, domain.ErrAuthFailed)
	case code == 88 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, &domain.RateLimitError{RetryAfter: retryAfter(resp.Header, c.RateLimit())}
	case overCapacity(body):
		// During outages the service serves an HTML page instead of
		// JSON. Transient; the caller retries.
		return nil, fmt.Errorf("lookup %s: service over capacity", id)
	default:
		return nil, fmt.Errorf("lookup %s: unexpected response %d: %s",
			id, resp.StatusCode, summarize(body))
	}
}

// apiErrorCode pulls the first error code out of an error body, zero
// when the body is not the JSON error shape.
func apiErrorCode(body []byte) int {
	var parsed errorsJSON
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Errors) == 0 {
		return 0
	}
	return parsed.Errors[0].Code
}

// overCapacity detects the HTML failure pages the service serves
// during outages.
func overCapacity(body []byte) bool {
	return bytes.Contains(body, []byte("<title>Twitter / Over capacity</title>")) ||
		bytes.Contains(body, []byte("<title>Twitter / Error</title>"))
}

// summarize trims a response body down to something loggable.
func summarize(body []byte) string {
	s := strings.TrimSpace(string(body))
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
}

// sleep waits d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
