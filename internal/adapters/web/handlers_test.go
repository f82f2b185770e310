package web

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"rethread/internal/adapters/cache"
	"rethread/internal/domain"
	"rethread/internal/usecases"

	"github.com/gofiber/fiber/v2"
)

// stubLookup serves canned tweets and errors by status id.
type stubLookup struct {
	tweets map[string]*domain.Tweet
	errs   map[string]error
}

func (s *stubLookup) Lookup(ctx context.Context, statusID string) (*domain.Tweet, error) {
	if err, ok := s.errs[statusID]; ok {
		return nil, err
	}
	if tweet, ok := s.tweets[statusID]; ok {
		return tweet, nil
	}
	return nil, domain.ErrTweetNotFound
}

func storeTweet(id, handle, replyTo string) *domain.Tweet {
	t := &domain.Tweet{
		ID:     id,
		Author: domain.Author{Handle: handle, Name: "Fixture User"},
		Text:   "tweet " + id,
	}
	if replyTo != "" {
		t.InReplyTo = &domain.Reference{StatusID: replyTo, Handle: handle}
	}
	return t
}

// serverApp builds a full app around the given store and lookup, with
// a limiter generous enough to stay invisible.
func serverApp(store *Store, lookup usecases.TweetLookup) *fiber.App {
	resolve := usecases.NewResolveThreadUseCase(
		lookup,
		cache.NewMemoryCache(time.Minute),
		nil,
		usecases.Options{Budget: 10, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond},
	)
	app := fiber.New()
	SetupRoutes(app, NewHandlers(store, resolve), NewRateLimiter(100, time.Minute))
	return app
}

func getJSON(t *testing.T, app *fiber.App, path string, out any) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == fiber.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestHealthz_ReportsLoadedTweets(t *testing.T) {
	// Arrange
	store := NewStore()
	store.Add(storeTweet("1", "alice", ""))
	store.Add(storeTweet("2", "bob", "1"))
	app := serverApp(store, &stubLookup{})

	// Act
	var body struct {
		Status string `json:"status"`
		Tweets int    `json:"tweets"`
	}
	code := getJSON(t, app, "/healthz", &body)

	// Assert
	if code != fiber.StatusOK {
		t.Fatalf("status: got %d, want 200", code)
	}
	if body.Status != "ok" {
		t.Errorf("status field: got %q, want ok", body.Status)
	}
	if body.Tweets != 2 {
		t.Errorf("tweets: got %d, want 2", body.Tweets)
	}
}

func TestStats_ReturnsScanCounters(t *testing.T) {
	// Arrange
	store := NewStore()
	store.AddStats(domain.ScanStats{Envelopes: 5, Tweets: 3, Skipped: 1, Empties: 1})
	app := serverApp(store, &stubLookup{})

	// Act
	var body struct {
		Envelopes int `json:"envelopes"`
		Tweets    int `json:"tweets"`
		Skipped   int `json:"skipped"`
		Empties   int `json:"empties"`
	}
	code := getJSON(t, app, "/stats", &body)

	// Assert
	if code != fiber.StatusOK {
		t.Fatalf("status: got %d, want 200", code)
	}
	if body.Envelopes != 5 || body.Tweets != 3 || body.Skipped != 1 || body.Empties != 1 {
		t.Errorf("counters: got %+v", body)
	}
}

func TestListTweets_ReturnsCaptureOrder(t *testing.T) {
	// Arrange
	store := NewStore()
	store.Add(storeTweet("3", "alice", ""))
	store.Add(storeTweet("1", "bob", ""))
	store.Add(storeTweet("2", "alice", "1"))
	app := serverApp(store, &stubLookup{})

	// Act
	var body []tweetJSON
	code := getJSON(t, app, "/tweets", &body)

	// Assert
	if code != fiber.StatusOK {
		t.Fatalf("status: got %d, want 200", code)
	}
	if len(body) != 3 {
		t.Fatalf("length: got %d, want 3", len(body))
	}
	for i, want := range []string{"3", "1", "2"} {
		if body[i].ID != want {
			t.Errorf("tweets[%d].id: got %v, want %v", i, body[i].ID, want)
		}
	}
}

func TestListTweets_FiltersByAuthorCaseInsensitively(t *testing.T) {
	// Arrange
	store := NewStore()
	store.Add(storeTweet("1", "Alice", ""))
	store.Add(storeTweet("2", "bob", ""))
	app := serverApp(store, &stubLookup{})

	// Act
	var body []tweetJSON
	getJSON(t, app, "/tweets?author=alice", &body)

	// Assert
	if len(body) != 1 || body[0].ID != "1" {
		t.Errorf("filtered list: got %+v, want only tweet 1", body)
	}
}

func TestListTweets_RepliesFilterKeepsOnlyReplies(t *testing.T) {
	// Arrange
	store := NewStore()
	store.Add(storeTweet("1", "alice", ""))
	store.Add(storeTweet("2", "alice", "1"))
	app := serverApp(store, &stubLookup{})

	// Act
	var body []tweetJSON
	getJSON(t, app, "/tweets?replies=true", &body)

	// Assert
	if len(body) != 1 || body[0].ID != "2" {
		t.Errorf("filtered list: got %+v, want only the reply", body)
	}
}

func TestGetTweet_Found_ReturnsView(t *testing.T) {
	// Arrange
	store := NewStore()
	store.Add(storeTweet("42", "alice", "41"))
	app := serverApp(store, &stubLookup{})

	// Act
	var body tweetJSON
	code := getJSON(t, app, "/tweets/42", &body)

	// Assert
	if code != fiber.StatusOK {
		t.Fatalf("status: got %d, want 200", code)
	}
	if body.ID != "42" || body.Handle != "alice" {
		t.Errorf("view: got %+v", body)
	}
	if body.Permalink != "https://twitter.com/alice/status/42" {
		t.Errorf("permalink: got %v", body.Permalink)
	}
	if body.InReplyTo == nil || body.InReplyTo.StatusID != "41" {
		t.Errorf("in_reply_to: got %+v, want status 41", body.InReplyTo)
	}
}

func TestGetTweet_Missing_Returns404(t *testing.T) {
	// Arrange
	app := serverApp(NewStore(), &stubLookup{})

	// Act
	code := getJSON(t, app, "/tweets/999", nil)

	// Assert
	if code != fiber.StatusNotFound {
		t.Errorf("status: got %d, want 404", code)
	}
}

func TestGetThread_ResolvesChainEarliestFirst(t *testing.T) {
	// Arrange
	store := NewStore()
	store.Add(storeTweet("2", "alice", "1"))
	lookup := &stubLookup{tweets: map[string]*domain.Tweet{
		"1": storeTweet("1", "bob", ""),
	}}
	app := serverApp(store, lookup)

	// Act
	var body threadJSON
	code := getJSON(t, app, "/threads/2", &body)

	// Assert
	if code != fiber.StatusOK {
		t.Fatalf("status: got %d, want 200", code)
	}
	if body.Status != string(domain.ThreadResolved) {
		t.Errorf("thread status: got %v, want resolved", body.Status)
	}
	if len(body.Tweets) != 2 || body.Tweets[0].ID != "1" || body.Tweets[1].ID != "2" {
		t.Errorf("tweets: got %+v, want root first, seed last", body.Tweets)
	}
	if body.Lookups != 1 {
		t.Errorf("lookups: got %d, want 1", body.Lookups)
	}
}

func TestGetThread_MissingSeed_Returns404(t *testing.T) {
	// Arrange
	app := serverApp(NewStore(), &stubLookup{})

	// Act
	code := getJSON(t, app, "/threads/999", nil)

	// Assert
	if code != fiber.StatusNotFound {
		t.Errorf("status: got %d, want 404", code)
	}
}

func TestGetThread_MissingParent_ReportsUnresolved(t *testing.T) {
	// Arrange - parent 1 is gone from the service
	store := NewStore()
	store.Add(storeTweet("2", "alice", "1"))
	app := serverApp(store, &stubLookup{})

	// Act
	var body threadJSON
	code := getJSON(t, app, "/threads/2", &body)

	// Assert - an unresolved thread is data, not an HTTP failure
	if code != fiber.StatusOK {
		t.Fatalf("status: got %d, want 200", code)
	}
	if body.Status != string(domain.ThreadUnresolved) {
		t.Errorf("thread status: got %v, want unresolved", body.Status)
	}
	if body.Unresolved == nil {
		t.Fatal("unresolved field missing")
	}
	if body.Unresolved.StatusID != "1" || body.Unresolved.Reason != string(domain.ReasonNotFound) {
		t.Errorf("unresolved: got %+v", body.Unresolved)
	}
}

func TestGetThread_AuthFailure_Returns502(t *testing.T) {
	// Arrange
	store := NewStore()
	store.Add(storeTweet("2", "alice", "1"))
	lookup := &stubLookup{errs: map[string]error{"1": domain.ErrAuthFailed}}
	app := serverApp(store, lookup)

	// Act
	code := getJSON(t, app, "/threads/2", nil)

	// Assert
	if code != fiber.StatusBadGateway {
		t.Errorf("status: got %d, want 502", code)
	}
}
