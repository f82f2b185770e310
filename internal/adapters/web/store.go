// Package web serves loaded archives and on-demand thread resolution
// over HTTP.
package web

import (
	"strings"
	"sync"

	"rethread/internal/domain"
)

// Store is the in-memory index of every tweet the server loaded from
// its archives. Archives can capture the same status more than once;
// the first capture wins.
type Store struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*domain.Tweet
	stats domain.ScanStats
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{byID: make(map[string]*domain.Tweet)}
}

// Add indexes a tweet, keeping insertion order. Duplicate ids are
// ignored.
func (s *Store) Add(tweet *domain.Tweet) {
	if tweet == nil || tweet.ID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[tweet.ID]; exists {
		return
	}
	s.byID[tweet.ID] = tweet
	s.order = append(s.order, tweet.ID)
}

// AddStats merges one archive's scan counters into the store totals.
func (s *Store) AddStats(stats domain.ScanStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Add(stats)
}

// Get returns the tweet with the given id.
func (s *Store) Get(id string) (*domain.Tweet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tweet, ok := s.byID[id]
	return tweet, ok
}

// List returns tweets in capture order. author narrows to one handle,
// case-insensitively; repliesOnly keeps only tweets that reply to
// something.
func (s *Store) List(author string, repliesOnly bool) []*domain.Tweet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Tweet, 0, len(s.order))
	for _, id := range s.order {
		tweet := s.byID[id]
		if author != "" && !strings.EqualFold(tweet.Author.Handle, author) {
			continue
		}
		if repliesOnly && tweet.InReplyTo == nil {
			continue
		}
		out = append(out, tweet)
	}
	return out
}

// Len returns the number of indexed tweets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Stats returns the merged scan counters.
func (s *Store) Stats() domain.ScanStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}
