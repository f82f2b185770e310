package cache_test

import (
	"errors"
	"testing"
	"time"

	"rethread/internal/adapters/cache"
	"rethread/internal/domain"
)

func TestMemoryCache_SetAndGet_ReturnsTweet(t *testing.T) {
	// Arrange
	c := cache.NewMemoryCache(5 * time.Minute)
	tweet := &domain.Tweet{
		ID:     "123",
		Author: domain.Author{Handle: "testuser"},
		Text:   "Hello world",
	}

	// Act
	c.Set("123", tweet, nil)
	result, lookupErr, found := c.Get("123")

	// Assert
	if !found {
		t.Error("expected tweet to be found")
	}
	if lookupErr != nil {
		t.Errorf("expected no cached error, got %v", lookupErr)
	}
	if result.ID != tweet.ID {
		t.Errorf("ID: got %v, want %v", result.ID, tweet.ID)
	}
	if result.Text != tweet.Text {
		t.Errorf("Text: got %v, want %v", result.Text, tweet.Text)
	}
}

func TestMemoryCache_GetNonExistent_ReturnsNotFound(t *testing.T) {
	// Arrange
	c := cache.NewMemoryCache(5 * time.Minute)

	// Act
	_, _, found := c.Get("999")

	// Assert
	if found {
		t.Error("expected nothing to be found")
	}
}

func TestMemoryCache_NegativeEntry_ReturnsCachedError(t *testing.T) {
	// Arrange
	c := cache.NewMemoryCache(5 * time.Minute)

	// Act
	c.Set("123", nil, domain.ErrTweetNotFound)
	result, lookupErr, found := c.Get("123")

	// Assert
	if !found {
		t.Error("expected the failure to be found")
	}
	if result != nil {
		t.Errorf("expected no tweet, got %+v", result)
	}
	if !errors.Is(lookupErr, domain.ErrTweetNotFound) {
		t.Errorf("expected ErrTweetNotFound, got %v", lookupErr)
	}
}

func TestMemoryCache_ExpiredEntry_ReturnsNotFound(t *testing.T) {
	// Arrange
	c := cache.NewMemoryCache(10 * time.Millisecond)
	tweet := &domain.Tweet{ID: "123"}

	// Act
	c.Set("123", tweet, nil)
	time.Sleep(20 * time.Millisecond) // Wait for expiration
	_, _, found := c.Get("123")

	// Assert
	if found {
		t.Error("expected expired entry to not be found")
	}
}

func TestMemoryCache_ZeroTTL_NeverExpires(t *testing.T) {
	// Arrange
	c := cache.NewMemoryCache(0)
	tweet := &domain.Tweet{ID: "123"}

	// Act
	c.Set("123", tweet, nil)
	time.Sleep(20 * time.Millisecond)
	_, _, found := c.Get("123")

	// Assert
	if !found {
		t.Error("expected the entry to outlive the sleep")
	}
}

func TestMemoryCache_OverwriteExisting_UpdatesEntry(t *testing.T) {
	// Arrange
	c := cache.NewMemoryCache(5 * time.Minute)
	updated := &domain.Tweet{ID: "123", Text: "Updated"}

	// Act
	c.Set("123", nil, domain.ErrTweetNotFound)
	c.Set("123", updated, nil)
	result, lookupErr, found := c.Get("123")

	// Assert
	if !found {
		t.Error("expected entry to be found")
	}
	if lookupErr != nil {
		t.Errorf("expected the cached error to be replaced, got %v", lookupErr)
	}
	if result == nil || result.Text != "Updated" {
		t.Errorf("got %+v, want the updated tweet", result)
	}
}
