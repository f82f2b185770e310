package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTweetNotFound is returned when a status does not exist or
	// was deleted.
	ErrTweetNotFound = errors.New("tweet not found or deleted")

	// ErrTweetProtected is returned when a status belongs to a
	// protected or suspended account.
	ErrTweetProtected = errors.New("tweet is not publicly visible")

	// ErrAuthFailed is returned when the service rejects the
	// credentials. It aborts the whole run, not just one lookup.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrEmptyEntry is returned for profile payloads that embed no
	// status.
	ErrEmptyEntry = errors.New("entry carries no status")

	// ErrRateLimited is returned when the lookup quota is exhausted.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrArchiveMalformed is returned when a scan decodes nothing at
	// all from a file.
	ErrArchiveMalformed = errors.New("archive contains no decodable records")
)

// RateLimitError carries the service's reset hint alongside
// ErrRateLimited. It matches ErrRateLimited under errors.Is.
type RateLimitError struct {
	RetryAfter time.Duration // Zero when the service gave no hint
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
	}
	return "rate limit exceeded"
}

// Is reports ErrRateLimited equivalence so callers can match either
// form.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}
