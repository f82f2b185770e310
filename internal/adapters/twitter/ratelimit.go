package twitter

import (
	"net/http"
	"strconv"
	"time"
)

// RateLimit is the x-rate-limit header triple from the most recent
// API response.
type RateLimit struct {
	Limit     int       // Requests allowed per window
	Remaining int       // Requests left in the current window
	Reset     time.Time // When the window reopens
}

// Known reports whether any response has populated the snapshot yet.
func (r RateLimit) Known() bool {
	return !r.Reset.IsZero()
}

// Wait returns how long to hold off before the next request: zero
// while requests remain, otherwise the time until the window resets.
// The two extra seconds cover clock skew against the service.
func (r RateLimit) Wait(now time.Time) time.Duration {
	if !r.Known() || r.Remaining > 0 {
		return 0
	}
	wait := r.Reset.Sub(now) + 2*time.Second
	if wait < 0 {
		return 0
	}
	return wait
}

// parseRateLimit reads the header triple. ok is false when the
// response carried no rate-limit headers.
func parseRateLimit(h http.Header) (rl RateLimit, ok bool) {
	reset := h.Get("x-rate-limit-reset")
	if reset == "" {
		return RateLimit{}, false
	}
	epoch, err := strconv.ParseInt(reset, 10, 64)
	if err != nil {
		return RateLimit{}, false
	}
	rl.Reset = time.Unix(epoch, 0)
	rl.Limit, _ = strconv.Atoi(h.Get("x-rate-limit-limit"))
	rl.Remaining, _ = strconv.Atoi(h.Get("x-rate-limit-remaining"))
	return rl, true
}

// retryAfter derives the wait hint for a throttled response: the
// Retry-After header when the service sent one, otherwise the tracked
// window reset.
func retryAfter(h http.Header, rl RateLimit) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return rl.Wait(time.Now())
}
