package twitter

import (
	"net/http"
	"strconv"
	"testing"
	"time"
)

func TestRateLimit_Wait_ZeroWhileRequestsRemain(t *testing.T) {
	// Arrange
	now := time.Now()
	rl := RateLimit{Limit: 900, Remaining: 5, Reset: now.Add(10 * time.Minute)}

	// Act & Assert
	if wait := rl.Wait(now); wait != 0 {
		t.Errorf("expected zero wait with requests remaining, got %v", wait)
	}
}

func TestRateLimit_Wait_ZeroBeforeFirstResponse(t *testing.T) {
	// Arrange
	var rl RateLimit

	// Act & Assert
	if rl.Known() {
		t.Error("expected an empty snapshot to be unknown")
	}
	if wait := rl.Wait(time.Now()); wait != 0 {
		t.Errorf("expected zero wait for an unknown snapshot, got %v", wait)
	}
}

func TestRateLimit_Wait_UntilResetPlusSkew(t *testing.T) {
	// Arrange
	now := time.Now()
	rl := RateLimit{Limit: 900, Remaining: 0, Reset: now.Add(30 * time.Second)}

	// Act
	wait := rl.Wait(now)

	// Assert
	if wait != 32*time.Second {
		t.Errorf("expected 32s wait, got %v", wait)
	}
}

func TestRateLimit_Wait_ElapsedWindowNeedsNoWait(t *testing.T) {
	// Arrange
	now := time.Now()
	rl := RateLimit{Remaining: 0, Reset: now.Add(-time.Minute)}

	// Act & Assert
	if wait := rl.Wait(now); wait != 0 {
		t.Errorf("expected zero wait after the window elapsed, got %v", wait)
	}
}

func TestParseRateLimit_ReadsHeaderTriple(t *testing.T) {
	// Arrange
	reset := time.Now().Add(15 * time.Minute).Unix()
	h := http.Header{}
	h.Set("x-rate-limit-limit", "900")
	h.Set("x-rate-limit-remaining", "899")
	h.Set("x-rate-limit-reset", strconv.FormatInt(reset, 10))

	// Act
	rl, ok := parseRateLimit(h)

	// Assert
	if !ok {
		t.Fatal("expected headers to parse")
	}
	if rl.Limit != 900 || rl.Remaining != 899 {
		t.Errorf("unexpected snapshot %+v", rl)
	}
	if rl.Reset.Unix() != reset {
		t.Errorf("expected reset %d, got %d", reset, rl.Reset.Unix())
	}
}

func TestParseRateLimit_MissingResetHeader_NotOK(t *testing.T) {
	// Arrange
	h := http.Header{}
	h.Set("x-rate-limit-remaining", "10")

	// Act
	_, ok := parseRateLimit(h)

	// Assert
	if ok {
		t.Fatal("expected headers without a reset to be rejected")
	}
}

func TestRetryAfter_PrefersRetryAfterHeader(t *testing.T) {
	// Arrange
	h := http.Header{}
	h.Set("Retry-After", "45")
	rl := RateLimit{Remaining: 0, Reset: time.Now().Add(10 * time.Minute)}

	// Act
	wait := retryAfter(h, rl)

	// Assert
	if wait != 45*time.Second {
		t.Errorf("expected 45s from the header, got %v", wait)
	}
}

func TestRetryAfter_FallsBackToTrackedWindow(t *testing.T) {
	// Arrange
	rl := RateLimit{Remaining: 0, Reset: time.Now().Add(time.Minute)}

	// Act
	wait := retryAfter(http.Header{}, rl)

	// Assert
	if wait < 30*time.Second || wait > 2*time.Minute {
		t.Errorf("expected a wait near the window reset, got %v", wait)
	}
}
