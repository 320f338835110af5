package chart

import (
	"sync"
	"time"
)

// DefaultThrottle is the minimum redraw interval when the config does not
// set one.
const DefaultThrottle = 200 * time.Millisecond

// Throttle rate-limits redraws to a minimum interval, independent of how
// often the sampling side produces new data. Requests inside the window are
// coalesced: they mark a redraw pending, and the next Ready poll past the
// window releases exactly one. Requests are never queued beyond that single
// pending flag, so a burst collapses into one redraw.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	pending  bool
	now      func() time.Time
}

// NewThrottle creates a throttle with the given minimum interval.
// Non-positive intervals fall back to DefaultThrottle.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		interval = DefaultThrottle
	}
	return &Throttle{interval: interval, now: time.Now}
}

// Interval returns the minimum redraw interval.
func (t *Throttle) Interval() time.Duration {
	return t.interval
}

// Request asks for a redraw. It returns true when the caller should render
// immediately; otherwise the request is coalesced into the next window.
func (t *Throttle) Request() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if now.Sub(t.last) >= t.interval {
		t.last = now
		t.pending = false
		return true
	}
	t.pending = true
	return false
}

// Ready releases a coalesced request once the window has elapsed. It
// returns true at most once per pending request.
func (t *Throttle) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.pending {
		return false
	}
	now := t.now()
	if now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	t.pending = false
	return true
}
