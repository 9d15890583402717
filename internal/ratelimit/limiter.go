// Package ratelimit tracks per-client request counts within sliding windows
// and decides whether a request may proceed. Two stores implement the same
// contract: an in-process store for single-instance deployments and a
// Redis-backed store for shared quota across instances.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrRateLimitExceeded is returned when a client is over one of its quotas.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// errNoWindows is returned by Allow when no windows are configured.
var errNoWindows = errors.New("at least one rate limit window is required")

// Window is a cap on the number of requests within a contiguous duration.
type Window struct {
	Limit    uint64
	Duration time.Duration
}

// State represents the outcome of a rate limit check.
type State int64

const (
	Deny State = iota
	Allow
)

// StateStrings maps states to their HTTP header representation.
var StateStrings = map[State]string{
	Allow: "Allow",
	Deny:  "Deny",
}

// Result is the outcome of a rate limit check. On Deny, Window and
// TotalRequests describe the window that was breached; on Allow they
// describe the tightest configured window.
type Result struct {
	State         State
	TotalRequests uint64
	ExpiresAt     time.Time
	Window        Window
}

// Store decides whether a request identified by key may proceed given the
// configured windows. A request is allowed only when every window is under
// its cap; on allow it is recorded in all windows, on deny it is recorded
// in none. Windows may be passed in any order but must not be empty.
// Implementations must be safe for concurrent use.
type Store interface {
	Allow(ctx context.Context, key string, windows []Window) (*Result, error)
}

// maxDuration returns the longest window duration, used as the retention
// horizon for recorded requests.
func maxDuration(windows []Window) time.Duration {
	var max time.Duration
	for _, w := range windows {
		if w.Duration > max {
			max = w.Duration
		}
	}
	return max
}

// tightestIndex returns the index of the window with the shortest duration,
// whose state describes an allowed request in the Result.
func tightestIndex(windows []Window) int {
	idx := 0
	for i, w := range windows {
		if w.Duration < windows[idx].Duration {
			idx = i
		}
	}
	return idx
}
