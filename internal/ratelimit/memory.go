package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process sliding window store. It keeps one
// timestamp log per client key; every configured window is evaluated
// against the same log. Entries older than the longest window are evicted
// lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string][]time.Time
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore initializes an empty in-memory store. The now function
// is injectable for tests; pass nil to use time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries: make(map[string][]time.Time),
		now:     now,
	}
}

// Allow checks every window against the client's request log. The check
// and the recording happen under one lock acquisition, so concurrent
// requests from the same client can never undercount each other.
func (s *MemoryStore) Allow(ctx context.Context, key string, windows []Window) (*Result, error) {
	if len(windows) == 0 {
		return nil, errNoWindows
	}

	now := s.now()
	horizon := now.Add(-maxDuration(windows))

	s.mu.Lock()
	defer s.mu.Unlock()

	log := pruneBefore(s.entries[key], horizon)

	for _, w := range windows {
		count := countSince(log, now.Add(-w.Duration))
		if count >= w.Limit {
			// Deny leaves the log untouched.
			if len(log) > 0 {
				s.entries[key] = log
			} else {
				delete(s.entries, key)
			}
			return &Result{
				State:         Deny,
				TotalRequests: count,
				ExpiresAt:     now.Add(w.Duration),
				Window:        w,
			}, nil
		}
	}

	log = append(log, now)
	s.entries[key] = log

	tightest := windows[tightestIndex(windows)]
	return &Result{
		State:         Allow,
		TotalRequests: countSince(log, now.Add(-tightest.Duration)),
		ExpiresAt:     now.Add(tightest.Duration),
		Window:        tightest,
	}, nil
}

// pruneBefore drops timestamps older than the horizon. The log is
// append-only and therefore sorted, so a single scan for the cut point
// suffices.
func pruneBefore(log []time.Time, horizon time.Time) []time.Time {
	cut := 0
	for cut < len(log) && !log[cut].After(horizon) {
		cut++
	}
	if cut == 0 {
		return log
	}
	return append([]time.Time(nil), log[cut:]...)
}

// countSince counts timestamps strictly after the given instant.
func countSince(log []time.Time, since time.Time) uint64 {
	var n uint64
	for i := len(log) - 1; i >= 0; i-- {
		if !log[i].After(since) {
			break
		}
		n++
	}
	return n
}
