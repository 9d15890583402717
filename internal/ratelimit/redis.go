package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const maxSortedSetScore = "+inf"

// RedisStore is a sliding window store backed by a Redis sorted set per
// client key, for deployments where the quota must hold across multiple
// server instances. Every request is added as a scored member first and
// removed again if any window turns out to be over its cap, so concurrent
// requests can over-deny but never undercount.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed store. The now function is
// injectable for tests; pass nil to use time.Now.
func NewRedisStore(client *redis.Client, now func() time.Time) *RedisStore {
	if now == nil {
		now = time.Now
	}
	return &RedisStore{
		client: client,
		now:    now,
	}
}

// Allow records the request in the client's sorted set, counts each
// window, and removes the entry again when a window is over its cap.
func (s *RedisStore) Allow(ctx context.Context, key string, windows []Window) (*Result, error) {
	if len(windows) == 0 {
		return nil, errNoWindows
	}

	now := s.now()
	horizon := now.Add(-maxDuration(windows))

	// every request needs a unique member
	member := uuid.New().String()

	p := s.client.Pipeline()
	p.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(horizon.UnixMilli(), 10))
	p.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: member,
	})
	counts := make([]*redis.IntCmd, len(windows))
	for i, w := range windows {
		minScore := strconv.FormatInt(now.Add(-w.Duration).UnixMilli()+1, 10)
		counts[i] = p.ZCount(ctx, key, minScore, maxSortedSetScore)
	}
	p.Expire(ctx, key, maxDuration(windows))

	if _, err := p.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to execute sorted set pipeline for key %v: %w", key, err)
	}

	for i, w := range windows {
		total, err := counts[i].Result()
		if err != nil {
			return nil, fmt.Errorf("failed to count items for key %v: %w", key, err)
		}
		if uint64(total) > w.Limit {
			if err := s.client.ZRem(ctx, key, member).Err(); err != nil {
				return nil, fmt.Errorf("failed to remove denied request from key %v: %w", key, err)
			}
			return &Result{
				State:         Deny,
				TotalRequests: uint64(total) - 1,
				ExpiresAt:     now.Add(w.Duration),
				Window:        w,
			}, nil
		}
	}

	ti := tightestIndex(windows)
	tightest := windows[ti]
	total, err := counts[ti].Result()
	if err != nil {
		return nil, fmt.Errorf("failed to count items for key %v: %w", key, err)
	}

	return &Result{
		State:         Allow,
		TotalRequests: uint64(total),
		ExpiresAt:     now.Add(tightest.Duration),
		Window:        tightest,
	}, nil
}
