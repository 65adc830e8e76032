// Package strikes provides a Redis-backed escalating-strike ledger for
// sessions whose content gets escalated. Strikes accumulate in a 24h
// counter; crossing the threshold blocks further submissions for an
// escalating duration:
//
//	Key:   strikes:<session_id>  (counter, 24h TTL)
//	Key:   block:<session_id>    (reason, TTL = block duration)
package strikes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// StrikesPrefix is the Redis key prefix for strike counters.
	StrikesPrefix = "strikes:"

	// BlockPrefix is the Redis key prefix for active submission blocks.
	BlockPrefix = "block:"

	// Escalating block durations.
	Block15Min  = 15 * time.Minute // first block
	Block1Hour  = 1 * time.Hour    // second block
	Block24Hour = 24 * time.Hour   // third and later blocks

	// StrikesTTL is how long the strike counter lives without new strikes.
	StrikesTTL = 24 * time.Hour

	// BlockThreshold is the number of strikes within StrikesTTL that
	// triggers a submission block.
	BlockThreshold = 3
)

// Store manages strike counters and submission blocks in Redis.
type Store struct {
	client *redis.Client
}

// NewStore creates a strike store using the provided Redis client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// IsBlocked checks whether a session is currently blocked from submitting.
// Returns (blocked, remainingSeconds, reason, error). Redis errors are
// returned so callers can decide how to handle them; the recommended
// policy is fail-open.
func (s *Store) IsBlocked(ctx context.Context, sessionID string) (bool, int, string, error) {
	key := BlockPrefix + sessionID

	reason, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, 0, "", nil
	}
	if err != nil {
		return false, 0, "", err
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		// The block exists but the TTL is unreadable. Report blocked with 0
		// remaining rather than swallowing the block.
		return true, 0, reason, nil
	}

	remaining := 0
	if ttl > 0 {
		remaining = int(ttl.Seconds())
	}

	return true, remaining, reason, nil
}

// Count returns the current strike counter for a session. Returns 0 if the
// counter does not exist or has expired.
func (s *Store) Count(ctx context.Context, sessionID string) (int, error) {
	val, err := s.client.Get(ctx, StrikesPrefix+sessionID).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}

// Record increments the strike counter for a session and, once the counter
// reaches BlockThreshold, applies a submission block whose duration
// escalates with the number of strikes past the threshold:
//
//	3rd strike  -> 15 minutes
//	4th strike  -> 1 hour
//	5th+ strike -> 24 hours
//
// The counter has a 24h TTL set on first increment, so it naturally resets
// after a day without new strikes. Returns (blocked, blockDuration, error).
func (s *Store) Record(ctx context.Context, sessionID string, reason string) (bool, time.Duration, error) {
	key := StrikesPrefix + sessionID

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("strikes: record incr: %w", err)
	}

	// Set TTL only on first increment so the window doesn't slide.
	if count == 1 {
		if err := s.client.Expire(ctx, key, StrikesTTL).Err(); err != nil {
			return false, 0, fmt.Errorf("strikes: record expire: %w", err)
		}
	}

	if count < BlockThreshold {
		return false, 0, nil
	}

	duration := blockDuration(int(count))
	blockKey := BlockPrefix + sessionID
	if err := s.client.Set(ctx, blockKey, reason, duration).Err(); err != nil {
		return false, 0, fmt.Errorf("strikes: record block: %w", err)
	}

	return true, duration, nil
}

// Clear removes a session's block and strike counter immediately.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, BlockPrefix+sessionID, StrikesPrefix+sessionID).Err()
}

// blockDuration returns the block duration for a given strike count.
func blockDuration(count int) time.Duration {
	switch {
	case count <= BlockThreshold:
		return Block15Min
	case count == BlockThreshold+1:
		return Block1Hour
	default:
		return Block24Hour
	}
}
