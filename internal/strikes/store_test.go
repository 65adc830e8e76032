package strikes

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// newTestStore creates a Store connected to a local Redis instance and
// flushes strike and block keys before returning. Tests that call this
// helper require a running Redis on localhost:6379.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	cleanup := func() {
		for _, pattern := range []string{StrikesPrefix + "test_*", BlockPrefix + "test_*"} {
			iter := client.Scan(ctx, 0, pattern, 100).Iterator()
			for iter.Next(ctx) {
				client.Del(ctx, iter.Val())
			}
		}
	}
	cleanup()
	t.Cleanup(func() {
		cleanup()
		client.Close()
	})
	return NewStore(client)
}

func TestIsBlocked_NotBlocked(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	blocked, remaining, reason, err := store.IsBlocked(ctx, "test_clean")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blocked {
		t.Errorf("expected not blocked, got blocked (remaining=%d reason=%q)", remaining, reason)
	}
}

func TestRecord_BelowThreshold(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sid := "test_two_strikes"

	for i := 0; i < BlockThreshold-1; i++ {
		blocked, _, err := store.Record(ctx, sid, "harmful content")
		if err != nil {
			t.Fatalf("Record() error: %v", err)
		}
		if blocked {
			t.Fatalf("blocked after %d strikes, threshold is %d", i+1, BlockThreshold)
		}
	}

	count, err := store.Count(ctx, sid)
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != BlockThreshold-1 {
		t.Errorf("count = %d, want %d", count, BlockThreshold-1)
	}
}

func TestRecord_ThresholdBlocks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sid := "test_threshold"

	var (
		blocked  bool
		duration = Block15Min
		err      error
	)
	for i := 0; i < BlockThreshold; i++ {
		blocked, duration, err = store.Record(ctx, sid, "harmful content")
		if err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}

	if !blocked {
		t.Fatalf("not blocked after %d strikes", BlockThreshold)
	}
	if duration != Block15Min {
		t.Errorf("first block duration = %v, want %v", duration, Block15Min)
	}

	isBlocked, remaining, reason, err := store.IsBlocked(ctx, sid)
	if err != nil {
		t.Fatalf("IsBlocked() error: %v", err)
	}
	if !isBlocked {
		t.Error("IsBlocked() = false after threshold was crossed")
	}
	if remaining <= 0 {
		t.Errorf("remaining = %d, want > 0", remaining)
	}
	if reason != "harmful content" {
		t.Errorf("reason = %q, want %q", reason, "harmful content")
	}
}

func TestRecord_EscalatingDurations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sid := "test_escalation"

	// Strikes 1-2 warn, 3 blocks 15m, 4 blocks 1h, 5 blocks 24h.
	expected := []struct {
		blocked  bool
		duration time.Duration
	}{
		{false, 0}, {false, 0}, {true, Block15Min}, {true, Block1Hour}, {true, Block24Hour},
	}

	for i, want := range expected {
		blocked, duration, err := store.Record(ctx, sid, "repeat offender")
		if err != nil {
			t.Fatalf("Record() strike %d error: %v", i+1, err)
		}
		if blocked != want.blocked {
			t.Errorf("strike %d: blocked = %v, want %v", i+1, blocked, want.blocked)
		}
		if want.blocked && duration != want.duration {
			t.Errorf("strike %d: duration = %v, want %v", i+1, duration, want.duration)
		}
	}
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sid := "test_clear"

	for i := 0; i < BlockThreshold; i++ {
		store.Record(ctx, sid, "harmful content")
	}
	if err := store.Clear(ctx, sid); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	blocked, _, _, err := store.IsBlocked(ctx, sid)
	if err != nil {
		t.Fatalf("IsBlocked() error: %v", err)
	}
	if blocked {
		t.Error("still blocked after Clear()")
	}
	count, _ := store.Count(ctx, sid)
	if count != 0 {
		t.Errorf("count = %d after Clear(), want 0", count)
	}
}
