package stamp

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	if ttl > 0 {
		return NewRedisWithTTL(client, "test", ttl), mr
	}
	return NewRedis(client, "test"), mr
}

func TestRedisSnapshotAndBump(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t, 0)

	if g, err := s.Snapshot(ctx, "k"); err != nil || g != 0 {
		t.Fatalf("Snapshot missing: want 0, got %d err=%v", g, err)
	}
	if g, err := s.Bump(ctx, "k"); err != nil || g != 1 {
		t.Fatalf("Bump: want 1, got %d err=%v", g, err)
	}
	if g, err := s.Bump(ctx, "k"); err != nil || g != 2 {
		t.Fatalf("Bump: want 2, got %d err=%v", g, err)
	}
	if g, err := s.Snapshot(ctx, "k"); err != nil || g != 2 {
		t.Fatalf("Snapshot: want 2, got %d err=%v", g, err)
	}
}

func TestRedisBumpRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, time.Minute)

	if _, err := s.Bump(ctx, "k"); err != nil {
		t.Fatalf("Bump: %v", err)
	}
	if ttl := mr.TTL("stamp:test:k"); ttl <= 0 {
		t.Fatalf("expected TTL on stamp key, got %v", ttl)
	}

	// expiry returns the key to stamp 0
	mr.FastForward(2 * time.Minute)
	if g, err := s.Snapshot(ctx, "k"); err != nil || g != 0 {
		t.Fatalf("Snapshot after expiry: want 0, got %d err=%v", g, err)
	}
}
