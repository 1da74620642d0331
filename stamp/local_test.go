package stamp

import (
	"context"
	"testing"
	"time"
)

func TestLocalSnapshotMissingIsZero(t *testing.T) {
	s := NewLocal(0, 0)
	defer s.Close(context.Background())

	g, err := s.Snapshot(context.Background(), "k")
	if err != nil || g != 0 {
		t.Fatalf("Snapshot missing: want 0, got %d err=%v", g, err)
	}
}

func TestLocalBumpIncrements(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, 0)
	defer s.Close(ctx)

	for want := uint64(1); want <= 3; want++ {
		g, err := s.Bump(ctx, "k")
		if err != nil || g != want {
			t.Fatalf("Bump: want %d, got %d err=%v", want, g, err)
		}
	}
	if g, _ := s.Snapshot(ctx, "k"); g != 3 {
		t.Fatalf("Snapshot after bumps: want 3, got %d", g)
	}
	if g, _ := s.Snapshot(ctx, "other"); g != 0 {
		t.Fatalf("Snapshot of untouched key: want 0, got %d", g)
	}
}

func TestLocalCleanupPrunesOld(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, 0)
	defer s.Close(ctx)

	if _, err := s.Bump(ctx, "old"); err != nil {
		t.Fatalf("Bump: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	s.Cleanup(time.Nanosecond)

	// pruned entries read as 0 again
	if g, _ := s.Snapshot(ctx, "old"); g != 0 {
		t.Fatalf("Snapshot after cleanup: want 0, got %d", g)
	}
}
