package bigcache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/Qix-/scaly"
	"github.com/Qix-/scaly/codec"
	"github.com/Qix-/scaly/layer/source"
)

type user struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newUserLayer(t *testing.T) *Layer[user] {
	t.Helper()
	l, err := New(Config[user]{
		Namespace:  "user",
		Operations: []string{"getUser"},
		Codec:      codec.JSON[user]{},
		BigCache:   bc.DefaultConfig(time.Minute),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = l.Close(context.Background()) })
	return l
}

func TestMissBackfillThenHit(t *testing.T) {
	ctx := context.Background()
	var fetches atomic.Int64

	l := newUserLayer(t)
	store := source.New("store", source.Op{Name: "getUser", Fetch: func(_ context.Context, args ...any) (any, error) {
		fetches.Add(1)
		return user{ID: args[0].(string), Name: "Ada"}, nil
	}})

	s, err := scaly.New(scaly.Options{Layers: []scaly.Layer{l, store}})
	if err != nil {
		t.Fatalf("scaly.New: %v", err)
	}

	want := user{ID: "u1", Name: "Ada"}
	out, err := s.Call(ctx, "getUser", "u1")
	if err != nil || !out.OK || out.Value != any(want) {
		t.Fatalf("first call: got %+v err=%v", out, err)
	}

	out, err = s.Call(ctx, "getUser", "u1")
	if err != nil || !out.OK || out.Value != any(want) {
		t.Fatalf("second call: got %+v err=%v", out, err)
	}
	if fetches.Load() != 1 {
		t.Fatalf("second call should be a cache hit; fetches=%d", fetches.Load())
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	ctx := context.Background()
	var fetches atomic.Int64

	l := newUserLayer(t)
	store := source.New("store", source.Op{Name: "getUser", Fetch: func(_ context.Context, args ...any) (any, error) {
		fetches.Add(1)
		return user{ID: args[0].(string)}, nil
	}})

	s, err := scaly.New(scaly.Options{Layers: []scaly.Layer{l, store}})
	if err != nil {
		t.Fatalf("scaly.New: %v", err)
	}

	if _, err := s.Call(ctx, "getUser", "u1"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if err := l.Invalidate(ctx, "getUser", "u1"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := s.Call(ctx, "getUser", "u1"); err != nil {
		t.Fatalf("call after invalidate: %v", err)
	}
	if fetches.Load() != 2 {
		t.Fatalf("invalidate should force a refetch; fetches=%d", fetches.Load())
	}
}

// A resolved value of the wrong concrete type cannot be encoded for this
// layer; the back-fill error is unrecoverable and overrides the success.
func TestBackfillTypeMismatchFailsCall(t *testing.T) {
	ctx := context.Background()

	l := newUserLayer(t)
	store := source.New("store", source.Op{Name: "getUser", Fetch: func(context.Context, ...any) (any, error) {
		return 12345, nil // not a user
	}})

	s, err := scaly.New(scaly.Options{Layers: []scaly.Layer{l, store}})
	if err != nil {
		t.Fatalf("scaly.New: %v", err)
	}
	if _, err := s.Call(ctx, "getUser", "u1"); err == nil {
		t.Fatal("expected unrecoverable error for mistyped backfill value")
	}
}
