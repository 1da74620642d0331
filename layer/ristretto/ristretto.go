// Package ristretto provides an in-process read-through cache layer backed
// by dgraph-io/ristretto. Values are stored decoded (no codec); this layer
// is meant to sit shallowest in a chain, in front of a remote cache or the
// source of truth.
package ristretto

import (
	"context"
	"fmt"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/Qix-/scaly"
	"github.com/Qix-/scaly/internal/keys"
	"github.com/Qix-/scaly/stamp"
)

// KeyFunc derives the cache key for a call. Returning ok=false makes the
// layer decline that call (no lookup, no back-fill).
type KeyFunc func(op string, args []any) (string, bool)

type entry struct {
	stamp uint64
	value any
}

// Layer fronts a set of operations with a Ristretto cache. On hit it
// resolves the call outright; on miss it suspends awaiting the value a
// deeper layer resolves and back-fills it, guarded by the stamp observed
// before suspending so invalidations win over stale fills.
type Layer struct {
	name string
	ns   string
	ops  []string
	key  KeyFunc
	ttl  time.Duration
	cost int64

	c         *rc.Cache
	st        stamp.Store
	ownStamps bool
	log       scaly.Logger
}

var _ scaly.Layer = (*Layer)(nil)

type Config struct {
	// Required
	Namespace  string   // key isolation, e.g. "user"
	Operations []string // operation names this layer fronts

	Name   string        // display identity; default "ristretto"
	Key    KeyFunc       // nil => canonical key from op name + args
	TTL    time.Duration // 0 => 10m
	Cost   int64         // per-entry cost; 0 => 1
	Stamps stamp.Store   // nil => in-process stamps owned by the layer
	Logger scaly.Logger  // nil => NopLogger

	NumCounters int64 // 0 => 100_000
	MaxCost     int64 // 0 => 1 << 26
	BufferItems int64 // 0 => 64
}

func New(cfg Config) (*Layer, error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("ristretto layer: namespace is required")
	}
	if len(cfg.Operations) == 0 {
		return nil, fmt.Errorf("ristretto layer: at least one operation is required")
	}

	c, err := rc.NewCache(&rc.Config{
		NumCounters: defaultI64(cfg.NumCounters, 100_000),
		MaxCost:     defaultI64(cfg.MaxCost, 1<<26),
		BufferItems: defaultI64(cfg.BufferItems, 64),
	})
	if err != nil {
		return nil, err
	}

	l := &Layer{
		name: cfg.Name,
		ns:   cfg.Namespace,
		ops:  append([]string(nil), cfg.Operations...),
		key:  cfg.Key,
		ttl:  cfg.TTL,
		cost: defaultI64(cfg.Cost, 1),
		c:    c,
		st:   cfg.Stamps,
		log:  cfg.Logger,
	}
	if l.name == "" {
		l.name = "ristretto"
	}
	if l.ttl == 0 {
		l.ttl = 10 * time.Minute
	}
	if l.st == nil {
		l.st = stamp.NewLocal(0, 0)
		l.ownStamps = true
	}
	if l.log == nil {
		l.log = scaly.NopLogger{}
	}
	return l, nil
}

func defaultI64(v, def int64) int64 {
	if v <= 0 {
		return def
	}
	return v
}

func (l *Layer) Name() string { return l.name }

func (l *Layer) Operations() []scaly.Operation {
	ops := make([]scaly.Operation, 0, len(l.ops))
	for _, name := range l.ops {
		ops = append(ops, scaly.Op(name, l.handler(name)))
	}
	return ops
}

func (l *Layer) handler(op string) scaly.HandlerFunc {
	return func(ctx context.Context, args ...any) (scaly.Result, error) {
		k, ok := l.cacheKey(op, args)
		if !ok {
			return scaly.Decline(), nil
		}
		if v, hit := l.lookup(ctx, k); hit {
			return scaly.Resolve(v), nil
		}
		obs := l.snapshot(ctx, k)
		return scaly.AwaitValue(func(ctx context.Context, v any) error {
			l.fill(ctx, k, v, obs)
			return nil
		}), nil
	}
}

func (l *Layer) lookup(ctx context.Context, k string) (any, bool) {
	raw, ok := l.c.Get(k)
	if !ok {
		return nil, false
	}
	e, ok := raw.(entry)
	if !ok {
		l.c.Del(k) // self-heal unexpected entry shape
		return nil, false
	}
	if e.stamp != l.snapshot(ctx, k) {
		l.c.Del(k)
		return nil, false
	}
	return e.value, true
}

func (l *Layer) fill(ctx context.Context, k string, v any, obs uint64) {
	if l.snapshot(ctx, k) != obs {
		// invalidated while the deeper layer resolved; drop the write
		l.log.Debug("backfill skipped (stamp moved)", scaly.Fields{"key": k})
		return
	}
	if !l.c.SetWithTTL(k, entry{stamp: obs, value: v}, l.cost, l.ttl) {
		l.log.Debug("backfill rejected by ristretto (pressure)", scaly.Fields{"key": k})
	}
}

func (l *Layer) snapshot(ctx context.Context, k string) uint64 {
	g, err := l.st.Snapshot(ctx, k)
	if err != nil {
		// conservative: stale writes skip, reads self-heal
		l.log.Warn("stamp snapshot error", scaly.Fields{"key": k, "err": err})
		return 0
	}
	return g
}

func (l *Layer) cacheKey(op string, args []any) (string, bool) {
	if l.key != nil {
		return l.key(op, args)
	}
	return keys.Canonical(l.ns, op, args), true
}

// Invalidate bumps the stamp for a call's key and drops the cached entry,
// so in-flight back-fills observing the old stamp are discarded.
func (l *Layer) Invalidate(ctx context.Context, op string, args ...any) error {
	k, ok := l.cacheKey(op, args)
	if !ok {
		return nil
	}
	newStamp, err := l.st.Bump(ctx, k)
	l.c.Del(k)
	if err != nil {
		return fmt.Errorf("ristretto layer: invalidate %q: stamp bump failed: %w", k, err)
	}
	l.log.Debug("invalidated key", scaly.Fields{"key": k, "stamp": newStamp})
	return nil
}

// Wait blocks until buffered writes are applied. Ristretto applies Sets
// asynchronously; call this before relying on a just-filled entry.
func (l *Layer) Wait() { l.c.Wait() }

func (l *Layer) Close(ctx context.Context) error {
	if l.ownStamps {
		_ = l.st.Close(ctx)
	}
	l.c.Wait()
	l.c.Close()
	return nil
}
