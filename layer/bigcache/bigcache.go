// Package bigcache provides an in-process read-through cache layer backed
// by allegro/bigcache. Values are serialized with a Codec and framed with
// the stamp observed before suspending, so reads reject entries that
// predate an invalidation. BigCache has no per-entry TTL; entries age out
// with the configured LifeWindow.
package bigcache

import (
	"context"
	"fmt"

	bc "github.com/allegro/bigcache/v3"

	"github.com/Qix-/scaly"
	"github.com/Qix-/scaly/codec"
	"github.com/Qix-/scaly/internal/keys"
	"github.com/Qix-/scaly/internal/wire"
	"github.com/Qix-/scaly/stamp"
)

// KeyFunc derives the cache key for a call. Returning ok=false makes the
// layer decline that call.
type KeyFunc func(op string, args []any) (string, bool)

type Layer[V any] struct {
	name string
	ns   string
	ops  []string
	key  KeyFunc

	c         *bc.BigCache
	cod       codec.Codec[V]
	st        stamp.Store
	ownStamps bool
	log       scaly.Logger
}

type Config[V any] struct {
	// Required
	Namespace  string
	Operations []string
	Codec      codec.Codec[V]
	BigCache   bc.Config // pass bigcache.DefaultConfig(lifeWindow) and tweak

	Name   string       // default "bigcache"
	Key    KeyFunc      // nil => canonical key from op name + args
	Stamps stamp.Store  // nil => in-process stamps owned by the layer
	Logger scaly.Logger // nil => NopLogger
}

func New[V any](cfg Config[V]) (*Layer[V], error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("bigcache layer: namespace is required")
	}
	if len(cfg.Operations) == 0 {
		return nil, fmt.Errorf("bigcache layer: at least one operation is required")
	}
	if cfg.Codec == nil {
		return nil, fmt.Errorf("bigcache layer: codec is required")
	}

	c, err := bc.NewBigCache(cfg.BigCache)
	if err != nil {
		return nil, err
	}

	l := &Layer[V]{
		name: cfg.Name,
		ns:   cfg.Namespace,
		ops:  append([]string(nil), cfg.Operations...),
		key:  cfg.Key,
		c:    c,
		cod:  cfg.Codec,
		st:   cfg.Stamps,
		log:  cfg.Logger,
	}
	if l.name == "" {
		l.name = "bigcache"
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

func (l *Layer[V]) Name() string { return l.name }

func (l *Layer[V]) Operations() []scaly.Operation {
	ops := make([]scaly.Operation, 0, len(l.ops))
	for _, name := range l.ops {
		ops = append(ops, scaly.Op(name, l.handler(name)))
	}
	return ops
}

func (l *Layer[V]) handler(op string) scaly.HandlerFunc {
	return func(ctx context.Context, args ...any) (scaly.Result, error) {
		k, ok := l.cacheKey(op, args)
		if !ok {
			return scaly.Decline(), nil
		}
		v, hit, err := l.lookup(ctx, k)
		if err != nil {
			return scaly.Result{}, err
		}
		if hit {
			return scaly.Resolve(v), nil
		}
		obs := l.snapshot(ctx, k)
		return scaly.AwaitValue(func(ctx context.Context, rv any) error {
			return l.fill(ctx, k, rv, obs)
		}), nil
	}
}

func (l *Layer[V]) lookup(ctx context.Context, k string) (V, bool, error) {
	var zero V
	raw, err := l.c.Get(k)
	if err == bc.ErrEntryNotFound {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	st, payload, err := wire.Decode(raw)
	if err != nil {
		_ = l.c.Delete(k) // self-heal corrupt
		return zero, false, nil
	}
	if st != l.snapshot(ctx, k) {
		_ = l.c.Delete(k)
		return zero, false, nil
	}
	v, err := l.cod.Decode(payload)
	if err != nil {
		_ = l.c.Delete(k) // self-heal
		return zero, false, nil
	}
	return v, true, nil
}

func (l *Layer[V]) fill(ctx context.Context, k string, rv any, obs uint64) error {
	v, ok := rv.(V)
	if !ok {
		return fmt.Errorf("bigcache layer: backfill for %q: value is %T, want %T", k, rv, v)
	}
	if l.snapshot(ctx, k) != obs {
		l.log.Debug("backfill skipped (stamp moved)", scaly.Fields{"key": k})
		return nil
	}
	payload, err := l.cod.Encode(v)
	if err != nil {
		return err
	}
	return l.c.Set(k, wire.Encode(obs, payload))
}

func (l *Layer[V]) snapshot(ctx context.Context, k string) uint64 {
	g, err := l.st.Snapshot(ctx, k)
	if err != nil {
		l.log.Warn("stamp snapshot error", scaly.Fields{"key": k, "err": err})
		return 0
	}
	return g
}

func (l *Layer[V]) cacheKey(op string, args []any) (string, bool) {
	if l.key != nil {
		return l.key(op, args)
	}
	return keys.Canonical(l.ns, op, args), true
}

// Invalidate bumps the stamp for a call's key and drops the cached entry.
func (l *Layer[V]) Invalidate(ctx context.Context, op string, args ...any) error {
	k, ok := l.cacheKey(op, args)
	if !ok {
		return nil
	}
	_, err := l.st.Bump(ctx, k)
	_ = l.c.Delete(k)
	if err != nil {
		return fmt.Errorf("bigcache layer: invalidate %q: stamp bump failed: %w", k, err)
	}
	return nil
}

func (l *Layer[V]) Close(ctx context.Context) error {
	if l.ownStamps {
		_ = l.st.Close(ctx)
	}
	return l.c.Close()
}
