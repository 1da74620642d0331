// Package asynchook wraps a Hooks implementation with a bounded worker
// queue so slow sinks never back-pressure dispatch. Events are dropped
// when the queue is full.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{AttemptEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	stack, _ := scaly.New(scaly.Options{Layers: layers, Hooks: hooks})
package asynchook

import (
	"sync"

	"github.com/Qix-/scaly"
)

type Hooks struct {
	inner scaly.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ scaly.Hooks = (*Hooks)(nil)

func New(inner scaly.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) Attempted(op, layer string)     { h.try(func() { h.inner.Attempted(op, layer) }) }
func (h *Hooks) Resolved(op, layer string)      { h.try(func() { h.inner.Resolved(op, layer) }) }
func (h *Hooks) ErrorSignaled(op, layer string) { h.try(func() { h.inner.ErrorSignaled(op, layer) }) }
func (h *Hooks) Backfilled(op, layer string)    { h.try(func() { h.inner.Backfilled(op, layer) }) }
func (h *Hooks) BackfillFailed(op, layer string, err error) {
	h.try(func() { h.inner.BackfillFailed(op, layer, err) })
}
func (h *Hooks) Unhandled(op string, attempted []string) {
	h.try(func() { h.inner.Unhandled(op, attempted) })
}
