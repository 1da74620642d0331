// Package sloghooks is a slog-backed Hooks implementation with sampling
// for the hot-path events (attempts, resolutions, back-fills).
package sloghooks

import (
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/Qix-/scaly"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	AttemptEvery  uint64
	ResolveEvery  uint64
	BackfillEvery uint64
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	attemptCtr  atomic.Uint64
	resolveCtr  atomic.Uint64
	backfillCtr atomic.Uint64
}

var _ scaly.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Attempted(op, layer string) {
	if h.l == nil || !sample(h.opts.AttemptEvery, &h.attemptCtr) {
		return
	}
	h.l.Debug("scaly.layer_attempted", "op", op, "layer", layer)
}

func (h *Hooks) Resolved(op, layer string) {
	if h.l == nil || !sample(h.opts.ResolveEvery, &h.resolveCtr) {
		return
	}
	h.l.Debug("scaly.layer_resolved", "op", op, "layer", layer)
}

func (h *Hooks) ErrorSignaled(op, layer string) {
	if h.l == nil {
		return
	}
	h.l.Info("scaly.layer_error_signaled", "op", op, "layer", layer)
}

func (h *Hooks) Backfilled(op, layer string) {
	if h.l == nil || !sample(h.opts.BackfillEvery, &h.backfillCtr) {
		return
	}
	h.l.Debug("scaly.backfilled", "op", op, "layer", layer)
}

func (h *Hooks) BackfillFailed(op, layer string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("scaly.backfill_failed", "op", op, "layer", layer, "err", err)
}

func (h *Hooks) Unhandled(op string, attempted []string) {
	if h.l == nil {
		return
	}
	h.l.Error("scaly.unhandled_operation",
		"op", op,
		"attempted", strings.Join(attempted, ","))
}
