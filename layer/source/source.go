// Package source adapts plain fetch functions (database reads, RPC calls,
// computations) into the deepest layer of a chain: the one that actually
// produces values. It never suspends awaiting a value; it resolves, opts
// out, signals a recoverable fault, or errors.
package source

import (
	"context"
	"errors"

	"github.com/Qix-/scaly"
)

// ErrSkip makes a fetch opt out of a call: the layer declines and
// dispatch moves on. Return it (or wrap it) from a FetchFunc.
var ErrSkip = errors.New("source: skip")

// Fault carries a recoverable, user-facing error payload. A fetch
// returning *Fault makes the call fail with Outcome{OK: false,
// Err: Payload} instead of an unrecoverable error.
type Fault struct {
	Payload any
}

func (f *Fault) Error() string { return "source: recoverable fault" }

// FetchFunc produces the authoritative value for one call.
//   - (v, nil)            -> the call resolves with v
//   - (_, ErrSkip)        -> the layer declines
//   - (_, *Fault)         -> recoverable failure with the fault's payload
//   - (_, err)            -> unrecoverable; propagates to the caller as-is
type FetchFunc func(ctx context.Context, args ...any) (any, error)

// Op binds an operation name to its fetch.
type Op struct {
	Name  string
	Fetch FetchFunc
}

type Layer struct {
	name string
	ops  []Op
}

var _ scaly.Layer = (*Layer)(nil)

// New builds a source layer. Declaration order of ops is preserved.
func New(name string, ops ...Op) *Layer {
	if name == "" {
		name = "source"
	}
	return &Layer{name: name, ops: append([]Op(nil), ops...)}
}

func (l *Layer) Name() string { return l.name }

func (l *Layer) Operations() []scaly.Operation {
	out := make([]scaly.Operation, 0, len(l.ops))
	for _, op := range l.ops {
		fetch := op.Fetch
		out = append(out, scaly.Op(op.Name, func(ctx context.Context, args ...any) (scaly.Result, error) {
			v, err := fetch(ctx, args...)
			if err == nil {
				return scaly.Resolve(v), nil
			}
			var fault *Fault
			switch {
			case errors.Is(err, ErrSkip):
				return scaly.Decline(), nil
			case errors.As(err, &fault):
				return scaly.Fail(fault.Payload), nil
			default:
				return scaly.Result{}, err
			}
		}))
	}
	return out
}
