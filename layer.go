package scaly

import "context"

// Layer is an ordered member of a Stack. It exposes the operations it
// implements as named handlers; operations it does not list are simply
// skipped during dispatch. Name is a stable display identity used in
// diagnostics and the attempted-layers trace.
//
// Layers are treated as immutable by the engine. Any mutable state a layer
// holds (and its locking discipline) is the layer's own responsibility.
type Layer interface {
	Name() string
	Operations() []Operation
}

// Operation binds an operation name to its handler within one layer.
type Operation struct {
	Name    string
	Handler HandlerFunc
}

// HandlerFunc runs one handler instance to its first protocol boundary.
// It is invoked exactly once per (layer, operation, call); any blocking
// I/O it performs before returning is invisible to the engine. The error
// return is the unrecoverable channel: the engine never intercepts or
// converts it, it propagates to the caller as-is.
type HandlerFunc func(ctx context.Context, args ...any) (Result, error)

// FillFunc receives the resolved value during back-fill propagation. Its
// only purpose is the side effect (e.g. writing a cache entry); a non-nil
// error is unrecoverable and fails the overall call.
type FillFunc func(ctx context.Context, value any) error

type resultKind uint8

const (
	kindDecline resultKind = iota
	kindResolve
	kindAwait
	kindFail
)

// Result is the classified outcome of driving a handler to its first
// protocol boundary. Construct with Resolve, Decline, AwaitValue or Fail;
// the zero value is Decline.
type Result struct {
	kind  resultKind
	value any
	fill  FillFunc
}

// Resolve reports a terminal defined value: the layer resolved the call
// outright. No later layer is invoked.
func Resolve(v any) Result { return Result{kind: kindResolve, value: v} }

// Decline reports a terminal opt-out: the layer neither resolves the call
// nor wants to observe the eventual value. Dispatch continues.
func Decline() Result { return Result{kind: kindDecline} }

// AwaitValue suspends the handler until a deeper layer resolves; fill is
// then invoked with the resolved value during propagation, exactly once.
// A nil fill observes nothing and is resumed as a no-op.
func AwaitValue(fill FillFunc) Result { return Result{kind: kindAwait, fill: fill} }

// Fail reports a recoverable, user-facing error payload. Dispatch stops
// and the call returns Outcome{OK: false, Err: payload}; handlers already
// suspended are abandoned, not resumed.
func Fail(payload any) Result { return Result{kind: kindFail, value: payload} }

// Op is a convenience constructor for Operation literals.
func Op(name string, h HandlerFunc) Operation { return Operation{Name: name, Handler: h} }

type basicLayer struct {
	name string
	ops  []Operation
}

// NewLayer builds a Layer from a name and an ordered operation list.
// Declaration order is preserved for registry diagnostics.
func NewLayer(name string, ops ...Operation) Layer {
	return &basicLayer{name: name, ops: ops}
}

func (l *basicLayer) Name() string            { return l.name }
func (l *basicLayer) Operations() []Operation { return l.ops }
