package scaly

import "context"

// OpFunc is a per-operation entry point bound to a Stack, as returned by
// Stack.Operation.
type OpFunc func(ctx context.Context, args ...any) (Outcome, error)

// Stack is a composed chain of layers. Dispatch order for every operation
// is the Options.Layers order restricted to layers implementing it.
// Stacks are immutable and safe for concurrent use; concurrent calls are
// fully independent.
type Stack interface {
	// Call dispatches one operation through the chain. The Outcome is the
	// discriminated success/failure result; a non-nil error is
	// unrecoverable (a handler error passed through unmodified, or an
	// *UnhandledOpError when no layer handled the operation).
	Call(ctx context.Context, op string, args ...any) (Outcome, error)

	// Operation returns a bound entry point for a discovered operation
	// name, or ok=false if no layer implements it.
	Operation(name string) (OpFunc, bool)

	// Operations lists discovered operation names in first-occurrence
	// order across the layers' own declaration order. Diagnostic only;
	// it does not affect dispatch order.
	Operations() []string
}

// Options configure composition. Only Layers is required.
type Options struct {
	// Layers in dispatch order, shallowest (first tried) to deepest.
	Layers []Layer

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used
}

// New builds a Stack from an ordered layer chain. The registry is built
// once here (no handler is invoked); malformed input is rejected with a
// configuration error.
func New(opts Options) (Stack, error) {
	return newStack(opts)
}
