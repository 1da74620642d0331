package scaly

// Hooks are lightweight callbacks for high-signal dispatch events.
// Implementations MUST be cheap and non-blocking; the engine calls them
// on hot paths. Wrap with hooks/async to move work off the caller.
type Hooks interface {
	// A layer's handler was invoked for an operation.
	Attempted(op, layer string)

	// The layer resolved the call outright (dispatch stops).
	Resolved(op, layer string)

	// The layer signaled a recoverable error payload (dispatch stops,
	// pending handlers are abandoned).
	ErrorSignaled(op, layer string)

	// A suspended handler was resumed with the resolved value and its
	// fill completed.
	Backfilled(op, layer string)

	// A suspended handler's fill returned an error during propagation.
	BackfillFailed(op, layer string, err error)

	// No layer handled the operation; attempted lists invoked layers in order.
	Unhandled(op string, attempted []string)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) Attempted(string, string)             {}
func (NopHooks) Resolved(string, string)              {}
func (NopHooks) ErrorSignaled(string, string)         {}
func (NopHooks) Backfilled(string, string)            {}
func (NopHooks) BackfillFailed(string, string, error) {}
func (NopHooks) Unhandled(string, []string)           {}
