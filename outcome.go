package scaly

// Outcome is the two-element discriminated result of a call: OK=true
// carries the resolved value, OK=false carries a recoverable error payload
// signaled by a layer (via Fail). Unrecoverable conditions are never
// represented here; they travel on the error return of Call.
type Outcome struct {
	OK    bool
	Value any
	Err   any
}

func success(v any) Outcome { return Outcome{OK: true, Value: v} }
func failure(e any) Outcome { return Outcome{OK: false, Err: e} }
