package scaly

import (
	"fmt"
	"strings"
)

// UnhandledOpError reports that no layer in the dispatch chain reached a
// terminal value or signaled an error: every candidate either lacked the
// operation, declined, or only asked to observe a value that never
// materialized. This is a composition defect, not a request-level failure,
// so it travels on the error channel rather than inside Outcome.
type UnhandledOpError struct {
	Op        string
	Attempted []string // layer identities actually invoked, in order
}

func (e *UnhandledOpError) Error() string {
	if len(e.Attempted) == 0 {
		return fmt.Sprintf("scaly: operation %q unhandled: no layer implements it", e.Op)
	}
	return fmt.Sprintf("scaly: operation %q unhandled after layers [%s]",
		e.Op, strings.Join(e.Attempted, ", "))
}
