// Package scaly composes an ordered chain of data-access layers (memory
// cache, remote cache, persistent store, ...) into a single dispatch
// surface implementing a cache-fallback protocol: a call is tried against
// each layer in order, the first layer that resolves wins, and shallower
// layers that asked to observe the value are back-filled with it before
// the call returns.
//
// Components:
//   - Layer: named capability object exposing zero or more Operations.
//   - Stack: the composed object; built once by New, immutable after.
//   - Result protocol: a layer handler runs to its first protocol boundary
//     and reports Resolve(v), Decline(), AwaitValue(fill), or Fail(payload).
//
// Call flow:
//
//	out, err := stack.Call(ctx, "getUser", "u:1")
//	switch {
//	case err != nil: // unrecoverable (handler error or no layer handled)
//	case out.OK:     // resolved value in out.Value
//	default:         // recoverable failure payload in out.Err
//	}
//
// The engine never inspects layer-internal state. Concrete layers live in
// layer/* (Ristretto, BigCache, Redis, source-of-truth adapters); they are
// collaborators, not part of the dispatch core.
package scaly
