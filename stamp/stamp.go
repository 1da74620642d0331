// Package stamp tracks a monotonically increasing stamp per cache key.
// Cache layers snapshot the stamp before suspending for a deeper fetch and
// write the back-filled value only if the stamp is unchanged, so an
// Invalidate that raced the fetch wins over the stale value.
package stamp

import "context"

// Store abstracts where stamps live. Use Local (default) for in-process
// stamps, or Redis to share invalidations across replicas.
type Store interface {
	// Snapshot returns the current stamp; missing => 0.
	Snapshot(ctx context.Context, key string) (uint64, error)
	// Bump atomically increments and returns the new stamp.
	Bump(ctx context.Context, key string) (uint64, error)
	// Close releases resources (no-op ok).
	Close(context.Context) error
}
