package stamp

import (
	"context"
	"sync"
	"time"
)

type localEntry struct {
	Stamp     uint64
	UpdatedAt time.Time
}

// Local keeps stamps in-process (default). Optional cleanup loop prunes
// entries not bumped within the retention window; missing entries read
// as stamp 0, so pruning is always safe.
type Local struct {
	mu     sync.RWMutex
	stamps map[string]localEntry
	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup

	retention time.Duration
}

var _ Store = (*Local)(nil)

// NewLocal creates an in-process store. When both cleanupInterval and
// retention are positive, a background sweep prunes long-inactive keys.
func NewLocal(cleanupInterval, retention time.Duration) *Local {
	s := &Local{
		stamps:    make(map[string]localEntry),
		retention: retention,
	}
	if cleanupInterval > 0 && retention > 0 {
		s.ticker = time.NewTicker(cleanupInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.Cleanup(retention)
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

func (s *Local) Snapshot(_ context.Context, k string) (uint64, error) {
	s.mu.RLock()
	e, ok := s.stamps[k]
	s.mu.RUnlock()
	if !ok {
		return 0, nil
	}
	return e.Stamp, nil
}

func (s *Local) Bump(_ context.Context, k string) (uint64, error) {
	now := time.Now()
	s.mu.Lock()
	e := s.stamps[k]
	e.Stamp++
	e.UpdatedAt = now
	s.stamps[k] = e
	s.mu.Unlock()
	return e.Stamp, nil
}

// Cleanup prunes entries not bumped since the retention cutoff.
func (s *Local) Cleanup(retention time.Duration) {
	if retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-retention)

	s.mu.Lock()
	for k, e := range s.stamps {
		if !e.UpdatedAt.IsZero() && e.UpdatedAt.Before(cutoff) {
			delete(s.stamps, k)
		}
	}
	s.mu.Unlock()
}

func (s *Local) Close(_ context.Context) error {
	if s.stopCh != nil {
		close(s.stopCh)
		if s.ticker != nil {
			s.ticker.Stop() // stop ticker before waiting
		}
		s.wg.Wait()
	}
	return nil
}
