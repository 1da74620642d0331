package scaly

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// pendingFill is a handler suspended awaiting the resolved value.
// Affine: resume may happen at most once per instance.
type pendingFill struct {
	layer string
	fill  FillFunc
	used  atomic.Bool
}

func (p *pendingFill) resume(ctx context.Context, v any) error {
	if p.used.Swap(true) {
		panic("scaly: pending handler resumed twice")
	}
	if p.fill == nil {
		return nil
	}
	return p.fill(ctx, v)
}

func (s *stack) Call(ctx context.Context, op string, args ...any) (Outcome, error) {
	return s.dispatch(ctx, op, s.ops[op], args)
}

// dispatch walks the operation's layer chain strictly in order, driving
// each handler to its first protocol boundary. The walk is sequential;
// only back-fill propagation fans out.
func (s *stack) dispatch(ctx context.Context, op string, chain []binding, args []any) (Outcome, error) {
	attempted := make([]string, 0, len(chain))
	var pending []*pendingFill

	for _, b := range chain {
		name := b.layer.Name()
		attempted = append(attempted, name)
		s.hooks.Attempted(op, name)

		res, err := b.handler(ctx, args...)
		if err != nil {
			// handler exceptions pass through unmodified
			return Outcome{}, err
		}

		switch res.kind {
		case kindResolve:
			s.log.Debug("layer resolved", Fields{"op": op, "layer": name})
			s.hooks.Resolved(op, name)
			if err := s.propagate(ctx, op, res.value, pending); err != nil {
				// a fill failure overrides the already-decided value
				return Outcome{}, err
			}
			return success(res.value), nil

		case kindAwait:
			s.log.Debug("layer awaiting value", Fields{"op": op, "layer": name})
			pending = append(pending, &pendingFill{layer: name, fill: res.fill})

		case kindFail:
			s.log.Debug("layer signaled error", Fields{"op": op, "layer": name})
			s.hooks.ErrorSignaled(op, name)
			// pending handlers are abandoned: no value was produced and
			// they must not be led to believe otherwise
			return failure(res.value), nil

		default: // decline
			s.log.Debug("layer declined", Fields{"op": op, "layer": name})
		}
	}

	s.log.Error("operation unhandled", Fields{"op": op, "attempted": attempted})
	s.hooks.Unhandled(op, attempted)
	return Outcome{}, &UnhandledOpError{Op: op, Attempted: attempted}
}

// propagate resumes every pending handler concurrently with the resolved
// value and joins before the call returns. Return values of the fills are
// discarded; only their side effects matter. The first fill error fails
// the whole call.
func (s *stack) propagate(ctx context.Context, op string, value any, pending []*pendingFill) error {
	if len(pending) == 0 {
		return nil
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range pending {
		p := p
		g.Go(func() error {
			if err := p.resume(ctx, value); err != nil {
				s.log.Warn("backfill failed", Fields{"op": op, "layer": p.layer, "err": err})
				s.hooks.BackfillFailed(op, p.layer, err)
				return err
			}
			s.hooks.Backfilled(op, p.layer)
			return nil
		})
	}
	return g.Wait()
}
