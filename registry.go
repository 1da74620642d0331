package scaly

import (
	"context"
	"fmt"
)

// binding pairs a layer with its handler for one operation.
type binding struct {
	layer   Layer
	handler HandlerFunc
}

type stack struct {
	ops     map[string][]binding // op name -> implementing layers, chain order
	opNames []string             // first-occurrence order, diagnostics only
	log     Logger
	hooks   Hooks
}

func newStack(opts Options) (*stack, error) {
	if len(opts.Layers) == 0 {
		return nil, fmt.Errorf("scaly: at least one layer is required")
	}

	s := &stack{
		ops:   make(map[string][]binding),
		log:   coalesce[Logger](opts.Logger, NopLogger{}),
		hooks: coalesce[Hooks](opts.Hooks, NopHooks{}),
	}

	for i, l := range opts.Layers {
		if l == nil {
			return nil, fmt.Errorf("scaly: layer %d is nil", i)
		}
		name := l.Name()
		if name == "" {
			return nil, fmt.Errorf("scaly: layer %d has an empty name", i)
		}
		seen := make(map[string]struct{})
		for _, op := range l.Operations() {
			if op.Name == "" {
				return nil, fmt.Errorf("scaly: layer %q exposes an operation with an empty name", name)
			}
			if op.Handler == nil {
				return nil, fmt.Errorf("scaly: layer %q operation %q has a nil handler", name, op.Name)
			}
			if _, dup := seen[op.Name]; dup {
				return nil, fmt.Errorf("scaly: layer %q declares operation %q twice", name, op.Name)
			}
			seen[op.Name] = struct{}{}

			if _, known := s.ops[op.Name]; !known {
				s.opNames = append(s.opNames, op.Name)
			}
			s.ops[op.Name] = append(s.ops[op.Name], binding{layer: l, handler: op.Handler})
		}
	}

	return s, nil
}

func (s *stack) Operation(name string) (OpFunc, bool) {
	chain, ok := s.ops[name]
	if !ok {
		return nil, false
	}
	return func(ctx context.Context, args ...any) (Outcome, error) {
		return s.dispatch(ctx, name, chain, args)
	}, true
}

func (s *stack) Operations() []string {
	out := make([]string, len(s.opNames))
	copy(out, s.opNames)
	return out
}
