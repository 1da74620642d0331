package scaly

import (
	"context"
	"testing"
)

func noop(context.Context, ...any) (Result, error) { return Decline(), nil }

func TestOperationNamesFirstSeenOrder(t *testing.T) {
	a := NewLayer("a", Op("get", noop), Op("list", noop))
	b := NewLayer("b", Op("put", noop), Op("get", noop))

	s := newTestStack(t, nil, a, b)
	got := s.Operations()
	want := []string{"get", "list", "put"}
	if !equalStrings(got, want) {
		t.Fatalf("Operations(): want %v, got %v", want, got)
	}
}

func TestOperationReturnsBoundEntryPoint(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t, nil, NewLayer("a", Op("get", func(context.Context, ...any) (Result, error) {
		return Resolve(42), nil
	})))

	call, ok := s.Operation("get")
	if !ok {
		t.Fatal("Operation(get): not found")
	}
	out, err := call(ctx)
	if err != nil || !out.OK || out.Value != 42 {
		t.Fatalf("bound call: got %+v err=%v", out, err)
	}

	if _, ok := s.Operation("nope"); ok {
		t.Fatal("Operation(nope): expected not found")
	}
}

func TestNewRejectsMalformedComposition(t *testing.T) {
	cases := []struct {
		name   string
		layers []Layer
	}{
		{"no layers", nil},
		{"nil layer", []Layer{nil}},
		{"empty layer name", []Layer{NewLayer("", Op("get", noop))}},
		{"empty op name", []Layer{NewLayer("a", Op("", noop))}},
		{"nil handler", []Layer{NewLayer("a", Op("get", nil))}},
		{"duplicate op in one layer", []Layer{NewLayer("a", Op("get", noop), Op("get", noop))}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(Options{Layers: tc.layers}); err == nil {
				t.Fatal("expected configuration error")
			}
		})
	}
}

// Composition never invokes a handler; it only inspects exposed operations.
func TestNewDoesNotInvokeHandlers(t *testing.T) {
	invoked := false
	l := NewLayer("a", Op("get", func(context.Context, ...any) (Result, error) {
		invoked = true
		return Decline(), nil
	}))
	if _, err := New(Options{Layers: []Layer{l}}); err != nil {
		t.Fatalf("New: %v", err)
	}
	if invoked {
		t.Fatal("handler invoked during composition")
	}
}
