package source

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Qix-/scaly"
)

func newStack(t *testing.T, layers ...scaly.Layer) scaly.Stack {
	t.Helper()
	s, err := scaly.New(scaly.Options{Layers: layers})
	if err != nil {
		t.Fatalf("scaly.New: %v", err)
	}
	return s
}

func TestFetchResolves(t *testing.T) {
	ctx := context.Background()
	l := New("db", Op{Name: "getUser", Fetch: func(_ context.Context, args ...any) (any, error) {
		return "user:" + args[0].(string), nil
	}})

	out, err := newStack(t, l).Call(ctx, "getUser", "u1")
	if err != nil || !out.OK || out.Value != "user:u1" {
		t.Fatalf("got %+v err=%v", out, err)
	}
}

func TestSkipDeclines(t *testing.T) {
	ctx := context.Background()
	skipping := New("primary", Op{Name: "getUser", Fetch: func(context.Context, ...any) (any, error) {
		return nil, ErrSkip
	}})
	fallback := New("fallback", Op{Name: "getUser", Fetch: func(context.Context, ...any) (any, error) {
		return "from-fallback", nil
	}})

	out, err := newStack(t, skipping, fallback).Call(ctx, "getUser", "u1")
	if err != nil || !out.OK || out.Value != "from-fallback" {
		t.Fatalf("got %+v err=%v", out, err)
	}

	// a lone skipping source leaves the operation unhandled
	_, err = newStack(t, New("only", Op{Name: "getUser", Fetch: func(context.Context, ...any) (any, error) {
		return nil, ErrSkip
	}})).Call(ctx, "getUser", "u1")
	var uerr *scaly.UnhandledOpError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected *scaly.UnhandledOpError, got %v", err)
	}
}

func TestFaultIsRecoverableFailure(t *testing.T) {
	ctx := context.Background()
	l := New("db", Op{Name: "getUser", Fetch: func(context.Context, ...any) (any, error) {
		return nil, &Fault{Payload: "user not found"}
	}})

	out, err := newStack(t, l).Call(ctx, "getUser", "u1")
	if err != nil {
		t.Fatalf("fault must not be an unrecoverable error: %v", err)
	}
	if out.OK || out.Err != "user not found" {
		t.Fatalf("expected [false,user not found], got %+v", out)
	}
}

func TestWrappedFaultDetected(t *testing.T) {
	ctx := context.Background()
	l := New("db", Op{Name: "getUser", Fetch: func(context.Context, ...any) (any, error) {
		return nil, fmt.Errorf("lookup: %w", &Fault{Payload: "gone"})
	}})

	out, err := newStack(t, l).Call(ctx, "getUser", "u1")
	if err != nil || out.OK || out.Err != "gone" {
		t.Fatalf("expected [false,gone], got %+v err=%v", out, err)
	}
}

func TestOtherErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	sentinel := errors.New("bad credentials")
	l := New("db", Op{Name: "getUser", Fetch: func(context.Context, ...any) (any, error) {
		return nil, sentinel
	}})

	_, err := newStack(t, l).Call(ctx, "getUser", "u1")
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel to propagate unmodified, got %v", err)
	}
}
