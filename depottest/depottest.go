// Package depottest provides helpers for testing code that pulls its
// collaborators from a depot registry. Every helper works on a fresh
// registry instance so tests never leak registrations into each other.
package depottest

import (
	"context"

	"github.com/go-depot/depot"
	"github.com/go-depot/depot/internal/registry"
	"github.com/go-depot/depot/internal/typekey"
)

type TB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Cleanup(f func())
}

// TestDepot wraps a registry built for one test. Cleanup resets it,
// disposing everything that was registered.
type TestDepot struct {
	*depot.Depot
	tb TB
}

// New builds a fresh registry with reassignment enabled, so Replace can
// override registrations the code under test installed.
func New(tb TB, opts ...depot.Option) *TestDepot {
	tb.Helper()

	opts = append([]depot.Option{depot.WithAllowReassignment()}, opts...)
	d := depot.New(opts...)
	td := &TestDepot{
		Depot: d,
		tb:    tb,
	}

	tb.Cleanup(func() {
		if err := d.Reset(context.Background(), true); err != nil {
			tb.Fatalf("failed to reset registry: %v", err)
		}
	})

	return td
}

// RequirePushScope pushes a scope and fails the test on error.
func (td *TestDepot) RequirePushScope(opts ...depot.ScopeOption) {
	td.tb.Helper()

	if err := td.PushScope(opts...); err != nil {
		td.tb.Fatalf("failed to push scope: %v", err)
	}
}

// RequirePopScope pops the current scope and fails the test on error.
func (td *TestDepot) RequirePopScope(ctx context.Context) {
	td.tb.Helper()

	if err := td.PopScope(ctx); err != nil {
		td.tb.Fatalf("failed to pop scope: %v", err)
	}
}

// Replace overrides the topmost visible registration for T with a direct
// instance, wherever on the stack it lives. The old record is not disposed.
func Replace[T any](td *TestDepot, value T) {
	ReplaceNamed[T](td, "", value)
}

// ReplaceNamed overrides the registration under (T, name) with a direct
// instance.
func ReplaceNamed[T any](td *TestDepot, name string, value T) {
	td.tb.Helper()

	rec := &registry.Record{
		Key:         registry.Key{Type: typekey.For[T](), Name: name},
		Strategy:    registry.StrategyInstance,
		Instance:    value,
		HasInstance: true,
	}
	if err := td.Internal().Replace(rec); err != nil {
		td.tb.Fatalf("failed to replace %s: %v", rec.Key, err)
	}
}

// AssertHas fails the test when no registration for T is visible.
func AssertHas[T any](td *TestDepot) {
	td.tb.Helper()

	if !depot.Has[T](td.Depot) {
		td.tb.Fatalf("expected registry to have %s", typeName[T]())
	}
}

// AssertHasNamed fails the test when no registration for (T, name) is
// visible.
func AssertHasNamed[T any](td *TestDepot, name string) {
	td.tb.Helper()

	if !depot.HasNamed[T](td.Depot, name) {
		td.tb.Fatalf("expected registry to have %s#%s", typeName[T](), name)
	}
}

// AssertNotHas fails the test when a registration for T is visible.
func AssertNotHas[T any](td *TestDepot) {
	td.tb.Helper()

	if depot.Has[T](td.Depot) {
		td.tb.Fatalf("expected registry to not have %s", typeName[T]())
	}
}

// MustResolve resolves T or fails the test.
func MustResolve[T any](td *TestDepot) T {
	td.tb.Helper()

	v, err := depot.Resolve[T](td.Depot)
	if err != nil {
		td.tb.Fatalf("failed to resolve %s: %v", typeName[T](), err)
	}
	return v
}

// MustResolveNamed resolves (T, name) or fails the test.
func MustResolveNamed[T any](td *TestDepot, name string) T {
	td.tb.Helper()

	v, err := depot.ResolveNamed[T](td.Depot, name)
	if err != nil {
		td.tb.Fatalf("failed to resolve %s#%s: %v", typeName[T](), name, err)
	}
	return v
}

// MustRegisterFactory registers a factory or fails the test.
func MustRegisterFactory[T any](td *TestDepot, factory func() (T, error), opts ...depot.RegisterOption) {
	td.tb.Helper()

	if err := depot.RegisterFactory(td.Depot, factory, opts...); err != nil {
		td.tb.Fatalf("failed to register factory for %s: %v", typeName[T](), err)
	}
}

// MustRegisterInstance registers a direct instance or fails the test.
func MustRegisterInstance[T any](td *TestDepot, value T, opts ...depot.RegisterOption) {
	td.tb.Helper()

	if err := depot.RegisterInstance(td.Depot, value, opts...); err != nil {
		td.tb.Fatalf("failed to register instance for %s: %v", typeName[T](), err)
	}
}

func typeName[T any]() string {
	return typekey.Name[T]()
}
