package registry

import (
	"context"
	"fmt"

	"github.com/go-depot/depot/internal/typekey"
)

// Key identifies a registration: the type key plus an optional instance
// name. A record registered without a name is keyed by type alone.
type Key struct {
	Type string
	Name string
}

func (k Key) String() string {
	if k.Name == "" {
		return k.Type
	}
	return k.Type + "#" + k.Name
}

// Strategy selects how a record produces instances.
type Strategy int

const (
	// StrategyInstance holds a pre-built object supplied at registration.
	StrategyInstance Strategy = iota
	// StrategyFactory invokes a zero-argument factory on every resolution.
	StrategyFactory
	// StrategyFactoryParam invokes a one-parameter factory on every
	// resolution; the parameter's type key must match ParamType.
	StrategyFactoryParam
	// StrategyAsync runs a context-aware factory in the background at
	// registration time and caches the result.
	StrategyAsync
)

func (s Strategy) String() string {
	switch s {
	case StrategyInstance:
		return "instance"
	case StrategyFactory:
		return "factory"
	case StrategyFactoryParam:
		return "factoryParam"
	case StrategyAsync:
		return "async"
	default:
		return "unknown"
	}
}

// Disposable is the teardown capability a registered instance may implement.
// It is consulted when the record is removed, unless an explicit dispose
// function was supplied instead.
type Disposable interface {
	Dispose(ctx context.Context) error
}

// ShadowNotifier is the capability an instance may implement to hear about
// same-keyed registrations above it in the stack.
type ShadowNotifier interface {
	OnGetShadowed(newInstance any)
	OnLeaveShadow()
}

// Record is one registration: a construction strategy, an optional cached
// instance, and teardown metadata. Exactly one strategy field may be set.
type Record struct {
	Key          Key
	Strategy     Strategy
	Factory      func() (any, error)
	FactoryParam func(param any) (any, error)
	ParamType    string
	AsyncFactory func(ctx context.Context) (any, error)
	Instance     any
	HasInstance  bool
	Cached       bool
	DisposeFunc  func(ctx context.Context, instance any) error
	SignalsReady bool

	owner *Scope
}

// Validate enforces the registration invariants: exactly one construction
// strategy, and no explicit dispose function on an instance that already
// implements Disposable.
func (r *Record) Validate() error {
	strategies := 0
	if r.Strategy == StrategyInstance {
		if !r.HasInstance {
			return fmt.Errorf("instance registration for %s holds no instance", r.Key)
		}
		strategies++
	}
	if r.Factory != nil {
		strategies++
	}
	if r.FactoryParam != nil {
		strategies++
	}
	if r.AsyncFactory != nil {
		strategies++
	}
	if strategies != 1 {
		return fmt.Errorf("registration for %s must supply exactly one construction strategy, got %d", r.Key, strategies)
	}

	if r.Strategy == StrategyInstance && r.DisposeFunc != nil {
		if _, ok := r.Instance.(Disposable); ok {
			return fmt.Errorf("instance for %s implements Disposable and also carries a dispose function", r.Key)
		}
	}
	return nil
}

// requiresSignal reports whether the record participates in readiness
// tracking: async construction or an explicit manual signal.
func (r *Record) requiresSignal() bool {
	return r.SignalsReady || r.Strategy == StrategyAsync
}

// matchesInstance reports whether the record currently holds exactly this
// instance (identity, not equality).
func (r *Record) matchesInstance(instance any) bool {
	return r.HasInstance && typekey.Same(r.Instance, instance)
}

// dispose tears the record's instance down. An override supplied by the
// caller wins over the registration-time dispose function, which wins over
// the instance's own Disposable capability. Records that never produced an
// instance have nothing to dispose.
func (r *Record) dispose(ctx context.Context, override func(context.Context, any) error) error {
	if !r.HasInstance {
		return nil
	}
	if override != nil {
		return override(ctx, r.Instance)
	}
	if r.DisposeFunc != nil {
		return r.DisposeFunc(ctx, r.Instance)
	}
	if d, ok := r.Instance.(Disposable); ok {
		return d.Dispose(ctx)
	}
	return nil
}
