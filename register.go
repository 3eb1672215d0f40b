package depot

import (
	"context"

	"github.com/go-depot/depot/internal/registry"
	"github.com/go-depot/depot/internal/typekey"
)

type registerConfig struct {
	name         string
	dispose      func(ctx context.Context, instance any) error
	signalsReady bool
}

type RegisterOption func(*registerConfig)

// WithName registers under (type, name) instead of type alone, so several
// entities of one type can coexist.
func WithName(name string) RegisterOption {
	return func(cfg *registerConfig) {
		cfg.name = name
	}
}

// WithDispose attaches a teardown callback invoked with the instance when
// the record is removed. Mutually exclusive with the instance implementing
// Disposable.
func WithDispose[T any](fn func(ctx context.Context, instance T) error) RegisterOption {
	return func(cfg *registerConfig) {
		cfg.dispose = func(ctx context.Context, instance any) error {
			return fn(ctx, instance.(T))
		}
	}
}

// WithSignalsReady keeps the record pending until SignalReady is called with
// its instance, making AllReady and IsReady wait for an explicit signal.
func WithSignalsReady() RegisterOption {
	return func(cfg *registerConfig) {
		cfg.signalsReady = true
	}
}

func applyRegisterOpts(opts []RegisterOption) *registerConfig {
	cfg := &registerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (d *Depot) register(rec *registry.Record) error {
	err := wrapEngineErr(d.stack.Register(rec), rec.Key.String())
	d.callRegisterHooks(rec.Key.String(), err)
	return err
}

// RegisterFactory registers a zero-argument factory for T. Nothing is
// constructed now; every resolution invokes the factory and yields a fresh
// instance.
func RegisterFactory[T any](d *Depot, factory func() (T, error), opts ...RegisterOption) error {
	cfg := applyRegisterOpts(opts)

	return d.register(&registry.Record{
		Key:      registry.Key{Type: typekey.For[T](), Name: cfg.name},
		Strategy: registry.StrategyFactory,
		Factory: func() (any, error) {
			return factory()
		},
		DisposeFunc:  cfg.dispose,
		SignalsReady: cfg.signalsReady,
	})
}

// RegisterFactoryParam registers a one-parameter factory for T. The
// resolution-time parameter must be a P; anything else fails with a
// TypeMismatch error.
func RegisterFactoryParam[T, P any](d *Depot, factory func(param P) (T, error), opts ...RegisterOption) error {
	cfg := applyRegisterOpts(opts)

	return d.register(&registry.Record{
		Key:      registry.Key{Type: typekey.For[T](), Name: cfg.name},
		Strategy: registry.StrategyFactoryParam,
		FactoryParam: func(param any) (any, error) {
			return factory(param.(P))
		},
		ParamType:    typekey.For[P](),
		DisposeFunc:  cfg.dispose,
		SignalsReady: cfg.signalsReady,
	})
}

// RegisterLazySingleton registers a factory whose first result is cached;
// later resolutions return the same instance.
func RegisterLazySingleton[T any](d *Depot, factory func() (T, error), opts ...RegisterOption) error {
	cfg := applyRegisterOpts(opts)

	return d.register(&registry.Record{
		Key:      registry.Key{Type: typekey.For[T](), Name: cfg.name},
		Strategy: registry.StrategyFactory,
		Factory: func() (any, error) {
			return factory()
		},
		Cached:       true,
		DisposeFunc:  cfg.dispose,
		SignalsReady: cfg.signalsReady,
	})
}

// RegisterAsync registers a factory that starts constructing immediately in
// the background. The record stays pending for readiness waits until the
// factory returns; resolving before then fails with an IllegalState error.
func RegisterAsync[T any](d *Depot, factory func(ctx context.Context) (T, error), opts ...RegisterOption) error {
	cfg := applyRegisterOpts(opts)

	return d.register(&registry.Record{
		Key:      registry.Key{Type: typekey.For[T](), Name: cfg.name},
		Strategy: registry.StrategyAsync,
		AsyncFactory: func(ctx context.Context) (any, error) {
			return factory(ctx)
		},
		DisposeFunc:  cfg.dispose,
		SignalsReady: cfg.signalsReady,
	})
}

// RegisterInstance registers a pre-built value; every resolution returns it.
// If the registration shadows a same-keyed shadow-aware instance lower in
// the stack, that instance's OnGetShadowed hook fires before this returns.
func RegisterInstance[T any](d *Depot, value T, opts ...RegisterOption) error {
	cfg := applyRegisterOpts(opts)

	return d.register(&registry.Record{
		Key:          registry.Key{Type: typekey.For[T](), Name: cfg.name},
		Strategy:     registry.StrategyInstance,
		Instance:     value,
		HasInstance:  true,
		DisposeFunc:  cfg.dispose,
		SignalsReady: cfg.signalsReady,
	})
}
