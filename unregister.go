package depot

import (
	"context"

	"github.com/go-depot/depot/internal/registry"
	"github.com/go-depot/depot/internal/typekey"
)

type unregisterConfig struct {
	name       string
	instance   any
	byInstance bool
	dispose    func(ctx context.Context, instance any) error
}

type UnregisterOption func(*unregisterConfig)

// UnregisterNamed targets the registration under (type, name).
func UnregisterNamed(name string) UnregisterOption {
	return func(cfg *unregisterConfig) {
		cfg.name = name
	}
}

// UnregisterInstance targets the record holding exactly this instance,
// matched by identity rather than equality.
func UnregisterInstance(instance any) UnregisterOption {
	return func(cfg *unregisterConfig) {
		cfg.instance = instance
		cfg.byInstance = true
	}
}

// UnregisterDispose overrides the record's own dispose path for this
// removal.
func UnregisterDispose[T any](fn func(ctx context.Context, instance T) error) UnregisterOption {
	return func(cfg *unregisterConfig) {
		cfg.dispose = func(ctx context.Context, instance any) error {
			return fn(ctx, instance.(T))
		}
	}
}

// Unregister removes a single record for T and disposes its instance. The
// call returns only after disposal finished; dispose errors propagate. A
// missing target fails with a NotRegistered error.
func Unregister[T any](ctx context.Context, d *Depot, opts ...UnregisterOption) error {
	cfg := &unregisterConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	key := registry.Key{Type: typekey.For[T](), Name: cfg.name}
	return wrapEngineErr(d.stack.Unregister(ctx, key, cfg.instance, cfg.byInstance, cfg.dispose), key.String())
}
