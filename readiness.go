package depot

import (
	"context"
	"time"

	"github.com/go-depot/depot/internal/registry"
	"github.com/go-depot/depot/internal/typekey"
)

type readyConfig struct {
	timeout     time.Duration
	hasTimeout  bool
	ignoreAsync bool
}

type ReadyOption func(*readyConfig)

// WithReadyTimeout bounds the wait. A zero timeout checks once and fails
// immediately with a ReadinessTimeout error when the target is not ready.
// Without this option the wait is bounded only by the context.
func WithReadyTimeout(timeout time.Duration) ReadyOption {
	return func(cfg *readyConfig) {
		cfg.timeout = timeout
		cfg.hasTimeout = true
	}
}

// WithIgnorePendingAsync excludes records whose asynchronous construction is
// still running from an AllReady wait.
func WithIgnorePendingAsync() ReadyOption {
	return func(cfg *readyConfig) {
		cfg.ignoreAsync = true
	}
}

func applyReadyOpts(opts []ReadyOption) *readyConfig {
	cfg := &readyConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (d *Depot) waitReady(ctx context.Context, key string, opts []ReadyOption) error {
	cfg := applyReadyOpts(opts)
	err := d.stack.Ready().Wait(ctx, key, "isReady("+key+")", cfg.timeout, cfg.hasTimeout)
	return wrapEngineErr(err, key)
}

// IsReady blocks until T's registration has finished initializing: async
// construction completed, or an explicit SignalReady arrived for records
// registered WithSignalsReady. Registrations that never signal are ready
// immediately.
func IsReady[T any](ctx context.Context, d *Depot, opts ...ReadyOption) error {
	return d.waitReady(ctx, typekey.For[T](), opts)
}

// IsReadyNamed is IsReady for the registration under (T, name).
func IsReadyNamed[T any](ctx context.Context, d *Depot, name string, opts ...ReadyOption) error {
	return d.waitReady(ctx, registry.Key{Type: typekey.For[T](), Name: name}.String(), opts)
}

// IsReadyInstance waits for the record holding exactly this instance. An
// instance no record holds fails with a NotRegistered error.
func (d *Depot) IsReadyInstance(ctx context.Context, instance any, opts ...ReadyOption) error {
	key, ok := d.stack.KeyOfInstance(instance)
	if !ok {
		return newError(ErrCodeNotRegistered, "no record holds the given instance", nil)
	}
	return d.waitReady(ctx, key.String(), opts)
}

// IsReadySync reports T's readiness without blocking.
func IsReadySync[T any](d *Depot) bool {
	return d.stack.Ready().IsReady(typekey.For[T]())
}

// IsReadySyncNamed reports (T, name)'s readiness without blocking.
func IsReadySyncNamed[T any](d *Depot, name string) bool {
	return d.stack.Ready().IsReady(registry.Key{Type: typekey.For[T](), Name: name}.String())
}

// AllReady blocks until every record that requires signalling has become
// ready.
func (d *Depot) AllReady(ctx context.Context, opts ...ReadyOption) error {
	cfg := applyReadyOpts(opts)
	err := d.stack.Ready().WaitAll(ctx, cfg.timeout, cfg.hasTimeout, cfg.ignoreAsync)
	return wrapEngineErr(err, "")
}

// AllReadySync reports whether every signalling record is ready, without
// blocking.
func (d *Depot) AllReadySync(opts ...ReadyOption) bool {
	cfg := applyReadyOpts(opts)
	return d.stack.Ready().AllReady(cfg.ignoreAsync)
}

// SignalReady marks the record holding instance as ready. Passing nil marks
// a coarse composition-done token instead, which fails with an IllegalState
// error while records are still pending.
func (d *Depot) SignalReady(instance any) error {
	return wrapEngineErr(d.stack.SignalReady(instance), "")
}

// CompositionReady reports whether SignalReady(nil) has marked the whole
// composition done.
func (d *Depot) CompositionReady() bool {
	return d.stack.Ready().GlobalReady()
}

// ReadinessState returns the current diagnostic snapshot: pending keys,
// ready keys, and active waiters.
func (d *Depot) ReadinessState() ReadinessSnapshot {
	return d.stack.Ready().SnapshotNow()
}
