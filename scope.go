package depot

import (
	"context"

	"github.com/go-depot/depot/internal/registry"
)

// BaseScopeName is the reserved name of the always-present bottom scope.
const BaseScopeName = registry.BaseScopeName

type scopeConfig struct {
	name    string
	dispose func(ctx context.Context) error
	init    func(d *Depot) error
}

type ScopeOption func(*scopeConfig)

// WithScopeName names the scope. Names must be unique on the stack and must
// not be the reserved base name; unnamed scopes get a generated name.
func WithScopeName(name string) ScopeOption {
	return func(cfg *scopeConfig) {
		cfg.name = name
	}
}

// WithScopeDispose attaches a hook run when the scope is popped, before its
// records are disposed and while the scope is still current.
func WithScopeDispose(fn func(ctx context.Context) error) ScopeOption {
	return func(cfg *scopeConfig) {
		cfg.dispose = fn
	}
}

// WithScopeInit runs fn right after the scope is pushed, so registrations in
// fn land in the fresh scope. Scope observers fire only after fn returns;
// if fn fails the scope is dropped again, undisposed.
func WithScopeInit(fn func(d *Depot) error) ScopeOption {
	return func(cfg *scopeConfig) {
		cfg.init = fn
	}
}

// PushScope appends a new scope and makes it current for registrations.
func (d *Depot) PushScope(opts ...ScopeOption) error {
	cfg := &scopeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var init func() error
	if cfg.init != nil {
		init = func() error {
			return cfg.init(d)
		}
	}

	_, err := d.stack.PushScope(cfg.name, cfg.dispose, init)
	return wrapEngineErr(err, "")
}

// PopScope tears down and removes the current scope. Popping the base scope
// fails with an IllegalState error. Teardown order: the scope's dispose
// hook, then per record an un-shadow notification followed by the record's
// own dispose path. Dispose errors propagate but the scope is removed
// regardless.
func (d *Depot) PopScope(ctx context.Context) error {
	return wrapEngineErr(d.stack.PopScope(ctx), "")
}

// PopScopesTill pops scopes top-down until name has been removed, or until
// it is current when inclusive is false. If no scope carries the name,
// nothing is popped and the call returns false.
func (d *Depot) PopScopesTill(ctx context.Context, name string, inclusive bool) (bool, error) {
	ok, err := d.stack.PopScopesTill(ctx, name, inclusive)
	return ok, wrapEngineErr(err, "")
}

// Reset pops every scope above the base, then clears the base scope's own
// records, leaving a stack of one empty scope. dispose controls whether
// record and scope dispose hooks run.
func (d *Depot) Reset(ctx context.Context, dispose bool) error {
	return wrapEngineErr(d.stack.Reset(ctx, dispose), "")
}

// ResetScope clears all records in the current scope, disposing them when
// requested. The scope itself stays on the stack.
func (d *Depot) ResetScope(ctx context.Context, dispose bool) error {
	return wrapEngineErr(d.stack.ResetScope(ctx, dispose), "")
}

// CurrentScopeName names the scope that receives new registrations.
func (d *Depot) CurrentScopeName() string {
	return d.stack.CurrentScopeName()
}

// ScopeNames lists the stack's scope names, base first.
func (d *Depot) ScopeNames() []string {
	return d.stack.ScopeNames()
}
