package depot

import (
	"log/slog"
	"sync"

	"github.com/go-depot/depot/internal/registry"
)

// Depot is a scoped object registry. Registrations land in the current
// (topmost) scope; resolution walks the scope stack top-down, so an upper
// scope shadows same-keyed registrations below it until it is popped.
type Depot struct {
	stack  *registry.Stack
	config *depotConfig
}

type depotConfig struct {
	logger            *slog.Logger
	allowReassignment bool
	onScopeChanged    []ScopeHook
	onResolve         []ResolveHook
	onRegister        []RegisterHook
}

// New builds an independent registry with only the base scope. Tests should
// prefer a fresh instance over Default.
func New(opts ...Option) *Depot {
	cfg := &depotConfig{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	hooks := make([]func(bool), len(cfg.onScopeChanged))
	for i, hook := range cfg.onScopeChanged {
		hooks[i] = hook
	}

	stack := registry.New(&registry.Config{
		Logger:            cfg.logger,
		AllowReassignment: cfg.allowReassignment,
		OnScopeChanged:    hooks,
	})

	return &Depot{
		stack:  stack,
		config: cfg,
	}
}

var (
	defaultDepot *Depot
	defaultOnce  sync.Once
)

// Default returns the process-wide registry, constructing it on first use.
func Default() *Depot {
	defaultOnce.Do(func() {
		defaultDepot = New()
	})
	return defaultDepot
}

// Internal exposes the engine for the depottest helpers. Application code
// should not need it.
func (d *Depot) Internal() *registry.Stack {
	return d.stack
}

// Size returns the total number of registrations across all scopes.
func (d *Depot) Size() int {
	return d.stack.Size()
}

func (d *Depot) callResolveHooks(key string, err error) {
	for _, hook := range d.config.onResolve {
		hook(key, err)
	}
}

func (d *Depot) callRegisterHooks(key string, err error) {
	for _, hook := range d.config.onRegister {
		hook(key, err)
	}
}
