package depot

import "log/slog"

type Option func(*depotConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *depotConfig) {
		cfg.logger = logger
	}
}

// WithAllowReassignment lets a registration silently replace an existing
// record under the same key in the same scope instead of failing. The old
// record is not disposed; that stays the caller's responsibility.
func WithAllowReassignment() Option {
	return func(cfg *depotConfig) {
		cfg.allowReassignment = true
	}
}

func WithScopeObserver(hook ScopeHook) Option {
	return func(cfg *depotConfig) {
		cfg.onScopeChanged = append(cfg.onScopeChanged, hook)
	}
}

func WithResolveObserver(hook ResolveHook) Option {
	return func(cfg *depotConfig) {
		cfg.onResolve = append(cfg.onResolve, hook)
	}
}

func WithRegisterObserver(hook RegisterHook) Option {
	return func(cfg *depotConfig) {
		cfg.onRegister = append(cfg.onRegister, hook)
	}
}
