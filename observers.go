package depot

// ScopeHook observes scope stack changes: pushed is true right after a scope
// (fully initialized) joins the stack, false right after one leaves it.
type ScopeHook func(pushed bool)

// ResolveHook observes every resolution attempt.
type ResolveHook func(key string, err error)

// RegisterHook observes every registration attempt.
type RegisterHook func(key string, err error)
