// Package depot provides a scoped object registry for Go 1.25+.
//
// Depot keys registrations by type (optionally plus a name), resolves them
// through a stack of scopes with shadowing semantics, and tears scopes down
// as a unit. Registration is always explicit: callers supply the
// construction closure, and nothing is auto-wired.
//
// # Quick Start
//
// Create a registry and register recipes:
//
//	d := depot.New()
//
//	depot.RegisterLazySingleton(d, func() (*Config, error) {
//	    return &Config{Port: 8080}, nil
//	})
//
//	depot.RegisterFactory(d, func() (*Session, error) {
//	    return NewSession(depot.MustResolve[*Config](d)), nil
//	})
//
//	cfg := depot.MustResolve[*Config](d)
//
// # Registration
//
// Five registration shapes cover the construction strategies:
//
//	depot.RegisterFactory[T](d, f)          // fresh instance per resolution
//	depot.RegisterFactoryParam[T, P](d, f)  // factory taking one parameter
//	depot.RegisterLazySingleton[T](d, f)    // first result cached
//	depot.RegisterAsync[T](d, f)            // built in the background
//	depot.RegisterInstance[T](d, v)         // pre-built value
//
// Options: WithName for multiple registrations of one type, WithDispose for
// a teardown callback, WithSignalsReady for manual readiness signalling.
// Registering a key twice in the same scope fails unless the registry was
// built with WithAllowReassignment.
//
// # Resolution
//
//	v, err := depot.Resolve[*Service](d)
//	v, err := depot.ResolveNamed[*Service](d, "replica")
//	v, err := depot.ResolveParam[*Widget, int](d, 5)
//	v := depot.MustResolve[*Service](d)   // panics on error
//	v, ok := depot.TryResolve[*Service](d)
//
// Lookup scans scopes from the top of the stack to the base and takes the
// first match, so upper scopes shadow lower ones.
//
// # Scopes
//
// A scope is a layer of registrations with its own lifetime:
//
//	_ = d.PushScope(
//	    depot.WithScopeName("session"),
//	    depot.WithScopeInit(func(d *depot.Depot) error {
//	        return depot.RegisterInstance(d, user)
//	    }),
//	    depot.WithScopeDispose(func(ctx context.Context) error {
//	        return session.Close()
//	    }),
//	)
//	...
//	_ = d.PopScope(ctx) // disposes the scope's records, unshadows below
//
// The base scope is always present and cannot be popped. PopScopesTill
// unwinds several scopes at once; Reset returns the registry to a single
// empty base scope.
//
// Instances can observe their own shadowing by implementing ShadowNotifier,
// and their teardown by implementing Disposable or via WithDispose.
//
// # Readiness
//
// Records built asynchronously, or registered WithSignalsReady, stay
// pending until construction finishes or SignalReady delivers the instance:
//
//	depot.RegisterAsync(d, connectDB)
//	err := d.AllReady(ctx, depot.WithReadyTimeout(5*time.Second))
//
// IsReady waits for a single key; the Sync variants answer without
// blocking. Timeouts fail with a ReadinessTimeout error carrying a
// diagnostic snapshot of pending keys, ready keys, and active waiters.
//
// # Bundles
//
// Group related registrations and apply them together, either into the
// current scope or as a scope of their own:
//
//	infra := depot.NewBundle("infra")
//	depot.BundleLazySingleton(infra, NewPool)
//	depot.BundleInstance(infra, cfg)
//	_ = d.Apply(infra)
//
// # Errors
//
// Every failure is an *Error with a stable code: DuplicateRegistration,
// NotRegistered, TypeMismatch, InvalidScopeName, IllegalState,
// ReadinessTimeout. Match with errors.Is or the Is* helpers.
//
// # Observers
//
//	d := depot.New(
//	    depot.WithScopeObserver(func(pushed bool) { ... }),
//	    depot.WithResolveObserver(func(key string, err error) { ... }),
//	)
//
// # Testing
//
// Use a fresh registry per test; the depottest package wraps one with
// cleanup and replace helpers:
//
//	td := depottest.New(t)
//	depottest.Replace(td, &FakeMailer{})
package depot
