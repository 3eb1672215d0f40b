package depot

// Bundle is a named, composable group of registrations. Applying a bundle
// replays its registrations into the current scope; PushBundleScope gives
// the bundle a scope of its own so popping it removes everything the bundle
// registered.
type Bundle struct {
	name       string
	entries    []bundleEntry
	subbundles []*Bundle
}

type bundleEntry struct {
	register func(d *Depot) error
}

func NewBundle(name string) *Bundle {
	return &Bundle{
		name: name,
	}
}

func (b *Bundle) Name() string {
	return b.name
}

// Include nests another bundle; its registrations replay before this
// bundle's own.
func (b *Bundle) Include(sub *Bundle) *Bundle {
	b.subbundles = append(b.subbundles, sub)
	return b
}

func (b *Bundle) apply(d *Depot) error {
	for _, sub := range b.subbundles {
		if err := sub.apply(d); err != nil {
			return err
		}
	}
	for _, e := range b.entries {
		if err := e.register(d); err != nil {
			return err
		}
	}
	return nil
}

// Apply replays the bundles' registrations into the current scope.
func (d *Depot) Apply(bundles ...*Bundle) error {
	for _, b := range bundles {
		if err := b.apply(d); err != nil {
			return err
		}
	}
	return nil
}

// PushBundleScope pushes a scope named after the bundle and applies the
// bundle into it. Popping the scope tears the bundle's registrations down
// as a unit.
func (d *Depot) PushBundleScope(b *Bundle, opts ...ScopeOption) error {
	opts = append([]ScopeOption{
		WithScopeName(b.name),
		WithScopeInit(func(d *Depot) error {
			return b.apply(d)
		}),
	}, opts...)
	return d.PushScope(opts...)
}

// BundleFactory adds a zero-argument factory registration to the bundle.
func BundleFactory[T any](b *Bundle, factory func() (T, error), opts ...RegisterOption) *Bundle {
	b.entries = append(b.entries, bundleEntry{
		register: func(d *Depot) error {
			return RegisterFactory(d, factory, opts...)
		},
	})
	return b
}

// BundleLazySingleton adds a cached factory registration to the bundle.
func BundleLazySingleton[T any](b *Bundle, factory func() (T, error), opts ...RegisterOption) *Bundle {
	b.entries = append(b.entries, bundleEntry{
		register: func(d *Depot) error {
			return RegisterLazySingleton(d, factory, opts...)
		},
	})
	return b
}

// BundleInstance adds a direct-instance registration to the bundle.
func BundleInstance[T any](b *Bundle, value T, opts ...RegisterOption) *Bundle {
	b.entries = append(b.entries, bundleEntry{
		register: func(d *Depot) error {
			return RegisterInstance(d, value, opts...)
		},
	})
	return b
}
