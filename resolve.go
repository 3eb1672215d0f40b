package depot

import (
	"github.com/go-depot/depot/internal/registry"
	"github.com/go-depot/depot/internal/typekey"
)

func resolveKey[T any](d *Depot, key registry.Key, param any, paramType string, hasParam bool) (T, error) {
	var zero T

	instance, err := d.stack.Resolve(key, param, paramType, hasParam)
	err = wrapEngineErr(err, key.String())
	d.callResolveHooks(key.String(), err)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		err = newError(ErrCodeTypeMismatch, "resolved instance is not a "+typekey.Name[T](), nil).WithKey(key.String())
		d.callResolveHooks(key.String(), err)
		return zero, err
	}
	return typed, nil
}

// Resolve returns an instance for T from the first matching registration,
// scanning scopes top-down.
func Resolve[T any](d *Depot) (T, error) {
	return resolveKey[T](d, registry.Key{Type: typekey.For[T]()}, nil, "", false)
}

// ResolveNamed resolves the registration under (T, name).
func ResolveNamed[T any](d *Depot, name string) (T, error) {
	return resolveKey[T](d, registry.Key{Type: typekey.For[T](), Name: name}, nil, "", false)
}

// ResolveParam resolves T through its one-parameter factory. P must match
// the parameter type declared at registration. Zero-argument factories
// ignore the parameter.
func ResolveParam[T, P any](d *Depot, param P) (T, error) {
	return resolveKey[T](d, registry.Key{Type: typekey.For[T]()}, param, typekey.For[P](), true)
}

// ResolveParamNamed is ResolveParam for a named registration.
func ResolveParamNamed[T, P any](d *Depot, name string, param P) (T, error) {
	return resolveKey[T](d, registry.Key{Type: typekey.For[T](), Name: name}, param, typekey.For[P](), true)
}

func MustResolve[T any](d *Depot) T {
	v, err := Resolve[T](d)
	if err != nil {
		panic(err)
	}
	return v
}

func MustResolveNamed[T any](d *Depot, name string) T {
	v, err := ResolveNamed[T](d, name)
	if err != nil {
		panic(err)
	}
	return v
}

func MustResolveParam[T, P any](d *Depot, param P) T {
	v, err := ResolveParam[T, P](d, param)
	if err != nil {
		panic(err)
	}
	return v
}

func TryResolve[T any](d *Depot) (T, bool) {
	v, err := Resolve[T](d)
	return v, err == nil
}

func TryResolveNamed[T any](d *Depot, name string) (T, bool) {
	v, err := ResolveNamed[T](d, name)
	return v, err == nil
}

// Has reports whether a registration for T is visible from the current
// scope.
func Has[T any](d *Depot) bool {
	_, ok := d.stack.Lookup(registry.Key{Type: typekey.For[T]()}, false)
	return ok
}

// HasNamed reports whether a registration for (T, name) is visible.
func HasNamed[T any](d *Depot, name string) bool {
	_, ok := d.stack.Lookup(registry.Key{Type: typekey.For[T](), Name: name}, false)
	return ok
}
