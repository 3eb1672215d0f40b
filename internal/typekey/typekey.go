// Package typekey derives stable string keys from Go types. Keys identify
// registrations inside the scope stack, so two ways of naming the same type
// must always produce the same key.
package typekey

import (
	"fmt"
	"reflect"
	"sync"
)

var keyCache sync.Map

// For returns the registry key for the type parameter T.
func For[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		t = reflect.TypeOf((*T)(nil)).Elem()
	}
	return fromReflect(t)
}

// ForValue returns the registry key for the dynamic type of v.
func ForValue(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fromReflect(reflect.TypeOf(v))
}

func fromReflect(t reflect.Type) string {
	if cached, ok := keyCache.Load(t); ok {
		return cached.(string)
	}

	key := build(t)
	keyCache.Store(t, key)
	return key
}

func build(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Ptr:
		return "*" + build(t.Elem())
	case reflect.Slice:
		return "[]" + build(t.Elem())
	case reflect.Array:
		return fmt.Sprintf("[%d]%s", t.Len(), build(t.Elem()))
	case reflect.Map:
		return "map[" + build(t.Key()) + "]" + build(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + build(t.Elem())
		case reflect.SendDir:
			return "chan<- " + build(t.Elem())
		default:
			return "chan " + build(t.Elem())
		}
	case reflect.Func:
		return t.String()
	default:
		if t.PkgPath() != "" {
			return t.PkgPath() + "." + t.Name()
		}
		return t.Name()
	}
}

// Name returns a short human-readable name for T, used in error messages.
func Name[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		t = reflect.TypeOf((*T)(nil)).Elem()
	}
	return t.String()
}

// IsNil reports whether v is nil, including typed nils inside interfaces.
func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// Same reports whether a and b are the same instance. Reference kinds
// compare by underlying pointer; comparable values fall back to ==;
// everything else is never the same instance.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Kind() != rb.Kind() {
		return false
	}

	switch ra.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Len() == rb.Len() && ra.Pointer() == rb.Pointer()
	default:
		if ra.Type() != rb.Type() || !ra.Type().Comparable() {
			return false
		}
		return a == b
	}
}
