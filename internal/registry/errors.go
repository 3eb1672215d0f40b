package registry

import "errors"

// Engine-level sentinels. The facade wraps these into its coded error type;
// tests and callers inside this package match with errors.Is.
var (
	ErrDuplicate        = errors.New("already registered in current scope")
	ErrNotRegistered    = errors.New("not registered")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrInvalidScopeName = errors.New("invalid scope name")
	ErrIllegalState     = errors.New("illegal state")
	ErrNotReady         = errors.New("async construction not finished")
)
