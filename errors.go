package depot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-depot/depot/internal/readiness"
	"github.com/go-depot/depot/internal/registry"
)

type ErrorCode uint16

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeDuplicateRegistration
	ErrCodeNotRegistered
	ErrCodeTypeMismatch
	ErrCodeInvalidScopeName
	ErrCodeIllegalState
	ErrCodeReadinessTimeout
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:               "UNKNOWN",
	ErrCodeDuplicateRegistration: "DUPLICATE_REGISTRATION",
	ErrCodeNotRegistered:         "NOT_REGISTERED",
	ErrCodeTypeMismatch:          "TYPE_MISMATCH",
	ErrCodeInvalidScopeName:      "INVALID_SCOPE_NAME",
	ErrCodeIllegalState:          "ILLEGAL_STATE",
	ErrCodeReadinessTimeout:      "READINESS_TIMEOUT",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", c)
}

// Error is the single error type surfaced by the package. Key carries the
// registration key the failing operation targeted, when there is one.
type Error struct {
	Code    ErrorCode
	Message string
	Key     string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s]", e.Code))

	if e.Key != "" {
		b.WriteString(fmt.Sprintf(" key=%q:", e.Key))
	}

	b.WriteString(" ")
	b.WriteString(e.Message)

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

func newError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// wrapEngineErr translates engine sentinels into coded errors. Errors that
// are already coded pass through untouched.
func wrapEngineErr(err error, key string) error {
	if err == nil {
		return nil
	}

	var coded *Error
	if errors.As(err, &coded) {
		return err
	}

	var timeout *readiness.TimeoutError
	if errors.As(err, &timeout) {
		return newError(ErrCodeReadinessTimeout, "readiness wait timed out", err).WithKey(key)
	}

	switch {
	case errors.Is(err, registry.ErrDuplicate):
		return newError(ErrCodeDuplicateRegistration, "key already bound in current scope", err).WithKey(key)
	case errors.Is(err, registry.ErrNotRegistered):
		return newError(ErrCodeNotRegistered, "no registration for key", err).WithKey(key)
	case errors.Is(err, registry.ErrTypeMismatch):
		return newError(ErrCodeTypeMismatch, "parameter or resolved type mismatch", err).WithKey(key)
	case errors.Is(err, registry.ErrInvalidScopeName):
		return newError(ErrCodeInvalidScopeName, "scope name is reserved or already in use", err)
	case errors.Is(err, registry.ErrIllegalState), errors.Is(err, registry.ErrNotReady):
		return newError(ErrCodeIllegalState, "operation not valid in current state", err).WithKey(key)
	default:
		return err
	}
}

func IsDuplicateRegistration(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeDuplicateRegistration
}

func IsNotRegistered(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeNotRegistered
}

func IsTypeMismatch(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeTypeMismatch
}

func IsInvalidScopeName(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeInvalidScopeName
}

func IsIllegalState(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeIllegalState
}

func IsReadinessTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeReadinessTimeout
}

// TimeoutSnapshot extracts the diagnostic snapshot from a readiness timeout
// error, reporting false for any other error.
func TimeoutSnapshot(err error) (ReadinessSnapshot, bool) {
	var timeout *readiness.TimeoutError
	if errors.As(err, &timeout) {
		return timeout.Snapshot, true
	}
	return ReadinessSnapshot{}, false
}
