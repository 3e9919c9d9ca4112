// Package errs defines the error kinds surfaced by the rental engine.
//
// Every error returned across a package boundary of the engine is either an
// *Error or wraps one, so callers can branch on the kind with errors.Is
// against the sentinels below or with KindOf.
package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes an engine error.
type Kind string

const (
	KindInsufficientStock  Kind = "INSUFFICIENT_STOCK"
	KindCustomerIneligible Kind = "CUSTOMER_INELIGIBLE"
	KindInvalidTransition  Kind = "INVALID_TRANSITION"
	KindValidation         Kind = "VALIDATION"
	KindNotFound           Kind = "NOT_FOUND"
	KindStorageUnavailable Kind = "STORAGE_UNAVAILABLE"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrInsufficientStock  = &Error{Kind: KindInsufficientStock}
	ErrCustomerIneligible = &Error{Kind: KindCustomerIneligible}
	ErrInvalidTransition  = &Error{Kind: KindInvalidTransition}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrStorageUnavailable = &Error{Kind: KindStorageUnavailable}
)

// Error is a categorized engine error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New returns an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation returns a validation error.
func Validation(format string, args ...any) error {
	return New(KindValidation, format, args...)
}

// NotFound returns a not-found error for an entity.
func NotFound(entity string, id int64) error {
	return New(KindNotFound, "%s %d not found", entity, id)
}

// InvalidTransition returns an error for a disallowed status change.
func InvalidTransition(entity string, id int64, from, action string) error {
	return New(KindInvalidTransition, "cannot %s %s %d in status %s", action, entity, id, from)
}

// Storage wraps a persistence failure. A nil err yields nil, and errors that
// already carry a kind are returned unchanged.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindStorageUnavailable, Message: op, Err: err}
}

// KindOf returns the kind of err, or "" if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
