// Package apperr holds the error kinds every layer of the service reports with,
// so that handlers can translate failures to a status code in one place.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidationFailed
	KindNotFound
	KindInvalidTransition
	KindConflict
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindValidationFailed:
		return "validation_failed"
	case KindNotFound:
		return "not_found"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindConflict:
		return "conflict"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

// Error is a classified failure. Message is safe to show to the caller,
// Err is the underlying cause and is only exposed in debug mode.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two *Error values by kind, which lets sentinel errors declared with
// New be compared with errors.Is after being wrapped or re-created.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func InvalidTransition(message string) *Error {
	return New(KindInvalidTransition, message)
}

func Conflict(message string, details any) *Error {
	return &Error{Kind: KindConflict, Message: message, Details: details}
}

func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, message)
}

func Internal(err error) *Error {
	return Wrap(KindInternal, "internal server error", err)
}

// Validation builds a ValidationFailed error from per-field messages.
func Validation(fields map[string][]string) *Error {
	return &Error{
		Kind:    KindValidationFailed,
		Message: "the given data was invalid",
		Fields:  fields,
	}
}

// KindOf reports the kind of the first *Error in the chain. Anything
// unclassified is internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// FieldErrors collects validation messages while checking input.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

func (fe FieldErrors) Check(ok bool, field, message string) {
	if !ok {
		fe.Add(field, message)
	}
}

// Err returns nil when nothing was collected.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return Validation(fe)
}
