// Package apperr defines the error kinds shared by every domain service and
// the field-keyed validation errors surfaced to API callers.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrDuplicateFile     = errors.New("duplicate file")
	ErrConflictPending   = errors.New("conflict pending")
	ErrLinkageBlocked    = errors.New("linkage blocked")
	ErrStateTransition   = errors.New("state transition invalid")
	ErrUpstreamTransient = errors.New("upstream transient")
	ErrUpstreamFatal     = errors.New("upstream fatal")
	ErrNotFound          = errors.New("not found")
	ErrPermissionDenied  = errors.New("permission denied")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries a kind plus a human message and, for validation failures,
// the offending fields.
type Error struct {
	Kind    error
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}

	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}

	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, strings.Join(parts, "; "))
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func New(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(field, message string) *Error {
	return &Error{
		Kind:    ErrValidation,
		Message: "invalid input",
		Fields:  []FieldError{{Field: field, Message: message}},
	}
}

func NotFound(entity string) *Error {
	return New(ErrNotFound, "%s not found", entity)
}

func LinkageBlocked(format string, args ...any) *Error {
	return New(ErrLinkageBlocked, format, args...)
}

func Transient(err error) error {
	return fmt.Errorf("%w: %w", ErrUpstreamTransient, err)
}

func Fatal(err error) error {
	return fmt.Errorf("%w: %w", ErrUpstreamFatal, err)
}

// IsRetriable reports whether a task failing with err should be retried.
func IsRetriable(err error) bool {
	return errors.Is(err, ErrUpstreamTransient)
}

// Code is the machine-readable name of err's kind.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrDuplicateFile):
		return "duplicate_file"
	case errors.Is(err, ErrConflictPending):
		return "conflict_pending"
	case errors.Is(err, ErrLinkageBlocked):
		return "linkage_blocked"
	case errors.Is(err, ErrStateTransition):
		return "state_transition_invalid"
	case errors.Is(err, ErrUpstreamTransient):
		return "upstream_transient"
	case errors.Is(err, ErrUpstreamFatal):
		return "upstream_fatal"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	default:
		return "internal_error"
	}
}

// FieldsOf returns the field errors carried anywhere in err's chain.
func FieldsOf(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}

	return nil
}
