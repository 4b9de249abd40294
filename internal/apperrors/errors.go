// Package apperrors defines the error taxonomy shared by the entity store,
// the completion client and the page controllers.
//
// Each class is a concrete type so callers can read details with errors.As,
// and each matches a sentinel so handlers can branch with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrAuthentication = errors.New("authentication required")
	ErrTransport      = errors.New("transport failure")
	ErrConflict       = errors.New("version conflict")
)

// ValidationError reports a field value or shape that does not match its schema.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Validation builds a *ValidationError with a formatted reason.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a record missing from the caller's scope.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// AuthenticationError is returned when an operation runs without a resolved identity.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return "authentication required: " + e.Reason
}

func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthentication }

func Unauthenticated(reason string) error {
	return &AuthenticationError{Reason: reason}
}

// TransportError wraps a failure of a backing service (database, completion
// endpoint, object storage). It is reported once and never retried here.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return e.Op + ": transport failure"
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Transport wraps err as a *TransportError unless it already belongs to the taxonomy.
func Transport(op string, err error) error {
	if err == nil {
		return nil
	}
	if Classified(err) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}

// ConflictError reports an update that lost a race with another write.
type ConflictError struct {
	Kind    string
	ID      string
	Version int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s changed since version %d", e.Kind, e.ID, e.Version)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// Classified reports whether err already carries one of the taxonomy classes.
func Classified(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAuthentication) ||
		errors.Is(err, ErrTransport) ||
		errors.Is(err, ErrConflict)
}
