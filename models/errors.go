package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed operation.
type ErrorKind string

const (
	KindNotFound              ErrorKind = "not_found"
	KindConflict              ErrorKind = "conflict_violation"
	KindInvalidTransition     ErrorKind = "invalid_transition"
	KindValidation            ErrorKind = "validation_error"
	KindAuthorizationRequired ErrorKind = "authorization_required"
)

// Error carries the entity, id, field and attempted value of a failed
// operation so callers can build a user-facing message from it.
type Error struct {
	Kind   ErrorKind
	Entity string
	ID     uint
	Field  string
	Value  string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s: %s", e.Kind, e.Entity)
	if e.ID != 0 {
		s += fmt.Sprintf(" %d", e.ID)
	}
	if e.Field != "" {
		s += " " + e.Field
		if e.Value != "" {
			s += "=" + e.Value
		}
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err or any error it wraps is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ErrNotFound builds a lookup failure for the given entity id.
func ErrNotFound(entity string, id uint) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id, Msg: "no such record"}
}

// ErrConflict builds a uniqueness or concurrent-update conflict.
func ErrConflict(entity string, id uint, field, value, msg string) *Error {
	return &Error{Kind: KindConflict, Entity: entity, ID: id, Field: field, Value: value, Msg: msg}
}

// ErrInvalidTransition builds a state machine violation from one status to another.
func ErrInvalidTransition(entity string, id uint, from, to string) *Error {
	return &Error{
		Kind:   KindInvalidTransition,
		Entity: entity,
		ID:     id,
		Field:  "status",
		Value:  to,
		Msg:    fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// ErrValidation builds a field validation failure.
func ErrValidation(entity, field, value, msg string) *Error {
	return &Error{Kind: KindValidation, Entity: entity, Field: field, Value: value, Msg: msg}
}

// ErrAuthorizationRequired builds a refusal for an operation that needs an
// explicit authorization record.
func ErrAuthorizationRequired(entity string, id uint, msg string) *Error {
	return &Error{Kind: KindAuthorizationRequired, Entity: entity, ID: id, Msg: msg}
}
