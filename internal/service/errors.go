// Package service holds the booking negotiation engine: offer creation, the
// status state machine, the access filter and the revenue aggregator.
package service

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a failure so transports can map it without string matching.
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindDuplicateOffer    Kind = "duplicate_offer"
	KindForbidden         Kind = "forbidden"
	KindInvalidTransition Kind = "invalid_transition"
	KindNotFound          Kind = "not_found"
	KindUnavailable       Kind = "collaborator_unavailable"
)

// Error is the structured failure every service operation returns.
type Error struct {
	Kind   Kind
	Detail string
	Err    error // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so
// errors.Is(err, &Error{Kind: KindNotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of err, or "" when err is not a service error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

func newError(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// unavailable wraps a store or catalog failure that is not a domain error.
func unavailable(op string, err error) *Error {
	detail := op + " failed"
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		detail = op + " timed out"
	}
	return &Error{Kind: KindUnavailable, Detail: detail, Err: err}
}
