// Package status defines the error taxonomy shared by every component.
// Components return these typed errors instead of throwing generic ones so
// the transport layer can map them 1:1 to response codes without string
// matching.
package status

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// Kind classifies an error for propagation and retry policy.
type Kind int

const (
	// KindValidation marks caller-fixable input errors, never retried.
	KindValidation Kind = iota
	// KindAuthorization marks acting on a resource not owned/visible to caller.
	KindAuthorization
	// KindNotFound marks a missing feed/post/user.
	KindNotFound
	// KindConflict marks a duplicate-state mutation.
	KindConflict
	// KindInternal marks store or infrastructure failures, safe for the
	// caller to retry with backoff.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindAuthorization:
		return "AUTHORIZATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	default:
		return "INTERNAL"
	}
}

// Error is a typed error carrying its taxonomy kind. Internal errors carry an
// opaque correlation id surfaced to the client in place of the raw cause.
type Error struct {
	Kind          Kind
	Msg           string
	CorrelationId string
	cause         error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// SafeMessage is the message exposed to clients. Internal errors never leak
// raw store error text, only the correlation id.
func (e *Error) SafeMessage() string {
	if e.Kind == KindInternal {
		return fmt.Sprintf("internal error, correlation id %s", e.CorrelationId)
	}
	return e.Msg
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Authorizationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthorization, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Internal wraps an infrastructure failure and assigns it a correlation id.
// Wrapping an *Error returns it unchanged so kinds assigned deep in the call
// stack survive to the transport layer.
func Internal(err error, msg string) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return &Error{
		Kind:          KindInternal,
		Msg:           msg,
		CorrelationId: uuid.New().String(),
		cause:         err,
	}
}

// KindOf extracts the taxonomy kind of err, defaulting to KindInternal for
// untyped errors.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to its transport status code.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
