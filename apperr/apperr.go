// Package apperr carries the failure taxonomy shared by the workflow engine
// and the HTTP layer. Every user-visible failure is a Kind plus a short
// message; causes stay wrapped underneath and never cross the API boundary.
package apperr

import (
	"net/http"

	"github.com/pkg/errors"
)

// Kind classifies a failure for status mapping.
type Kind int

const (
	Unknown Kind = iota
	Validation
	Authenticity
	Banned
	NotFound
	MethodNotAllowed
	Token
	RateLimit
	CapExceeded
	Store
)

// Error is a classified application error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error with a user-visible message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap classifies an underlying error. The cause is kept for logging but the
// message is all a client ever sees.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the Kind from an error chain. Unclassified errors are
// treated as store/internal failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Store
}

// Message returns the user-visible message for an error chain. Unclassified
// errors get a generic message so internal detail stays inside.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}

// HTTPStatus maps a Kind to the response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case Validation:
		return http.StatusBadRequest
	case Authenticity:
		return http.StatusUnauthorized
	case Banned:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case MethodNotAllowed:
		return http.StatusMethodNotAllowed
	case Token:
		return http.StatusConflict
	case RateLimit, CapExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
