// Package apperr carries the error taxonomy shared by every service:
// validation failures, missing entities, unmatched routes and store failures,
// each with a fixed HTTP status.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindRouteNotFound
	KindStore
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports a missing or malformed request field.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NotFound reports an entity that does not exist in the store.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Store wraps a failure from the store adapter.
func Store(msg string, err error) *Error {
	return &Error{Kind: KindStore, Message: msg, Err: err}
}

// HTTPStatus maps an error to its response status. Unknown errors are
// treated as internal failures.
func HTTPStatus(err error) int {
	var ae *Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound, KindRouteNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
