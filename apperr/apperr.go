// Package apperr holds the closed set of errors the service reports to
// clients and the single function mapping them to HTTP responses.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindGeneric Kind = iota
	KindNotFound
	KindNotAuthorized
)

const genericMessage = "Something went wrong"

type Error struct {
	kind    Kind
	message string
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Kind() Kind {
	return e.kind
}

var (
	ErrNotFound      = &Error{kind: KindNotFound, message: "Not Found"}
	ErrNotAuthorized = &Error{kind: KindNotAuthorized, message: "Not authorized"}
)

type ErrorMessage struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Errors []ErrorMessage `json:"errors"`
}

// KindOf returns the kind of the first *Error in err's chain, or KindGeneric.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}
	return KindGeneric
}

// ToResponse maps any error to the status code and body sent to the client.
// Errors outside the known kinds never leak their message.
func ToResponse(err error) (int, ErrorResponse) {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound, newResponse(ErrNotFound.message)
	case KindNotAuthorized:
		return http.StatusUnauthorized, newResponse(ErrNotAuthorized.message)
	default:
		return http.StatusBadRequest, newResponse(genericMessage)
	}
}

func newResponse(message string) ErrorResponse {
	return ErrorResponse{Errors: []ErrorMessage{{Message: message}}}
}
