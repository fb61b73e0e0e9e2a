// Package apperr defines the application's error taxonomy. Mutation entry
// points convert storage and provider failures into one of these sentinels at
// the boundary; handlers map them to HTTP statuses.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// validation errors
	ErrInvalidInput = errors.New("invalid input")

	// auth-specific errors
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")

	// resource errors
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("not authorized")

	// collaborator errors
	ErrPersistence = errors.New("storage failure")
	ErrProvider    = errors.New("payment provider failure")
)

// HTTPStatus maps an error to its response status. Unrecognized errors are
// treated as persistence failures so their messages never leak.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, ErrProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing message for an error. Anything outside the
// taxonomy is genericized.
func Message(err error) string {
	for _, sentinel := range []error{
		ErrInvalidInput, ErrDuplicateEmail, ErrInvalidCredentials,
		ErrInvalidToken, ErrNotFound, ErrForbidden, ErrProvider,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal error"
}
