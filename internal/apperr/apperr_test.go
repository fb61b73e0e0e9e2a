package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrInvalidToken, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrNotFound, http.StatusNotFound},
		{ErrDuplicateEmail, http.StatusConflict},
		{ErrProvider, http.StatusBadGateway},
		{ErrPersistence, http.StatusInternalServerError},
		{errors.New("raw storage failure"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "%v", tt.err)
	}
}

// Wrapped errors keep their classification.
func TestHTTPStatus_Wrapped(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("%w: connection refused", ErrPersistence)
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(wrapped))

	wrapped = fmt.Errorf("%w: pet p1", ErrForbidden)
	assert.Equal(t, http.StatusForbidden, HTTPStatus(wrapped))
}

// Storage internals never leak into the user-facing message.
func TestMessage_Genericizes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "internal error", Message(errors.New("pq: relation pets does not exist")))
	assert.Equal(t, "internal error", Message(fmt.Errorf("%w: dial tcp refused", ErrPersistence)))
	assert.Equal(t, "not authorized", Message(fmt.Errorf("%w: pet p1", ErrForbidden)))
	assert.Equal(t, "email already exists", Message(ErrDuplicateEmail))
}
