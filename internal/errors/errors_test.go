package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"wrapped validation", fmt.Errorf("%w: hours must be one of 1,2,3,4,6,12,24", ErrValidation), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"wrapped not found", fmt.Errorf("%w: table 9", ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", ErrConflict, http.StatusConflict, "CONFLICT"},
		{"transition", fmt.Errorf("%w: done -> pending", ErrInvalidTransition), http.StatusBadRequest, "INVALID_TRANSITION"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"unknown", fmt.Errorf("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
			assert.Equal(t, tt.wantCode, Kind(tt.err))
			assert.False(t, httpErr.ToErrorResponse().Success)
		})
	}
}

func TestMapErrorToHTTP_CredentialsMessageIsUniform(t *testing.T) {
	unknown := MapErrorToHTTP(fmt.Errorf("%w: unknown login", ErrInvalidCredentials))
	wrong := MapErrorToHTTP(fmt.Errorf("%w: wrong password", ErrInvalidCredentials))

	assert.Equal(t, unknown.Message, wrong.Message)
	assert.Equal(t, "invalid credentials", unknown.Message)
}
