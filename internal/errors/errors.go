package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned when a login, password or session token does not match a live account.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation is returned when a required field is missing or malformed.
	ErrValidation = errors.New("validation error")
	// ErrNotFound is returned when a record with the requested id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a live table already uses the requested table number or login.
	ErrConflict = errors.New("conflict")
	// ErrInvalidTransition is returned when a queue item status would move backwards.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrForbidden is returned when the caller's role may not act on the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized is returned when no usable session accompanies the request.
	ErrUnauthorized = errors.New("unauthorized")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error:   e.Message,
		Code:    e.Code,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Kind returns the machine-checkable code for err, or INTERNAL_ERROR when
// err does not wrap a known sentinel.
func Kind(err error) string {
	return MapErrorToHTTP(err).Code
}

// MapErrorToHTTP maps domain errors to HTTP errors. The message of a wrapped
// sentinel is kept so callers see which field or record failed.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidTransition):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_TRANSITION")
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrConflict):
		return NewHTTPError(http.StatusConflict, err.Error(), "CONFLICT")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNAUTHORIZED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
