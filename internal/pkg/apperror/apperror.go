package apperror

import (
	"errors"
	"net/http"
)

// AppError is a domain error that carries the HTTP status the boundary layer should answer with.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError with the same code and message,
// so a sentinel still matches after it has been re-wrapped with a cause.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithCause returns a copy of the sentinel e that carries err as its cause.
func (e *AppError) WithCause(err error) *AppError {
	return Wrap(err, e.Code, e.Message)
}

// StatusCode returns the HTTP status for err, or 500 when err is not an AppError.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
