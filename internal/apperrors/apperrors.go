// Package apperrors defines the domain error taxonomy shared by the
// service and handler layers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind sentinels. Services return errors wrapping one of these; handlers
// map them to HTTP statuses via Status.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrValidation        = errors.New("validation failed")
)

// Error is a domain failure with a user-facing message
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NotFound builds a NotFound error with the given message
func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExists builds an AlreadyExists error with the given message
func AlreadyExists(format string, args ...any) error {
	return &Error{Kind: ErrAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

// InvalidCredential builds an InvalidCredential error with the given message
func InvalidCredential(format string, args ...any) error {
	return &Error{Kind: ErrInvalidCredential, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a Validation error with the given message
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// Status maps a domain error to its HTTP status code. Unrecognized
// errors map to 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
