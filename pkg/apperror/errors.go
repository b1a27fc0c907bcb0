package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternal       = errors.New("internal server error")
	ErrInvalidInput   = errors.New("invalid input")
	ErrTransitionBusy = errors.New("a transition for this review is already in flight")
	ErrNoTransition   = errors.New("review is already in the requested status")
	ErrNoStagedAction = errors.New("no staged transition for this review")
	ErrNotPending     = errors.New("review can only be changed while pending")
)

// AppError is a custom error type that can hold an HTTP status code
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// MapErrorToStatus maps common errors to HTTP status codes
func MapErrorToStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNoTransition) || errors.Is(err, ErrNotPending) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrTransitionBusy) {
		return http.StatusConflict
	}
	// Default to internal server error
	return http.StatusInternalServerError
}
