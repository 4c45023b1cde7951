package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrInternal
	ErrUpstream
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest:
		return http.StatusBadRequest
	case ErrUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s no encontrado", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "Error interno del servidor",
		Err:     err,
	}
}

func Upstream(message string, err error) *AppError {
	return &AppError{
		Code:    ErrUpstream,
		Message: message,
		Err:     err,
	}
}
