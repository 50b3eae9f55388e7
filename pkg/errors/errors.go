package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    "BAD_REQUEST",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func Forbidden(message string, err error) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     err,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     nil,
	}
}

func InternalServer(message string, err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_SERVER_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func TooManyRequests(message string, waitTime time.Duration) *AppError {
	return &AppError{
		Code:    "TOO_MANY_REQUESTS",
		Message: fmt.Sprintf("%s (retry in %ds)", message, int(waitTime.Seconds()+0.5)),
		Status:  http.StatusTooManyRequests,
		Err:     nil,
	}
}

// Unavailable is returned when a backend client is not ready. Callers abort
// and the user is asked to try again; nothing is queued.
func Unavailable(message string, err error) *AppError {
	return &AppError{
		Code:    "UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

// FromStore converts a document store error into an AppError. AppErrors pass
// through unchanged.
func FromStore(err error, message string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Unavailable("Service not ready, please try again", err)
	}

	switch status.Code(err) {
	case codes.NotFound:
		return &AppError{Code: "NOT_FOUND", Message: message, Status: http.StatusNotFound, Err: err}
	case codes.PermissionDenied:
		return Forbidden(message, err)
	case codes.Unavailable, codes.DeadlineExceeded:
		return Unavailable("Service not ready, please try again", err)
	case codes.AlreadyExists:
		return &AppError{Code: "CONFLICT", Message: message, Status: http.StatusConflict, Err: err}
	default:
		return Internal(message, err)
	}
}
