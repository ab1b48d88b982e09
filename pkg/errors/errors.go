package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error codes returned in API responses
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeInvalidPlacement    = "INVALID_PLACEMENT"
	CodeReconciliation      = "RECONCILIATION_CONFLICT"
	CodeBadRequest          = "BAD_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInternal            = "INTERNAL_ERROR"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
)

// AppError is the canonical application error carried to the HTTP layer
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	HTTPStatus int               `json:"-"`
	Err        error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap attaches an underlying error
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

// WithDetail adds a detail entry
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// ErrValidation creates a validation error
func ErrValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// ErrValidationWithFields creates a validation error with per-field details
func ErrValidationWithFields(message string, fields map[string]string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		Details:    fields,
		HTTPStatus: http.StatusBadRequest,
	}
}

// ErrNotFound creates a not-found error for a resource
func ErrNotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// ErrConflict creates a conflict error
func ErrConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// ErrInsufficientStock creates a stock shortage error
func ErrInsufficientStock(message string) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// ErrInvalidPlacement creates a placement parsing/bounds error
func ErrInvalidPlacement(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidPlacement,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// ErrReconciliationConflict creates a reconciliation conflict error
func ErrReconciliationConflict(message string) *AppError {
	return &AppError{
		Code:       CodeReconciliation,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// ErrBadRequest creates a bad-request error
func ErrBadRequest(message string) *AppError {
	return &AppError{
		Code:       CodeBadRequest,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// ErrUnauthorized creates an unauthorized error
func ErrUnauthorized(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// ErrForbidden creates a forbidden error
func ErrForbidden(message string) *AppError {
	if message == "" {
		message = "access denied"
	}
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// ErrInternal creates an internal error
func ErrInternal(message string) *AppError {
	if message == "" {
		message = "an unexpected error occurred"
	}
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// ErrServiceUnavailable creates a service-unavailable error
func ErrServiceUnavailable(service string) *AppError {
	return &AppError{
		Code:       CodeServiceUnavailable,
		Message:    fmt.Sprintf("%s is unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// MapDomainError converts any error into an AppError. Domain errors are
// matched by message pattern so the domain layer stays free of HTTP concerns.
func MapDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient stock"):
		return ErrInsufficientStock(err.Error()).Wrap(err)
	case strings.Contains(msg, "invalid placement"):
		return ErrInvalidPlacement(err.Error()).Wrap(err)
	case strings.Contains(msg, "reconciliation conflict"):
		return ErrReconciliationConflict(err.Error()).Wrap(err)
	case strings.Contains(msg, "not found"):
		return &AppError{
			Code:       CodeNotFound,
			Message:    err.Error(),
			HTTPStatus: http.StatusNotFound,
			Err:        err,
		}
	case strings.Contains(msg, "not pending"),
		strings.Contains(msg, "already approved"),
		strings.Contains(msg, "already rejected"),
		strings.Contains(msg, "conflict"):
		return ErrConflict(err.Error()).Wrap(err)
	case strings.Contains(msg, "invalid"),
		strings.Contains(msg, "must be"),
		strings.Contains(msg, "required"),
		strings.Contains(msg, "cannot be"):
		return ErrValidation(err.Error()).Wrap(err)
	default:
		return ErrInternal("").Wrap(err)
	}
}
