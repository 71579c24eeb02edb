package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Status  int      `json:"status"`
	Fields  []string `json:"fields,omitempty"`
	Err     error    `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for the business-rule failures of the API. Business
// failures answer 400 except the plan-in-use delete, which answers 403;
// this mirrors the contract the mobile and web clients already depend on.
var (
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "Validation fails")
	ErrNotFound           = New("NOT_FOUND", http.StatusBadRequest, "resource does not exist")
	ErrConflict           = New("CONFLICT", http.StatusBadRequest, "resource already exists")
	ErrPlanInUse          = New("PLAN_IN_USE", http.StatusForbidden, "This plan has students")
	ErrRateLimited        = New("RATE_LIMITED", http.StatusBadRequest, "Maximum number of check ins in last 7 days reached")
	ErrPastDate           = New("PAST_DATE", http.StatusBadRequest, "Past dates are not allowed")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// Validation builds a validation error carrying per-field messages.
func Validation(err error, fields []string) *Error {
	return &Error{
		Code:    ErrValidation.Code,
		Status:  ErrValidation.Status,
		Message: ErrValidation.Message,
		Fields:  fields,
		Err:     err,
	}
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
