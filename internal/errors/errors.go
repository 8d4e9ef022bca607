// Package errors provides the application error type for the ledger API.
// Services return *AppError so handlers can answer with a stable code and
// message without leaking store errors to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, optional structured details and
// optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		Details:    sentinel.Details,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WithDetails attaches a structured payload (e.g. the numbers behind a
// consistency conflict) to a copy of sentinel.
func WithDetails(sentinel *AppError, details any) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Details:    details,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid password", StatusCode: http.StatusUnauthorized}
	ErrAuthDisabled       = &AppError{Code: "AUTH_DISABLED", Message: "Authentication is not configured", StatusCode: http.StatusNotFound}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Box errors.
var (
	ErrBoxNotFound       = &AppError{Code: "BOX_NOT_FOUND", Message: "Box not found", StatusCode: http.StatusNotFound}
	ErrDuplicateBoxName  = &AppError{Code: "DUPLICATE_BOX_NAME", Message: "A box with this name already exists", StatusCode: http.StatusConflict}
	ErrPrincipalNotFound = &AppError{Code: "PRINCIPAL_NOT_FOUND", Message: "Principal box not found", StatusCode: http.StatusNotFound}
)

// Movement errors.
var (
	ErrMovementNotFound = &AppError{Code: "MOVEMENT_NOT_FOUND", Message: "Movement not found", StatusCode: http.StatusNotFound}
)

// Bill errors.
var (
	ErrBillNotFound     = &AppError{Code: "BILL_NOT_FOUND", Message: "Bill not found", StatusCode: http.StatusNotFound}
	ErrBillAlreadyPaid  = &AppError{Code: "BILL_ALREADY_PAID", Message: "This bill has already been fully paid", StatusCode: http.StatusBadRequest}
	ErrExceedsRemaining = &AppError{Code: "EXCEEDS_REMAINING", Message: "Payment total exceeds the remaining amount", StatusCode: http.StatusBadRequest}
)

// Consistency and rollover errors.
var (
	ErrForbiddenPrincipal  = &AppError{Code: "FORBIDDEN_PRINCIPAL", Message: "This operation is not allowed on the Principal box", StatusCode: http.StatusForbidden}
	ErrBalanceInconsistent = &AppError{Code: "BALANCE_INCONSISTENT", Message: "The sum of movements does not match the registered balance", StatusCode: http.StatusConflict}
)

// Auxiliary record errors.
var (
	ErrAuxiliaryNotFound = &AppError{Code: "AUXILIARY_NOT_FOUND", Message: "Record not found", StatusCode: http.StatusNotFound}
	ErrDuplicateKey      = &AppError{Code: "DUPLICATE_KEY", Message: "A record with this key already exists in this group", StatusCode: http.StatusConflict}
)
