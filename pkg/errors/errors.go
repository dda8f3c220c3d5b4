package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes used across the character pipeline and conversation engine.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeAmbiguousReference = "AMBIGUOUS_REFERENCE"
	CodeGeneration         = "GENERATION_ERROR"
	CodeStorage            = "STORAGE_ERROR"
	CodeInviteKey          = "INVITE_KEY_INVALID"
	CodeRateLimit          = "RATE_LIMIT_EXCEEDED"
	CodeServer             = "SERVER_ERROR"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	cause      error
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// WithCause attaches the underlying error without exposing it to callers
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// New creates a new application error
func New(statusCode int, code string, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// NewValidationError reports malformed or missing user input.
func NewValidationError(message string) *AppError {
	return New(http.StatusBadRequest, CodeValidation, message)
}

// NewNotFoundError reports an absent document or entity.
func NewNotFoundError(message string) *AppError {
	return New(http.StatusNotFound, CodeNotFound, message)
}

// NewConflictError reports that a character already exists for a reference.
// The existing character id travels in the details payload.
func NewConflictError(message string, existingID uint) *AppError {
	return New(http.StatusConflict, CodeConflict, message).
		WithDetails(map[string]uint{"character_id": existingID})
}

// NewAmbiguousReferenceError reports a reference that resolves to multiple
// candidate documents (a disambiguation page).
func NewAmbiguousReferenceError(message string) *AppError {
	return New(http.StatusBadRequest, CodeAmbiguousReference, message)
}

// NewGenerationError reports a failed or unparsable text-synthesis result.
func NewGenerationError(message string) *AppError {
	return New(http.StatusBadGateway, CodeGeneration, message)
}

// NewStorageError reports a persistence layer fault.
func NewStorageError(message string) *AppError {
	return New(http.StatusInternalServerError, CodeStorage, message)
}

// NewUnauthorizedError creates a 401 Unauthorized error
func NewUnauthorizedError(code string, message string) *AppError {
	return New(http.StatusUnauthorized, code, message)
}

// FromError converts any error to an AppError, defaulting to a 500
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(http.StatusInternalServerError, CodeServer, "An unexpected error occurred").WithCause(err)
}

// HasCode reports whether err is an AppError carrying the given code
func HasCode(err error, code string) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}
