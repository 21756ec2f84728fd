package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
)

// ErrorCode defines error code type
type ErrorCode string

const (
	// Configuration related errors
	ErrMissingConfiguration ErrorCode = "MISSING_CONFIGURATION"
	ErrInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"

	// Generation errors
	ErrGenerationFailed ErrorCode = "GENERATION_FAILED"
	ErrInterrupted      ErrorCode = "INTERRUPTED"

	// Clipboard errors (never fatal)
	ErrClipboardUnavailable ErrorCode = "CLIPBOARD_UNAVAILABLE"
)

// AppError represents a structured error for shellgen
type AppError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
	Stack   string                 `json:"stack,omitempty"`
}

// Error implements error interface. The code is left out on purpose: the
// message is printed verbatim after "ERROR: " on the diagnostic stream.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

// Unwrap supports Go 1.13+ error wrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsFatal reports whether the error must terminate the program with a
// non-zero status.
func (e *AppError) IsFatal() bool {
	return e.Code != ErrClipboardUnavailable
}

// WithContext adds context information
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new error
func NewError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Context: make(map[string]interface{}),
		Stack:   captureStack(),
	}
}

// WrapError wraps existing error
func WrapError(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Context: make(map[string]interface{}),
		Stack:   captureStack(),
	}
}

// captureStack captures current stack information
func captureStack() string {
	// Skip current function and the function that called it
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// GetAppError finds the first AppError in the chain of err.
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode checks if error has specific code
func HasCode(err error, code ErrorCode) bool {
	if appErr, ok := GetAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
