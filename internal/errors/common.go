package errors

import "fmt"

// Configuration related error factory functions

// ErrMissingConfig reports a required setting that is absent or empty.
func ErrMissingConfig(key string) *AppError {
	e := NewError(ErrMissingConfiguration, fmt.Sprintf("%s not found in environment or .env file", key))
	e.Field = key
	return e.WithContext("field", key)
}

// ErrInvalidConfig reports a setting that is present but unusable.
func ErrInvalidConfig(key string, reason string) *AppError {
	e := NewError(ErrInvalidConfiguration, fmt.Sprintf("invalid %s: %s", key, reason))
	e.Field = key
	return e.WithContext("field", key).
		WithContext("reason", reason)
}

// ErrEnvFileUnreadable reports an explicitly requested .env file that cannot be read.
func ErrEnvFileUnreadable(path string, cause error) *AppError {
	return WrapError(cause, ErrInvalidConfiguration, fmt.Sprintf("cannot read env file %s", path)).
		WithContext("env_file", path)
}

// Generation related error factory functions

// ErrGeneration wraps a provider failure (network, auth, malformed response).
func ErrGeneration(provider string, cause error) *AppError {
	return WrapError(cause, ErrGenerationFailed, "command generation failed").
		WithContext("provider", provider)
}

// ErrGenerationInterrupted reports a user-initiated cancellation mid-stream.
func ErrGenerationInterrupted(fragments int) *AppError {
	return NewError(ErrInterrupted, "Generation interrupted by user").
		WithContext("fragments", fragments)
}

// Clipboard related error factory functions

// ErrClipboard reports a clipboard mechanism that was missing or failed.
func ErrClipboard(mechanism string, cause error) *AppError {
	msg := fmt.Sprintf("Clipboard error: %s failed", mechanism)
	if cause == nil {
		return NewError(ErrClipboardUnavailable, msg).
			WithContext("mechanism", mechanism)
	}
	return WrapError(cause, ErrClipboardUnavailable, msg).
		WithContext("mechanism", mechanism)
}
