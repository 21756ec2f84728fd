package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// LLMError represents different types of LLM-related errors
type LLMError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

// ErrorType defines the category of LLM errors
type ErrorType string

const (
	// Network-related errors
	NetworkError ErrorType = "network_error"
	TimeoutError ErrorType = "timeout_error"

	// Authentication and authorization errors
	AuthError          ErrorType = "auth_error"
	QuotaExceededError ErrorType = "quota_exceeded_error"

	// Request-related errors
	InvalidRequestError ErrorType = "invalid_request_error"
	ModelNotFoundError  ErrorType = "model_not_found_error"

	// Response-related errors
	InvalidResponseError ErrorType = "invalid_response_error"
	EmptyResponseError   ErrorType = "empty_response_error"

	// Configuration errors
	ConfigError   ErrorType = "config_error"
	ProviderError ErrorType = "provider_error"

	// Generic errors
	UnknownError ErrorType = "unknown_error"
)

// Error implements the error interface
func (e *LLMError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %s)", e.Type, e.Message, e.Cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work correctly
func (e *LLMError) Unwrap() error {
	return e.Cause
}

// NewLLMError creates a new LLM error
func NewLLMError(errorType ErrorType, message string, cause error) *LLMError {
	return &LLMError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// ClassifyStatus classifies an HTTP status code returned by the API.
// It returns nil for non-error statuses.
func ClassifyStatus(statusCode int, cause error) *LLMError {
	var e *LLMError
	switch statusCode {
	case http.StatusUnauthorized:
		e = NewLLMError(AuthError, "Authentication failed - check API_KEY", cause)
	case http.StatusForbidden:
		e = NewLLMError(AuthError, "Access forbidden - insufficient permissions", cause)
	case http.StatusNotFound:
		e = NewLLMError(ModelNotFoundError, "Model or endpoint not found - check MODEL and BASE_URL", cause)
	case http.StatusTooManyRequests:
		e = NewLLMError(QuotaExceededError, "Rate limit or quota exceeded", cause)
	case http.StatusBadRequest:
		e = NewLLMError(InvalidRequestError, "Bad request - check request parameters", cause)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		e = NewLLMError(NetworkError, fmt.Sprintf("Server error (status: %d)", statusCode), cause)
	default:
		if statusCode < 400 {
			return nil
		}
		e = NewLLMError(UnknownError, fmt.Sprintf("HTTP error (status: %d)", statusCode), cause)
	}
	e.StatusCode = statusCode
	return e
}

// ClassifyProviderError classifies errors that carry no HTTP status, using
// common message patterns across OpenAI-compatible servers.
func ClassifyProviderError(err error) *LLMError {
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewLLMError(TimeoutError, "Request timed out", err)
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "invalid_api_key") || strings.Contains(errMsg, "api key"):
		return NewLLMError(AuthError, "Invalid or missing API key", err)
	case strings.Contains(errMsg, "insufficient_quota") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "rate limit"):
		return NewLLMError(QuotaExceededError, "API quota or rate limit exceeded", err)
	case strings.Contains(errMsg, "timeout"):
		return NewLLMError(TimeoutError, "Request timeout", err)
	case strings.Contains(errMsg, "model_not_found") || strings.Contains(errMsg, "model"):
		return NewLLMError(ModelNotFoundError, "Model not found or unavailable", err)
	case strings.Contains(errMsg, "network") || strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "no such host"):
		return NewLLMError(NetworkError, "Network connectivity issue", err)
	case strings.Contains(errMsg, "unmarshal") || strings.Contains(errMsg, "parse") || strings.Contains(errMsg, "decode") || strings.Contains(errMsg, "invalid character"):
		return NewLLMError(InvalidResponseError, "Failed to parse API response", err)
	case strings.Contains(errMsg, "empty") || strings.Contains(errMsg, "no response"):
		return NewLLMError(EmptyResponseError, "Received empty response from API", err)
	}

	return NewLLMError(ProviderError, "Provider error", err)
}

// WrapError wraps an existing error with LLM error context
func WrapError(errorType ErrorType, message string, cause error) *LLMError {
	// If the cause is already an LLMError, don't double-wrap
	if llmErr, ok := cause.(*LLMError); ok {
		return llmErr
	}
	return NewLLMError(errorType, message, cause)
}
