package errors

import (
	"fmt"
)

// ProbeError is the structured error type for seqprobe.
// It provides context for error handling, logging, and user presentation.
type ProbeError struct {
	// Code is the unique error code (e.g., "ERR_401_QUERY_PARSE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Provider, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *ProbeError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ProbeError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with ProbeError.
func (e *ProbeError) Is(target error) bool {
	if t, ok := target.(*ProbeError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *ProbeError) WithDetail(key, value string) *ProbeError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *ProbeError) WithSuggestion(suggestion string) *ProbeError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ProbeError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *ProbeError {
	return &ProbeError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a ProbeError from an existing error.
// The error's message becomes the ProbeError message.
func Wrap(code string, err error) *ProbeError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
// Config errors are fatal and rejected before any provider is invoked.
func ConfigError(message string, cause error) *ProbeError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ParseError creates a query-parse error.
func ParseError(message string, cause error) *ProbeError {
	return New(ErrCodeQueryParse, message, cause)
}

// NetworkError creates a provider network error.
// Provider network errors are retryable and degrade to zero candidates.
func NetworkError(message string, cause error) *ProbeError {
	return New(ErrCodeProviderNetwork, message, cause)
}

// RateLimitedError creates a provider rate-limit error.
func RateLimitedError(message string, cause error) *ProbeError {
	return New(ErrCodeProviderRateLimited, message, cause)
}

// MalformedError creates a provider malformed-payload error.
func MalformedError(message string, cause error) *ProbeError {
	return New(ErrCodeProviderMalformed, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *ProbeError {
	return New(ErrCodeInternal, message, cause)
}

// IsProviderError reports whether an error came from a candidate provider.
// Provider errors degrade to an empty candidate set unless strict mode is on.
func IsProviderError(err error) bool {
	if pe, ok := err.(*ProbeError); ok {
		return pe.Category == CategoryProvider
	}
	return false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if pe, ok := err.(*ProbeError); ok {
		return pe.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if pe, ok := err.(*ProbeError); ok {
		return pe.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a ProbeError.
// Returns empty string if not a ProbeError.
func GetCode(err error) string {
	if pe, ok := err.(*ProbeError); ok {
		return pe.Code
	}
	return ""
}

// GetCategory extracts the category from a ProbeError.
// Returns empty string if not a ProbeError.
func GetCategory(err error) Category {
	if pe, ok := err.(*ProbeError); ok {
		return pe.Category
	}
	return ""
}
