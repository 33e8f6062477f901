// Package errors provides structured error handling for seqprobe.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (dump files, cache, disk)
//   - 3XX: Provider errors (network, rate limiting, malformed payloads)
//   - 4XX: Validation errors (query parsing)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryProvider indicates candidate-provider errors (network and payload).
	CategoryProvider Category = "PROVIDER"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeDumpNotFound = "ERR_201_DUMP_NOT_FOUND"
	ErrCodeDumpCorrupt  = "ERR_202_DUMP_CORRUPT"
	ErrCodeCacheOpen    = "ERR_203_CACHE_OPEN"
	ErrCodeIndexLocked  = "ERR_204_INDEX_LOCKED"
	ErrCodeCorruptIndex = "ERR_205_CORRUPT_INDEX"

	// Provider errors (300-399)
	ErrCodeProviderNetwork     = "ERR_301_PROVIDER_NETWORK"
	ErrCodeProviderRateLimited = "ERR_302_PROVIDER_RATE_LIMITED"
	ErrCodeProviderMalformed   = "ERR_303_PROVIDER_MALFORMED"

	// Validation errors (400-499)
	ErrCodeQueryParse = "ERR_401_QUERY_PARSE"
	ErrCodeQueryEmpty = "ERR_402_QUERY_EMPTY"
	ErrCodeBadOptions = "ERR_403_BAD_OPTIONS"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Numeric portion, e.g. "101" from "ERR_101_CONFIG_NOT_FOUND".
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryProvider
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeConfigInvalid, ErrCodeQueryParse, ErrCodeQueryEmpty, ErrCodeBadOptions:
		// Parse and config errors abort before any provider work begins.
		return SeverityFatal
	}

	// Provider errors degrade to "zero candidates from that source".
	if categoryFromCode(code) == CategoryProvider {
		return SeverityWarning
	}

	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeProviderNetwork, ErrCodeProviderRateLimited:
		return true
	default:
		return false
	}
}
