package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("original error")

	// When: wrapping with ProbeError
	probeErr := New(ErrCodeDumpNotFound, "dump not found: stripped.gz", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, probeErr)
	assert.Equal(t, originalErr, errors.Unwrap(probeErr))
	assert.True(t, errors.Is(probeErr, originalErr))
}

func TestProbeError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigNotFound,
			message:  "config file not found",
			expected: "[ERR_101_CONFIG_NOT_FOUND] config file not found",
		},
		{
			name:     "dump error",
			code:     ErrCodeDumpNotFound,
			message:  "stripped.gz not found",
			expected: "[ERR_201_DUMP_NOT_FOUND] stripped.gz not found",
		},
		{
			name:     "provider error",
			code:     ErrCodeProviderNetwork,
			message:  "request timed out",
			expected: "[ERR_301_PROVIDER_NETWORK] request timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestProbeError_Is_MatchesByCode(t *testing.T) {
	err1 := New(ErrCodeProviderNetwork, "first timeout", nil)
	err2 := New(ErrCodeProviderNetwork, "second timeout", nil)
	other := New(ErrCodeQueryParse, "bad token", nil)

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, other))
}

func TestNew_DerivesCategoryFromCode(t *testing.T) {
	tests := []struct {
		code     string
		category Category
	}{
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeDumpCorrupt, CategoryIO},
		{ErrCodeProviderRateLimited, CategoryProvider},
		{ErrCodeQueryParse, CategoryValidation},
		{ErrCodeInternal, CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "msg", nil)
			assert.Equal(t, tt.category, err.Category)
		})
	}
}

func TestNew_DerivesSeverityFromCode(t *testing.T) {
	// Parse and config errors are fatal, provider errors degrade.
	assert.Equal(t, SeverityFatal, New(ErrCodeQueryParse, "bad token", nil).Severity)
	assert.Equal(t, SeverityFatal, New(ErrCodeConfigInvalid, "max_hits <= 0", nil).Severity)
	assert.Equal(t, SeverityWarning, New(ErrCodeProviderNetwork, "timeout", nil).Severity)
	assert.Equal(t, SeverityError, New(ErrCodeCacheOpen, "cannot open", nil).Severity)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestWrap_UsesErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeProviderNetwork, cause)

	require.NotNil(t, err)
	assert.Equal(t, "connection refused", err.Message)
	assert.Equal(t, cause, err.Cause)
}

func TestConstructors_SetExpectedCodes(t *testing.T) {
	assert.Equal(t, ErrCodeConfigInvalid, ConfigError("m", nil).Code)
	assert.Equal(t, ErrCodeQueryParse, ParseError("m", nil).Code)
	assert.Equal(t, ErrCodeProviderNetwork, NetworkError("m", nil).Code)
	assert.Equal(t, ErrCodeProviderRateLimited, RateLimitedError("m", nil).Code)
	assert.Equal(t, ErrCodeProviderMalformed, MalformedError("m", nil).Code)
	assert.Equal(t, ErrCodeInternal, InternalError("m", nil).Code)
}

func TestIsProviderError(t *testing.T) {
	assert.True(t, IsProviderError(NetworkError("timeout", nil)))
	assert.True(t, IsProviderError(MalformedError("bad json", nil)))
	assert.False(t, IsProviderError(ParseError("bad token", nil)))
	assert.False(t, IsProviderError(errors.New("plain")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NetworkError("timeout", nil)))
	assert.True(t, IsRetryable(RateLimitedError("429", nil)))
	assert.False(t, IsRetryable(MalformedError("bad json", nil)))
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(ParseError("bad token", nil)))
	assert.False(t, IsFatal(NetworkError("timeout", nil)))
	assert.False(t, IsFatal(nil))
}

func TestWithDetail_And_WithSuggestion(t *testing.T) {
	err := ConfigError("sources must not be empty", nil).
		WithDetail("sources", "[]").
		WithSuggestion("pass at least one of --no-online=false or --offline-stripped")

	assert.Equal(t, "[]", err.Details["sources"])
	assert.NotEmpty(t, err.Suggestion)
}

func TestGetCode_And_GetCategory(t *testing.T) {
	err := RateLimitedError("too many requests", nil)

	assert.Equal(t, ErrCodeProviderRateLimited, GetCode(err))
	assert.Equal(t, CategoryProvider, GetCategory(err))
	assert.Empty(t, GetCode(errors.New("plain")))
	assert.Empty(t, string(GetCategory(errors.New("plain"))))
}
