package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersioError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("disk I/O error")

	// When: wrapping with VersioError
	ve := New(ErrCodeStoreUnavailable, "open corpus", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, ve)
	assert.Equal(t, originalErr, errors.Unwrap(ve))
	assert.True(t, errors.Is(ve, originalErr))
}

func TestVersioError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigInvalid,
			message:  "bm25.k1 must be positive",
			expected: "[ERR_102_CONFIG_INVALID] bm25.k1 must be positive",
		},
		{
			name:     "empty query",
			code:     ErrCodeQueryEmpty,
			message:  "query cannot be empty",
			expected: "[ERR_404_QUERY_EMPTY] query cannot be empty",
		},
		{
			name:     "network error",
			code:     ErrCodeNetworkTimeout,
			message:  "request timed out",
			expected: "[ERR_301_NETWORK_TIMEOUT] request timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestVersioError_Is_MatchesByCode(t *testing.T) {
	err1 := New(ErrCodeQueryEmpty, "blank", nil)
	err2 := New(ErrCodeQueryEmpty, "only quotes", nil)
	other := New(ErrCodeConfigInvalid, "bad", nil)

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, other))
}

func TestVersioError_DerivedFields(t *testing.T) {
	tests := []struct {
		code      string
		category  Category
		severity  Severity
		retryable bool
	}{
		{ErrCodeConfigInvalid, CategoryConfig, SeverityError, false},
		{ErrCodeStoreUnavailable, CategoryIO, SeverityFatal, false},
		{ErrCodeNetworkTimeout, CategoryNetwork, SeverityWarning, true},
		{ErrCodeQueryEmpty, CategoryValidation, SeverityError, false},
		{ErrCodeEmbeddingFailed, CategoryInternal, SeverityWarning, true},
		{"BOGUS", CategoryInternal, SeverityError, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "msg", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
			assert.Equal(t, tt.retryable, err.Retryable)
		})
	}
}

func TestHelpers_SeeThroughWrapping(t *testing.T) {
	// Given: a VersioError wrapped by fmt.Errorf
	inner := NetworkError("ollama unreachable", nil)
	wrapped := fmt.Errorf("embed chunk 3: %w", inner)

	// Then: helpers find it in the chain
	assert.True(t, IsRetryable(wrapped))
	assert.False(t, IsFatal(wrapped))
	assert.Equal(t, ErrCodeNetworkTimeout, GetCode(wrapped))
	assert.Equal(t, CategoryNetwork, GetCategory(wrapped))
}

func TestHelpers_PlainErrors(t *testing.T) {
	plain := errors.New("plain")

	assert.False(t, IsRetryable(plain))
	assert.False(t, IsFatal(plain))
	assert.Empty(t, GetCode(plain))
	assert.Empty(t, GetCategory(plain))
	assert.Empty(t, GetSuggestion(plain))
	assert.False(t, IsRetryable(nil))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestWithDetailAndSuggestion(t *testing.T) {
	err := ValidationError("bad threshold", nil).
		WithDetail("field", "threshold").
		WithSuggestion("use a value between -1 and 1")

	assert.Equal(t, "threshold", err.Details["field"])
	assert.Equal(t, "use a value between -1 and 1", err.Suggestion)
	assert.Equal(t, "use a value between -1 and 1", GetSuggestion(fmt.Errorf("load config: %w", err)))
}

func TestLogAttrs(t *testing.T) {
	attrs := LogAttrs(EmbeddingError("embed failed", errors.New("timeout")))

	keys := make(map[string]string)
	for _, a := range attrs {
		keys[a.Key] = a.Value.String()
	}
	assert.Equal(t, ErrCodeEmbeddingFailed, keys["error_code"])
	assert.Equal(t, "timeout", keys["cause"])

	plain := LogAttrs(errors.New("x"))
	require.Len(t, plain, 1)
	assert.Equal(t, "error", plain[0].Key)
	assert.Nil(t, LogAttrs(nil))
}
