package errors

import (
	stderrors "errors"
	"fmt"
)

// VersioError is the structured error type used across versio.
// It carries enough context for logging, CLI presentation and retry decisions.
type VersioError struct {
	// Code is the unique error code (e.g., "ERR_404_QUERY_EMPTY").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Network, etc.).
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
func (e *VersioError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *VersioError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a VersioError with the same code.
func (e *VersioError) Is(target error) bool {
	if t, ok := target.(*VersioError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *VersioError) WithDetail(key, value string) *VersioError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *VersioError) WithSuggestion(suggestion string) *VersioError {
	e.Suggestion = suggestion
	return e
}

// New creates a VersioError. Category, severity and the retryable flag
// are derived from the code.
func New(code string, message string, cause error) *VersioError {
	return &VersioError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a VersioError from an existing error, reusing its message.
func Wrap(code string, err error) *VersioError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *VersioError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// StoreError creates an error for an unavailable or failing store.
func StoreError(message string, cause error) *VersioError {
	return New(ErrCodeStoreUnavailable, message, cause)
}

// NetworkError creates a network-related error. Network errors are retryable.
func NetworkError(message string, cause error) *VersioError {
	return New(ErrCodeNetworkTimeout, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *VersioError {
	return New(ErrCodeInvalidInput, message, cause)
}

// EmbeddingError creates an error for a failed embedding call.
func EmbeddingError(message string, cause error) *VersioError {
	return New(ErrCodeEmbeddingFailed, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *VersioError {
	return New(ErrCodeInternal, message, cause)
}

// as finds the first VersioError in err's chain.
func as(err error) (*VersioError, bool) {
	var ve *VersioError
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsRetryable reports whether any VersioError in the chain is retryable.
func IsRetryable(err error) bool {
	if ve, ok := as(err); ok {
		return ve.Retryable
	}
	return false
}

// IsFatal reports whether the error has fatal severity.
func IsFatal(err error) bool {
	if ve, ok := as(err); ok {
		return ve.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code, or "" when err is not a VersioError.
func GetCode(err error) string {
	if ve, ok := as(err); ok {
		return ve.Code
	}
	return ""
}

// GetCategory extracts the category, or "" when err is not a VersioError.
func GetCategory(err error) Category {
	if ve, ok := as(err); ok {
		return ve.Category
	}
	return ""
}

// GetSuggestion returns the suggestion of the first VersioError in the
// chain, or "".
func GetSuggestion(err error) string {
	if ve, ok := as(err); ok {
		return ve.Suggestion
	}
	return ""
}
