// Package errors provides structured error handling for versio.
//
// Every error code has the form ERR_<number>_<NAME>. The first digit of the
// number selects the category: 1 config, 2 io and store, 3 network,
// 4 validation, 5 internal.
package errors

// Category groups error codes by the subsystem that raised them.
type Category string

// Categories.
const (
	CategoryConfig     Category = "CONFIG"
	CategoryIO         Category = "IO"
	CategoryNetwork    Category = "NETWORK"
	CategoryValidation Category = "VALIDATION"
	CategoryInternal   Category = "INTERNAL"
)

// Severity tells the caller whether it can carry on after an error.
type Severity string

// Severities, from most to least serious.
const (
	SeverityFatal   Severity = "FATAL"
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Config errors.
const (
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"
)

// IO and store errors.
const (
	ErrCodeFileNotFound     = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFilePermission   = "ERR_202_FILE_PERMISSION"
	ErrCodeDiskFull         = "ERR_203_DISK_FULL"
	ErrCodeCorruptIndex     = "ERR_205_CORRUPT_INDEX"
	ErrCodeStoreUnavailable = "ERR_207_STORE_UNAVAILABLE"
	ErrCodeIndexLocked      = "ERR_208_INDEX_LOCKED"
)

// Network errors.
const (
	ErrCodeNetworkTimeout     = "ERR_301_NETWORK_TIMEOUT"
	ErrCodeNetworkUnavailable = "ERR_302_NETWORK_UNAVAILABLE"
)

// Validation errors.
const (
	ErrCodeInvalidInput      = "ERR_401_INVALID_INPUT"
	ErrCodeDimensionMismatch = "ERR_402_DIMENSION_MISMATCH"
	ErrCodeInvalidQuery      = "ERR_403_INVALID_QUERY"
	ErrCodeQueryEmpty        = "ERR_404_QUERY_EMPTY"
	ErrCodeUnknownStrategy   = "ERR_407_UNKNOWN_STRATEGY"
)

// Internal errors.
const (
	ErrCodeInternal        = "ERR_501_INTERNAL"
	ErrCodeEmbeddingFailed = "ERR_502_EMBEDDING_FAILED"
	ErrCodeSearchFailed    = "ERR_503_SEARCH_FAILED"
	ErrCodeChunkingFailed  = "ERR_504_CHUNKING_FAILED"
	ErrCodeIndexFailed     = "ERR_505_INDEX_FAILED"
)

var categoryByDigit = map[byte]Category{
	'1': CategoryConfig,
	'2': CategoryIO,
	'3': CategoryNetwork,
	'4': CategoryValidation,
}

// fatalCodes leave the index or its storage unusable.
var fatalCodes = map[string]bool{
	ErrCodeDiskFull:         true,
	ErrCodeCorruptIndex:     true,
	ErrCodeStoreUnavailable: true,
}

// retryableCodes may succeed when the same call is repeated.
var retryableCodes = map[string]bool{
	ErrCodeNetworkTimeout:     true,
	ErrCodeNetworkUnavailable: true,
	ErrCodeEmbeddingFailed:    true,
}

func categoryFromCode(code string) Category {
	const prefix = len("ERR_")
	if len(code) <= prefix {
		return CategoryInternal
	}
	if c, ok := categoryByDigit[code[prefix]]; ok {
		return c
	}
	return CategoryInternal
}

func severityFromCode(code string) Severity {
	switch {
	case fatalCodes[code]:
		return SeverityFatal
	case retryableCodes[code]:
		return SeverityWarning
	default:
		return SeverityError
	}
}

func isRetryableCode(code string) bool {
	return retryableCodes[code]
}
