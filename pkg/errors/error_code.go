package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown  ErrorCode = 1
	ErrCodeInternal ErrorCode = 2

	// Validation errors (100-199)
	ErrCodeInvalidParameter         ErrorCode = 100
	ErrCodeInvalidConfiguration     ErrorCode = 101
	ErrCodeMissingParameter         ErrorCode = 102
	ErrCodeInvalidCloseType         ErrorCode = 103
	ErrCodeInvalidPartialPercentage ErrorCode = 104
	ErrCodeInvalidRiskLevels        ErrorCode = 105
	ErrCodeInvalidPosition          ErrorCode = 106
	ErrCodeInvalidPagination        ErrorCode = 107
	ErrCodeInvalidFormatter         ErrorCode = 108

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound ErrorCode = 200
	ErrCodeDecodeFailed ErrorCode = 201
	ErrCodeWriteFailed  ErrorCode = 202

	// Request errors (500-599)
	ErrCodeRequestFailed   ErrorCode = 500
	ErrCodeRequestInFlight ErrorCode = 501
	ErrCodeUnauthorized    ErrorCode = 502
	ErrCodeVersionMismatch ErrorCode = 503

	// Market data errors (700-799)
	ErrCodePriceUnavailable ErrorCode = 700
	ErrCodeInvalidProvider  ErrorCode = 701
)

// IsValidation reports whether the code belongs to the validation range.
// Validation failures are raised before any request is built.
func (c ErrorCode) IsValidation() bool {
	return c >= 100 && c < 200
}
