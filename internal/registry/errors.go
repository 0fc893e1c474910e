package registry

import (
	"errors"
	"fmt"
)

// ErrorCategory defines the normalized failure taxonomy for registry calls.
type ErrorCategory string

const (
	// ErrorTransport indicates the request never produced an HTTP response.
	ErrorTransport ErrorCategory = "transport"

	// ErrorTimeout indicates the registry took too long to respond.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates a 200 response whose body could not be decoded
	// or lacked result.records.
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorRejected indicates the registry answered with a non-200 status.
	ErrorRejected ErrorCategory = "rejected"

	// ErrorInternal indicates the client could not issue the request.
	ErrorInternal ErrorCategory = "internal"

	// ErrorUnknown is reported for errors that did not come from this package.
	ErrorUnknown ErrorCategory = "unknown"
)

// Error wraps registry failures with normalized categorization.
type Error struct {
	Category   ErrorCategory
	Name       string
	StatusCode int
	Message    string
	Underlying error
	Retryable  bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("registry [%s] %q: %s: %v", e.Category, e.Name, e.Message, e.Underlying)
	}
	return fmt.Sprintf("registry [%s] %q: %s", e.Category, e.Name, e.Message)
}

// Unwrap supports error unwrapping.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError creates a categorized registry error. Transport, timeout and
// bad-data failures are retryable; rejections are not.
func NewError(category ErrorCategory, name, message string, underlying error) *Error {
	retryable := category == ErrorTransport ||
		category == ErrorTimeout ||
		category == ErrorBadData

	return &Error{
		Category:   category,
		Name:       name,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable checks if an error is worth retrying. Errors outside the
// taxonomy are treated as transient.
func IsRetryable(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Retryable
	}
	return err != nil
}

// GetCategory extracts the error category from an error, ErrorUnknown when
// err is not a registry error.
func GetCategory(err error) ErrorCategory {
	var re *Error
	if errors.As(err, &re) {
		return re.Category
	}
	return ErrorUnknown
}

// Reason returns the registry's description of err without the wrapped
// cause, or err's full text for errors outside the taxonomy.
func Reason(err error) string {
	var re *Error
	if errors.As(err, &re) {
		return re.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Sentinel errors for client construction.
var (
	ErrEmptyBaseURL    = errors.New("registry base URL is required")
	ErrEmptyResourceID = errors.New("registry resource id is required")
)
