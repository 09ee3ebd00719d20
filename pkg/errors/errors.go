package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the different classes of failure the scraper distinguishes
type ErrorType string

const (
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeHTTPStatus ErrorType = "http_status"
	ErrorTypeTransport  ErrorType = "transport"
	ErrorTypeFilesystem ErrorType = "filesystem"
	ErrorTypeCanceled   ErrorType = "canceled"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error is a classified failure. Code carries the HTTP status when there is one.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

// Error includes the cause, so wrapping never hides why something failed
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error: %s", e.Type, e.Message)
	if e.Code != 0 {
		msg = fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error
func New(errorType ErrorType, code int, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Code:    code,
		Err:     cause,
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown if err is not classified
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return 0
}

// IsNotFound reports whether err is the end-of-sequence signal
func IsNotFound(err error) bool {
	return TypeOf(err) == ErrorTypeNotFound
}

// IsRetryable checks if an error type should be retried when retries are enabled
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeTransport:
		return true
	case ErrorTypeNotFound, ErrorTypeConfig, ErrorTypeFilesystem, ErrorTypeCanceled:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a transient failure
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 429: // Too Many Requests
		return true
	case 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500
	}
}

// IsRetryableError combines the type and status checks for a classified error
func IsRetryableError(err error) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	if e.Type == ErrorTypeHTTPStatus {
		return IsRetryableStatusCode(e.Code)
	}
	return IsRetryable(e.Type)
}
