// Package errors provides structured error types for crate-checker with
// a taxonomy that distinguishes recoverable upstream failures (network,
// rate limit, transient server errors) from terminal ones (not found,
// validation). HTTP handlers and the CLI map these types onto status
// codes and exit codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeRateLimited ErrorType = "rate_limited"
	ErrorTypeServer      ErrorType = "server"
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeConfig      ErrorType = "config"
	ErrorTypeInternal    ErrorType = "internal"
)

// CheckerError is a structured error type with classification context.
type CheckerError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Status      int // upstream HTTP status, when one exists
	Recoverable bool
}

// Error implements the error interface.
func (e *CheckerError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("[%s] %s", e.Code, msg)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause error.
func (e *CheckerError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison by type and code.
func (e *CheckerError) Is(target error) bool {
	var t *CheckerError
	if errors.As(target, &t) {
		return e.Type == t.Type && (t.Code == "" || e.Code == t.Code)
	}
	return false
}

// NewValidationError creates a validation error. Validation errors abort
// an operation before any upstream call and are never retried.
func NewValidationError(code, message string) *CheckerError {
	return &CheckerError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewInvalidBatchInput flags batch input that matches none of the
// recognized shapes or violates shape constraints.
func NewInvalidBatchInput(message string) *CheckerError {
	return &CheckerError{
		Type:    ErrorTypeValidation,
		Code:    "invalid_batch_input",
		Message: message,
	}
}

// NewInvalidCrateName flags a crate name that fails format validation.
func NewInvalidCrateName(name, reason string) *CheckerError {
	return &CheckerError{
		Type:    ErrorTypeValidation,
		Code:    "invalid_crate_name",
		Message: fmt.Sprintf("invalid crate name %q: %s", name, reason),
	}
}

// NewCrateNotFound reports a crate absent from the registry. Terminal.
func NewCrateNotFound(name string) *CheckerError {
	return &CheckerError{
		Type:    ErrorTypeNotFound,
		Code:    "crate_not_found",
		Message: fmt.Sprintf("crate %q not found", name),
		Status:  http.StatusNotFound,
	}
}

// NewVersionNotFound reports a version absent for an existing crate.
func NewVersionNotFound(name, version string) *CheckerError {
	return &CheckerError{
		Type:    ErrorTypeNotFound,
		Code:    "version_not_found",
		Message: fmt.Sprintf("version %q not found for crate %q", version, name),
		Status:  http.StatusNotFound,
	}
}

// NewNetworkError wraps a transport-level failure. Recoverable.
func NewNetworkError(message string, cause error) *CheckerError {
	return &CheckerError{
		Type:        ErrorTypeNetwork,
		Code:        "network_error",
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewTimeoutError reports an upstream call exceeding its deadline.
func NewTimeoutError(message string, cause error) *CheckerError {
	return &CheckerError{
		Type:        ErrorTypeTimeout,
		Code:        "timeout",
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewConfigError reports invalid or unloadable configuration.
func NewConfigError(message string, cause error) *CheckerError {
	return &CheckerError{
		Type:    ErrorTypeConfig,
		Code:    "config_error",
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError wraps an unexpected failure inside the checker itself.
func NewInternalError(message string, cause error) *CheckerError {
	return &CheckerError{
		Type:    ErrorTypeInternal,
		Code:    "internal_error",
		Message: message,
		Cause:   cause,
	}
}

// FromStatusCode converts an unexpected upstream HTTP status into a
// classified error. 429 and 5xx are recoverable; everything else is not.
func FromStatusCode(status int) *CheckerError {
	switch {
	case status == http.StatusTooManyRequests:
		return &CheckerError{
			Type:        ErrorTypeRateLimited,
			Code:        "rate_limited",
			Message:     "registry rate limit exceeded",
			Status:      status,
			Recoverable: true,
		}
	case status >= 500:
		return &CheckerError{
			Type:        ErrorTypeServer,
			Code:        "service_unavailable",
			Message:     fmt.Sprintf("registry returned server error: %d", status),
			Status:      status,
			Recoverable: true,
		}
	default:
		return &CheckerError{
			Type:    ErrorTypeServer,
			Code:    "unexpected_status",
			Message: fmt.Sprintf("registry returned unexpected status: %d %s", status, http.StatusText(status)),
			Status:  status,
		}
	}
}

// IsRecoverable reports whether retrying the operation might succeed.
func IsRecoverable(err error) bool {
	var ce *CheckerError
	if errors.As(err, &ce) {
		return ce.Recoverable
	}
	return false
}

// IsNotFound reports whether the error is a not-found classification.
func IsNotFound(err error) bool {
	var ce *CheckerError
	if errors.As(err, &ce) {
		return ce.Type == ErrorTypeNotFound
	}
	return false
}

// IsValidation reports whether the error is a validation failure.
func IsValidation(err error) bool {
	var ce *CheckerError
	if errors.As(err, &ce) {
		return ce.Type == ErrorTypeValidation
	}
	return false
}

// StatusCode maps an error to the HTTP status code the API layer should
// return for it.
func StatusCode(err error) int {
	var ce *CheckerError
	if !errors.As(err, &ce) {
		return http.StatusInternalServerError
	}
	switch ce.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeRateLimited:
		return http.StatusTooManyRequests
	case ErrorTypeServer:
		if ce.Status >= 500 {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
