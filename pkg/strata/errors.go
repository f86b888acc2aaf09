package strata

import (
	"encoding/json"
	"errors"
	"fmt"
)

// APIError represents an error from the Strata API.
type APIError struct {
	Code    int    `json:"code"    yaml:"code"`
	Status  string `json:"status"  yaml:"status"`
	Message string `json:"message" yaml:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (code: %d)", e.Status, e.Message, e.Code)
}

// ResponseError represents the error envelope returned by the API.
type ResponseError struct {
	Error_ *APIError `json:"error"`
}

// Error implements the error interface for ResponseError.
func (e *ResponseError) Error() string {
	if e.Error_ == nil {
		return "unknown error"
	}

	return e.Error_.Error()
}

// Unwrap exposes the embedded APIError to errors.As.
func (e *ResponseError) Unwrap() error {
	if e.Error_ == nil {
		return nil
	}

	return e.Error_
}

// Canonical API status codes.
const (
	ErrorCodeInvalidArgument    = 400
	ErrorCodeUnauthenticated    = 401
	ErrorCodePermissionDenied   = 403
	ErrorCodeNotFound           = 404
	ErrorCodeAlreadyExists      = 409
	ErrorCodeFailedPrecondition = 412
	ErrorCodeResourceExhausted  = 429
	ErrorCodeInternal           = 500
	ErrorCodeUnavailable        = 503
)

// Canonical API status strings.
const (
	StatusInvalidArgument    = "INVALID_ARGUMENT"
	StatusUnauthenticated    = "UNAUTHENTICATED"
	StatusPermissionDenied   = "PERMISSION_DENIED"
	StatusNotFound           = "NOT_FOUND"
	StatusAlreadyExists      = "ALREADY_EXISTS"
	StatusFailedPrecondition = "FAILED_PRECONDITION"
	StatusResourceExhausted  = "RESOURCE_EXHAUSTED"
	StatusInternal           = "INTERNAL"
	StatusUnavailable        = "UNAVAILABLE"
)

// Common error types.
var (
	ErrNotFound           = &APIError{Code: ErrorCodeNotFound, Status: StatusNotFound}
	ErrUnauthorized       = &APIError{Code: ErrorCodeUnauthenticated, Status: StatusUnauthenticated}
	ErrForbidden          = &APIError{Code: ErrorCodePermissionDenied, Status: StatusPermissionDenied}
	ErrAlreadyExists      = &APIError{Code: ErrorCodeAlreadyExists, Status: StatusAlreadyExists}
	ErrBadRequest         = &APIError{Code: ErrorCodeInvalidArgument, Status: StatusInvalidArgument}
	ErrTooManyRequests    = &APIError{Code: ErrorCodeResourceExhausted, Status: StatusResourceExhausted}
	ErrServiceUnavailable = &APIError{Code: ErrorCodeUnavailable, Status: StatusUnavailable}
)

// Common static errors that can be wrapped with context.
var (
	ErrNoMoreItems              = errors.New("no more items")
	ErrCircuitBreakerOpen       = errors.New("circuit breaker is open")
	ErrConfigRequired           = errors.New("config is required")
	ErrAPIEndpointRequired      = errors.New("API endpoint is required")
	ErrSkipTLSOnlyInDev         = errors.New("skipTLS is only allowed in development environments")
	ErrRootInfoRequestFailed    = errors.New("root info request failed")
	ErrNoTokenURL               = errors.New("no token URL found in API root response")
	ErrStaticTokenCannotRefresh = errors.New("static token cannot be refreshed")
	ErrNotAuthenticated         = errors.New("not authenticated")
	ErrClusterNotFound          = errors.New("cluster not found")
	ErrJobNotFound              = errors.New("job not found")
	ErrTemplateNotFound         = errors.New("workflow template not found")
	ErrPolicyNotFound           = errors.New("autoscaling policy not found")
	ErrOperationFailed          = errors.New("operation failed")
	ErrOperationCancelled       = errors.New("operation cancelled")
	ErrPollTimeout              = errors.New("timed out waiting for operation")
	ErrUnknownConfigKey         = errors.New("unknown configuration key")
	ErrTokenFieldsCannotUnset   = errors.New("token fields cannot be unset via config command")
	ErrNotImplemented           = errors.New("not implemented")
)

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Code == ErrorCodeNotFound
	}

	return false
}

// IsUnauthorized checks if the error is an unauthenticated error.
func IsUnauthorized(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Code == ErrorCodeUnauthenticated
	}

	return false
}

// IsForbidden checks if the error is a permission denied error.
func IsForbidden(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Code == ErrorCodePermissionDenied
	}

	return false
}

// IsConflict checks if the error is an already exists error.
func IsConflict(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Code == ErrorCodeAlreadyExists
	}

	return false
}

// ParseResponseError parses an error response body from JSON.
func ParseResponseError(data []byte) (*ResponseError, error) {
	var errResp ResponseError

	err := json.Unmarshal(data, &errResp)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal response error: %w", err)
	}

	return &errResp, nil
}

// Test error variables for test files to comply with err113.
var (
	ErrSomeError = errors.New("some error")
)
