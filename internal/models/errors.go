package models

import "fmt"

// ErrorCode categorizes engine errors so callers can tell "unknown" apart
// from "no match" and from programming errors.
type ErrorCode string

const (
	ErrCodeDataUnavailable    ErrorCode = "data_unavailable"
	ErrCodeUpstreamTimeout    ErrorCode = "upstream_timeout"
	ErrCodeUpstreamError      ErrorCode = "upstream_error"
	ErrCodeInvalidRange       ErrorCode = "invalid_range"
	ErrCodeStationNotFound    ErrorCode = "not_found_station"
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected"
)

// Sentinels for errors.Is. Any *AppError with the same code matches.
var (
	ErrDataUnavailable = &AppError{Code: ErrCodeDataUnavailable, Message: "no data available"}
	ErrUpstreamTimeout = &AppError{Code: ErrCodeUpstreamTimeout, Message: "upstream timed out"}
	ErrUpstreamError   = &AppError{Code: ErrCodeUpstreamError, Message: "upstream request failed"}
	ErrInvalidRange    = &AppError{Code: ErrCodeInvalidRange, Message: "invalid range"}
	ErrStationNotFound = &AppError{Code: ErrCodeStationNotFound, Message: "station not found"}
)

// AppError is the error type returned across package boundaries.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// NewAppError creates an AppError wrapping an optional cause.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetails returns a copy of the error with details merged in.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{Code: e.Code, Message: e.Message, Err: e.Err, Details: merged}
}

// InvalidRangef builds an InvalidRange error.
func InvalidRangef(format string, args ...any) *AppError {
	return NewAppError(ErrCodeInvalidRange, fmt.Sprintf(format, args...), nil)
}
