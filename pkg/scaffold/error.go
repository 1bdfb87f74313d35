package scaffold

import (
	"errors"
	"fmt"
	"net/http"
)

// HttpError represents an HTTP error with a specific status code and message
type HttpError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *HttpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NewHttpError creates a new HttpError with the given status code and message
func NewHttpError(statusCode int, message string) *HttpError {
	return &HttpError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewHttpErrorWithDetails creates a new HttpError with additional details
func NewHttpErrorWithDetails(statusCode int, message string, details any) *HttpError {
	return &HttpError{
		StatusCode: statusCode,
		Message:    message,
		Details:    details,
	}
}

// ErrBadRequest creates a 400 Bad Request error
func ErrBadRequest(message string) *HttpError {
	return NewHttpError(http.StatusBadRequest, message)
}

// ErrNotFound creates a 404 Not Found error
func ErrNotFound(message string) *HttpError {
	return NewHttpError(http.StatusNotFound, message)
}

// ErrConflict creates a 409 Conflict error
func ErrConflict(message string) *HttpError {
	return NewHttpError(http.StatusConflict, message)
}

// StatusOf returns the HTTP status an adapter should send for err.
// Errors that are not an *HttpError map to 500.
func StatusOf(err error) int {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return http.StatusInternalServerError
}

// ErrorBody returns the JSON body an adapter should send for err
func ErrorBody(err error) map[string]any {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		body := map[string]any{"error": httpErr.Message}
		if httpErr.Details != nil {
			body["details"] = httpErr.Details
		}
		return body
	}
	return map[string]any{"error": err.Error()}
}
