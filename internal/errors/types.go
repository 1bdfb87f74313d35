package errors

import (
	"fmt"
	"strings"
)

// ScaffoldError defines the base interface for all scaffold errors
type ScaffoldError interface {
	error
	ErrorCode() ErrorCode
	Subject() string
	Context() map[string]interface{}
	Suggestions() []string
	Unwrap() error
}

// ErrorCode represents the type of error that occurred
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota

	// Startup (registration-time) errors
	ConfigurationErrorCode
	RegistrationErrorCode
	TemplateErrorCode
	DependencyErrorCode

	// Request-time errors
	AmbiguousActionErrorCode
	BindingErrorCode
	PersistenceErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case ConfigurationErrorCode:
		return "ConfigurationError"
	case RegistrationErrorCode:
		return "RegistrationError"
	case TemplateErrorCode:
		return "TemplateError"
	case DependencyErrorCode:
		return "DependencyError"
	case AmbiguousActionErrorCode:
		return "AmbiguousActionError"
	case BindingErrorCode:
		return "BindingError"
	case PersistenceErrorCode:
		return "PersistenceError"
	default:
		return "UnknownError"
	}
}

// IsStartup reports whether errors with this code are raised while the
// application is being configured rather than while serving requests.
func (e ErrorCode) IsStartup() bool {
	switch e {
	case ConfigurationErrorCode, RegistrationErrorCode, TemplateErrorCode, DependencyErrorCode:
		return true
	}
	return false
}

// BaseError provides a common implementation of the ScaffoldError interface
type BaseError struct {
	Code        ErrorCode              // type of error
	Message     string                 // error message
	On          string                 // model, route or component the error concerns
	Cause       error                  // underlying error cause
	ContextData map[string]interface{} // additional context information
	Hints       []string               // helpful suggestions for fixing the error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	msg := e.Message
	if e.On != "" {
		msg = fmt.Sprintf("%s: %s", e.On, msg)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// ErrorCode returns the error code
func (e *BaseError) ErrorCode() ErrorCode {
	return e.Code
}

// Subject returns the model, route or component the error concerns
func (e *BaseError) Subject() string {
	return e.On
}

// Context returns the error context data
func (e *BaseError) Context() map[string]interface{} {
	if e.ContextData == nil {
		return make(map[string]interface{})
	}
	return e.ContextData
}

// Suggestions returns helpful suggestions for fixing the error
func (e *BaseError) Suggestions() []string {
	return e.Hints
}

// Unwrap returns the underlying error cause for error chain inspection
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// WithSubject sets the model, route or component the error concerns
func (e *BaseError) WithSubject(subject string) *BaseError {
	e.On = subject
	return e
}

// WithContext adds context data to the error
func (e *BaseError) WithContext(key string, value interface{}) *BaseError {
	if e.ContextData == nil {
		e.ContextData = make(map[string]interface{})
	}
	e.ContextData[key] = value
	return e
}

// WithSuggestion adds a helpful suggestion for fixing the error
func (e *BaseError) WithSuggestion(suggestion string) *BaseError {
	e.Hints = append(e.Hints, suggestion)
	return e
}

// New creates a new BaseError with the specified code and message
func New(code ErrorCode, message string) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Hints:   make([]string, 0),
	}
}

// Wrap creates a new error that wraps another error
func Wrap(code ErrorCode, message string, cause error) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Hints:   make([]string, 0),
	}
}

// HasCode reports whether err, or any error it wraps, is a ScaffoldError with the given code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if se, ok := err.(ScaffoldError); ok && se.ErrorCode() == code {
			return true
		}
		if me, ok := err.(*MultipleErrors); ok {
			return me.HasCode(code)
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// MultipleErrors represents multiple errors collected together
type MultipleErrors struct {
	Errors []ScaffoldError
}

// Error implements the error interface
func (e *MultipleErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var messages []string
	for i, err := range e.Errors {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}

	return fmt.Sprintf("multiple errors (%d total):\n%s", len(e.Errors), strings.Join(messages, "\n"))
}

// Unwrap returns all collected errors for errors.Is / errors.As
func (e *MultipleErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Add adds an error to the collection
func (e *MultipleErrors) Add(err ScaffoldError) {
	e.Errors = append(e.Errors, err)
}

// Count returns the number of errors
func (e *MultipleErrors) Count() int {
	return len(e.Errors)
}

// HasCode returns true if any error of the specified type exists
func (e *MultipleErrors) HasCode(code ErrorCode) bool {
	for _, err := range e.Errors {
		if err.ErrorCode() == code {
			return true
		}
	}
	return false
}

// ErrorOrNil returns nil when the collection is empty, so callers can
// return the collection directly.
func (e *MultipleErrors) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// NewMultipleErrors creates a new MultipleErrors collection
func NewMultipleErrors() *MultipleErrors {
	return &MultipleErrors{
		Errors: make([]ScaffoldError, 0),
	}
}
