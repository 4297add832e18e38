package domain

import "fmt"

// NotFoundError indicates a missing blob or catalog record.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// QueryError indicates a SQL parse or execution failure. The message is
// passed through from the underlying engine verbatim.
type QueryError struct {
	Message string
}

func (e *QueryError) Error() string { return e.Message }

// EmptyResultError indicates an export whose result set had zero rows.
type EmptyResultError struct {
	Message string
}

func (e *EmptyResultError) Error() string { return e.Message }

// UnsupportedFormatError indicates an unknown dataset encoding.
type UnsupportedFormatError struct {
	Message string
}

func (e *UnsupportedFormatError) Error() string { return e.Message }

// ValidationError indicates invalid input at a service boundary.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrQuery creates a QueryError with a formatted message.
func ErrQuery(format string, args ...interface{}) *QueryError {
	return &QueryError{Message: fmt.Sprintf(format, args...)}
}

// ErrEmptyResult creates an EmptyResultError with a formatted message.
func ErrEmptyResult(format string, args ...interface{}) *EmptyResultError {
	return &EmptyResultError{Message: fmt.Sprintf(format, args...)}
}

// ErrUnsupportedFormat creates an UnsupportedFormatError with a formatted message.
func ErrUnsupportedFormat(format string, args ...interface{}) *UnsupportedFormatError {
	return &UnsupportedFormatError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
