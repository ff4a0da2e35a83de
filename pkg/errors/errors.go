package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the failure classes a run can hit
type ErrorType string

const (
	ErrorTypeNavigation     ErrorType = "navigation"
	ErrorTypeTableNotFound  ErrorType = "table_not_found"
	ErrorTypeTableStructure ErrorType = "table_structure"
	ErrorTypePagination     ErrorType = "pagination"
	ErrorTypeIO             ErrorType = "io"
	ErrorTypeConfig         ErrorType = "config"
	ErrorTypeUnknown        ErrorType = "unknown"
)

// Error is a classified run error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(t ErrorType, err error, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...), Err: err}
}

// Navigation reports that the start URL could not be reached.
func Navigation(err error, url string) *Error {
	return newError(ErrorTypeNavigation, err, "cannot reach %s", url)
}

// TableNotFound reports that the data table never appeared within the wait window.
func TableNotFound(err error, selector string) *Error {
	return newError(ErrorTypeTableNotFound, err, "table %q did not appear", selector)
}

// TableStructure reports a page without the expected table structure.
func TableStructure(err error, format string, args ...interface{}) *Error {
	return newError(ErrorTypeTableStructure, err, format, args...)
}

// Pagination reports a failure while locating or invoking the next-page control.
func Pagination(err error, format string, args ...interface{}) *Error {
	return newError(ErrorTypePagination, err, format, args...)
}

// IO reports a failure writing the export.
func IO(err error, path string) *Error {
	return newError(ErrorTypeIO, err, "cannot write %s", path)
}

// Config reports an invalid configuration.
func Config(err error, format string, args ...interface{}) *Error {
	return newError(ErrorTypeConfig, err, format, args...)
}

// TypeOf returns the ErrorType of the first classified error in err's chain.
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries the given type.
func Is(err error, t ErrorType) bool {
	return err != nil && TypeOf(err) == t
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypePagination:
		return true
	default:
		return false
	}
}
