package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorType categorizes a problem encountered during an import.
type ErrorType string

const (
	ErrorTypeStructural  ErrorType = "structural"   // Header or required field missing
	ErrorTypeUnknownKind ErrorType = "unknown_kind" // Unrecognized block or node class
	ErrorTypeUnresolved  ErrorType = "unresolved"   // Reference never resolved
	ErrorTypeUnsupported ErrorType = "unsupported"  // Recognized but untranslatable construct
	ErrorTypeIO          ErrorType = "io"           // Missing or unreadable document
)

// Error is a single import problem with its source position.
type Error struct {
	Type     ErrorType // Category of error
	Message  string    // Human readable message
	Document string    // Source document, if known
	Line     int       // 1-based line in Document, 0 if unknown
	Object   string    // Name of the object being imported, if any
	Err      error     // Underlying cause
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s", e.Type, e.Message))

	if e.Object != "" {
		sb.WriteString(fmt.Sprintf(" (object %s)", e.Object))
	}

	if e.Document != "" {
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf(" at %s:%d", e.Document, e.Line))
		} else {
			sb.WriteString(fmt.Sprintf(" in %s", e.Document))
		}
	}

	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// At sets the document position and returns the error for chaining.
func (e *Error) At(document string, line int) *Error {
	e.Document = document
	e.Line = line
	return e
}

// For sets the object name and returns the error for chaining.
func (e *Error) For(object string) *Error {
	e.Object = object
	return e
}

// Is reports whether err wraps an *Error of the given type.
func Is(err error, errType ErrorType) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// New creates an error of the given type.
func New(errType ErrorType, format string, args ...any) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given type around a cause.
func Wrap(errType ErrorType, err error, format string, args ...any) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...), Err: err}
}

// Structural creates a structural parse error.
func Structural(format string, args ...any) *Error {
	return New(ErrorTypeStructural, format, args...)
}

// UnknownKind creates an unknown kind error.
func UnknownKind(format string, args ...any) *Error {
	return New(ErrorTypeUnknownKind, format, args...)
}

// Unsupported creates an unsupported construct error.
func Unsupported(format string, args ...any) *Error {
	return New(ErrorTypeUnsupported, format, args...)
}

// IO creates an I/O error around a cause.
func IO(err error, format string, args ...any) *Error {
	return Wrap(ErrorTypeIO, err, format, args...)
}

// ErrorList accumulates errors for one import run.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*Error, 0),
	}
}

// Add appends an error to the list. Nil errors are ignored.
func (el *ErrorList) Add(err *Error) {
	if err == nil {
		return
	}
	el.Errors = append(el.Errors, err)
}

// AddError creates and adds a new error.
func (el *ErrorList) AddError(errType ErrorType, message string) {
	el.Add(&Error{Type: errType, Message: message})
}

// HasErrors returns true if the list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d error(s):\n", el.Count()))

	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}

	return sb.String()
}

// ToError returns nil if the list is empty, otherwise the list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// ByType returns all errors of the given type, in insertion order.
func (el *ErrorList) ByType(errType ErrorType) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Type == errType {
			result = append(result, err)
		}
	}
	return result
}

// HasErrorType returns true if the list contains an error of the given type.
func (el *ErrorList) HasErrorType(errType ErrorType) bool {
	for _, err := range el.Errors {
		if err.Type == errType {
			return true
		}
	}
	return false
}

// Merge appends all errors from other.
func (el *ErrorList) Merge(other *ErrorList) {
	if other == nil {
		return
	}
	el.Errors = append(el.Errors, other.Errors...)
}
