package model

import "fmt"

// PreconditionError reports malformed input to the totals calculator,
// e.g. a line without any unit price. It is fatal: the caller must fix
// the input and retry. Business rule violations never use this type.
type PreconditionError struct {
	Field   string
	Message string
	Cause   error
}

func (e *PreconditionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("precondition failed on %s: %s (%v)", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("precondition failed on %s: %s", e.Field, e.Message)
}

func (e *PreconditionError) Unwrap() error {
	return e.Cause
}

// NewPreconditionError creates a new precondition error
func NewPreconditionError(field, message string, cause error) *PreconditionError {
	return &PreconditionError{
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// ParseError represents document parsing errors with format context
type ParseError struct {
	Format  string
	Field   string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Format, e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Format, e.Field, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new parse error
func NewParseError(format, field, message string, cause error) *ParseError {
	return &ParseError{
		Format:  format,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}
