package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies a class of binding failure.
type Code string

const (
	// CodeModel indicates a malformed bound type family. Raised while building
	// class models; never a document error.
	CodeModel Code = "model-error"
	// CodeUnknownVariant indicates no candidate type matched a tag.
	CodeUnknownVariant Code = "unknown-variant"
	// CodeUnexpectedElement indicates a child element matched no field.
	CodeUnexpectedElement Code = "unexpected-element"
	// CodeUnexpectedAttribute indicates an attribute matched no field.
	CodeUnexpectedAttribute Code = "unexpected-attribute"
	// CodeUnexpectedText indicates character data in element-only content.
	CodeUnexpectedText Code = "unexpected-text"
	// CodeIllegalNil indicates a nil marker on a non-nillable element.
	CodeIllegalNil Code = "illegal-nil"
	// CodeMissingRequiredField indicates a required field was omitted.
	CodeMissingRequiredField Code = "missing-required-field"
	// CodeTooManyOccurrences indicates an element exceeded its max occurs.
	CodeTooManyOccurrences Code = "too-many-occurrences"
	// CodeAmbiguousChoice indicates more than one choice member was populated.
	CodeAmbiguousChoice Code = "ambiguous-choice"
	// CodeInvalidValue indicates the scalar codec rejected a value.
	CodeInvalidValue Code = "invalid-value"
	// CodeMalformedDocument indicates an event stream that is not a well-formed tree.
	CodeMalformedDocument Code = "malformed-document"
)

// Error makes a Code usable as an errors.Is target.
func (c Code) Error() string {
	return string(c)
}

// Error is a structural binding error.
type Error struct {
	Code    Code
	Message string
	// Name is the offending qualified name in Clark notation.
	Name string
	// Type is the enclosing bound type.
	Type string
	// Field is the Go field of the descriptor involved, if any.
	Field  string
	Line   int
	Column int
	Err    error
}

// New builds an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error around a cause.
func Wrap(code Code, err error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Err = err

	return e
}

// In sets the enclosing type and field.
func (e *Error) In(typeName, field string) *Error {
	e.Type = typeName
	e.Field = field

	return e
}

// For sets the offending name.
func (e *Error) For(name fmt.Stringer) *Error {
	e.Name = name.String()

	return e
}

// At sets the document position.
func (e *Error) At(line, column int) *Error {
	e.Line = line
	e.Column = column

	return e
}

// Error formats the code, message and context.
func (e *Error) Error() string {
	if e == nil {
		return "diagnostic <nil>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)

	if e.Name != "" {
		fmt.Fprintf(&b, " (name: %s)", e.Name)
	}

	if e.Type != "" {
		fmt.Fprintf(&b, " in %s", e.Type)
		if e.Field != "" {
			fmt.Fprintf(&b, ".%s", e.Field)
		}
	}

	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d, column %d", e.Line, e.Column)
	}

	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}

	return b.String()
}

// Unwrap exposes both the code and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Code}
	}

	return []error{e.Code, e.Err}
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}

	return nil, false
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}

	return ""
}
