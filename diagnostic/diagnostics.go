package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"markup-binder/internal/common"
)

// Diagnostics holds the findings of one decode or encode run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code identifies the kind of finding.
	Code Code
	// Message is the human-readable description.
	Message string
	// Type is the enclosing bound type (if any).
	Type string
	// Name is the qualified name involved (if any).
	Name string
	// Line and Column locate the finding in the document (if known).
	Line   int
	Column int
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(err *Error) {
	d.Errors = append(d.Errors, fromError(DiagnosticError, err))
}

// AddWarning records a structural error that was tolerated.
func (d *Diagnostics) AddWarning(err *Error) {
	d.Warnings = append(d.Warnings, fromError(DiagnosticWarning, err))
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code Code, message, typeName string) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: DiagnosticInfo,
		Code:     code,
		Message:  message,
		Type:     typeName,
	})
}

func fromError(sev DiagnosticSeverity, err *Error) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     err.Code,
		Message:  err.Message,
		Type:     err.Type,
		Name:     err.Name,
		Line:     err.Line,
		Column:   err.Column,
	}
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Type != "" {
		prefix = append(prefix, "["+d.Type+"]")
	}

	if d.Name != "" {
		prefix = append(prefix, d.Name)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if d.Line > 0 {
		msg = fmt.Sprintf("%s (line %d, column %d)", msg, d.Line, d.Column)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
