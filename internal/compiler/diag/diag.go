// Package diag provides structured diagnostics for the widget compiler.
// It defines error codes, categories, and formatting for both human-readable
// terminal output and machine-parseable JSON.
package diag

import (
	"encoding/json"
	"fmt"
)

// Code represents a unique diagnostic code in the widget compiler
type Code string

// Category represents the category of compiler diagnostic
type Category string

const (
	// CategorySyntax represents syntax errors (SYN001-099)
	CategorySyntax Category = "syntax"
	// CategoryModule represents module resolution errors (MOD100-199)
	CategoryModule Category = "module"
)

// Severity indicates the severity level of a diagnostic
type Severity string

const (
	// SeverityError indicates an error that prevents compilation
	SeverityError Severity = "error"
	// SeverityWarning indicates a warning that suggests potential issues
	SeverityWarning Severity = "warning"
)

// Well-known diagnostic codes.
const (
	// SyntaxUnterminatedElement is reported when a JSX element is never closed
	SyntaxUnterminatedElement Code = "SYN001"
	// SyntaxMismatchedClosingTag is reported when a closing tag does not match
	// the innermost open element
	SyntaxMismatchedClosingTag Code = "SYN002"
	// SyntaxUnterminatedString is reported when an attribute string literal is
	// never closed
	SyntaxUnterminatedString Code = "SYN003"
	// SyntaxUnterminatedExpression is reported when a {expr} container is never
	// closed
	SyntaxUnterminatedExpression Code = "SYN004"
	// SyntaxMalformedAttribute is reported when an attribute cannot be parsed
	SyntaxMalformedAttribute Code = "SYN005"
	// ModuleUnknownPackage is reported when an import specifier is not part of
	// the target image's package set
	ModuleUnknownPackage Code = "MOD101"
	// ModuleMalformedImport is reported when an import statement cannot be
	// parsed
	ModuleMalformedImport Code = "MOD102"
	// ModuleUnknownImage is reported when the requested image is not registered
	ModuleUnknownImage Code = "MOD103"
)

// Diagnostic represents a structured compiler diagnostic. Type-level errors
// are deliberately not a category: the compiler performs syntax and module
// transformation only.
type Diagnostic struct {
	Code     Code     `json:"code"`
	Category Category `json:"category"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
}

// Error implements the error interface
func (d *Diagnostic) Error() string {
	return d.String()
}

// String returns the single-line form used in CompilationResult.Errors.
func (d *Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s [%s] line %d:%d: %s", d.Severity, d.Code, d.Line, d.Column, d.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", d.Severity, d.Code, d.Message)
}

// ToJSON returns the diagnostic as a JSON string
func (d *Diagnostic) ToJSON() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to marshal diagnostic: %w", err)
	}
	return string(data), nil
}

// Errorf constructs an error-severity diagnostic at a source position.
func Errorf(code Code, line, col int, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Code:     code,
		Category: categoryOf(code),
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	}
}

// Warnf constructs a warning-severity diagnostic.
func Warnf(code Code, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Code:     code,
		Category: categoryOf(code),
		Severity: SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
	}
}

func categoryOf(code Code) Category {
	if len(code) >= 3 && code[:3] == "MOD" {
		return CategoryModule
	}
	return CategorySyntax
}

// Strings converts a diagnostic list to its single-line forms, preserving
// order.
func Strings(diags []*Diagnostic) []string {
	if len(diags) == 0 {
		return nil
	}
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.String()
	}
	return out
}

// FirstError returns the first error-severity diagnostic, or nil if the list
// contains only warnings.
func FirstError(diags []*Diagnostic) *Diagnostic {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return d
		}
	}
	return nil
}
