package cmd

import (
	"errors"

	"github.com/eykd/pagemark-go/internal/toolbar"
)

// Diagnostic severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Diagnostic codes.
const (
	// CodeReadFailure: the document or its configuration could not be read or parsed.
	CodeReadFailure = "PGE001"
	// CodeInvalidArgument: a command argument or action input was rejected.
	CodeInvalidArgument = "PGE002"
	// CodeInvalidStructure: a page has duplicated bands or no room for content.
	CodeInvalidStructure = "PGE003"
	// CodeNoEnclosingPage: the selection is not inside a page or text block (warning).
	CodeNoEnclosingPage = "PGW001"
	// CodeUnchanged: the command left the document as it was (warning).
	CodeUnchanged = "PGW002"
	// CodePageIndex: page indices do not follow document order (warning).
	CodePageIndex = "PGW003"
	// CodeUnknownPageSize: a page's dimensions match no known paper size (warning).
	CodeUnknownPageSize = "PGW004"
)

// Diagnostic is one finding reported by a command.
type Diagnostic struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// OpResult is the --json output of every mutating command.
type OpResult struct {
	Version     string       `json:"version"`
	Changed     bool         `json:"changed"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// hasDiagnosticError reports whether any diagnostic has error severity.
func hasDiagnosticError(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// diagnose classifies an action error. A missing enclosing page is a
// warning; everything else the toolbars reject is an invalid argument.
func diagnose(err error) Diagnostic {
	switch {
	case errors.Is(err, toolbar.ErrNoEnclosingPage), errors.Is(err, toolbar.ErrNoEnclosingBlock):
		return Diagnostic{Severity: SeverityWarning, Code: CodeNoEnclosingPage, Message: err.Error()}
	}
	return Diagnostic{Severity: SeverityError, Code: CodeInvalidArgument, Message: err.Error()}
}
