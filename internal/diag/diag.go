// Package diag provides the diagnostic types reported across the
// scan/parse/execute pipeline.
package diag

import (
	"fmt"

	"lox-lang/internal/span"
)

// Phase identifies the pipeline stage that produced a diagnostic.
type Phase int

const (
	Lex Phase = iota
	Parse
	Runtime
)

func (p Phase) String() string {
	switch p {
	case Lex:
		return "lex"
	case Parse:
		return "parse"
	case Runtime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Diagnostic represents one error reported to the host boundary.
type Diagnostic struct {
	Code    string    `json:"code"`    // stable error code, e.g. "E1001"
	Phase   Phase     `json:"phase"`   // pipeline stage
	Message string    `json:"message"` // human-readable description
	Span    span.Span `json:"span"`    // source location
}

// Line returns the 1-based source line the diagnostic points at.
func (d Diagnostic) Line() int {
	return d.Span.Line()
}

// String returns a human-readable representation of the diagnostic.
func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s error at %s: %s", d.Code, d.Phase, d.Span.Start, d.Message)
}

// Errorf creates a diagnostic for the given phase at the given span.
func Errorf(phase Phase, code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:    code,
		Phase:   phase,
		Message: fmt.Sprintf(format, args...),
		Span:    s,
	}
}

// HasErrors reports whether the slice contains any diagnostics. The
// pipeline refuses to execute a program that produced any.
func HasErrors(diags []Diagnostic) bool {
	return len(diags) > 0
}
