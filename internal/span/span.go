// Package span provides source position and span types shared by the
// scanner, parser, and runtime.
package span

import "fmt"

// Position is a location in source text.
type Position struct {
	Offset int `json:"offset"` // byte offset from the beginning of the source
	Line   int `json:"line"`   // 1-based line number
	Column int `json:"column"` // 1-based column number
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open range [Start, End) in source text.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

func (s Span) String() string {
	return fmt.Sprintf("%s..%s", s.Start, s.End)
}

// Line returns the 1-based line the span starts on. Error reporting
// points at this line.
func (s Span) Line() int {
	return s.Start.Line
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}
