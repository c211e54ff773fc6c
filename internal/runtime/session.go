package runtime

import (
	"io"

	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/parser"
	"lox-lang/internal/span"
)

// Session runs source text through the full scan/parse/execute
// pipeline against one persistent global environment. Successive Run
// calls see bindings from earlier ones, which is what a REPL needs;
// separate sessions share nothing.
type Session struct {
	interp *Interpreter
}

// NewSession creates a session writing program output to out.
func NewSession(out io.Writer) *Session {
	return &Session{interp: NewInterpreter(out)}
}

// Run scans, parses, and executes source. It returns the diagnostics
// produced, if any. A program with lex or parse errors is never
// executed; a runtime error stops execution at the failing statement
// and surfaces as a single runtime-phase diagnostic.
func (s *Session) Run(source, filename string) []diag.Diagnostic {
	tokens, diags := lexer.New(source, filename).Tokenize()
	if diag.HasErrors(diags) {
		return diags
	}

	program, diags := parser.New(tokens).ParseProgram()
	if diag.HasErrors(diags) {
		return diags
	}

	if err := s.interp.Run(program); err != nil {
		return []diag.Diagnostic{runtimeDiag(err)}
	}
	return nil
}

// runtimeDiag converts an interpreter error into a diagnostic.
func runtimeDiag(err error) diag.Diagnostic {
	if rtErr, ok := err.(*Error); ok {
		return diag.Errorf(diag.Runtime, runtimeCode(rtErr.Kind), rtErr.Span, "%s: %s", rtErr.Kind, rtErr.Message)
	}
	return diag.Errorf(diag.Runtime, "E3000", span.Span{}, "%s", err)
}

func runtimeCode(kind ErrorKind) string {
	switch kind {
	case NameError:
		return "E3001"
	case TypeError:
		return "E3002"
	case ArityError:
		return "E3003"
	case NotCallableError:
		return "E3004"
	default:
		return "E3000"
	}
}
