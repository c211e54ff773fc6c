package runtime

import (
	"bytes"
	"strings"
	"testing"

	"lox-lang/internal/diag"
)

func TestSessionPersistsBindings(t *testing.T) {
	var buf bytes.Buffer
	s := NewSession(&buf)

	if diags := s.Run(`var x = 1;`, "<repl>"); len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if diags := s.Run(`print x;`, "<repl>"); len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if got := strings.TrimSpace(buf.String()); got != "1" {
		t.Errorf("expected output '1', got %q", got)
	}
}

func TestSessionsIsolated(t *testing.T) {
	var buf bytes.Buffer
	a := NewSession(&buf)
	b := NewSession(&buf)

	if diags := a.Run(`var x = 1;`, "<repl>"); len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	diags := b.Run(`print x;`, "<repl>")
	if len(diags) != 1 || diags[0].Phase != diag.Runtime {
		t.Fatalf("expected one runtime diagnostic, got %v", diags)
	}
}

func TestSessionLexErrorPhase(t *testing.T) {
	var buf bytes.Buffer
	s := NewSession(&buf)

	diags := s.Run(`var x = @;`, "test.lox")
	if len(diags) == 0 {
		t.Fatal("expected diagnostics")
	}
	if diags[0].Phase != diag.Lex {
		t.Errorf("expected lex phase, got %s", diags[0].Phase)
	}
}

func TestSessionParseErrorRefusesExecution(t *testing.T) {
	var buf bytes.Buffer
	s := NewSession(&buf)

	// The first statement is valid; the program still must not run.
	diags := s.Run("print 1;\nvar = ;", "test.lox")
	if len(diags) == 0 {
		t.Fatal("expected diagnostics")
	}
	if diags[0].Phase != diag.Parse {
		t.Errorf("expected parse phase, got %s", diags[0].Phase)
	}
	if buf.Len() != 0 {
		t.Errorf("program with parse errors must not execute, got output %q", buf.String())
	}
}

func TestSessionRuntimeDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	s := NewSession(&buf)

	diags := s.Run(`print missing;`, "test.lox")
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	d := diags[0]
	if d.Phase != diag.Runtime {
		t.Errorf("expected runtime phase, got %s", d.Phase)
	}
	if d.Code != "E3001" {
		t.Errorf("expected code E3001, got %s", d.Code)
	}
	if !strings.Contains(d.Message, "NameError") {
		t.Errorf("expected NameError in message, got %q", d.Message)
	}
}

func TestSessionStopsAtFirstRuntimeError(t *testing.T) {
	var buf bytes.Buffer
	s := NewSession(&buf)

	s.Run("print 1;\nprint missing;\nprint 2;", "test.lox")
	if got := strings.TrimSpace(buf.String()); got != "1" {
		t.Errorf("expected output up to the failing statement, got %q", got)
	}
}
