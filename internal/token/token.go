// Package token defines the token types produced by the scanner.
package token

import (
	"fmt"

	"lox-lang/internal/span"
)

// Kind represents the type of a token.
type Kind int

const (
	// Special tokens
	ILLEGAL Kind = iota
	EOF

	// Literals
	IDENT  // identifiers: x, makeCounter
	NUMBER // number literals: 123, 3.14
	STRING // string literals: "hello"

	// Single-character tokens
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	COMMA     // ,
	DOT       // .
	MINUS     // -
	PLUS      // +
	SEMICOLON // ;
	SLASH     // /
	STAR      // *

	// One- or two-character tokens
	BANG   // !
	NEQ    // !=
	ASSIGN // =
	EQ     // ==
	GT     // >
	GTE    // >=
	LT     // <
	LTE    // <=

	// Keywords
	KW_AND
	KW_CLASS
	KW_ELSE
	KW_FALSE
	KW_FUN
	KW_FOR
	KW_IF
	KW_NIL
	KW_OR
	KW_PRINT
	KW_RETURN
	KW_SUPER
	KW_THIS
	KW_TRUE
	KW_VAR
	KW_WHILE
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	COMMA:     ",",
	DOT:       ".",
	MINUS:     "-",
	PLUS:      "+",
	SEMICOLON: ";",
	SLASH:     "/",
	STAR:      "*",

	BANG:   "!",
	NEQ:    "!=",
	ASSIGN: "=",
	EQ:     "==",
	GT:     ">",
	GTE:    ">=",
	LT:     "<",
	LTE:    "<=",

	KW_AND:    "and",
	KW_CLASS:  "class",
	KW_ELSE:   "else",
	KW_FALSE:  "false",
	KW_FUN:    "fun",
	KW_FOR:    "for",
	KW_IF:     "if",
	KW_NIL:    "nil",
	KW_OR:     "or",
	KW_PRINT:  "print",
	KW_RETURN: "return",
	KW_SUPER:  "super",
	KW_THIS:   "this",
	KW_TRUE:   "true",
	KW_VAR:    "var",
	KW_WHILE:  "while",
}

// String returns the human-readable name for a token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword returns true if the kind is a reserved word.
func (k Kind) IsKeyword() bool {
	return k >= KW_AND && k <= KW_WHILE
}

// IsLiteral returns true if the kind is a literal (ident/number/string).
func (k Kind) IsLiteral() bool {
	return k >= IDENT && k <= STRING
}

var keywords = map[string]Kind{
	"and":    KW_AND,
	"class":  KW_CLASS,
	"else":   KW_ELSE,
	"false":  KW_FALSE,
	"fun":    KW_FUN,
	"for":    KW_FOR,
	"if":     KW_IF,
	"nil":    KW_NIL,
	"or":     KW_OR,
	"print":  KW_PRINT,
	"return": KW_RETURN,
	"super":  KW_SUPER,
	"this":   KW_THIS,
	"true":   KW_TRUE,
	"var":    KW_VAR,
	"while":  KW_WHILE,
}

// LookupIdent returns the keyword Kind for ident, or IDENT if it is not
// a reserved word. Matching is exact and case-sensitive.
func LookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return IDENT
}

// Token represents a lexical token. Number and string tokens carry the
// decoded literal: a float64 for NUMBER, a string for STRING. All other
// kinds leave Literal nil.
type Token struct {
	Kind    Kind        `json:"kind"`
	Lexeme  string      `json:"lexeme"`
	Literal interface{} `json:"literal,omitempty"`
	Span    span.Span   `json:"span"`
}

// Number returns the decoded numeric literal. Only meaningful for
// NUMBER tokens.
func (t Token) Number() float64 {
	n, _ := t.Literal.(float64)
	return n
}

// Text returns the decoded string literal. Only meaningful for STRING
// tokens.
func (t Token) Text() string {
	s, _ := t.Literal.(string)
	return s
}

// String returns a human-readable representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Kind, t.Lexeme, t.Span.Start)
}
