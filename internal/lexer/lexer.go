// Package lexer implements lexical analysis (tokenization) for lox-lang.
package lexer

import (
	"fmt"
	"strconv"

	"lox-lang/internal/diag"
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// Lexer tokenizes source code into a sequence of tokens.
type Lexer struct {
	source   string
	filename string

	pos  int // current read position in source
	line int // current line (1-based)
	col  int // current column (1-based)

	diags []diag.Diagnostic
}

// New creates a new Lexer for the given source text.
func New(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

// Tokenize scans the entire source and returns all tokens and
// diagnostics. The token slice always ends with an EOF token.
func (l *Lexer) Tokenize() ([]token.Token, []diag.Diagnostic) {
	var tokens []token.Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, l.diags
}

// ---- internal helpers ----

// peek returns the current character without advancing, or 0 if at end.
func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

// peekNext returns the character after current, or 0 if at end.
func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

// advance consumes the current character and returns it.
func (l *Lexer) advance() byte {
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

// match consumes the current character if it equals expected.
func (l *Lexer) match(expected byte) bool {
	if l.peek() != expected {
		return false
	}
	l.advance()
	return true
}

// curPos returns the current position as a span.Position.
func (l *Lexer) curPos() span.Position {
	return span.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// makeSpan returns a span from start to the current position.
func (l *Lexer) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: l.curPos()}
}

// skipWhitespace skips spaces, tabs, carriage returns, and newlines.
// Newlines carry no syntactic meaning; statements end at ';' or '}'.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) {
		switch l.source[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

// skipLineComment skips from // to end of line.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.source) && l.source[l.pos] != '\n' {
		l.advance()
	}
}

// addError records a lex diagnostic.
func (l *Lexer) addError(code string, s span.Span, msg string) {
	l.diags = append(l.diags, diag.Errorf(diag.Lex, code, s, "%s", msg))
}

// ---- token reading ----

func (l *Lexer) nextToken() token.Token {
	l.skipWhitespace()

	if l.pos >= len(l.source) {
		return token.Token{Kind: token.EOF, Lexeme: "", Span: l.makeSpan(l.curPos())}
	}

	start := l.curPos()
	ch := l.peek()

	// Line comment: //
	if ch == '/' && l.peekNext() == '/' {
		l.skipLineComment()
		return l.nextToken()
	}

	// String literal
	if ch == '"' {
		return l.readString(start)
	}

	// Number literal
	if isDigit(ch) {
		return l.readNumber(start)
	}

	// Identifier or keyword
	if isIdentStart(ch) {
		return l.readIdentifier(start)
	}

	// Operators and delimiters
	return l.readOperator(start)
}

// readString reads a double-quoted string literal. Strings may span
// multiple lines and have no escape sequences; the literal is the raw
// text between the quotes. An unterminated string reports the line the
// opening quote appears on.
func (l *Lexer) readString(start span.Position) token.Token {
	l.advance() // opening "
	contentStart := l.pos

	for l.pos < len(l.source) {
		if l.peek() == '"' {
			value := l.source[contentStart:l.pos]
			l.advance() // closing "
			return token.Token{
				Kind:    token.STRING,
				Lexeme:  l.source[start.Offset:l.pos],
				Literal: value,
				Span:    l.makeSpan(start),
			}
		}
		l.advance()
	}

	l.addError("E1001", span.Span{Start: start, End: l.curPos()}, "unterminated string literal")
	return token.Token{Kind: token.ILLEGAL, Lexeme: l.source[start.Offset:l.pos], Span: l.makeSpan(start)}
}

// readNumber reads a number literal: a digit run with at most one
// fractional part. The '.' is only consumed when a digit follows, so
// "1." lexes as NUMBER DOT.
func (l *Lexer) readNumber(start span.Position) token.Token {
	for l.pos < len(l.source) && isDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance() // '.'
		for l.pos < len(l.source) && isDigit(l.peek()) {
			l.advance()
		}
	}

	lexeme := l.source[start.Offset:l.pos]
	value, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		l.addError("E1002", l.makeSpan(start), fmt.Sprintf("invalid number literal: %q", lexeme))
		return token.Token{Kind: token.ILLEGAL, Lexeme: lexeme, Span: l.makeSpan(start)}
	}
	return token.Token{Kind: token.NUMBER, Lexeme: lexeme, Literal: value, Span: l.makeSpan(start)}
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier(start span.Position) token.Token {
	for l.pos < len(l.source) && isIdentPart(l.peek()) {
		l.advance()
	}

	lexeme := l.source[start.Offset:l.pos]
	kind := token.LookupIdent(lexeme)
	return token.Token{Kind: kind, Lexeme: lexeme, Span: l.makeSpan(start)}
}

// readOperator reads an operator or delimiter token.
func (l *Lexer) readOperator(start span.Position) token.Token {
	ch := l.advance()

	tok := func(kind token.Kind, lexeme string) token.Token {
		return token.Token{Kind: kind, Lexeme: lexeme, Span: l.makeSpan(start)}
	}

	switch ch {
	case '(':
		return tok(token.LPAREN, "(")
	case ')':
		return tok(token.RPAREN, ")")
	case '{':
		return tok(token.LBRACE, "{")
	case '}':
		return tok(token.RBRACE, "}")
	case ',':
		return tok(token.COMMA, ",")
	case '.':
		return tok(token.DOT, ".")
	case ';':
		return tok(token.SEMICOLON, ";")
	case '-':
		return tok(token.MINUS, "-")
	case '+':
		return tok(token.PLUS, "+")
	case '/':
		return tok(token.SLASH, "/")
	case '*':
		return tok(token.STAR, "*")
	case '!':
		if l.match('=') {
			return tok(token.NEQ, "!=")
		}
		return tok(token.BANG, "!")
	case '=':
		if l.match('=') {
			return tok(token.EQ, "==")
		}
		return tok(token.ASSIGN, "=")
	case '<':
		if l.match('=') {
			return tok(token.LTE, "<=")
		}
		return tok(token.LT, "<")
	case '>':
		if l.match('=') {
			return tok(token.GTE, ">=")
		}
		return tok(token.GT, ">")
	default:
		l.addError("E1003", l.makeSpan(start), fmt.Sprintf("unexpected character: %q", ch))
		return tok(token.ILLEGAL, string(ch))
	}
}

// ---- character classification ----

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
