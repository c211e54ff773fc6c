// Package parser implements syntax analysis for lox-lang.
// It uses Pratt parsing for expressions and recursive descent for
// statements and declarations.
package parser

import (
	"fmt"

	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// maxCallArgs bounds the argument list of a single call.
const maxCallArgs = 255

// ============================================================
// Binding power (precedence) levels
// ============================================================

const (
	bpNone       = 0
	bpOr         = 10 // or
	bpAnd        = 20 // and
	bpEquality   = 30 // == !=
	bpComparison = 40 // < <= > >=
	bpTerm       = 50 // + -
	bpFactor     = 60 // * /
	bpPrefix     = 70 // ! -
	bpCall       = 80 // ()
)

// infixBP returns the left binding power for an infix/postfix operator.
func infixBP(kind token.Kind) int {
	switch kind {
	case token.KW_OR:
		return bpOr
	case token.KW_AND:
		return bpAnd
	case token.EQ, token.NEQ:
		return bpEquality
	case token.LT, token.LTE, token.GT, token.GTE:
		return bpComparison
	case token.PLUS, token.MINUS:
		return bpTerm
	case token.STAR, token.SLASH:
		return bpFactor
	case token.LPAREN:
		return bpCall
	default:
		return bpNone
	}
}

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  []diag.Diagnostic
}

// New creates a new parser from a token slice.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, pos: 0}
}

// ParseProgram parses the entire token stream and returns the program
// and diagnostics. The program is best-effort when diagnostics are
// present; callers must not execute it.
func (p *Parser) ParseProgram() (*ast.Program, []diag.Diagnostic) {
	program := &ast.Program{}
	startPos := p.peek().Span.Start

	for !p.isAtEnd() {
		stmt := p.parseDeclaration()
		if stmt != nil {
			program.Stmts = append(program.Stmts, stmt)
		}
	}

	endPos := p.peek().Span.End
	program.Span = span.Span{Start: startPos, End: endPos}
	return program, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind token.Kind, msg string) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	tok := p.peek()
	p.error("E2001", tok.Span, fmt.Sprintf("%s, got '%s'", msg, tok.Kind))
	return tok, false
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

func (p *Parser) error(code string, s span.Span, msg string) {
	p.diags = append(p.diags, diag.Errorf(diag.Parse, code, s, "%s", msg))
}

// ============================================================
// Error recovery
// ============================================================

// synchronize skips tokens until a likely statement boundary, so one
// syntax error does not cascade into a storm of follow-on errors.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.check(token.SEMICOLON) {
			p.advance()
			return
		}
		if p.check(token.RBRACE) {
			return
		}
		if p.match(token.KW_VAR, token.KW_FUN, token.KW_IF, token.KW_WHILE,
			token.KW_FOR, token.KW_PRINT, token.KW_RETURN) {
			return
		}
		p.advance()
	}
}

// ============================================================
// Declaration and statement parsing
// ============================================================

func (p *Parser) parseDeclaration() ast.Stmt {
	switch p.peekKind() {
	case token.KW_FUN:
		return p.parseFunctionDecl()
	case token.KW_VAR:
		return p.parseVarDecl()
	default:
		return p.parseStmt()
	}
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.peekKind() {
	case token.KW_IF:
		return p.parseIfStmt()
	case token.KW_WHILE:
		return p.parseWhileStmt()
	case token.KW_FOR:
		return p.parseForStmt()
	case token.KW_PRINT:
		return p.parsePrintStmt()
	case token.KW_RETURN:
		return p.parseReturnStmt()
	case token.LBRACE:
		return p.parseBlock()
	default:
		return p.parseExprStmt()
	}
}

// parseVarDecl parses: var IDENT [ = expr ] ;
func (p *Parser) parseVarDecl() ast.Stmt {
	start := p.advance() // consume 'var'
	stmt := &ast.VarDeclStmt{}

	nameTok, ok := p.expect(token.IDENT, "expected variable name")
	if !ok {
		p.synchronize()
		stmt.Span = p.makeSpan(start.Span.Start)
		return stmt
	}
	stmt.Name = nameTok.Lexeme

	if p.check(token.ASSIGN) {
		p.advance()
		stmt.Init = p.parseExpr()
	}

	p.expectSemi("variable declaration")
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseFunctionDecl parses: fun IDENT ( params ) { body }
func (p *Parser) parseFunctionDecl() ast.Stmt {
	start := p.advance() // consume 'fun'
	decl := &ast.FunctionStmt{}

	nameTok, ok := p.expect(token.IDENT, "expected function name")
	if !ok {
		p.synchronize()
		decl.Span = p.makeSpan(start.Span.Start)
		return decl
	}
	decl.Name = nameTok.Lexeme

	decl.Params = p.parseParamList()

	if _, ok := p.expect(token.LBRACE, "expected '{' before function body"); !ok {
		p.synchronize()
		decl.Span = p.makeSpan(start.Span.Start)
		return decl
	}
	decl.Body = p.parseBlockBody()
	decl.Span = p.makeSpan(start.Span.Start)
	return decl
}

// parseParamList parses: ( ident, ident, ... )
func (p *Parser) parseParamList() []string {
	var params []string

	if _, ok := p.expect(token.LPAREN, "expected '(' after function name"); !ok {
		return params
	}

	if !p.check(token.RPAREN) {
		for {
			if len(params) >= maxCallArgs {
				p.error("E2004", p.peek().Span,
					fmt.Sprintf("cannot have more than %d parameters", maxCallArgs))
			}
			nameTok, ok := p.expect(token.IDENT, "expected parameter name")
			if ok {
				params = append(params, nameTok.Lexeme)
			}
			if !p.check(token.COMMA) {
				break
			}
			p.advance() // consume ','
		}
	}

	p.expect(token.RPAREN, "expected ')' after parameters")
	return params
}

// parseIfStmt parses: if ( expr ) stmt [ else stmt ]
func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.advance() // consume 'if'
	stmt := &ast.IfStmt{}

	if _, ok := p.expect(token.LPAREN, "expected '(' after 'if'"); !ok {
		p.synchronize()
		stmt.Span = p.makeSpan(start.Span.Start)
		return stmt
	}
	stmt.Condition = p.parseExpr()
	p.expect(token.RPAREN, "expected ')' after condition")

	stmt.Then = p.parseStmt()
	if p.check(token.KW_ELSE) {
		p.advance()
		stmt.Else = p.parseStmt()
	}

	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseWhileStmt parses: while ( expr ) stmt
func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.advance() // consume 'while'
	stmt := &ast.WhileStmt{}

	if _, ok := p.expect(token.LPAREN, "expected '(' after 'while'"); !ok {
		p.synchronize()
		stmt.Span = p.makeSpan(start.Span.Start)
		return stmt
	}
	stmt.Condition = p.parseExpr()
	p.expect(token.RPAREN, "expected ')' after condition")
	stmt.Body = p.parseStmt()
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseForStmt parses: for ( [init] ; [cond] ; [increment] ) stmt
//
// There is no for node in the AST. The loop desugars to
//
//	{ init; while (cond) { body; increment; } }
//
// with the condition defaulting to true when omitted. The increment
// runs after the body on every iteration, before the next condition
// check.
func (p *Parser) parseForStmt() ast.Stmt {
	start := p.advance() // consume 'for'

	if _, ok := p.expect(token.LPAREN, "expected '(' after 'for'"); !ok {
		p.synchronize()
		return &ast.BlockStmt{StmtBase: p.makeStmtBase(start.Span.Start)}
	}

	// Initializer (optional): var declaration or expression statement.
	var init ast.Stmt
	switch {
	case p.check(token.SEMICOLON):
		p.advance()
	case p.check(token.KW_VAR):
		init = p.parseVarDecl()
	default:
		init = p.parseExprStmt()
	}

	// Condition (optional, defaults to true).
	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		cond = p.parseExpr()
	}
	condTok, _ := p.expect(token.SEMICOLON, "expected ';' after loop condition")
	if cond == nil {
		cond = &ast.LiteralExpr{
			ExprBase: makeExprBase(condTok.Span.Start, condTok.Span.End),
			Kind:     ast.LitBool,
			Bool:     true,
		}
	}

	// Increment (optional).
	var increment ast.Expr
	if !p.check(token.RPAREN) {
		increment = p.parseExpr()
	}
	p.expect(token.RPAREN, "expected ')' after for clauses")

	body := p.parseStmt()

	if increment != nil {
		body = &ast.BlockStmt{
			StmtBase: p.makeStmtBase(start.Span.Start),
			Stmts: []ast.Stmt{
				body,
				&ast.ExprStmt{
					StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: increment.GetSpan()}},
					Expr:     increment,
				},
			},
		}
	}

	var loop ast.Stmt = &ast.WhileStmt{
		StmtBase:  p.makeStmtBase(start.Span.Start),
		Condition: cond,
		Body:      body,
	}

	if init != nil {
		loop = &ast.BlockStmt{
			StmtBase: p.makeStmtBase(start.Span.Start),
			Stmts:    []ast.Stmt{init, loop},
		}
	}

	return loop
}

// parsePrintStmt parses: print expr ;
func (p *Parser) parsePrintStmt() ast.Stmt {
	start := p.advance() // consume 'print'
	stmt := &ast.PrintStmt{}
	stmt.Expr = p.parseExpr()
	p.expectSemi("value")
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseReturnStmt parses: return [expr] ;
func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.advance() // consume 'return'
	stmt := &ast.ReturnStmt{}

	if !p.check(token.SEMICOLON) {
		stmt.Value = p.parseExpr()
	}
	p.expectSemi("return value")
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseBlock parses: { stmts }
func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.peek()
	block := &ast.BlockStmt{}

	if _, ok := p.expect(token.LBRACE, "expected '{'"); !ok {
		p.synchronize()
		block.Span = p.makeSpan(start.Span.Start)
		return block
	}
	block.Stmts = p.parseBlockBody()
	block.Span = p.makeSpan(start.Span.Start)
	return block
}

// parseBlockBody parses declarations until '}' and consumes it. The
// opening brace must already be consumed.
func (p *Parser) parseBlockBody() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		stmt := p.parseDeclaration()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.expect(token.RBRACE, "expected '}' after block")
	return stmts
}

// parseExprStmt parses: expr ;
func (p *Parser) parseExprStmt() ast.Stmt {
	startTok := p.peek()
	expr := p.parseExpr()
	if expr == nil {
		p.synchronize()
		return &ast.ExprStmt{
			StmtBase: makeStmtBase(startTok.Span.Start, startTok.Span.End),
		}
	}
	p.expectSemi("expression")
	return &ast.ExprStmt{
		StmtBase: p.makeStmtBase(expr.GetSpan().Start),
		Expr:     expr,
	}
}

// expectSemi consumes the ';' that terminates a statement.
func (p *Parser) expectSemi(after string) {
	if _, ok := p.expect(token.SEMICOLON, fmt.Sprintf("expected ';' after %s", after)); !ok {
		p.synchronize()
	}
}

// ============================================================
// Expression parsing (Pratt / precedence climbing)
// ============================================================

// parseExpr parses a full expression, including assignment.
//
// Assignment sits below the Pratt levels because its left side is not a
// subexpression to evaluate but a target: after parsing an expression,
// an '=' turns it into an assignment when the target is a plain
// variable, and is a syntax error otherwise.
func (p *Parser) parseExpr() ast.Expr {
	expr := p.parseBinaryExpr(bpNone)
	if expr == nil {
		return nil
	}

	if p.check(token.ASSIGN) {
		eqTok := p.advance()
		value := p.parseExpr() // right-associative
		target, ok := expr.(*ast.VariableExpr)
		if !ok {
			p.error("E2003", eqTok.Span, "invalid assignment target")
			return expr
		}
		if value == nil {
			return expr
		}
		return &ast.AssignExpr{
			ExprBase: makeExprBase(expr.GetSpan().Start, value.GetSpan().End),
			Name:     target.Name,
			Value:    value,
		}
	}

	return expr
}

// parseBinaryExpr parses an expression with the given minimum binding
// power, without assignment.
func (p *Parser) parseBinaryExpr(minBP int) ast.Expr {
	left := p.nud()
	if left == nil {
		return nil
	}

	for {
		kind := p.peekKind()
		bp := infixBP(kind)
		if bp <= minBP {
			break
		}
		left = p.led(left)
		if left == nil {
			return nil
		}
	}

	return left
}

// nud handles prefix (null denotation) parsing.
func (p *Parser) nud() ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.NUMBER:
		p.advance()
		return &ast.LiteralExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Kind:     ast.LitNumber,
			Number:   tok.Number(),
		}

	case token.STRING:
		p.advance()
		return &ast.LiteralExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Kind:     ast.LitString,
			Str:      tok.Text(),
		}

	case token.KW_TRUE, token.KW_FALSE:
		p.advance()
		return &ast.LiteralExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Kind:     ast.LitBool,
			Bool:     tok.Kind == token.KW_TRUE,
		}

	case token.KW_NIL:
		p.advance()
		return &ast.LiteralExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Kind:     ast.LitNil,
		}

	case token.IDENT:
		p.advance()
		return &ast.VariableExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Name:     tok.Lexeme,
		}

	case token.LPAREN:
		p.advance() // consume '('
		inner := p.parseExpr()
		end, _ := p.expect(token.RPAREN, "expected ')' after expression")
		if inner == nil {
			return nil
		}
		return &ast.GroupingExpr{
			ExprBase: makeExprBase(tok.Span.Start, end.Span.End),
			Inner:    inner,
		}

	case token.BANG, token.MINUS:
		p.advance()
		operand := p.parseBinaryExpr(bpPrefix)
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{
			ExprBase: makeExprBase(tok.Span.Start, operand.GetSpan().End),
			Op:       tok.Kind,
			Operand:  operand,
		}

	default:
		// Consume the offending token so recovery always makes progress.
		p.advance()
		p.error("E2002", tok.Span, fmt.Sprintf("expected expression, got '%s'", tok.Kind))
		return nil
	}
}

// led handles infix/postfix (left denotation) parsing.
func (p *Parser) led(left ast.Expr) ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE:
		// Binary infix operator (left-associative)
		bp := infixBP(tok.Kind)
		p.advance()
		right := p.parseBinaryExpr(bp)
		if right == nil {
			return nil
		}
		return &ast.BinaryExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, right.GetSpan().End),
			Op:       tok.Kind,
			Left:     left,
			Right:    right,
		}

	case token.KW_AND, token.KW_OR:
		bp := infixBP(tok.Kind)
		p.advance()
		right := p.parseBinaryExpr(bp)
		if right == nil {
			return nil
		}
		return &ast.LogicalExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, right.GetSpan().End),
			Op:       tok.Kind,
			Left:     left,
			Right:    right,
		}

	case token.LPAREN:
		return p.parseCallExpr(left)

	default:
		return left
	}
}

// parseCallExpr parses: callee ( args )
func (p *Parser) parseCallExpr(callee ast.Expr) ast.Expr {
	p.advance() // consume '('
	var args []ast.Expr

	if !p.check(token.RPAREN) {
		for {
			if len(args) >= maxCallArgs {
				p.error("E2004", p.peek().Span,
					fmt.Sprintf("cannot have more than %d arguments", maxCallArgs))
			}
			arg := p.parseExpr()
			if arg == nil {
				return nil
			}
			args = append(args, arg)
			if !p.check(token.COMMA) {
				break
			}
			p.advance() // consume ','
		}
	}
	end, _ := p.expect(token.RPAREN, "expected ')' after arguments")

	return &ast.CallExpr{
		ExprBase: makeExprBase(callee.GetSpan().Start, end.Span.End),
		Callee:   callee,
		Args:     args,
	}
}

// ============================================================
// Span helpers
// ============================================================

func (p *Parser) prevEnd() span.Position {
	if p.pos > 0 && p.pos-1 < len(p.tokens) {
		return p.tokens[p.pos-1].Span.End
	}
	return p.peek().Span.Start
}

func (p *Parser) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: p.prevEnd()}
}

func (p *Parser) makeStmtBase(start span.Position) ast.StmtBase {
	return makeStmtBase(start, p.prevEnd())
}

func makeExprBase(start, end span.Position) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}

func makeStmtBase(start, end span.Position) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}
