// Package ast defines the abstract syntax tree for lox-lang.
package ast

import (
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// ============================================================
// Program (top-level AST root)
// ============================================================

// Program represents an entire source file: an ordered sequence of
// declarations and statements.
type Program struct {
	NodeBase
	Stmts []Stmt
}

// ============================================================
// Expressions
// ============================================================

// LiteralKind discriminates the payload of a LiteralExpr.
type LiteralKind int

const (
	LitNil LiteralKind = iota
	LitBool
	LitNumber
	LitString
)

// LiteralExpr represents a literal: a number, string, true, false, or nil.
type LiteralExpr struct {
	ExprBase
	Kind   LiteralKind
	Number float64 // valid when Kind == LitNumber
	Str    string  // valid when Kind == LitString
	Bool   bool    // valid when Kind == LitBool
}

// VariableExpr represents an identifier reference.
type VariableExpr struct {
	ExprBase
	Name string
}

// AssignExpr represents an assignment to a variable: name = value.
// Assignment is an expression and evaluates to the assigned value.
type AssignExpr struct {
	ExprBase
	Name  string
	Value Expr
}

// UnaryExpr represents a unary operation: !x, -x.
type UnaryExpr struct {
	ExprBase
	Op      token.Kind
	Operand Expr
}

// BinaryExpr represents an arithmetic, comparison, or equality
// operation: a + b, x == y.
type BinaryExpr struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// LogicalExpr represents a short-circuiting 'and' or 'or'. Kept apart
// from BinaryExpr because the right operand is evaluated conditionally.
type LogicalExpr struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// GroupingExpr represents a parenthesized expression: (expr).
type GroupingExpr struct {
	ExprBase
	Inner Expr
}

// CallExpr represents a function call: f(a, b).
type CallExpr struct {
	ExprBase
	Callee Expr
	Args   []Expr
}

// ============================================================
// Statements
// ============================================================

// ExprStmt wraps an expression used as a statement.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

// PrintStmt represents a print statement: print expr;
type PrintStmt struct {
	StmtBase
	Expr Expr
}

// VarDeclStmt represents a variable declaration: var x; / var x = expr;
type VarDeclStmt struct {
	StmtBase
	Name string
	Init Expr // may be nil; the variable is bound to nil
}

// BlockStmt represents a block of statements: { ... }. A block
// introduces a new scope.
type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

// IfStmt represents an if statement with an optional else branch.
type IfStmt struct {
	StmtBase
	Condition Expr
	Then      Stmt
	Else      Stmt // may be nil
}

// WhileStmt represents a while loop. The parser also produces WhileStmt
// for 'for' loops, which desugar to a block around a while.
type WhileStmt struct {
	StmtBase
	Condition Expr
	Body      Stmt
}

// FunctionStmt represents a function declaration: fun name(params) { ... }.
// Executing it binds a callable value in the enclosing scope.
type FunctionStmt struct {
	StmtBase
	Name   string
	Params []string
	Body   []Stmt
}

// ReturnStmt represents a return statement with an optional value.
type ReturnStmt struct {
	StmtBase
	Value Expr // may be nil; the call evaluates to nil
}
