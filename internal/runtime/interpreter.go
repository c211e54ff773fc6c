package runtime

import (
	"fmt"
	"io"

	"lox-lang/internal/ast"
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// ============================================================
// Control flow signals
// ============================================================

// ExecSignal represents a control flow signal from statement execution.
type ExecSignal int

const (
	SigNone   ExecSignal = iota
	SigReturn            // return from function
)

// ExecResult carries a control flow signal and an optional value (for return).
type ExecResult struct {
	Signal ExecSignal
	Value  Value
}

var resultNone = ExecResult{Signal: SigNone}

// ============================================================
// Runtime errors
// ============================================================

// ErrorKind classifies a runtime error.
type ErrorKind int

const (
	NameError        ErrorKind = iota // unresolved variable reference or assignment
	TypeError                         // operand type mismatch
	ArityError                        // wrong number of call arguments
	NotCallableError                  // call target is not a function
)

func (k ErrorKind) String() string {
	switch k {
	case NameError:
		return "NameError"
	case TypeError:
		return "TypeError"
	case ArityError:
		return "ArityError"
	case NotCallableError:
		return "NotCallableError"
	default:
		return "RuntimeError"
	}
}

// Error represents an error during interpretation. Execution stops at
// the first one.
type Error struct {
	Kind    ErrorKind
	Message string
	Span    span.Span
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Span.Start.Line, e.Span.Start.Column, e.Message)
}

func runtimeErr(kind ErrorKind, s span.Span, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Span: s}
}

// ============================================================
// Interpreter
// ============================================================

// Interpreter walks the AST and executes it.
type Interpreter struct {
	global *Environment
	env    *Environment
	output io.Writer
}

// NewInterpreter creates a new interpreter with built-in functions registered.
func NewInterpreter(output io.Writer) *Interpreter {
	global := NewEnvironment(nil)
	RegisterBuiltins(global)
	return &Interpreter{
		global: global,
		env:    global,
		output: output,
	}
}

// Run executes an entire program.
func (i *Interpreter) Run(program *ast.Program) error {
	for _, stmt := range program.Stmts {
		result, err := i.execStmt(stmt)
		if err != nil {
			return err
		}
		if result.Signal == SigReturn {
			return runtimeErr(TypeError, stmt.GetSpan(), "return outside of function")
		}
	}
	return nil
}

// Env returns the current environment (useful for REPL).
func (i *Interpreter) Env() *Environment {
	return i.env
}

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) execStmt(stmt ast.Stmt) (ExecResult, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := i.evalExpr(s.Expr)
		return resultNone, err

	case *ast.PrintStmt:
		return i.execPrint(s)

	case *ast.VarDeclStmt:
		return i.execVarDecl(s)

	case *ast.BlockStmt:
		return i.execBlock(s.Stmts, NewEnvironment(i.env))

	case *ast.IfStmt:
		return i.execIf(s)

	case *ast.WhileStmt:
		return i.execWhile(s)

	case *ast.FunctionStmt:
		return i.execFunctionDecl(s)

	case *ast.ReturnStmt:
		var val Value = NilVal{}
		if s.Value != nil {
			v, err := i.evalExpr(s.Value)
			if err != nil {
				return resultNone, err
			}
			val = v
		}
		return ExecResult{Signal: SigReturn, Value: val}, nil

	default:
		return resultNone, runtimeErr(TypeError, stmt.GetSpan(), "unhandled statement type: %T", stmt)
	}
}

func (i *Interpreter) execPrint(s *ast.PrintStmt) (ExecResult, error) {
	val, err := i.evalExpr(s.Expr)
	if err != nil {
		return resultNone, err
	}
	fmt.Fprintln(i.output, val.String())
	return resultNone, nil
}

func (i *Interpreter) execVarDecl(s *ast.VarDeclStmt) (ExecResult, error) {
	var val Value = NilVal{}
	if s.Init != nil {
		v, err := i.evalExpr(s.Init)
		if err != nil {
			return resultNone, err
		}
		val = v
	}
	i.env.Define(s.Name, val)
	return resultNone, nil
}

func (i *Interpreter) execIf(s *ast.IfStmt) (ExecResult, error) {
	cond, err := i.evalExpr(s.Condition)
	if err != nil {
		return resultNone, err
	}

	if IsTruthy(cond) {
		return i.execStmt(s.Then)
	}
	if s.Else != nil {
		return i.execStmt(s.Else)
	}
	return resultNone, nil
}

func (i *Interpreter) execWhile(s *ast.WhileStmt) (ExecResult, error) {
	for {
		cond, err := i.evalExpr(s.Condition)
		if err != nil {
			return resultNone, err
		}
		if !IsTruthy(cond) {
			break
		}

		result, err := i.execStmt(s.Body)
		if err != nil {
			return resultNone, err
		}
		if result.Signal == SigReturn {
			return result, nil // propagate return
		}
	}
	return resultNone, nil
}

func (i *Interpreter) execBlock(stmts []ast.Stmt, blockEnv *Environment) (ExecResult, error) {
	prevEnv := i.env
	i.env = blockEnv
	defer func() { i.env = prevEnv }()

	for _, stmt := range stmts {
		result, err := i.execStmt(stmt)
		if err != nil {
			return resultNone, err
		}
		if result.Signal != SigNone {
			return result, nil // propagate signal
		}
	}
	return resultNone, nil
}

func (i *Interpreter) execFunctionDecl(s *ast.FunctionStmt) (ExecResult, error) {
	fn := &FuncVal{
		Name:    s.Name,
		Params:  s.Params,
		Body:    s.Body,
		Closure: i.env,
	}
	i.env.Define(s.Name, fn)
	return resultNone, nil
}

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evalExpr(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return i.evalLiteral(e), nil
	case *ast.VariableExpr:
		return i.evalVariable(e)
	case *ast.AssignExpr:
		return i.evalAssign(e)
	case *ast.GroupingExpr:
		return i.evalExpr(e.Inner)
	case *ast.UnaryExpr:
		return i.evalUnary(e)
	case *ast.BinaryExpr:
		return i.evalBinary(e)
	case *ast.LogicalExpr:
		return i.evalLogical(e)
	case *ast.CallExpr:
		return i.evalCall(e)
	default:
		return nil, runtimeErr(TypeError, expr.GetSpan(), "unhandled expression type: %T", expr)
	}
}

func (i *Interpreter) evalLiteral(e *ast.LiteralExpr) Value {
	switch e.Kind {
	case ast.LitNumber:
		return NumberVal(e.Number)
	case ast.LitString:
		return StringVal(e.Str)
	case ast.LitBool:
		return BoolVal(e.Bool)
	default:
		return NilVal{}
	}
}

func (i *Interpreter) evalVariable(e *ast.VariableExpr) (Value, error) {
	val, ok := i.env.Get(e.Name)
	if !ok {
		return nil, runtimeErr(NameError, e.GetSpan(), "undefined variable '%s'", e.Name)
	}
	return val, nil
}

func (i *Interpreter) evalAssign(e *ast.AssignExpr) (Value, error) {
	val, err := i.evalExpr(e.Value)
	if err != nil {
		return nil, err
	}
	if !i.env.Assign(e.Name, val) {
		return nil, runtimeErr(NameError, e.GetSpan(), "undefined variable '%s'", e.Name)
	}
	return val, nil
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr) (Value, error) {
	operand, err := i.evalExpr(e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.BANG:
		return BoolVal(!IsTruthy(operand)), nil
	case token.MINUS:
		num, ok := operand.(NumberVal)
		if !ok {
			return nil, runtimeErr(TypeError, e.GetSpan(),
				"operand of '-' must be a number, got %s", operand.TypeName())
		}
		return NumberVal(-float64(num)), nil
	default:
		return nil, runtimeErr(TypeError, e.GetSpan(), "unknown unary operator: %s", e.Op)
	}
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}

	// Equality works across all types; mixed kinds are simply unequal.
	if e.Op == token.EQ {
		return BoolVal(valuesEqual(left, right)), nil
	}
	if e.Op == token.NEQ {
		return BoolVal(!valuesEqual(left, right)), nil
	}

	// '+' concatenates when either operand is a string, converting the
	// other to its display form.
	if e.Op == token.PLUS {
		_, leftIsStr := left.(StringVal)
		_, rightIsStr := right.(StringVal)
		if leftIsStr || rightIsStr {
			return StringVal(left.String() + right.String()), nil
		}
	}

	leftN, leftOk := left.(NumberVal)
	rightN, rightOk := right.(NumberVal)
	if !leftOk || !rightOk {
		return nil, runtimeErr(TypeError, e.GetSpan(),
			"operands of '%s' must be numbers, got %s and %s", e.Op, left.TypeName(), right.TypeName())
	}
	leftF, rightF := float64(leftN), float64(rightN)

	switch e.Op {
	case token.PLUS:
		return NumberVal(leftF + rightF), nil
	case token.MINUS:
		return NumberVal(leftF - rightF), nil
	case token.STAR:
		return NumberVal(leftF * rightF), nil
	case token.SLASH:
		if rightF == 0 {
			return nil, runtimeErr(TypeError, e.GetSpan(), "division by zero")
		}
		return NumberVal(leftF / rightF), nil
	case token.LT:
		return BoolVal(leftF < rightF), nil
	case token.LTE:
		return BoolVal(leftF <= rightF), nil
	case token.GT:
		return BoolVal(leftF > rightF), nil
	case token.GTE:
		return BoolVal(leftF >= rightF), nil
	default:
		return nil, runtimeErr(TypeError, e.GetSpan(), "unknown binary operator: %s", e.Op)
	}
}

// evalLogical implements 'and'/'or'. The result is one of the operand
// values, not a coerced boolean.
func (i *Interpreter) evalLogical(e *ast.LogicalExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Op == token.KW_OR {
		if IsTruthy(left) {
			return left, nil // short-circuit
		}
		return i.evalExpr(e.Right)
	}
	// and
	if !IsTruthy(left) {
		return left, nil // short-circuit
	}
	return i.evalExpr(e.Right)
}

func (i *Interpreter) evalCall(e *ast.CallExpr) (Value, error) {
	callee, err := i.evalExpr(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, len(e.Args))
	for idx, argExpr := range e.Args {
		val, err := i.evalExpr(argExpr)
		if err != nil {
			return nil, err
		}
		args[idx] = val
	}

	switch fn := callee.(type) {
	case *FuncVal:
		return i.callFunc(fn, args, e.GetSpan())
	case *BuiltinVal:
		if len(args) != fn.Arity {
			return nil, runtimeErr(ArityError, e.GetSpan(),
				"%s() expects %d arguments, got %d", fn.Name, fn.Arity, len(args))
		}
		return fn.Fn(args)
	default:
		return nil, runtimeErr(NotCallableError, e.GetSpan(),
			"cannot call value of type '%s'", callee.TypeName())
	}
}

func (i *Interpreter) callFunc(fn *FuncVal, args []Value, s span.Span) (Value, error) {
	if len(args) != len(fn.Params) {
		return nil, runtimeErr(ArityError, s,
			"%s() expects %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}

	// The call scope chains to the closure environment, not the caller's.
	funcEnv := NewEnvironment(fn.Closure)
	for idx, param := range fn.Params {
		funcEnv.Define(param, args[idx])
	}

	result, err := i.execBlock(fn.Body, funcEnv)
	if err != nil {
		return nil, err
	}

	if result.Signal == SigReturn {
		return result.Value, nil
	}
	return NilVal{}, nil
}
