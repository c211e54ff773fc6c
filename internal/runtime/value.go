// Package runtime implements the interpreter and runtime value system
// for lox-lang.
package runtime

import (
	"fmt"
	"strconv"

	"lox-lang/internal/ast"
)

// Value is the interface for all runtime values.
type Value interface {
	TypeName() string
	String() string
}

// ---- Primitive values ----

// NumberVal represents a number. All numbers are 64-bit floats.
type NumberVal float64

func (v NumberVal) TypeName() string { return "number" }

// String formats the number without a trailing fractional part when the
// value is integral: 6, not 6.0. Non-integral values print the shortest
// decimal form that round-trips.
func (v NumberVal) String() string {
	return strconv.FormatFloat(float64(v), 'f', -1, 64)
}

// StringVal represents a string value.
type StringVal string

func (v StringVal) TypeName() string { return "string" }
func (v StringVal) String() string   { return string(v) }

// BoolVal represents a boolean value.
type BoolVal bool

func (v BoolVal) TypeName() string { return "bool" }
func (v BoolVal) String() string   { return fmt.Sprintf("%t", bool(v)) }

// NilVal represents nil.
type NilVal struct{}

func (v NilVal) TypeName() string { return "nil" }
func (v NilVal) String() string   { return "nil" }

// ---- Callable values ----

// FuncVal represents a user-defined function. It captures the
// environment where the declaration executed, so the body sees the
// surrounding scope even after it has gone out of lexical reach.
type FuncVal struct {
	Name    string
	Params  []string
	Body    []ast.Stmt
	Closure *Environment
}

func (v *FuncVal) TypeName() string { return "function" }
func (v *FuncVal) String() string   { return fmt.Sprintf("<fn %s>", v.Name) }

// BuiltinFn is the Go signature for built-in functions.
type BuiltinFn func(args []Value) (Value, error)

// BuiltinVal represents a built-in (native) function.
type BuiltinVal struct {
	Name  string
	Arity int
	Fn    BuiltinFn
}

func (v *BuiltinVal) TypeName() string { return "function" }
func (v *BuiltinVal) String() string   { return fmt.Sprintf("<native fn %s>", v.Name) }

// ---- Truthiness ----

// IsTruthy reports the truthiness of a value: only false and nil are
// falsy. 0 and "" are truthy.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case NilVal:
		return false
	case BoolVal:
		return bool(val)
	default:
		return true
	}
}

// ---- Equality ----

// valuesEqual implements ==. Values of different kinds are never equal;
// there is no numeric or string coercion. Functions compare by
// identity.
func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case NumberVal:
		if bv, ok := b.(NumberVal); ok {
			return float64(av) == float64(bv)
		}
		return false
	case StringVal:
		if bv, ok := b.(StringVal); ok {
			return string(av) == string(bv)
		}
		return false
	case BoolVal:
		if bv, ok := b.(BoolVal); ok {
			return bool(av) == bool(bv)
		}
		return false
	case NilVal:
		_, ok := b.(NilVal)
		return ok
	default:
		// Reference identity for callables.
		return a == b
	}
}
