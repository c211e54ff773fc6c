package runtime

import (
	"bytes"
	"strings"
	"testing"

	"lox-lang/internal/lexer"
	"lox-lang/internal/parser"
)

// runSource parses and executes source code, returning captured output
// and any runtime error.
func runSource(t *testing.T, source string) (string, error) {
	t.Helper()
	l := lexer.New(source, "test.lox")
	tokens, lexDiags := l.Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("lex errors: %v", lexDiags)
	}
	p := parser.New(tokens)
	program, parseDiags := p.ParseProgram()
	if len(parseDiags) > 0 {
		t.Fatalf("parse errors: %v", parseDiags)
	}

	var buf bytes.Buffer
	interp := NewInterpreter(&buf)
	err := interp.Run(program)
	return buf.String(), err
}

func expectOutput(t *testing.T, source, expected string) {
	t.Helper()
	out, err := runSource(t, source)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if strings.TrimRight(out, "\n") != strings.TrimRight(expected, "\n") {
		t.Errorf("output mismatch:\nexpected: %q\ngot:      %q", expected, out)
	}
}

func expectError(t *testing.T, source string, kind ErrorKind, contains string) {
	t.Helper()
	_, err := runSource(t, source)
	if err == nil {
		t.Fatalf("expected %s containing %q, got nil", kind, contains)
	}
	rtErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if rtErr.Kind != kind {
		t.Errorf("expected %s, got %s: %v", kind, rtErr.Kind, rtErr)
	}
	if !strings.Contains(rtErr.Message, contains) {
		t.Errorf("expected message containing %q, got: %v", contains, rtErr)
	}
}

// ---- Printing and value display ----

func TestPrintNumber(t *testing.T) {
	expectOutput(t, `print 42;`, "42\n")
}

func TestPrintNumberNoTrailingZero(t *testing.T) {
	// Integral values print without a fractional part.
	expectOutput(t, `print 3 + 3;`, "6\n")
	expectOutput(t, `print 6.02;`, "6.02\n")
	expectOutput(t, `print 10 / 3;`, "3.3333333333333335\n")
}

func TestPrintString(t *testing.T) {
	expectOutput(t, `print "hello";`, "hello\n")
}

func TestPrintBoolAndNil(t *testing.T) {
	expectOutput(t, `print true;`, "true\n")
	expectOutput(t, `print false;`, "false\n")
	expectOutput(t, `print nil;`, "nil\n")
}

func TestPrintFunction(t *testing.T) {
	expectOutput(t, `
fun f() {}
print f;
`, "<fn f>\n")
}

// ---- Arithmetic ----

func TestArithmetic(t *testing.T) {
	expectOutput(t, `print 1 + 2 * 3;`, "7\n")
	expectOutput(t, `print (1 + 2) * 3;`, "9\n")
	expectOutput(t, `print 10 - 4 - 3;`, "3\n")
	expectOutput(t, `print -5;`, "-5\n")
}

func TestDivisionByZero(t *testing.T) {
	expectError(t, `print 1 / 0;`, TypeError, "division by zero")
}

func TestArithmeticTypeError(t *testing.T) {
	expectError(t, `print true * 2;`, TypeError, "must be numbers")
	expectError(t, `print -"x";`, TypeError, "must be a number")
}

// ---- String concatenation ----

func TestStringConcat(t *testing.T) {
	expectOutput(t, `print "hello" + " " + "world";`, "hello world\n")
}

func TestStringConcatCoercion(t *testing.T) {
	// '+' concatenates when either side is a string.
	expectOutput(t, `print "x" + 1;`, "x1\n")
	expectOutput(t, `print 1 + "x";`, "1x\n")
	expectOutput(t, `print "v=" + true;`, "v=true\n")
	expectOutput(t, `print "n=" + nil;`, "n=nil\n")
}

// ---- Comparison and equality ----

func TestComparison(t *testing.T) {
	expectOutput(t, `print 3 > 2;`, "true\n")
	expectOutput(t, `print 2 <= 2;`, "true\n")
	expectOutput(t, `print 1 >= 2;`, "false\n")
}

func TestComparisonTypeError(t *testing.T) {
	expectError(t, `print "a" < "b";`, TypeError, "must be numbers")
}

func TestEquality(t *testing.T) {
	expectOutput(t, `print 1 == 1;`, "true\n")
	expectOutput(t, `print 1 != 2;`, "true\n")
	expectOutput(t, `print "a" == "a";`, "true\n")
	expectOutput(t, `print nil == nil;`, "true\n")
}

func TestEqualityCrossKind(t *testing.T) {
	// Values of different kinds are never equal; no coercion.
	expectOutput(t, `print 1 == "1";`, "false\n")
	expectOutput(t, `print 0 == false;`, "false\n")
	expectOutput(t, `print nil == false;`, "false\n")
}

// ---- Truthiness ----

func TestTruthiness(t *testing.T) {
	// Only false and nil are falsy; 0 and "" are truthy.
	expectOutput(t, `if (0) print "yes"; else print "no";`, "yes\n")
	expectOutput(t, `if ("") print "yes"; else print "no";`, "yes\n")
	expectOutput(t, `if (nil) print "yes"; else print "no";`, "no\n")
	expectOutput(t, `if (false) print "yes"; else print "no";`, "no\n")
}

func TestBangOperator(t *testing.T) {
	expectOutput(t, `print !true;`, "false\n")
	expectOutput(t, `print !nil;`, "true\n")
	expectOutput(t, `print !0;`, "false\n")
}

// ---- Logical operators ----

func TestLogicalReturnsOperand(t *testing.T) {
	// 'and'/'or' yield one of the operand values, not a boolean.
	expectOutput(t, `print 1 and 2;`, "2\n")
	expectOutput(t, `print nil and 2;`, "nil\n")
	expectOutput(t, `print 1 or 2;`, "1\n")
	expectOutput(t, `print nil or 2;`, "2\n")
}

func TestLogicalShortCircuit(t *testing.T) {
	// The right operand is not evaluated when the left decides.
	expectOutput(t, `
var hit = false;
fun mark() { hit = true; return true; }
var r = false and mark();
print hit;
`, "false\n")
}

// ---- Variables and scoping ----

func TestVarDecl(t *testing.T) {
	expectOutput(t, `
var x = 10;
print x;
`, "10\n")
}

func TestVarDefaultNil(t *testing.T) {
	expectOutput(t, `
var x;
print x;
`, "nil\n")
}

func TestAssign(t *testing.T) {
	expectOutput(t, `
var x = 1;
x = 2;
print x;
`, "2\n")
}

func TestAssignEvaluatesToValue(t *testing.T) {
	expectOutput(t, `
var x = 1;
print x = 5;
`, "5\n")
}

func TestUndefinedVariable(t *testing.T) {
	expectError(t, `print y;`, NameError, "undefined variable 'y'")
}

func TestAssignUndefined(t *testing.T) {
	// Assignment never creates a binding.
	expectError(t, `y = 1;`, NameError, "undefined variable 'y'")
}

func TestBlockScoping(t *testing.T) {
	expectOutput(t, `
var x = "outer";
{
  var x = "inner";
  print x;
}
print x;
`, "inner\nouter\n")
}

func TestBlockScopeExpires(t *testing.T) {
	expectError(t, `
{
  var x = 1;
}
print x;
`, NameError, "undefined variable 'x'")
}

func TestShadowingAssignReachesOuter(t *testing.T) {
	expectOutput(t, `
var x = 1;
{
  x = 2;
}
print x;
`, "2\n")
}

// ---- Control flow ----

func TestIfElse(t *testing.T) {
	expectOutput(t, `
var x = 10;
if (x > 5) {
  print "big";
} else {
  print "small";
}
`, "big\n")
}

func TestWhileLoop(t *testing.T) {
	expectOutput(t, `
var i = 0;
var sum = 0;
while (i < 5) {
  sum = sum + i;
  i = i + 1;
}
print sum;
`, "10\n")
}

func TestForLoop(t *testing.T) {
	expectOutput(t, `
for (var i = 0; i < 3; i = i + 1) {
  print i;
}
`, "0\n1\n2\n")
}

func TestForLoopNoClauses(t *testing.T) {
	expectOutput(t, `
fun f() {
  var i = 0;
  for (;;) {
    if (i >= 2) return;
    print i;
    i = i + 1;
  }
}
f();
`, "0\n1\n")
}

// ---- Functions ----

func TestFunctionCall(t *testing.T) {
	expectOutput(t, `
fun add(a, b) {
  return a + b;
}
print add(3, 4);
`, "7\n")
}

func TestFunctionImplicitNil(t *testing.T) {
	expectOutput(t, `
fun noop() {}
print noop();
`, "nil\n")
}

func TestReturnNoValue(t *testing.T) {
	expectOutput(t, `
fun f() { return; }
print f();
`, "nil\n")
}

func TestReturnUnwindsLoop(t *testing.T) {
	expectOutput(t, `
fun firstOver(limit) {
  var i = 0;
  while (true) {
    if (i > limit) return i;
    i = i + 1;
  }
}
print firstOver(3);
`, "4\n")
}

func TestRecursion(t *testing.T) {
	expectOutput(t, `
fun fib(n) {
  if (n <= 1) return n;
  return fib(n - 1) + fib(n - 2);
}
print fib(10);
`, "55\n")
}

func TestArityError(t *testing.T) {
	expectError(t, `
fun f(a, b) { return a; }
f(1);
`, ArityError, "expects 2 arguments, got 1")
}

func TestNotCallable(t *testing.T) {
	expectError(t, `"hi"();`, NotCallableError, "cannot call value of type 'string'")
	expectError(t, `var x = 1; x();`, NotCallableError, "cannot call value of type 'number'")
}

func TestReturnOutsideFunction(t *testing.T) {
	_, err := runSource(t, `return 1;`)
	if err == nil {
		t.Fatal("expected error for top-level return")
	}
}

// ---- Closures ----

func TestClosure(t *testing.T) {
	expectOutput(t, `
fun makeCounter() {
  var count = 0;
  fun inc() {
    count = count + 1;
    return count;
  }
  return inc;
}
var counter = makeCounter();
print counter();
print counter();
print counter();
`, "1\n2\n3\n")
}

func TestClosuresIndependent(t *testing.T) {
	expectOutput(t, `
fun makeCounter() {
  var count = 0;
  fun inc() {
    count = count + 1;
    return count;
  }
  return inc;
}
var a = makeCounter();
var b = makeCounter();
print a();
print a();
print b();
`, "1\n2\n1\n")
}

func TestClosureCapturesDefiningScope(t *testing.T) {
	// The body sees the environment where the function was declared,
	// not the caller's.
	expectOutput(t, `
var x = "global";
fun show() { print x; }
fun caller() {
  var x = "local";
  show();
}
caller();
`, "global\n")
}

// ---- Builtins ----

func TestClockBuiltin(t *testing.T) {
	out, err := runSource(t, `print clock() >= 0;`)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if strings.TrimSpace(out) != "true" {
		t.Errorf("expected 'true', got %q", out)
	}
}

func TestClockArity(t *testing.T) {
	expectError(t, `clock(1);`, ArityError, "expects 0 arguments, got 1")
}

// ---- Error position reporting ----

func TestRuntimeErrorSpan(t *testing.T) {
	_, err := runSource(t, "var a = 1;\nprint b;")
	rtErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if rtErr.Span.Start.Line != 2 {
		t.Errorf("expected error on line 2, got line %d", rtErr.Span.Start.Line)
	}
}
