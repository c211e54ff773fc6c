package runtime

import "testing"

func TestNumberString(t *testing.T) {
	cases := []struct {
		val  float64
		want string
	}{
		{6, "6"},
		{6.02, "6.02"},
		{-0.5, "-0.5"},
		{0, "0"},
		{10.0 / 3.0, "3.3333333333333335"},
	}
	for _, c := range cases {
		if got := NumberVal(c.val).String(); got != c.want {
			t.Errorf("NumberVal(%v).String() = %q, want %q", c.val, got, c.want)
		}
	}
}

func TestIsTruthy(t *testing.T) {
	if IsTruthy(NilVal{}) || IsTruthy(BoolVal(false)) {
		t.Error("nil and false must be falsy")
	}
	if !IsTruthy(NumberVal(0)) || !IsTruthy(StringVal("")) || !IsTruthy(BoolVal(true)) {
		t.Error("0, \"\", and true must be truthy")
	}
}

func TestValuesEqualCrossKind(t *testing.T) {
	if valuesEqual(NumberVal(1), StringVal("1")) {
		t.Error("number and string must not compare equal")
	}
	if valuesEqual(NilVal{}, BoolVal(false)) {
		t.Error("nil and false must not compare equal")
	}
	if !valuesEqual(NilVal{}, NilVal{}) {
		t.Error("nil == nil")
	}
}

func TestFunctionIdentity(t *testing.T) {
	f := &FuncVal{Name: "f"}
	g := &FuncVal{Name: "f"}
	if !valuesEqual(f, f) {
		t.Error("a function equals itself")
	}
	if valuesEqual(f, g) {
		t.Error("distinct functions are not equal")
	}
}
