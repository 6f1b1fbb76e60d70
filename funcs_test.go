package calc_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/zephyrtronium/calc"
)

func near(a, b float64) bool {
	return math.Abs(a-b) <= 1e-12*math.Max(1, math.Abs(b))
}

func TestBuiltins(t *testing.T) {
	cases := []struct {
		name string
		src  string
		r    float64
	}{
		{"sin", "sin(pi/6)", 0.5},
		{"sin-pi", "sin(pi)", 0},
		{"cos", "cos(0)", 1},
		{"cos-half-pi", "cos(pi/2)", 0},
		{"tan", "tan(pi/4)", 1},
		{"tan-zero", "tan(0)", 0},
		{"arcsin", "arcsin(1)", math.Pi / 2},
		{"arccos", "arccos(1)", 0},
		{"arctan", "arctan(1)", math.Pi / 4},
		{"exp", "exp(1)", math.E},
		{"exp-zero", "exp(0)", 1},
		{"sqrt", "sqrt(16)", 4},
		{"abs", "abs(-3)", 3},
		{"ln", "ln(e)", 1},
		{"log", "log(e^2)", 2},
		{"log-base", "log(8, 2)", 3},
		{"log-base-10", "log(1000, 10)", 3},
		{"fact", "fact(5)", 120},
		{"fact-zero", "fact(0)", 1},
		{"factorial", "factorial(20)", 2432902008176640000},
		{"comb", "comb(5, 2)", 10},
		{"comb-cards", "comb(52, 5)", 2598960},
		{"comb-all", "comb(7, 7)", 1},
		{"comb-none", "comb(7, 0)", 1},
		{"comb-big", "comb(60, 30)", 118264581564861424},
		{"perm", "perm(5, 2)", 20},
		{"perm-all", "perm(5, 5)", 120},
		{"perm-none", "perm(5, 0)", 1},
		{"nested", "fact(comb(4, 2))", 720},
		{"arg-expr", "comb(2+3, 4-2)", 10},
		{"space-before-args", "fact (3)", 6},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := calc.EvalString(c.src)
			if err != nil {
				t.Fatalf("%q failed: %v", c.src, err)
			}
			if !near(r, c.r) {
				t.Errorf("%q gave wrong result: want %g, got %g", c.src, c.r, r)
			}
		})
	}
}

func TestBuiltinErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  error
	}{
		{"sin-none", "sin()", calc.ErrWrongArgumentCount},
		{"sin-two", "sin(1, 2)", calc.ErrWrongArgumentCount},
		{"log-three", "log(1, 2, 3)", calc.ErrWrongArgumentCount},
		{"comb-one", "comb(5)", calc.ErrWrongArgumentCount},
		{"arcsin", "arcsin(2)", calc.ErrArgumentDomain},
		{"arccos", "arccos(-2)", calc.ErrArgumentDomain},
		{"sqrt", "sqrt(-1)", calc.ErrArgumentDomain},
		{"exp-overflow", "exp(1000)", calc.ErrArgumentDomain},
		{"log-zero", "log(0)", calc.ErrArgumentDomain},
		{"log-neg", "log(-1)", calc.ErrArgumentDomain},
		{"log-base-one", "log(8, 1)", calc.ErrArgumentDomain},
		{"log-base-neg", "log(8, -2)", calc.ErrArgumentDomain},
		{"fact-neg", "fact(-1)", calc.ErrArgumentDomain},
		{"fact-frac", "fact(2.5)", calc.ErrArgumentDomain},
		{"fact-overflow", "fact(21)", calc.ErrFactorialOverflow},
		{"fact-huge", "fact(10^20)", calc.ErrFactorialOverflow},
		{"fact-inf", "fact(10^400)", calc.ErrArgumentDomain},
		{"comb-k-gt-n", "comb(2, 5)", calc.ErrArgumentDomain},
		{"comb-neg", "comb(-1, 0)", calc.ErrArgumentDomain},
		{"comb-overflow", "comb(1000, 500)", calc.ErrCombinationOverflow},
		{"perm-overflow", "perm(100, 50)", calc.ErrCombinationOverflow},
		{"perm-frac", "perm(5, 1.5)", calc.ErrArgumentDomain},
		{"arg-error", "sin(1/0)", calc.ErrDivisionByZero},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := calc.EvalString(c.src)
			if err == nil {
				t.Fatalf("%q gave %g with no error", c.src, r)
			}
			if !errors.Is(err, c.err) {
				t.Errorf("%q gave wrong error: want %v, got %v", c.src, c.err, err)
			}
		})
	}
}

func TestDomainErrorDetails(t *testing.T) {
	cases := []struct {
		src  string
		x    float64
		arg  int
		name string
	}{
		{"log(-1)", -1, 1, "log"},
		{"log(8, 1)", 1, 2, "log"},
		{"fact(-3)", -3, 1, "fact"},
		{"factorial(0.5)", 0.5, 1, "factorial"},
		{"comb(2, 5)", 5, 2, "comb"},
		{"arcsin(2)", 2, 1, "arcsin"},
	}
	for _, c := range cases {
		_, err := calc.EvalString(c.src)
		var derr *calc.DomainError
		if !errors.As(err, &derr) {
			t.Errorf("%q: %#v is not a *DomainError", c.src, err)
			continue
		}
		want := calc.DomainError{X: c.x, Arg: c.arg, Func: c.name}
		if *derr != want {
			t.Errorf("%q: wrong error details: want %+v, got %+v", c.src, want, *derr)
		}
	}
}

func TestArgumentErrorDetails(t *testing.T) {
	_, err := calc.EvalString("fact(25)")
	var aerr *calc.ArgumentError
	if !errors.As(err, &aerr) {
		t.Fatalf("%#v is not an *ArgumentError", err)
	}
	if aerr.Func != "fact" || aerr.Err != calc.ErrFactorialOverflow {
		t.Errorf("wrong error details: %+v", *aerr)
	}
}

func TestCallErrorDetails(t *testing.T) {
	_, err := calc.EvalString("perm(1, 2, 3)")
	var cerr *calc.CallError
	if !errors.As(err, &cerr) {
		t.Fatalf("%#v is not a *CallError", err)
	}
	want := calc.CallError{Func: "perm", Len: 3, Want: -1}
	if *cerr != want {
		t.Errorf("wrong error details: want %+v, got %+v", want, *cerr)
	}
}

func TestStrictArguments(t *testing.T) {
	cc := calc.New(nil, calc.StrictArguments())
	cases := []struct {
		src string
		r   float64
		err error
	}{
		{"sin(0)", 0, nil},
		{"sin(pi)", 0, nil},
		{"comb(5, 2)", 10, nil},
		{"fact(4) + 1", 25, nil},
		{"sin(1+1)", 0, calc.ErrNonNumericArgument},
		{"sin(-1)", 0, calc.ErrNonNumericArgument},
		{"fact(fact(3))", 0, calc.ErrNonNumericArgument},
		{"comb(5, (2))", 0, calc.ErrNonNumericArgument},
	}
	for _, c := range cases {
		r, err := cc.Eval(c.src)
		if !errors.Is(err, c.err) {
			t.Errorf("%q gave wrong error: want %v, got %v", c.src, c.err, err)
		}
		if r != c.r {
			t.Errorf("%q gave wrong result: want %g, got %g", c.src, c.r, r)
		}
	}
	_, err := cc.Eval("comb(5, 1+1)")
	var aerr *calc.ArgumentError
	if !errors.As(err, &aerr) {
		t.Fatalf("%#v is not an *ArgumentError", err)
	}
	if aerr.Func != "comb" || aerr.Arg != 2 {
		t.Errorf("wrong error details: %+v", *aerr)
	}
}

func TestSnapThreshold(t *testing.T) {
	r, err := calc.New(nil, calc.SnapThreshold(0)).Eval("sin(pi)")
	if err != nil {
		t.Fatal(err)
	}
	if r == 0 || math.Abs(r) > 1e-15 {
		t.Errorf("sin(pi) without snapping should be tiny but nonzero, got %g", r)
	}
	r, err = calc.New(nil, calc.SnapThreshold(0.5)).Eval("sin(0.25)")
	if err != nil {
		t.Fatal(err)
	}
	if r != 0 {
		t.Errorf("sin(0.25) with a large threshold should be 0, got %g", r)
	}
	// Only function results snap.
	r, err = calc.EvalString("1/10^9")
	if err != nil {
		t.Fatal(err)
	}
	if r != 1e-9 {
		t.Errorf("1/10^9 should not snap, got %g", r)
	}
}

func TestIsBuiltin(t *testing.T) {
	for _, name := range []string{"sin", "log", "fact", "factorial", "comb", "perm", "pi", "PI", "e"} {
		if !calc.IsBuiltin(name) {
			t.Errorf("%q should be built in", name)
		}
	}
	for _, name := range []string{"f", "Sin", "x", ""} {
		if calc.IsBuiltin(name) {
			t.Errorf("%q should not be built in", name)
		}
	}
}

func TestBuiltinNames(t *testing.T) {
	want := []string{
		"abs", "arccos", "arcsin", "arctan", "comb", "cos", "exp", "fact",
		"factorial", "ln", "log", "perm", "sin", "sqrt", "tan",
	}
	if got := calc.BuiltinNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("wrong names:\n\twant %q\n\tgot  %q", want, got)
	}
}
