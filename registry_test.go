package calc_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/zephyrtronium/calc"
)

func TestRegistryDefine(t *testing.T) {
	cases := []struct {
		name string
		fn   string
		def  calc.CustomFunction
		err  error
	}{
		{"ok", "f", calc.CustomFunction{Parameters: []string{"x"}, Expression: "x*2"}, nil},
		{"no-params", "answer", calc.CustomFunction{Expression: "42"}, nil},
		{"two-params", "hyp", calc.CustomFunction{Parameters: []string{"a", "b"}, Expression: "sqrt(a^2 + b^2)"}, nil},
		{"recursive", "r", calc.CustomFunction{Parameters: []string{"x"}, Expression: "r(x) + 1"}, nil},
		{"builtin", "sin", calc.CustomFunction{Parameters: []string{"x"}, Expression: "x"}, calc.ErrInvalidName},
		{"constant", "pi", calc.CustomFunction{Expression: "3"}, calc.ErrInvalidName},
		{"bad-name", "2f", calc.CustomFunction{Expression: "1"}, calc.ErrInvalidName},
		{"empty-name", "", calc.CustomFunction{Expression: "1"}, calc.ErrInvalidName},
		{"bad-param", "f", calc.CustomFunction{Parameters: []string{"x y"}, Expression: "1"}, calc.ErrInvalidName},
		{"const-param", "f", calc.CustomFunction{Parameters: []string{"e"}, Expression: "e"}, calc.ErrInvalidName},
		{"dup-param", "f", calc.CustomFunction{Parameters: []string{"x", "x"}, Expression: "x"}, calc.ErrDuplicateParameter},
		{"empty-body", "f", calc.CustomFunction{Parameters: []string{"x"}, Expression: "  "}, calc.ErrInvalidDefinition},
		{"unknown-name", "f", calc.CustomFunction{Parameters: []string{"x"}, Expression: "x + y"}, calc.ErrUnknownIdentifier},
		{"bad-char", "f", calc.CustomFunction{Parameters: []string{"x"}, Expression: "x $ 1"}, calc.ErrUnexpectedCharacter},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			reg := calc.NewRegistry()
			err := reg.Define(c.fn, c.def)
			if !errors.Is(err, c.err) {
				t.Fatalf("wrong error: want %v, got %v", c.err, err)
			}
			if err != nil {
				var derr *calc.DefinitionError
				if !errors.As(err, &derr) {
					t.Errorf("%#v is not a *DefinitionError", err)
				}
				if reg.Len() != 0 {
					t.Errorf("failed definition left %d functions", reg.Len())
				}
				return
			}
			fn, ok := reg.Lookup(c.fn)
			if !ok {
				t.Fatalf("%s not defined", c.fn)
			}
			if !reflect.DeepEqual(fn, c.def) {
				t.Errorf("wrong definition: want %+v, got %+v", c.def, fn)
			}
		})
	}
}

func TestRegistryRedefine(t *testing.T) {
	reg := calc.NewRegistry()
	if err := reg.Define("f", calc.CustomFunction{Parameters: []string{"x"}, Expression: "x*2"}); err != nil {
		t.Fatal(err)
	}
	err := reg.Define("f", calc.CustomFunction{Parameters: []string{"x"}, Expression: "x*3"})
	if !errors.Is(err, calc.ErrFunctionExists) {
		t.Errorf("redefining should fail with ErrFunctionExists, got %v", err)
	}
	if calc.Category(err) != calc.CategoryDefinition {
		t.Errorf("wrong category %v", calc.Category(err))
	}
	fn, _ := reg.Lookup("f")
	if fn.Expression != "x*2" {
		t.Errorf("redefinition changed the body to %q", fn.Expression)
	}
	if !reg.Remove("f") {
		t.Error("couldn't remove f")
	}
	if reg.Remove("f") {
		t.Error("removed f twice")
	}
	if err := reg.Define("f", calc.CustomFunction{Parameters: []string{"x"}, Expression: "x*3"}); err != nil {
		t.Errorf("couldn't define f after removing it: %v", err)
	}
}

func TestRegistryIsolation(t *testing.T) {
	reg := calc.NewRegistry()
	def := calc.CustomFunction{Parameters: []string{"x", "y"}, Expression: "x+y"}
	if err := reg.Define("add", def); err != nil {
		t.Fatal(err)
	}
	def.Parameters[0] = "z"
	fn, _ := reg.Lookup("add")
	if fn.Parameters[0] != "x" {
		t.Errorf("registry shares parameters with the caller's definition")
	}
	fn.Parameters[1] = "z"
	again, _ := reg.Lookup("add")
	if again.Parameters[1] != "y" {
		t.Errorf("registry shares parameters with lookups")
	}
	snap := reg.Snapshot()
	snap["add"].Parameters[0] = "q"
	delete(snap, "add")
	fn, ok := reg.Lookup("add")
	if !ok {
		t.Fatalf("deleting from a snapshot removed the function")
	}
	if fn.Parameters[0] != "x" {
		t.Errorf("registry shares parameters with snapshots")
	}
}

func TestRegistryZeroValue(t *testing.T) {
	var reg calc.Registry
	if _, ok := reg.Lookup("f"); ok {
		t.Error("empty registry has f")
	}
	if err := reg.Define("f", calc.CustomFunction{Expression: "1"}); err != nil {
		t.Fatal(err)
	}
	if reg.Len() != 1 {
		t.Errorf("wrong length %d", reg.Len())
	}
}

func TestRegistryList(t *testing.T) {
	reg := calc.NewRegistry()
	defs := map[string]calc.CustomFunction{
		"sq":  {Parameters: []string{"x"}, Expression: "x*x"},
		"avg": {Parameters: []string{"a", "b"}, Expression: "(a+b)/2"},
		"one": {Expression: "1"},
	}
	if err := reg.Replace(defs); err != nil {
		t.Fatal(err)
	}
	l := reg.List()
	var names, strs []string
	for _, f := range l {
		names = append(names, f.Name)
		strs = append(strs, f.String())
	}
	if want := []string{"avg", "one", "sq"}; !reflect.DeepEqual(names, want) {
		t.Errorf("wrong order: want %q, got %q", want, names)
	}
	want := []string{"avg(a, b) = (a+b)/2", "one() = 1", "sq(x) = x*x"}
	if !reflect.DeepEqual(strs, want) {
		t.Errorf("wrong strings:\n\twant %q\n\tgot  %q", want, strs)
	}
}

func TestRegistryReplace(t *testing.T) {
	reg := calc.NewRegistry()
	if err := reg.Define("keep", calc.CustomFunction{Expression: "1"}); err != nil {
		t.Fatal(err)
	}
	bad := map[string]calc.CustomFunction{
		"good": {Expression: "2"},
		"cos":  {Expression: "3"},
	}
	if err := reg.Replace(bad); !errors.Is(err, calc.ErrInvalidName) {
		t.Errorf("replacing with a built-in name should fail, got %v", err)
	}
	if _, ok := reg.Lookup("keep"); !ok || reg.Len() != 1 {
		t.Errorf("failed replace changed the registry")
	}
	if err := reg.Replace(map[string]calc.CustomFunction{"good": {Expression: "2"}}); err != nil {
		t.Fatal(err)
	}
	if _, ok := reg.Lookup("keep"); ok {
		t.Errorf("replace kept old function")
	}
	if _, ok := reg.Lookup("good"); !ok {
		t.Errorf("replace didn't add new function")
	}
}

func TestParseDefinition(t *testing.T) {
	cases := []struct {
		name string
		src  string
		fn   string
		def  calc.CustomFunction
		err  error
	}{
		{"one", "f(x) = x*2", "f", calc.CustomFunction{Parameters: []string{"x"}, Expression: "x*2"}, nil},
		{"two", "  add ( a , b )=a + b  ", "add", calc.CustomFunction{Parameters: []string{"a", "b"}, Expression: "a + b"}, nil},
		{"none", "answer() = 42", "answer", calc.CustomFunction{Expression: "42"}, nil},
		{"body-parens", "g(x) = (x+1)*(x-1)", "g", calc.CustomFunction{Parameters: []string{"x"}, Expression: "(x+1)*(x-1)"}, nil},
		{"no-equals", "f(x) x*2", "", calc.CustomFunction{}, calc.ErrInvalidDefinition},
		{"no-body", "f(x) =", "", calc.CustomFunction{}, calc.ErrInvalidDefinition},
		{"no-parens", "f = 2", "", calc.CustomFunction{}, calc.ErrInvalidDefinition},
		{"nested-params", "f((x)) = x", "", calc.CustomFunction{}, calc.ErrInvalidDefinition},
		{"dup", "f(x, x) = x", "", calc.CustomFunction{}, calc.ErrDuplicateParameter},
		{"empty-param", "f(x,) = x", "", calc.CustomFunction{}, calc.ErrInvalidName},
		{"builtin", "log(x) = x", "", calc.CustomFunction{}, calc.ErrInvalidName},
		{"unknown", "f(x) = y", "", calc.CustomFunction{}, calc.ErrUnknownIdentifier},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			fn, def, err := calc.ParseDefinition(c.src)
			if !errors.Is(err, c.err) {
				t.Fatalf("wrong error: want %v, got %v", c.err, err)
			}
			if fn != c.fn {
				t.Errorf("wrong name: want %q, got %q", c.fn, fn)
			}
			if !reflect.DeepEqual(def, c.def) {
				t.Errorf("wrong definition: want %+v, got %+v", c.def, def)
			}
		})
	}
}

func TestDefinitionErrorMessage(t *testing.T) {
	_, _, err := calc.ParseDefinition("f(x, x) = x")
	want := "function definition failed for f (parameter x): parameter names must be unique"
	if err == nil || err.Error() != want {
		t.Errorf("wrong message: want %q, got %v", want, err)
	}
}
