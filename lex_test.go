package calc

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	nums := func(xs ...float64) []Token {
		r := make([]Token, len(xs))
		for i, x := range xs {
			r[i] = Num(x)
		}
		return r
	}
	cases := []struct {
		name string
		src  string
		toks []Token
	}{
		// spaces
		{"empty", "", nil},
		{"blank", " \t \r\n ", nil},
		// numbers
		{"zero", "0", nums(0)},
		{"int", "9876543210", nums(9876543210)},
		{"dec", "3.25", nums(3.25)},
		{"lead-dot", ".5", nums(.5)},
		{"adjacent", "1 0", nums(1, 0)},
		// operators
		{"add", "1+2", []Token{Num(1), Op(Add), Num(2)}},
		{"sub", "2 - 3", []Token{Num(2), Op(Subtract), Num(3)}},
		{"mul", "2*3", []Token{Num(2), Op(Multiply), Num(3)}},
		{"div", "2/3", []Token{Num(2), Op(Divide), Num(3)}},
		{"mod", "2%3", []Token{Num(2), Op(Modulo), Num(3)}},
		{"pow", "2^3", []Token{Num(2), Op(Power), Num(3)}},
		{"parens", "(1)", []Token{Op(LeftParen), Num(1), Op(RightParen)}},
		{"sub-after-paren", "(1)-2", []Token{Op(LeftParen), Num(1), Op(RightParen), Op(Subtract), Num(2)}},
		// unary minus
		{"neg", "-5", []Token{Op(UnaryMinus), Num(5)}},
		{"neg-neg", "--5", []Token{Op(UnaryMinus), Op(UnaryMinus), Num(5)}},
		{"neg-group", "-(-5)", []Token{Op(UnaryMinus), Op(LeftParen), Op(UnaryMinus), Num(5), Op(RightParen)}},
		{"neg-after-op", "3 + -(-5 * 2)", []Token{
			Num(3), Op(Add), Op(UnaryMinus), Op(LeftParen), Op(UnaryMinus), Num(5), Op(Multiply), Num(2), Op(RightParen),
		}},
		{"neg-exp", "2^-1", []Token{Num(2), Op(Power), Op(UnaryMinus), Num(1)}},
		{"sub-neg", "1--1", []Token{Num(1), Op(Subtract), Op(UnaryMinus), Num(1)}},
		// constants
		{"pi", "pi", nums(math.Pi)},
		{"PI", "PI", nums(math.Pi)},
		{"e", "e", nums(math.E)},
		{"E", "E", nums(math.E)},
		{"const-expr", "2*pi", []Token{Num(2), Op(Multiply), Num(math.Pi)}},
		// calls
		{"call", "sin(0)", []Token{Call("sin", nums(0))}},
		{"call-space", "sin (0)", []Token{Call("sin", nums(0))}},
		{"call-expr", "sin(1+2)", []Token{Call("sin", []Token{Num(1), Op(Add), Num(2)})}},
		{"call-2", "log(8, 2)", []Token{Call("log", nums(8), nums(2))}},
		{"call-0", "f()", []Token{Call("f")}},
		{"call-blank", "f(1,,2)", []Token{Call("f", nums(1), nums(2))}},
		{"call-nested", "f(g(1, 2), 3)", []Token{Call("f", []Token{Call("g", nums(1), nums(2))}, nums(3))}},
		{"call-digits", "f2_x(1)", []Token{Call("f2_x", nums(1))}},
		{"call-unicode", "π(1)", []Token{Call("π", nums(1))}},
		{"call-neg", "-sin(0)", []Token{Op(UnaryMinus), Call("sin", nums(0))}},
		{"call-sub", "sin(0)-1", []Token{Call("sin", nums(0)), Op(Subtract), Num(1)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			toks, err := Tokenize(c.src)
			if err != nil {
				t.Fatalf("%q failed to tokenize: %v", c.src, err)
			}
			if !reflect.DeepEqual(toks, c.toks) {
				t.Errorf("%q gave wrong tokens:\n\twant %v\n\tgot  %v", c.src, c.toks, toks)
			}
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  error
		text string
		col  int
	}{
		{"char", "2 $ 3", ErrUnexpectedCharacter, "$", 3},
		{"comma", "1,2", ErrUnexpectedCharacter, ",", 2},
		{"bracket", "[1]", ErrUnexpectedCharacter, "[", 1},
		{"dots", "1.2.3", ErrInvalidNumber, "1.2.3", 1},
		{"dot", ".", ErrInvalidNumber, ".", 1},
		{"dot-late", "1 + .", ErrInvalidNumber, ".", 5},
		{"ident", "2 + x", ErrUnknownIdentifier, "x", 5},
		{"ident-op", "x+1", ErrUnknownIdentifier, "x", 1},
		{"unclosed", "sin(1", ErrUnclosedArguments, "sin(", 1},
		{"unclosed-nested", "1 + f(g(2)", ErrUnclosedArguments, "f(", 5},
		{"in-arg", "1 + sin(2 $)", ErrUnexpectedCharacter, "$", 11},
		{"in-second-arg", "f(1, y)", ErrUnknownIdentifier, "y", 6},
		{"nested-comma", "f((1, 2))", ErrUnexpectedCharacter, ",", 5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			toks, err := Tokenize(c.src)
			if err == nil {
				t.Fatalf("%q tokenized to %v with no error", c.src, toks)
			}
			if !errors.Is(err, c.err) {
				t.Errorf("%q gave wrong error: want %v, got %v", c.src, c.err, err)
			}
			var lerr *LexError
			if !errors.As(err, &lerr) {
				t.Fatalf("%#v is not a *LexError", err)
			}
			if lerr.Text != c.text {
				t.Errorf("%q error has wrong text: want %q, got %q", c.src, c.text, lerr.Text)
			}
			if lerr.Pos() != c.col {
				t.Errorf("%q error has wrong column: want %d, got %d", c.src, c.col, lerr.Pos())
			}
			if Category(err) != CategoryLexical {
				t.Errorf("%q error has category %v", c.src, Category(err))
			}
		})
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	srcs := []string{
		"1 + 2 * 3",
		"-(-5)",
		"comb(10, 3) - fact(4) % 5",
		"f(g(1, 2), h(3 ^ 4))",
	}
	for _, src := range srcs {
		a, err := Tokenize(src)
		if err != nil {
			t.Fatalf("%q failed to tokenize: %v", src, err)
		}
		b, err := Tokenize(src)
		if err != nil {
			t.Fatalf("%q failed to tokenize the second time: %v", src, err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%q tokenized differently:\n\t%v\n\t%v", src, a, b)
		}
	}
}

func TestFormatTokens(t *testing.T) {
	cases := []struct {
		src  string
		text string
	}{
		{"1+2", "1 + 2"},
		{"-(-5)", "-(-5)"},
		{"3 + -(-5 * 2)", "3 + -(-5 * 2)"},
		{"(1)-2", "(1) - 2"},
		{"2^-1", "2 ^ -1"},
		{"log(8,2)", "log(8, 2)"},
		{"f(g(1,2),3)", "f(g(1, 2), 3)"},
		{"pi", "3.141592653589793"},
		{"0.1*10", "0.1 * 10"},
		{"1 2", "1 2"},
		{"2 pi", "2 3.141592653589793"},
	}
	for _, c := range cases {
		toks, err := Tokenize(c.src)
		if err != nil {
			t.Fatalf("%q failed to tokenize: %v", c.src, err)
		}
		text := FormatTokens(toks)
		if text != c.text {
			t.Errorf("%q formatted wrong: want %q, got %q", c.src, c.text, text)
		}
		again, err := Tokenize(text)
		if err != nil {
			t.Fatalf("formatted %q failed to tokenize: %v", text, err)
		}
		if !reflect.DeepEqual(toks, again) {
			t.Errorf("%q did not survive formatting:\n\twant %v\n\tgot  %v", c.src, toks, again)
		}
	}
}

func TestTokenString(t *testing.T) {
	cases := []struct {
		tok  Token
		want string
	}{
		{Num(1.5), "Number(1.5)"},
		{Op(Add), "Add"},
		{Op(UnaryMinus), "UnaryMinus"},
		{Call("sin", []Token{Num(1), Op(Add), Num(2)}), "FunctionCall(sin, 1 + 2)"},
		{Token{Kind: 100}, "Kind(100)"},
	}
	for _, c := range cases {
		if got := c.tok.String(); got != c.want {
			t.Errorf("wrong string for %#v: want %q, got %q", c.tok, c.want, got)
		}
	}
}
