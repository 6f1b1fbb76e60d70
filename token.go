package calc

import (
	"strconv"
	"strings"
)

// Token is a single lexical unit of an expression. The Kind field decides
// which of the other fields are meaningful.
type Token struct {
	Kind Kind
	// Num is the value of a Number token.
	Num float64
	// Name is the function name of a FunctionCall token.
	Name string
	// Args holds one token sequence per argument of a FunctionCall token.
	Args [][]Token
}

// Kind is the type of a token.
type Kind int8

const (
	None Kind = iota

	Number       // Num
	Add          // +
	Subtract     // binary -
	Multiply     // *
	Divide       // /
	Modulo       // %
	Power        // ^
	LeftParen    // (
	RightParen   // )
	UnaryMinus   // unary -
	FunctionCall // Name(Args...)
)

var kindNames = [...]string{
	None:         "None",
	Number:       "Number",
	Add:          "Add",
	Subtract:     "Subtract",
	Multiply:     "Multiply",
	Divide:       "Divide",
	Modulo:       "Modulo",
	Power:        "Power",
	LeftParen:    "LeftParen",
	RightParen:   "RightParen",
	UnaryMinus:   "UnaryMinus",
	FunctionCall: "FunctionCall",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// symbol is the text of an operator or bracket kind.
func (k Kind) symbol() string {
	switch k {
	case Add:
		return "+"
	case Subtract, UnaryMinus:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	case Modulo:
		return "%"
	case Power:
		return "^"
	case LeftParen:
		return "("
	case RightParen:
		return ")"
	default:
		return ""
	}
}

// binary reports whether k is a binary operator.
func (k Kind) binary() bool {
	switch k {
	case Add, Subtract, Multiply, Divide, Modulo, Power:
		return true
	default:
		return false
	}
}

// product reports whether k binds at least as tightly as multiplication.
func (k Kind) product() bool {
	switch k {
	case Multiply, Divide, Modulo, Power:
		return true
	default:
		return false
	}
}

// Num creates a Number token.
func Num(x float64) Token {
	return Token{Kind: Number, Num: x}
}

// Op creates an operator or parenthesis token.
func Op(k Kind) Token {
	return Token{Kind: k}
}

// Call creates a FunctionCall token with one token sequence per argument.
func Call(name string, args ...[]Token) Token {
	return Token{Kind: FunctionCall, Name: name, Args: args}
}

// ArgTokens returns the concatenation of a call's argument sequences.
func (t Token) ArgTokens() []Token {
	var r []Token
	for _, a := range t.Args {
		r = append(r, a...)
	}
	return r
}

func (t Token) String() string {
	switch t.Kind {
	case Number:
		return "Number(" + fmtnum(t.Num) + ")"
	case FunctionCall:
		return "FunctionCall(" + t.Name + ", " + FormatTokens(t.ArgTokens()) + ")"
	default:
		return t.Kind.String()
	}
}

// FormatTokens writes a token sequence as expression text. Tokenizing the
// result gives back the same sequence.
func FormatTokens(toks []Token) string {
	var b strings.Builder
	fmttoks(&b, toks)
	return b.String()
}

func fmttoks(b *strings.Builder, toks []Token) {
	for i, t := range toks {
		switch t.Kind {
		case Number:
			if i > 0 && toks[i-1].Kind == Number {
				b.WriteByte(' ')
			}
			b.WriteString(fmtnum(t.Num))
		case FunctionCall:
			b.WriteString(t.Name)
			b.WriteByte('(')
			for j, a := range t.Args {
				if j > 0 {
					b.WriteString(", ")
				}
				fmttoks(b, a)
			}
			b.WriteByte(')')
		case UnaryMinus, LeftParen:
			b.WriteString(t.Kind.symbol())
		case RightParen:
			b.WriteByte(')')
		default:
			if t.Kind.binary() {
				if i > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(t.Kind.symbol())
				b.WriteByte(' ')
				continue
			}
			// Invalid tokens use invalid characters.
			b.WriteString("$" + t.Kind.String() + "$")
		}
	}
}

// fmtnum formats a number in plain decimal so that the tokenizer can read it
// back.
func fmtnum(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
