package calc

import (
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"
)

type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	col  int
	toks []Token
	// bind maps parameter names to the tokens that replace them while lexing
	// the body of a custom function.
	bind map[string][]Token
}

// lex creates a lexer over src. col is the number of runes that precede src
// in the original input, so that errors in argument lists report columns of
// the whole expression.
func lex(src string, col int, bind map[string][]Token) *lexer {
	return &lexer{
		src:  strings.NewReader(src),
		col:  col,
		bind: bind,
	}
}

// Tokenize converts an expression to a token sequence using the default
// calculator.
func Tokenize(src string) ([]Token, error) {
	return lex(src, 0, nil).run()
}

// readRune reads a rune from the src and updates the lexer's position info.
func (l *lexer) readRune() (r rune, err error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.col++
	}
	return r, err
}

// unreadRune unreads a rune from the src and updates the lexer's position
// info. Panics if unreading returns an error.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.col--
}

// run scans tokens until the end of the input.
func (l *lexer) run() ([]Token, error) {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return l.toks, nil
			}
			return nil, err
		}
		col := l.col
		switch {
		case unicode.IsSpace(r):
			continue
		case '0' <= r && r <= '9', r == '.':
			l.unreadRune()
			x, err := l.scanNum()
			if err != nil {
				return nil, err
			}
			l.toks = append(l.toks, Num(x))
		case r == '_', unicode.IsLetter(r):
			l.unreadRune()
			if err := l.ident(l.scanIdent(), col); err != nil {
				return nil, err
			}
		case r == '-':
			if l.unary() {
				l.toks = append(l.toks, Op(UnaryMinus))
			} else {
				l.toks = append(l.toks, Op(Subtract))
			}
		case r == '+':
			l.toks = append(l.toks, Op(Add))
		case r == '*':
			l.toks = append(l.toks, Op(Multiply))
		case r == '/':
			l.toks = append(l.toks, Op(Divide))
		case r == '%':
			l.toks = append(l.toks, Op(Modulo))
		case r == '^':
			l.toks = append(l.toks, Op(Power))
		case r == '(':
			l.toks = append(l.toks, Op(LeftParen))
		case r == ')':
			l.toks = append(l.toks, Op(RightParen))
		default:
			return nil, &LexError{Err: ErrUnexpectedCharacter, Text: string(r), Col: col}
		}
	}
}

// unary reports whether a minus sign at the current position negates rather
// than subtracts.
func (l *lexer) unary() bool {
	if len(l.toks) == 0 {
		return true
	}
	switch l.toks[len(l.toks)-1].Kind {
	case Add, Subtract, Multiply, Divide, Modulo, Power, LeftParen, UnaryMinus:
		return true
	default:
		return false
	}
}

// scanNum scans a run of digits and decimal points.
func (l *lexer) scanNum() (float64, error) {
	defer l.buf.Reset()
	col := l.col + 1
	var dig bool
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		if r != '.' && (r < '0' || r > '9') {
			l.unreadRune()
			break
		}
		l.buf.WriteRune(r)
		if r != '.' {
			dig = true
		}
	}
	text := l.buf.String()
	if !dig || strings.Count(text, ".") > 1 {
		return 0, &LexError{Err: ErrInvalidNumber, Text: text, Col: col}
	}
	x, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(x, 0) {
		return 0, &LexError{Err: ErrInvalidNumber, Text: text, Col: col}
	}
	return x, nil
}

// scanIdent scans a name. The first rune is known to be a letter or
// underscore.
func (l *lexer) scanIdent() string {
	defer l.buf.Reset()
	for {
		r, err := l.readRune()
		if err != nil {
			// Only EOF is possible from a strings.Reader.
			return l.buf.String()
		}
		switch {
		case r == '_', unicode.IsLetter(r), unicode.IsDigit(r):
			l.buf.WriteRune(r)
		default:
			l.unreadRune()
			return l.buf.String()
		}
	}
}

// ident emits the tokens for a name that starts at column col.
func (l *lexer) ident(name string, col int) error {
	if x, ok := constant(name); ok {
		l.toks = append(l.toks, Num(x))
		return nil
	}
	if b, ok := l.bind[name]; ok {
		l.toks = append(l.toks, Op(LeftParen))
		l.toks = append(l.toks, b...)
		l.toks = append(l.toks, Op(RightParen))
		return nil
	}
	// A name must be a call. Blanks may separate it from its arguments.
	for {
		r, err := l.readRune()
		if err != nil {
			return &LexError{Err: ErrUnknownIdentifier, Text: name, Col: col}
		}
		if unicode.IsSpace(r) {
			continue
		}
		if r != '(' {
			l.unreadRune()
			return &LexError{Err: ErrUnknownIdentifier, Text: name, Col: col}
		}
		break
	}
	args, err := l.scanArgs(name, col)
	if err != nil {
		return err
	}
	l.toks = append(l.toks, Call(name, args...))
	return nil
}

// scanArgs scans a comma-separated argument list after its open paren and
// tokenizes each argument. Commas inside nested parentheses belong to the
// argument. Blank arguments are dropped.
func (l *lexer) scanArgs(name string, col int) ([][]Token, error) {
	var args [][]Token
	var arg strings.Builder
	start := l.col
	depth := 1
	finish := func() error {
		s := arg.String()
		arg.Reset()
		if strings.TrimSpace(s) == "" {
			return nil
		}
		toks, err := lex(s, start, l.bind).run()
		if err != nil {
			return err
		}
		args = append(args, toks)
		return nil
	}
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, &LexError{Err: ErrUnclosedArguments, Text: name + "(", Col: col}
			}
			return nil, err
		}
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				if err := finish(); err != nil {
					return nil, err
				}
				return args, nil
			}
		case ',':
			if depth == 1 {
				if err := finish(); err != nil {
					return nil, err
				}
				start = l.col
				continue
			}
		}
		arg.WriteRune(r)
	}
}

// constant returns the value of a named constant. Constant names are not case
// sensitive.
func constant(name string) (float64, bool) {
	switch strings.ToLower(name) {
	case "pi":
		return math.Pi, true
	case "e":
		return math.E, true
	default:
		return 0, false
	}
}
