package calc

import (
	"errors"
	"math"
)

// Calculator tokenizes and evaluates expressions. A Calculator is immutable
// after creation and is safe to use concurrently, provided its Functions are.
type Calculator struct {
	fns    Functions
	funcs  map[string]Func
	ops    OperatorSet
	strict bool
	snap   float64
	limit  int
}

// DefaultSnapThreshold is the magnitude below which built-in function results
// become exactly zero, so that e.g. sin(pi) is 0.
const DefaultSnapThreshold = 1e-8

// DefaultExpansionLimit is the default bound on custom function nesting.
const DefaultExpansionLimit = 20

// New creates a calculator that resolves custom function calls with fns. If
// fns is nil, only built-in functions are available.
func New(fns Functions, opts ...Option) *Calculator {
	if fns == nil {
		fns = noFunctions{}
	}
	c := Calculator{
		fns:   fns,
		ops:   AllOperators,
		snap:  DefaultSnapThreshold,
		limit: DefaultExpansionLimit,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(&c)
	}
	return &c
}

var std = New(nil)

// Evaluate reduces a token sequence to its value using the default
// calculator.
func Evaluate(tokens []Token) (float64, error) {
	return std.Evaluate(tokens)
}

// EvalString is a shortcut to tokenize and evaluate an expression with the
// default calculator.
func EvalString(src string) (float64, error) {
	return std.Eval(src)
}

// Tokenize converts an expression to a token sequence.
func (c *Calculator) Tokenize(src string) ([]Token, error) {
	return Tokenize(src)
}

// Evaluate reduces a token sequence to its value.
func (c *Calculator) Evaluate(tokens []Token) (float64, error) {
	return c.eval(tokens, 0)
}

// Eval tokenizes and evaluates an expression.
func (c *Calculator) Eval(src string) (float64, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return 0, err
	}
	return c.Evaluate(toks)
}

// evaluator holds the working state of one evaluation.
type evaluator struct {
	c      *Calculator
	depth  int
	values []float64
	ops    []Kind
}

func (c *Calculator) eval(tokens []Token, depth int) (float64, error) {
	if len(tokens) == 0 {
		return 0, ErrEmptyExpression
	}
	e := evaluator{c: c, depth: depth}
	for _, tok := range tokens {
		if err := e.step(tok); err != nil {
			return 0, err
		}
	}
	for len(e.ops) > 0 {
		if err := e.apply(); err != nil {
			return 0, err
		}
	}
	switch len(e.values) {
	case 1:
		return e.values[0], nil
	case 0:
		return 0, ErrNoResult
	default:
		return 0, ErrStackImbalance
	}
}

// step processes one token.
func (e *evaluator) step(tok Token) error {
	switch tok.Kind {
	case Number:
		e.push(tok.Num)
	case FunctionCall:
		if !e.c.ops.Has(OpFunctions) {
			return &OperatorError{Operator: tok.Name + "()"}
		}
		r, err := e.call(tok)
		if err != nil {
			return err
		}
		e.push(r)
	case LeftParen:
		e.pushOp(LeftParen)
	case RightParen:
		for {
			if len(e.ops) == 0 {
				return ErrMismatchedParens
			}
			if e.topOp() == LeftParen {
				break
			}
			if err := e.apply(); err != nil {
				return err
			}
		}
		e.popOp()
		// A negation in front of the group applies to the group's value.
		if len(e.ops) > 0 && e.topOp() == UnaryMinus {
			return e.apply()
		}
	case Add, Subtract:
		// Everything but a paren binds at least as tightly.
		for len(e.ops) > 0 && e.topOp() != LeftParen {
			if err := e.apply(); err != nil {
				return err
			}
		}
		e.pushOp(tok.Kind)
	case Multiply, Divide, Modulo:
		if tok.Kind == Modulo && !e.c.ops.Has(OpModulo) {
			return &OperatorError{Operator: "%"}
		}
		for len(e.ops) > 0 && e.topOp().product() {
			if err := e.apply(); err != nil {
				return err
			}
		}
		e.pushOp(tok.Kind)
	case Power:
		if !e.c.ops.Has(OpPower) {
			return &OperatorError{Operator: "^"}
		}
		// Never reduce before a power, so that a^b^c is a^(b^c).
		e.pushOp(Power)
	case UnaryMinus:
		e.pushOp(UnaryMinus)
	default:
		return &OperatorError{Operator: tok.Kind.String()}
	}
	return nil
}

func (e *evaluator) push(x float64) {
	e.values = append(e.values, x)
}

// pop removes the top value from the stack and returns it.
func (e *evaluator) pop() float64 {
	r := e.values[len(e.values)-1]
	e.values = e.values[:len(e.values)-1]
	return r
}

func (e *evaluator) pushOp(k Kind) {
	e.ops = append(e.ops, k)
}

func (e *evaluator) popOp() Kind {
	k := e.ops[len(e.ops)-1]
	e.ops = e.ops[:len(e.ops)-1]
	return k
}

// topOp is a shortcut to get the top of the operator stack.
func (e *evaluator) topOp() Kind {
	return e.ops[len(e.ops)-1]
}

// apply pops the top operator and applies it to the value stack.
func (e *evaluator) apply() error {
	op := e.popOp()
	switch op {
	case UnaryMinus:
		if len(e.values) == 0 {
			return ErrMissingOperand
		}
		e.values[len(e.values)-1] = -e.values[len(e.values)-1]
		return nil
	case LeftParen:
		// Only reachable while draining the stack at the end of input.
		return ErrMismatchedParens
	}
	if len(e.values) < 2 {
		return ErrMissingOperand
	}
	b := e.pop()
	a := e.pop()
	r, err := binary(op, a, b)
	if err != nil {
		return err
	}
	e.push(r)
	return nil
}

// binary computes a op b. A NaN result from any operator is an error.
func binary(op Kind, a, b float64) (float64, error) {
	var r float64
	switch op {
	case Add:
		r = a + b
	case Subtract:
		r = a - b
	case Multiply:
		r = a * b
	case Divide:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		r = a / b
	case Modulo:
		if !isInt(a) || !isInt(b) {
			return 0, ErrNonIntegerModulo
		}
		if b == 0 {
			return 0, ErrModuloByZero
		}
		// Exact for integral operands, truncated, with the sign of a.
		r = math.Mod(a, b)
		if r == 0 {
			r = 0 // no negative zero
		}
	case Power:
		if a == 0 && b == 0 {
			return 0, ErrUndefinedZeroPowerZero
		}
		if a < 0 && !isInt(b) {
			return 0, ErrNegativeFractionalPower
		}
		r = math.Pow(a, b)
		if math.IsNaN(r) {
			return 0, &PowerError{Base: a, Exp: b}
		}
		return r, nil
	default:
		return 0, &OperatorError{Operator: op.String()}
	}
	if math.IsNaN(r) {
		return 0, &OperationError{Op: op.symbol(), A: a, B: b}
	}
	return r, nil
}

// isInt reports whether x has no fractional part. Infinities and NaN are not
// integers.
func isInt(x float64) bool {
	_, f := math.Modf(x)
	return f == 0
}

// call evaluates a function call token.
func (e *evaluator) call(tok Token) (float64, error) {
	fn := e.c.funcs[tok.Name]
	if fn == nil {
		fn = builtins[tok.Name]
	}
	if fn != nil {
		return e.builtin(tok, fn)
	}
	cf, ok := e.c.fns.Lookup(tok.Name)
	if !ok {
		return 0, &NameError{Name: tok.Name}
	}
	if len(tok.Args) != len(cf.Parameters) {
		return 0, &CallError{Func: tok.Name, Len: len(tok.Args), Want: len(cf.Parameters)}
	}
	if e.depth >= e.c.limit {
		return 0, ErrExpansionDepth
	}
	bind := make(map[string][]Token, len(cf.Parameters))
	for i, p := range cf.Parameters {
		bind[p] = tok.Args[i]
	}
	body, err := lex(cf.Expression, 0, bind).run()
	if err != nil {
		return 0, err
	}
	return e.c.eval(body, e.depth+1)
}

// builtin evaluates a call to a built-in function.
func (e *evaluator) builtin(tok Token, fn Func) (float64, error) {
	if !fn.CanCall(len(tok.Args)) {
		return 0, &CallError{Func: tok.Name, Len: len(tok.Args), Want: -1}
	}
	invoc := make([]float64, len(tok.Args))
	for i, arg := range tok.Args {
		if e.c.strict {
			if len(arg) != 1 || arg[0].Kind != Number {
				return 0, &ArgumentError{Func: tok.Name, Arg: i + 1, Err: ErrNonNumericArgument}
			}
			invoc[i] = arg[0].Num
			continue
		}
		x, err := e.c.eval(arg, e.depth)
		if err != nil {
			return 0, err
		}
		invoc[i] = x
	}
	r, err := fn.Call(invoc)
	if err != nil {
		var de *DomainError
		if errors.As(err, &de) && de.Func == "" {
			de.Func = tok.Name
		}
		var ae *ArgumentError
		if errors.As(err, &ae) && ae.Func == "" {
			ae.Func = tok.Name
		}
		return 0, err
	}
	if math.Abs(r) < e.c.snap {
		r = 0
	}
	return r, nil
}
