package calc

import (
	"errors"
	"strconv"
)

// Lexical errors.
var (
	ErrUnexpectedCharacter = errors.New("unexpected character")
	ErrInvalidNumber       = errors.New("invalid number")
	ErrUnclosedArguments   = errors.New("unclosed argument list")
	ErrUnknownIdentifier   = errors.New("unknown identifier")
)

// Structural errors, from token sequences that don't form an expression.
var (
	ErrEmptyExpression  = errors.New("empty expression")
	ErrMismatchedParens = errors.New("mismatched parentheses")
	ErrMissingOperand   = errors.New("missing operand")
	ErrStackImbalance   = errors.New("too many values in the stack")
	ErrNoResult         = errors.New("no result produced")
)

// Arithmetic domain errors.
var (
	ErrDivisionByZero          = errors.New("division by zero")
	ErrNonIntegerModulo        = errors.New("modulo operation requires integer operands")
	ErrModuloByZero            = errors.New("modulo by zero")
	ErrUndefinedZeroPowerZero  = errors.New("undefined operation: 0^0")
	ErrNegativeFractionalPower = errors.New("negative base with fractional exponent is undefined")
	ErrInvalidPower            = errors.New("invalid power")
	ErrInvalidOperation        = errors.New("invalid operation")
)

// Function call errors.
var (
	ErrUndefinedFunction   = errors.New("undefined function")
	ErrWrongArgumentCount  = errors.New("wrong number of arguments")
	ErrNonNumericArgument  = errors.New("argument is not a number")
	ErrFactorialOverflow   = errors.New("factorial overflow")
	ErrCombinationOverflow = errors.New("combination overflow")
	ErrArgumentDomain      = errors.New("argument outside function domain")
	ErrUnsupportedOperator = errors.New("unsupported operator")
)

// Custom function expansion errors.
var (
	ErrArgumentCountMismatch = errors.New("custom function argument count mismatch")
	ErrExpansionDepth        = errors.New("custom function expansion too deep")
)

// Function definition errors.
var (
	ErrInvalidDefinition  = errors.New("function definition should be name(param1, param2, ...) = expression")
	ErrInvalidName        = errors.New("invalid name")
	ErrFunctionExists     = errors.New("function already exists")
	ErrDuplicateParameter = errors.New("parameter names must be unique")
)

// LexError indicates an invalid token. It implements InputError and unwraps
// to one of the lexical errors.
type LexError struct {
	// Err is ErrUnexpectedCharacter, ErrInvalidNumber, ErrUnclosedArguments,
	// or ErrUnknownIdentifier.
	Err error
	// Text is the token the lexer was scanning when it failed.
	Text string
	// Col is the 1-based rune column at which the token starts.
	Col int
}

func (err *LexError) Error() string {
	return errpos(err.Col, err.Err.Error()+": "+strconv.Quote(err.Text))
}

func (err *LexError) Unwrap() error {
	return err.Err
}

func (err *LexError) Pos() int {
	return err.Col
}

// OperatorError is an error indicating an operator that the calculator does
// not evaluate, either because it is disabled or because the token is not an
// operator at all.
type OperatorError struct {
	// Operator is the operator's text or token kind.
	Operator string
}

func (err *OperatorError) Error() string {
	return "unsupported operator " + strconv.Quote(err.Operator)
}

func (err *OperatorError) Unwrap() error {
	return ErrUnsupportedOperator
}

// PowerError indicates an exponentiation with no real result that passed the
// explicit checks for 0^0 and negative bases.
type PowerError struct {
	Base, Exp float64
}

func (err *PowerError) Error() string {
	return "invalid operation: (" + fmtnum(err.Base) + ")^(" + fmtnum(err.Exp) + ")"
}

func (err *PowerError) Unwrap() error {
	return ErrInvalidPower
}

// OperationError indicates an arithmetic operation on infinite or NaN
// operands with no numeric result, such as Inf - Inf.
type OperationError struct {
	// Op is the operator symbol.
	Op   string
	A, B float64
}

func (err *OperationError) Error() string {
	return "invalid operation: (" + fmtnum(err.A) + ") " + err.Op + " (" + fmtnum(err.B) + ")"
}

func (err *OperationError) Unwrap() error {
	return ErrInvalidOperation
}

// NameError is an error from a call to a function that is neither built in
// nor registered.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return "undefined function: " + strconv.Quote(err.Name)
}

func (err *NameError) Unwrap() error {
	return ErrUndefinedFunction
}

// CallError is an error indicating a function call with the wrong number of
// arguments.
type CallError struct {
	// Func is the function name that was called.
	Func string
	// Len is the number of arguments in the call.
	Len int
	// Want is the number of parameters of a custom function, or -1 for built
	// in functions.
	Want int
}

func (err *CallError) Error() string {
	s := "cannot call " + err.Func + " with " + strconv.Itoa(err.Len) + " arguments"
	if err.Want >= 0 {
		s += " (want " + strconv.Itoa(err.Want) + ")"
	}
	return s
}

func (err *CallError) Unwrap() error {
	return ErrWrongArgumentCount
}

// DomainError is an error returned when a function is called on arguments
// outside its domain. DomainError unwraps to ErrArgumentDomain.
type DomainError struct {
	// X is the out-of-domain argument.
	X float64
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
}

func (err *DomainError) Error() string {
	r := fmtnum(err.X) + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

func (err *DomainError) Unwrap() error {
	return ErrArgumentDomain
}

// ArgumentError is a failure in a built-in function that isn't a domain
// error: a non-numeric argument in strict mode, or integer overflow.
type ArgumentError struct {
	Func string
	// Arg is the 1-based index of the argument, or 0 if the failure concerns
	// the call as a whole.
	Arg int
	Err error
}

func (err *ArgumentError) Error() string {
	r := err.Func
	if err.Arg > 0 {
		r += " argument " + strconv.Itoa(err.Arg)
	}
	return r + ": " + err.Err.Error()
}

func (err *ArgumentError) Unwrap() error {
	return err.Err
}

// ExpandError indicates a custom function call with the wrong number of
// arguments found during text expansion.
type ExpandError struct {
	Func      string
	Want, Got int
}

func (err *ExpandError) Error() string {
	return ErrArgumentCountMismatch.Error() + ": " + err.Func + " takes " +
		strconv.Itoa(err.Want) + " arguments, got " + strconv.Itoa(err.Got)
}

func (err *ExpandError) Unwrap() error {
	return ErrArgumentCountMismatch
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*LexError)(nil)
)

// ErrorCategory classifies evaluation failures.
type ErrorCategory int8

const (
	CategoryUnknown ErrorCategory = iota
	CategoryLexical
	CategoryStructural
	CategoryArithmetic
	CategoryFunction
	CategoryExpansion
	CategoryDefinition
)

var categoryNames = [...]string{
	CategoryUnknown:    "unknown",
	CategoryLexical:    "lexical",
	CategoryStructural: "structural",
	CategoryArithmetic: "arithmetic",
	CategoryFunction:   "function",
	CategoryExpansion:  "expansion",
	CategoryDefinition: "definition",
}

func (c ErrorCategory) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

var categories = []struct {
	cat  ErrorCategory
	errs []error
}{
	{CategoryLexical, []error{ErrUnexpectedCharacter, ErrInvalidNumber, ErrUnclosedArguments, ErrUnknownIdentifier}},
	{CategoryStructural, []error{ErrEmptyExpression, ErrMismatchedParens, ErrMissingOperand, ErrStackImbalance, ErrNoResult, ErrUnsupportedOperator}},
	{CategoryArithmetic, []error{ErrDivisionByZero, ErrNonIntegerModulo, ErrModuloByZero, ErrUndefinedZeroPowerZero, ErrNegativeFractionalPower, ErrInvalidPower, ErrInvalidOperation}},
	{CategoryFunction, []error{ErrUndefinedFunction, ErrWrongArgumentCount, ErrNonNumericArgument, ErrFactorialOverflow, ErrCombinationOverflow, ErrArgumentDomain}},
	{CategoryExpansion, []error{ErrArgumentCountMismatch, ErrExpansionDepth}},
	{CategoryDefinition, []error{ErrInvalidDefinition, ErrInvalidName, ErrFunctionExists, ErrDuplicateParameter}},
}

// Category returns the category of an error returned by this package. Errors
// from elsewhere are CategoryUnknown.
func Category(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}
	for _, c := range categories {
		for _, e := range c.errs {
			if errors.Is(err, e) {
				return c.cat
			}
		}
	}
	return CategoryUnknown
}
