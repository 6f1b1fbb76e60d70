package calc

// Option is an option for creating a Calculator.
type Option interface {
	apply(*Calculator)
}

// OperatorSet is a set of optional evaluation features. Addition,
// subtraction, multiplication, division, negation, and grouping are always
// enabled.
type OperatorSet uint8

const (
	OpModulo OperatorSet = 1 << iota
	OpPower
	OpFunctions

	// AllOperators enables every optional operator. It is the default.
	AllOperators = OpModulo | OpPower | OpFunctions
)

// Has reports whether every operator in o is in s.
func (s OperatorSet) Has(o OperatorSet) bool {
	return s&o == o
}

type (
	opsopt    OperatorSet
	strictopt bool
	snapopt   float64
	limitopt  int
	funcopt   struct {
		name string
		f    Func
	}
)

// WithOperators sets the optional operators the calculator evaluates. Using a
// disabled operator results in an OperatorError.
func WithOperators(ops OperatorSet) Option {
	return opsopt(ops)
}

func (o opsopt) apply(c *Calculator) {
	c.ops = OperatorSet(o)
}

// StrictArguments requires every argument of a built-in function call to be
// a single number token, i.e. a numeric literal or constant. Other arguments
// fail with ErrNonNumericArgument. Without this option, each argument is
// evaluated as an expression of its own.
func StrictArguments() Option {
	return strictopt(true)
}

func (o strictopt) apply(c *Calculator) {
	c.strict = bool(o)
}

// SnapThreshold sets the magnitude below which results of built-in functions
// are replaced with exactly zero. The default is 1e-8. Zero disables
// snapping.
func SnapThreshold(eps float64) Option {
	return snapopt(eps)
}

func (o snapopt) apply(c *Calculator) {
	c.snap = float64(o)
}

// ExpansionLimit sets the maximum nesting depth of custom function calls, and
// the maximum number of passes of ExpandCustomFunctions. The default is 20.
func ExpansionLimit(n int) Option {
	return limitopt(n)
}

func (o limitopt) apply(c *Calculator) {
	if o < 1 {
		o = 1
	}
	c.limit = int(o)
}

// WithFunc adds a built-in function to the calculator, or replaces a standard
// one. Functions added this way take precedence over custom functions.
func WithFunc(name string, f Func) Option {
	return funcopt{name: name, f: f}
}

func (o funcopt) apply(c *Calculator) {
	if c.funcs == nil {
		c.funcs = make(map[string]Func)
	}
	c.funcs[o.name] = o.f
}
