package calc

import (
	"math"
	"math/bits"
	"slices"
)

// Func is a built-in function from reals to reals.
type Func interface {
	// Call evaluates the function. args has a length for which CanCall
	// returned true. An argument outside the function's domain should produce
	// a *DomainError; the calculator fills in its Func field.
	Call(args []float64) (float64, error)

	// CanCall returns whether the function can be called with n arguments.
	CanCall(n int) bool
}

var builtins = map[string]Func{
	"sin":    Monadic(math.Sin),
	"cos":    Monadic(math.Cos),
	"tan":    Monadic(math.Tan),
	"arcsin": Monadic(math.Asin),
	"arccos": Monadic(math.Acos),
	"arctan": Monadic(math.Atan),
	"exp":    Monadic(math.Exp),
	"sqrt":   Monadic(math.Sqrt),
	"abs":    Monadic(math.Abs),
	"ln":     Monadic(math.Log),
	"log":    logfn{},

	"fact":      factfn{},
	"factorial": factfn{},
	"comb":      dyadic(comb),
	"perm":      dyadic(perm),
}

// IsBuiltin reports whether name is a built-in function or constant.
func IsBuiltin(name string) bool {
	if _, ok := constant(name); ok {
		return true
	}
	return builtins[name] != nil
}

// BuiltinNames returns the names of the built-in functions.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for k := range builtins {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

type monadic struct {
	f func(float64) float64
}

func (m monadic) Call(args []float64) (float64, error) {
	x := args[0]
	r := m.f(x)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, &DomainError{X: x, Arg: 1}
	}
	return r, nil
}

func (m monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic wraps a function of one variable into a Func. A NaN or infinite
// result is reported as a domain error on the argument.
func Monadic(f func(float64) float64) Func {
	return monadic{f}
}

// logfn is the natural logarithm with one argument, or the logarithm in the
// base given by the second argument.
type logfn struct{}

func (logfn) Call(args []float64) (float64, error) {
	x := args[0]
	if x <= 0 || math.IsInf(x, 0) {
		return 0, &DomainError{X: x, Arg: 1}
	}
	if len(args) == 1 {
		return math.Log(x), nil
	}
	b := args[1]
	if b <= 0 || b == 1 || math.IsInf(b, 0) {
		return 0, &DomainError{X: b, Arg: 2}
	}
	return math.Log(x) / math.Log(b), nil
}

func (logfn) CanCall(n int) bool {
	return n == 1 || n == 2
}

// maxExact is the bound above which float64 no longer represents every
// integer.
const maxExact = 1 << 53

// natural converts x to a natural number. It reports a domain error for
// argument arg if x is negative or fractional, and an ArgumentError wrapping
// overflow if x is too large to be exact.
func natural(x float64, arg int, overflow error) (uint64, error) {
	if x < 0 || !isInt(x) {
		return 0, &DomainError{X: x, Arg: arg}
	}
	if x > maxExact {
		return 0, &ArgumentError{Arg: arg, Err: overflow}
	}
	return uint64(x), nil
}

type factfn struct{}

func (factfn) Call(args []float64) (float64, error) {
	n, err := natural(args[0], 1, ErrFactorialOverflow)
	if err != nil {
		return 0, err
	}
	r := uint64(1)
	for i := uint64(2); i <= n; i++ {
		hi, lo := bits.Mul64(r, i)
		if hi != 0 {
			return 0, &ArgumentError{Err: ErrFactorialOverflow}
		}
		r = lo
	}
	return float64(r), nil
}

func (factfn) CanCall(n int) bool {
	return n == 1
}

type dyadic func(n, k uint64) (uint64, bool)

func (f dyadic) Call(args []float64) (float64, error) {
	n, err := natural(args[0], 1, ErrCombinationOverflow)
	if err != nil {
		return 0, err
	}
	k, err := natural(args[1], 2, ErrCombinationOverflow)
	if err != nil {
		return 0, err
	}
	if k > n {
		return 0, &DomainError{X: args[1], Arg: 2}
	}
	r, ok := f(n, k)
	if !ok {
		return 0, &ArgumentError{Err: ErrCombinationOverflow}
	}
	return float64(r), nil
}

func (f dyadic) CanCall(n int) bool {
	return n == 2
}

// comb computes the binomial coefficient n choose k. The second result is
// false if it overflows.
func comb(n, k uint64) (uint64, bool) {
	if n-k < k {
		k = n - k
	}
	r := uint64(1)
	for i := uint64(1); i <= k; i++ {
		// r is C(n-k+i-1, i-1), so r*(n-k+i) is divisible by i.
		hi, lo := bits.Mul64(r, n-k+i)
		if hi >= i {
			return 0, false
		}
		r, _ = bits.Div64(hi, lo, i)
	}
	return r, true
}

// perm computes the number of k-permutations of n. The second result is
// false if it overflows.
func perm(n, k uint64) (uint64, bool) {
	r := uint64(1)
	for i := n - k + 1; i <= n; i++ {
		hi, lo := bits.Mul64(r, i)
		if hi != 0 {
			return 0, false
		}
		r = lo
	}
	return r, true
}
