package calc

import (
	"regexp"
	"strings"
)

var (
	// callRE matches a call whose arguments contain no parentheses, so that
	// each pass expands the innermost calls.
	callRE = regexp.MustCompile(`([\pL_][\pL\p{Nd}_]*)\s*\(([^()]*)\)`)
	// nameRE matches a whole identifier. Replacing matches of nameRE rather
	// than each parameter in turn keeps substitution to whole words, and
	// keeps an argument that mentions another parameter's name intact.
	nameRE = regexp.MustCompile(`[\pL_][\pL\p{Nd}_]*`)
)

// ExpandCustomFunctions rewrites calls to registered functions in expr as
// their parenthesized bodies, with each parameter replaced by its
// parenthesized argument. Expansion repeats until nothing changes, up to the
// calculator's expansion limit. Calls to unregistered names, including
// built-in functions, are left as they are.
func (c *Calculator) ExpandCustomFunctions(expr string) (string, error) {
	r := expr
	for i := 0; i < c.limit; i++ {
		var bad *ExpandError
		next := callRE.ReplaceAllStringFunc(r, func(match string) string {
			if bad != nil {
				return match
			}
			m := callRE.FindStringSubmatch(match)
			fn, ok := c.fns.Lookup(m[1])
			if !ok {
				return match
			}
			var args []string
			if strings.TrimSpace(m[2]) != "" {
				args = strings.Split(m[2], ",")
			}
			if len(args) != len(fn.Parameters) {
				bad = &ExpandError{Func: m[1], Want: len(fn.Parameters), Got: len(args)}
				return match
			}
			return "(" + substitute(fn, args) + ")"
		})
		if bad != nil {
			return "", bad
		}
		if next == r {
			break
		}
		r = next
	}
	return r, nil
}

// substitute replaces the parameters of fn in its body with args.
func substitute(fn CustomFunction, args []string) string {
	vals := make(map[string]string, len(args))
	for i, p := range fn.Parameters {
		vals[p] = "(" + strings.TrimSpace(args[i]) + ")"
	}
	return nameRE.ReplaceAllStringFunc(fn.Expression, func(name string) string {
		if v, ok := vals[name]; ok {
			return v
		}
		return name
	})
}

// ExpandAndEvaluate expands custom function calls in expr as text, then
// tokenizes and evaluates the result. Calls that text expansion leaves in
// place, such as those with parenthesized arguments, are still resolved
// during evaluation.
func (c *Calculator) ExpandAndEvaluate(expr string) (float64, error) {
	s, err := c.ExpandCustomFunctions(expr)
	if err != nil {
		return 0, err
	}
	return c.Eval(s)
}
