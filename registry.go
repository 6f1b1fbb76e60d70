package calc

import (
	"regexp"
	"slices"
	"strings"
	"sync"
)

// CustomFunction is a user-defined function: a body expression in terms of
// named parameters.
type CustomFunction struct {
	Parameters []string `json:"parameters" yaml:"parameters"`
	Expression string   `json:"expression" yaml:"expression"`
}

// clone returns a copy of f that shares no memory with it.
func (f CustomFunction) clone() CustomFunction {
	return CustomFunction{
		Parameters: append([]string(nil), f.Parameters...),
		Expression: f.Expression,
	}
}

// String formats f as a definition of name.
func (f CustomFunction) String(name string) string {
	return name + "(" + strings.Join(f.Parameters, ", ") + ") = " + f.Expression
}

// Functions resolves custom function names. Lookup must return a value that
// the caller may keep without synchronization.
type Functions interface {
	Lookup(name string) (CustomFunction, bool)
}

type noFunctions struct{}

func (noFunctions) Lookup(string) (CustomFunction, bool) {
	return CustomFunction{}, false
}

// Registry is a set of custom functions that is safe for concurrent use.
// The zero value is an empty registry.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]CustomFunction
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]CustomFunction)}
}

// Lookup returns a copy of the named function.
func (r *Registry) Lookup(name string) (CustomFunction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.funcs[name]
	if !ok {
		return CustomFunction{}, false
	}
	return f.clone(), true
}

// Define adds a function. It is an error to redefine an existing function,
// to shadow a built-in name, or to repeat a parameter name. The body must
// tokenize with its parameters bound.
func (r *Registry) Define(name string, fn CustomFunction) error {
	if err := checkFunction(name, fn); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.funcs == nil {
		r.funcs = make(map[string]CustomFunction)
	}
	if _, ok := r.funcs[name]; ok {
		return &DefinitionError{Name: name, Err: ErrFunctionExists}
	}
	r.funcs[name] = fn.clone()
	return nil
}

// Remove deletes a function. It returns false if there was no such function.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.funcs[name]
	delete(r.funcs, name)
	return ok
}

// Len returns the number of functions in the registry.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.funcs)
}

// Snapshot returns a copy of all functions in the registry.
func (r *Registry) Snapshot() map[string]CustomFunction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := make(map[string]CustomFunction, len(r.funcs))
	for k, v := range r.funcs {
		m[k] = v.clone()
	}
	return m
}

// NamedFunction pairs a custom function with its name.
type NamedFunction struct {
	Name string
	CustomFunction
}

func (f NamedFunction) String() string {
	return f.CustomFunction.String(f.Name)
}

// List returns all functions sorted by name.
func (r *Registry) List() []NamedFunction {
	m := r.Snapshot()
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.Sort(names)
	l := make([]NamedFunction, len(names))
	for i, k := range names {
		l[i] = NamedFunction{Name: k, CustomFunction: m[k]}
	}
	return l
}

// Replace discards the registry's contents and defines every function in m.
// Nothing changes if any function in m is invalid.
func (r *Registry) Replace(m map[string]CustomFunction) error {
	funcs := make(map[string]CustomFunction, len(m))
	for k, v := range m {
		if err := checkFunction(k, v); err != nil {
			return err
		}
		funcs[k] = v.clone()
	}
	r.mu.Lock()
	r.funcs = funcs
	r.mu.Unlock()
	return nil
}

var identRE = regexp.MustCompile(`^[\pL_][\pL\p{Nd}_]*$`)

// checkFunction validates a definition without regard to other functions.
func checkFunction(name string, fn CustomFunction) error {
	if !identRE.MatchString(name) || IsBuiltin(name) {
		return &DefinitionError{Name: name, Err: ErrInvalidName}
	}
	seen := make(map[string]bool, len(fn.Parameters))
	bind := make(map[string][]Token, len(fn.Parameters))
	for _, p := range fn.Parameters {
		if !identRE.MatchString(p) || IsBuiltin(p) {
			return &DefinitionError{Name: name, Param: p, Err: ErrInvalidName}
		}
		if seen[p] {
			return &DefinitionError{Name: name, Param: p, Err: ErrDuplicateParameter}
		}
		seen[p] = true
		bind[p] = []Token{Num(1)}
	}
	if strings.TrimSpace(fn.Expression) == "" {
		return &DefinitionError{Name: name, Err: ErrInvalidDefinition}
	}
	if _, err := lex(fn.Expression, 0, bind).run(); err != nil {
		return &DefinitionError{Name: name, Err: err}
	}
	return nil
}

var defRE = regexp.MustCompile(`^\s*([\pL_][\pL\p{Nd}_]*)\s*\(([^()]*)\)\s*=\s*(.+?)\s*$`)

// ParseDefinition parses a definition of the form "name(a, b) = body".
func ParseDefinition(s string) (string, CustomFunction, error) {
	m := defRE.FindStringSubmatch(s)
	if m == nil {
		return "", CustomFunction{}, &DefinitionError{Err: ErrInvalidDefinition}
	}
	fn := CustomFunction{Expression: m[3]}
	if ps := strings.TrimSpace(m[2]); ps != "" {
		for _, p := range strings.Split(ps, ",") {
			fn.Parameters = append(fn.Parameters, strings.TrimSpace(p))
		}
	}
	if err := checkFunction(m[1], fn); err != nil {
		return "", CustomFunction{}, err
	}
	return m[1], fn, nil
}

// DefinitionError is an error defining a custom function.
type DefinitionError struct {
	// Name is the function name, if it was parsed.
	Name string
	// Param is the offending parameter, if any.
	Param string
	Err   error
}

func (err *DefinitionError) Error() string {
	r := "function definition failed"
	if err.Name != "" {
		r += " for " + err.Name
	}
	if err.Param != "" {
		r += " (parameter " + err.Param + ")"
	}
	return r + ": " + err.Err.Error()
}

func (err *DefinitionError) Unwrap() error {
	return err.Err
}
