// Package session ties a calculator to its function file, history store,
// logger, and telemetry for use by the command line and the REPL.
package session

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zephyrtronium/calc"
	"github.com/zephyrtronium/calc/internal/funcfile"
	"github.com/zephyrtronium/calc/internal/history"
	"github.com/zephyrtronium/calc/internal/logging"
	"github.com/zephyrtronium/calc/internal/telemetry"
)

// Session evaluates expressions against a registry of custom functions and
// records successful evaluations in a history store.
type Session struct {
	reg   *calc.Registry
	hist  history.Store
	log   logrus.FieldLogger
	rec   telemetry.Recorder
	path  string
	copts []calc.Option
	calc  *calc.Calculator

	// mu serializes definitions so the function file matches the registry.
	mu sync.Mutex
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session's logger. The default discards everything.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) { s.log = l }
}

// WithRecorder sets the telemetry recorder. The default is telemetry.Noop.
func WithRecorder(r telemetry.Recorder) Option {
	return func(s *Session) { s.rec = r }
}

// WithFunctionFile sets the file that definitions are loaded from and saved
// to. The default is funcfile.DefaultPath.
func WithFunctionFile(path string) Option {
	return func(s *Session) { s.path = path }
}

// WithCalculatorOptions passes options to the underlying calculator.
func WithCalculatorOptions(opts ...calc.Option) Option {
	return func(s *Session) { s.copts = append(s.copts, opts...) }
}

// New creates a session. If reg is nil, a new empty registry is used.
func New(reg *calc.Registry, hist history.Store, opts ...Option) *Session {
	if reg == nil {
		reg = calc.NewRegistry()
	}
	s := &Session{
		reg:  reg,
		hist: hist,
		log:  logging.Discard(),
		rec:  telemetry.Noop{},
		path: funcfile.DefaultPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.calc = calc.New(s.reg, s.copts...)
	return s
}

// wholeCall matches an input that is exactly one function call.
var wholeCall = regexp.MustCompile(`^([\pL_][\pL\p{Nd}_]*)\s*\(([^()]*)\)$`)

// Eval evaluates expr. Successful results are added to history; a failure to
// record history is logged and does not fail the evaluation.
func (s *Session) Eval(ctx context.Context, expr string) (float64, error) {
	expr = strings.TrimSpace(expr)
	ctx, span := s.rec.StartEval(ctx, expr)
	var r float64
	var err error
	if s.isCustomCall(expr) {
		r, err = s.calc.ExpandAndEvaluate(expr)
	} else {
		r, err = s.calc.Eval(expr)
	}
	s.rec.EndEval(ctx, span, r, err)

	log := logging.Entry(ctx, s.log).WithField("expression", expr)
	if err != nil {
		log.WithError(err).WithField("category", calc.Category(err).String()).Info("evaluation failed")
		return 0, err
	}
	log.WithField("result", r).Debug("evaluated")

	if s.hist != nil {
		if err := s.hist.Add(ctx, history.Entry{Expression: expr, Result: r}); err != nil {
			log.WithError(err).Warn("couldn't record history")
		}
	}
	return r, nil
}

// Call evaluates a custom function call given on its own, as with the
// command line's function call flag. It fails with calc.ErrUndefinedFunction
// if the input is not a call to a registered function.
func (s *Session) Call(ctx context.Context, expr string) (float64, error) {
	expr = strings.TrimSpace(expr)
	if !s.isCustomCall(expr) {
		name := expr
		if m := wholeCall.FindStringSubmatch(expr); m != nil {
			name = m[1]
		}
		return 0, &calc.NameError{Name: name}
	}
	return s.Eval(ctx, expr)
}

func (s *Session) isCustomCall(expr string) bool {
	m := wholeCall.FindStringSubmatch(expr)
	if m == nil {
		return false
	}
	_, ok := s.reg.Lookup(m[1])
	return ok
}

// Define parses and registers a definition like "f(x) = x*2", then saves all
// definitions to the function file. If saving fails, the definition is
// removed again.
func (s *Session) Define(ctx context.Context, def string) error {
	name, fn, err := calc.ParseDefinition(def)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reg.Define(name, fn); err != nil {
		return err
	}
	if err := funcfile.Save(s.path, s.reg.Snapshot()); err != nil {
		s.reg.Remove(name)
		return fmt.Errorf("save function %s: %w", name, err)
	}
	logging.Entry(ctx, s.log).WithFields(logrus.Fields{
		"function":   name,
		"definition": fn.String(name),
	}).Debug("defined function")
	return nil
}

// LoadFunctions replaces the registry's definitions with those in the
// function file.
func (s *Session) LoadFunctions() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := funcfile.Load(s.path)
	if err != nil {
		return err
	}
	if err := s.reg.Replace(m); err != nil {
		return fmt.Errorf("load functions from %s: %w", s.path, err)
	}
	s.log.WithField("count", len(m)).Debug("loaded functions")
	return nil
}

// Functions lists the defined custom functions sorted by name.
func (s *Session) Functions() []calc.NamedFunction {
	return s.reg.List()
}

// Tokens tokenizes expr with the session's calculator.
func (s *Session) Tokens(expr string) ([]calc.Token, error) {
	return s.calc.Tokenize(strings.TrimSpace(expr))
}

// History lists recorded evaluations, oldest first.
func (s *Session) History(ctx context.Context) ([]history.Entry, error) {
	if s.hist == nil {
		return nil, nil
	}
	return s.hist.List(ctx)
}

// ClearHistory removes all recorded evaluations.
func (s *Session) ClearHistory(ctx context.Context) error {
	if s.hist == nil {
		return nil
	}
	return s.hist.Clear(ctx)
}

// Close closes the history store.
func (s *Session) Close() error {
	if s.hist == nil {
		return nil
	}
	return s.hist.Close()
}

// Format formats a result the way it is printed to users: the shortest
// decimal representation that parses back to x, without an exponent.
func Format(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// FormatEntry formats a history entry as "expr = result [timestamp]".
func FormatEntry(e history.Entry) string {
	return fmt.Sprintf("%s = %s [%s]", e.Expression, Format(e.Result), e.Timestamp.Format(time.RFC3339))
}
