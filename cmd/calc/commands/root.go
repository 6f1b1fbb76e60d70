// Package commands implements the calc command line.
package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zephyrtronium/calc"
	"github.com/zephyrtronium/calc/internal/config"
	"github.com/zephyrtronium/calc/internal/history"
	"github.com/zephyrtronium/calc/internal/logging"
	"github.com/zephyrtronium/calc/internal/repl"
	"github.com/zephyrtronium/calc/internal/session"
	"github.com/zephyrtronium/calc/internal/telemetry"
)

type options struct {
	configFile   string
	history      bool
	clearHistory bool
	interactive  bool
	quiet        bool
	fcall        string
	define       string
}

// NewRootCmd creates the calc command.
func NewRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "calc [expression]",
		Short: "Evaluate arithmetic expressions",
		Long: `calc evaluates arithmetic expressions with +, -, *, /, %, ^, parentheses,
built-in functions, and user-defined functions.

With an expression argument, calc prints its value. With input from a pipe,
calc evaluates each line. Otherwise, calc starts an interactive prompt.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "config", "", "config file path")
	cmd.Flags().BoolVarP(&opts.history, "history", "H", false, "print history")
	cmd.Flags().BoolVarP(&opts.clearHistory, "clear-history", "C", false, "clear history")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "start the interactive prompt")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "print results only")
	cmd.Flags().StringVarP(&opts.fcall, "fcall", "f", "", "evaluate a custom function call, e.g. 'f(2)'")
	cmd.Flags().StringVarP(&opts.define, "define", "d", "", "define a custom function, e.g. 'f(x) = x*2'")
	return cmd
}

func run(cmd *cobra.Command, args []string, opts *options) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	s, cleanup, err := newSession(ctx, opts.configFile)
	if err != nil {
		return err
	}
	defer cleanup()

	switch {
	case opts.clearHistory:
		if err := s.ClearHistory(ctx); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Fprintln(out, "History cleared")
		return nil

	case opts.history:
		return printHistory(ctx, out, s)

	case opts.define != "":
		if err := s.Define(ctx, opts.define); err != nil {
			return fmt.Errorf("function definition failed: %w", err)
		}
		fmt.Fprintln(out, "Function defined successfully")
		return nil

	case opts.fcall != "":
		r, err := s.Call(ctx, opts.fcall)
		if err != nil {
			return fmt.Errorf("failed to solve the expression '%s': %w", opts.fcall, err)
		}
		printResult(out, opts.fcall, r, opts.quiet)
		return nil

	case len(args) == 1:
		r, err := s.Eval(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to solve the expression '%s': %w", args[0], err)
		}
		printResult(out, args[0], r, opts.quiet)
		return nil

	case opts.interactive || isTerminal(cmd.InOrStdin()):
		return repl.Run(ctx, cmd.InOrStdin(), out, s)

	default:
		return evalLines(ctx, cmd.InOrStdin(), out, cmd.ErrOrStderr(), s, opts.quiet)
	}
}

// newSession builds a session from the configuration file.
func newSession(ctx context.Context, configFile string) (*session.Session, func(), error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	var rec telemetry.Recorder = telemetry.Noop{}
	shutdown := func(context.Context) error { return nil }
	if cfg.Telemetry.Enabled {
		shutdown = telemetry.Setup(log)
		rec, err = telemetry.New()
		if err != nil {
			shutdown(ctx)
			closeLog()
			return nil, nil, fmt.Errorf("failed to set up telemetry: %w", err)
		}
	}

	hist, err := history.Open(cfg.History.Backend, cfg.History.Path, cfg.History.MaxEntries)
	if err != nil {
		shutdown(ctx)
		closeLog()
		return nil, nil, fmt.Errorf("failed to open history: %w", err)
	}

	s := session.New(calc.NewRegistry(), hist,
		session.WithLogger(log),
		session.WithRecorder(rec),
		session.WithFunctionFile(cfg.Functions.Path),
	)
	cleanup := func() {
		if err := s.Close(); err != nil {
			log.WithError(err).Warn("close history")
		}
		if err := shutdown(ctx); err != nil {
			log.WithError(err).Warn("shut down telemetry")
		}
		closeLog()
	}
	if err := s.LoadFunctions(); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to load functions: %w", err)
	}
	log.WithFields(logrus.Fields{
		"history":   cfg.History.Backend,
		"functions": cfg.Functions.Path,
	}).Debug("session ready")
	return s, cleanup, nil
}

func printResult(w io.Writer, expr string, r float64, quiet bool) {
	if quiet {
		fmt.Fprintln(w, session.Format(r))
		return
	}
	fmt.Fprintf(w, "%s = %s\n", expr, session.Format(r))
}

func printHistory(ctx context.Context, w io.Writer, s *session.Session) error {
	l, err := s.History(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(l) == 0 {
		fmt.Fprintln(w, "No history")
		return nil
	}
	fmt.Fprintln(w, "History:")
	for i := range l {
		fmt.Fprintf(w, "%2d. %s\n", i+1, session.FormatEntry(l[len(l)-1-i]))
	}
	return nil
}

// errFailedLines is returned when any piped line fails to evaluate.
var errFailedLines = errors.New("some expressions could not be solved")

// evalLines evaluates each non-empty line of in. Only the first result is
// printed with its expression unless quiet is set.
func evalLines(ctx context.Context, in io.Reader, out, errw io.Writer, s *session.Session, quiet bool) error {
	sc := bufio.NewScanner(in)
	failed := 0
	for sc.Scan() {
		expr := strings.TrimSpace(sc.Text())
		if expr == "" {
			continue
		}
		r, err := s.Eval(ctx, expr)
		if err != nil {
			fmt.Fprintf(errw, "Failed to solve the expression '%s': %v\n", expr, err)
			failed++
		} else {
			printResult(out, expr, r, quiet)
		}
		quiet = true
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d failed", errFailedLines, failed)
	}
	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
