// Package repl implements the interactive calculator prompt.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/zephyrtronium/calc/internal/session"
)

const banner = `Welcome to the Math Calculator
Supported operators: +, -, *, /, ( ), %, ^
Type 'help' for help, 'exit' to exit the program
`

const help = `
Usage:
  Enter a mathematical expression to calculate, e.g., 3+5*2
  Decimals are supported: 3.14, 0.5
  Spaces are supported: 10 + 5 * 2
  Parentheses are supported: (3+5)*2
  Minus are supported: -5 + 3
  Functions are supported: sin(pi/2), log(8, 2), comb(5, 2)

Commands:
  help                   - Displays help information
  clear                  - Clear the screen
  history                - Display history
  clearhistory           - Clear history
  functions              - List custom functions
  define f(x, y) = expr  - Define a custom function
  tokens expr            - Show how an expression is tokenized
  exit                   - Exit the program

Notes:
  * The divisor cannot be 0 in a division operation
  * Function customization is supported
  * A negative base with a fractional exponent will lead to an error
  * Power operations support right associativity (2^3^2 = 2^(3^2) = 512)
`

const clearScreen = "\x1b[2J\x1b[1;1H"

const goodbye = "Thank you for using and goodbye"

// Run reads lines from in and writes responses to out until the user exits,
// in reaches EOF, or ctx is canceled. It returns an error only if reading or
// writing fails.
func Run(ctx context.Context, in io.Reader, out io.Writer, s *session.Session) error {
	w := bufio.NewWriter(out)
	defer w.Flush()
	sc := bufio.NewScanner(in)
	w.WriteString(banner)
	for {
		w.WriteString("> ")
		if err := w.Flush(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(w, goodbye)
			return nil
		}
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(w, goodbye)
			return nil
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.EqualFold(line, "exit") {
			fmt.Fprintln(w, goodbye)
			return nil
		}
		command(ctx, w, s, line)
	}
}

// command handles one non-empty line of input.
func command(ctx context.Context, w io.Writer, s *session.Session, line string) {
	cmd, rest, _ := strings.Cut(line, " ")
	switch strings.ToLower(cmd) {
	case "help":
		if rest == "" {
			io.WriteString(w, help)
			return
		}
	case "clear":
		if rest == "" {
			io.WriteString(w, clearScreen)
			return
		}
	case "history":
		if rest == "" {
			showHistory(ctx, w, s)
			return
		}
	case "clearhistory":
		if rest == "" {
			if err := s.ClearHistory(ctx); err != nil {
				fmt.Fprintf(w, "Failed to clear history: %v\n", err)
				return
			}
			fmt.Fprintln(w, "History cleared")
			return
		}
	case "functions":
		if rest == "" {
			showFunctions(w, s)
			return
		}
	case "define":
		if err := s.Define(ctx, rest); err != nil {
			fmt.Fprintf(w, "Function definition failed: %v\n", err)
			return
		}
		fmt.Fprintln(w, "Function defined successfully")
		return
	case "tokens":
		toks, err := s.Tokens(rest)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return
		}
		for _, t := range toks {
			fmt.Fprintf(w, "  %v\n", t)
		}
		return
	}
	r, err := s.Eval(ctx, line)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, " = %s\n", session.Format(r))
}

func showHistory(ctx context.Context, w io.Writer, s *session.Session) {
	l, err := s.History(ctx)
	if err != nil {
		fmt.Fprintf(w, "Failed to load history: %v\n", err)
		return
	}
	if len(l) == 0 {
		fmt.Fprintln(w, "No history")
		return
	}
	fmt.Fprintln(w, "History:")
	for i := range l {
		fmt.Fprintf(w, "%2d. %s\n", i+1, session.FormatEntry(l[len(l)-1-i]))
	}
}

func showFunctions(w io.Writer, s *session.Session) {
	fns := s.Functions()
	if len(fns) == 0 {
		fmt.Fprintln(w, "No custom functions")
		return
	}
	for _, f := range fns {
		fmt.Fprintln(w, f)
	}
}
