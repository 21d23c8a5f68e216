// Package cli holds the building blocks of the waypoint command line.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/aretw0/waypoint/pkg/domain"
	"golang.org/x/term"
)

// ErrQuit is returned by Execute when the session should end.
var ErrQuit = errors.New("quit")

const helpText = `Commands:
  push <target>      show target on top of the stack
  replace <target>   replace the active destination
  root <target>      clear the stack and show target
  pop                return to the previous destination
  back               handle a back press (leaves when nothing is stashed)
  remove <id>        remove an element by id
  progress <p>       move the transition cursor
  tick <duration>    advance transitions by render time, e.g. tick 250ms
  settle             finish every pending transition
  show               print the stack
  graph              print the stack as a Mermaid diagram
  save               persist the session
  help               print this help
  quit               leave without saving
`

// REPL drives a navigator from line-oriented commands.
type REPL struct {
	nav    *waypoint.Navigator
	out    io.Writer
	render func(string) (string, error)
	prompt bool
}

// REPLOption configures a REPL.
type REPLOption func(*REPL)

// WithRenderer sets the markdown renderer used to print the stack.
func WithRenderer(render func(string) (string, error)) REPLOption {
	return func(r *REPL) {
		r.render = render
	}
}

// WithPrompt prints a prompt before reading each line.
func WithPrompt(prompt bool) REPLOption {
	return func(r *REPL) {
		r.prompt = prompt
	}
}

// NewREPL creates a REPL writing to out.
func NewREPL(nav *waypoint.Navigator, out io.Writer, opts ...REPLOption) *REPL {
	r := &REPL{
		nav:    nav,
		out:    out,
		render: func(s string) (string, error) { return s, nil },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsInteractive reports whether f is a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Run reads commands from in until EOF, quit, or ctx is cancelled.
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	r.show()
	for {
		if r.prompt {
			fmt.Fprint(r.out, "> ")
		}
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			return ctx.Err()
		case err := <-readErr:
			return err
		case line := <-lines:
			err := r.Execute(ctx, line)
			if errors.Is(err, ErrQuit) {
				return nil
			}
			if err != nil {
				fmt.Fprintf(r.out, ">>> %v\n", err)
			}
		}
	}
}

// Execute runs one command line.
func (r *REPL) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, rest := fields[0], strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	switch cmd {
	case "push", "replace", "root":
		if rest == "" {
			return fmt.Errorf("usage: %s <target>", cmd)
		}
		fn := map[string]func(context.Context, string) error{
			"push":    r.nav.Push,
			"replace": r.nav.Replace,
			"root":    r.nav.NewRoot,
		}[cmd]
		if err := fn(ctx, rest); err != nil {
			return err
		}
	case "pop":
		applied, err := r.nav.Pop(ctx)
		if err != nil {
			return err
		}
		if !applied {
			fmt.Fprintln(r.out, ">>> Nothing to pop.")
			return nil
		}
	case "back":
		handled, err := r.nav.Back(ctx)
		if err != nil {
			return err
		}
		if !handled {
			fmt.Fprintln(r.out, ">>> Back press not handled, leaving.")
			return ErrQuit
		}
	case "remove":
		id, err := domain.ParseID(rest)
		if err != nil {
			return fmt.Errorf("usage: remove <id>: %w", err)
		}
		removed, err := r.nav.Remove(ctx, id)
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintf(r.out, ">>> No element with id %d.\n", id)
			return nil
		}
	case "progress":
		p, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return fmt.Errorf("usage: progress <p>: %w", err)
		}
		r.nav.SetProgress(ctx, p)
	case "tick":
		d, err := time.ParseDuration(rest)
		if err != nil {
			return fmt.Errorf("usage: tick <duration>: %w", err)
		}
		r.nav.Tick(ctx, d)
	case "settle":
		r.nav.Settle(ctx)
	case "show":
	case "graph":
		fmt.Fprint(r.out, graph.GenerateMermaid(r.nav.Snapshot()))
		return nil
	case "save":
		if err := r.nav.Save(ctx); err != nil {
			return err
		}
		fmt.Fprintf(r.out, ">>> Session '%s' saved.\n", r.nav.SessionID())
		return nil
	case "help", "?":
		fmt.Fprint(r.out, helpText)
		return nil
	case "quit", "exit":
		return ErrQuit
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	r.show()
	return nil
}

func (r *REPL) show() {
	out, err := tui.RenderStack(r.render, r.nav.Snapshot())
	if err != nil {
		out = tui.StackMarkdown(r.nav.Snapshot())
	}
	fmt.Fprint(r.out, out)
}
