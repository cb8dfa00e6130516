// Package term models the interactive terminal boundary for botctl.
//
// The original workflow hard-coded "press any key" pauses into its core
// logic, which makes automated invocation impossible. Here the pauses
// and confirmations live behind the Prompter interface, injected into
// command logic: interactive sessions get a console-backed prompter,
// while non-interactive invocations (piped stdin, CI, --non-interactive)
// get a no-op prompter that never blocks.
package term

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Prompter is the interactive capability injected into commands.
type Prompter interface {
	// Pause prints the message (if any) followed by a continuation hint,
	// then blocks until the user presses Enter.
	Pause(message string)

	// Confirm asks a yes/no question and returns the user's answer.
	// Only an explicit "y"/"yes" counts as yes.
	Confirm(question string) bool
}

// consolePrompter reads answers from a terminal-attached reader.
type consolePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsolePrompter creates a Prompter that reads from in and writes
// prompts to out. Used for interactive sessions; tests pass scripted
// readers and buffers.
func NewConsolePrompter(in io.Reader, out io.Writer) Prompter {
	return &consolePrompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Pause blocks until the user presses Enter.
func (p *consolePrompter) Pause(message string) {
	if message != "" {
		fmt.Fprintln(p.out, message)
	}
	fmt.Fprint(p.out, "Press Enter to continue...")
	// The read result is irrelevant — any input (or EOF) releases the pause.
	_, _ = p.in.ReadString('\n')
	fmt.Fprintln(p.out)
}

// Confirm asks a [y/N] question. EOF or a read error counts as no,
// matching the conservative default for destructive operations.
func (p *consolePrompter) Confirm(question string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// nopPrompter never blocks and never confirms.
type nopPrompter struct{}

// NewNopPrompter returns a Prompter for non-interactive invocations.
// Pause is a no-op. Confirm always answers no, so destructive commands
// require an explicit --force when no terminal is attached.
func NewNopPrompter() Prompter {
	return nopPrompter{}
}

func (nopPrompter) Pause(string) {}

func (nopPrompter) Confirm(string) bool { return false }

// Interactive reports whether stdin is attached to a terminal.
// Cygwin/MSYS pseudo-terminals are detected separately because they are
// pipes at the OS level but behave as terminals for the user.
func Interactive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ForMode selects the appropriate Prompter: a console prompter when the
// session is interactive and non-interactive mode was not requested,
// otherwise the no-op prompter.
func ForMode(nonInteractive bool) Prompter {
	if nonInteractive || !Interactive() {
		return NewNopPrompter()
	}
	return NewConsolePrompter(os.Stdin, os.Stdout)
}
