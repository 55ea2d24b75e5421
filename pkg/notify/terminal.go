package notify

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// TerminalPrompter prints the message and waits for Enter.
type TerminalPrompter struct {
	in  io.Reader
	out io.Writer
}

// NewTerminalPrompter returns a TerminalPrompter reading from in and
// writing to out.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: in, out: out}
}

// Prompt implements Prompter.
func (p *TerminalPrompter) Prompt(ctx context.Context, title, message string) error {
	header := color.New(color.Bold, color.FgYellow).Sprintf("=== %s ===", title)
	_, err := fmt.Fprintf(p.out, "\n%s\n%s\n%s ", header, message, color.New(color.Faint).Sprint("Press Enter to acknowledge..."))
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(p.in).ReadString('\n')
		if err == io.EOF {
			err = nil
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_, _ = fmt.Fprintln(p.out)
		return ctx.Err()
	}
}

// LogPrompter only logs the message. It is the last resort on headless
// sessions and returns immediately.
type LogPrompter struct{}

// Prompt implements Prompter.
func (LogPrompter) Prompt(_ context.Context, title, message string) error {
	logrus.WithField("title", title).Warn(strings.ReplaceAll(message, "\n", " "))
	return nil
}

// NewPrompter picks the best Prompter for this session: a native dialog,
// then the terminal, then the log.
func NewPrompter() Prompter {
	if d := NewDialogPrompter(); d.Available() {
		return d
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		logrus.Debug("no dialog program found, prompting on the terminal")
		return NewTerminalPrompter(os.Stdin, os.Stdout)
	}
	logrus.Warn("no dialog program or terminal available, alerts will only be logged")
	return LogPrompter{}
}
