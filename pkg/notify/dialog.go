package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrNoDialog is returned when the platform has no usable dialog program.
var ErrNoDialog = errors.New("no dialog program available")

// DialogPrompter shows a native modal dialog by running the platform's
// dialog program.
type DialogPrompter struct {
	goos     string
	lookPath func(file string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

// NewDialogPrompter returns a DialogPrompter for the running platform.
func NewDialogPrompter() *DialogPrompter {
	return &DialogPrompter{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run:      runCommand,
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Available reports whether a dialog program was found.
func (p *DialogPrompter) Available() bool {
	_, _, err := p.command("", "")
	return err == nil
}

// Prompt implements Prompter.
func (p *DialogPrompter) Prompt(ctx context.Context, title, message string) error {
	name, args, err := p.command(title, message)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"program": name,
		"title":   title,
	}).Debug("showing dialog")

	return p.run(ctx, name, args...)
}

func (p *DialogPrompter) command(title, message string) (string, []string, error) {
	switch p.goos {
	case "darwin":
		if _, err := p.lookPath("osascript"); err != nil {
			return "", nil, ErrNoDialog
		}
		script := fmt.Sprintf(
			`display dialog %s with title %s buttons {"OK"} default button "OK" with icon caution`,
			appleScriptString(message), appleScriptString(title),
		)
		return "osascript", []string{"-e", script}, nil
	case "windows":
		if _, err := p.lookPath("powershell"); err != nil {
			return "", nil, ErrNoDialog
		}
		script := fmt.Sprintf(
			"Add-Type -AssemblyName System.Windows.Forms; [void][System.Windows.Forms.MessageBox]::Show(%s, %s, 'OK', 'Warning')",
			powerShellString(message), powerShellString(title),
		)
		return "powershell", []string{"-NoProfile", "-NonInteractive", "-Command", script}, nil
	default:
		if _, err := p.lookPath("zenity"); err == nil {
			return "zenity", []string{"--warning", "--no-markup", "--title=" + title, "--text=" + message}, nil
		}
		if _, err := p.lookPath("kdialog"); err == nil {
			return "kdialog", []string{"--title", title, "--sorry", message}, nil
		}
		return "", nil, ErrNoDialog
	}
}

func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func powerShellString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
