// Package autostart registers battnotify to start when the user logs in.
//
// On darwin a LaunchAgent is written to ~/Library/LaunchAgents and loaded
// with launchctl. Everywhere else an XDG autostart desktop entry is written
// to ~/.config/autostart.
package autostart

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"text/template"

	"github.com/sirupsen/logrus"
)

const (
	// Label is the launchd label of the LaunchAgent.
	Label = "io.github.battnotify"

	desktopFileName = "battnotify.desktop"
)

// ErrUnsupported is returned on platforms without a supported login mechanism.
var ErrUnsupported = errors.New("start at login is not supported on this platform")

var launchAgentTemplate = template.Must(template.New("plist").Funcs(template.FuncMap{
	"xml": html.EscapeString,
}).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>{{ xml .Label }}</string>
	<key>ProgramArguments</key>
	<array>
{{- range .Args }}
		<string>{{ xml . }}</string>
{{- end }}
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>ProcessType</key>
	<string>Interactive</string>
</dict>
</plist>
`))

var desktopEntryTemplate = template.Must(template.New("desktop").Parse(`[Desktop Entry]
Type=Application
Name=battnotify
Comment=Reminds you to unplug the charger
Exec={{ .Exec }}
Terminal=false
X-GNOME-Autostart-enabled=true
`))

// Installer writes and removes the login registration of one user.
type Installer struct {
	goos string
	home string
	run  func(name string, args ...string) error
}

// NewInstaller returns an Installer for the current user and platform.
func NewInstaller() (*Installer, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to find home directory: %w", err)
	}
	return NewInstallerFor(runtime.GOOS, home), nil
}

// NewInstallerFor returns an Installer writing below home as it would on goos.
func NewInstallerFor(goos, home string) *Installer {
	return &Installer{
		goos: goos,
		home: home,
		run:  runCommand,
	}
}

func runCommand(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Path returns the file the registration is written to.
func (i *Installer) Path() (string, error) {
	switch i.goos {
	case "darwin":
		return filepath.Join(i.home, "Library", "LaunchAgents", Label+".plist"), nil
	case "windows":
		return "", ErrUnsupported
	default:
		return filepath.Join(i.home, ".config", "autostart", desktopFileName), nil
	}
}

// Install registers exePath with args to run at login.
func (i *Installer) Install(exePath string, args []string) (string, error) {
	p, err := i.Path()
	if err != nil {
		return "", err
	}

	exePath, err = filepath.Abs(exePath)
	if err != nil {
		return "", fmt.Errorf("failed to get the absolute path to the executable: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"exe":  exePath,
		"args": args,
		"path": p,
	}).Info("writing login registration")

	content, err := i.render(exePath, args)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(p), err)
	}

	if _, err := os.Stat(p); err == nil {
		logrus.Warnf("%s already exists, overwriting", p)
		if i.goos == "darwin" {
			// launchd keeps the old definition until it is unloaded.
			if err := i.run("/bin/launchctl", "unload", p); err != nil {
				logrus.Debugf("unloading previous agent: %v", err)
			}
		}
	}

	if err := os.WriteFile(p, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", p, err)
	}

	if i.goos == "darwin" {
		if err := i.run("/bin/launchctl", "load", "-w", p); err != nil {
			return p, fmt.Errorf("failed to load %s: %w", p, err)
		}
	}

	return p, nil
}

// Uninstall removes the registration. A missing registration is not an error.
func (i *Installer) Uninstall() error {
	p, err := i.Path()
	if err != nil {
		return err
	}

	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			logrus.Infof("%s does not exist, nothing to remove", p)
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", p, err)
	}

	if i.goos == "darwin" {
		if err := i.run("/bin/launchctl", "unload", p); err != nil {
			logrus.Warnf("failed to unload %s: %v", p, err)
		}
	}

	if err := os.Remove(p); err != nil {
		return fmt.Errorf("failed to remove %s: %w", p, err)
	}
	return nil
}

func (i *Installer) render(exePath string, args []string) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	if i.goos == "darwin" {
		err = launchAgentTemplate.Execute(&buf, struct {
			Label string
			Args  []string
		}{Label: Label, Args: append([]string{exePath}, args...)})
	} else {
		quoted := make([]string, 0, len(args)+1)
		for _, a := range append([]string{exePath}, args...) {
			quoted = append(quoted, desktopQuote(a))
		}
		err = desktopEntryTemplate.Execute(&buf, struct{ Exec string }{Exec: strings.Join(quoted, " ")})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render login registration: %w", err)
	}

	return buf.Bytes(), nil
}

// desktopQuote quotes an Exec argument following the freedesktop Desktop Entry rules.
func desktopQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n\"'\\><~|&;$*?#()`") {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	return `"` + r.Replace(s) + `"`
}
