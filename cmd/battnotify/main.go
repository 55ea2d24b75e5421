package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/battnotify/battnotify/pkg/client"
	"github.com/battnotify/battnotify/pkg/config"
	"github.com/battnotify/battnotify/pkg/daemon"
	"github.com/battnotify/battnotify/pkg/notify"
	"github.com/battnotify/battnotify/pkg/version"
)

var (
	logLevel       = "info"
	interval       = config.DefaultInterval
	sound          = true
	toast          = false
	source         = sourceAuto
	unixSocketPath = defaultSocketPath()
)

var (
	gMonitor      = "Monitor:"
	gInstallation = "Installation:"
	commandGroups = []string{
		gMonitor,
		gInstallation,
	}
)

// newNotifier is replaced in tests.
var newNotifier = func(toast bool) notify.Notifier {
	return notify.NewAlerter(notify.NewPrompter(), notify.WithDesktopToast(toast))
}

func defaultSocketPath() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("battnotify-%d.sock", os.Getuid()))
}

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	if errors.Is(err, client.ErrDaemonNotRunning) {
		fmt.Fprintln(os.Stderr, "\nError: battnotify is not running")
		fmt.Fprintf(os.Stderr, "Start it with 'battnotify [limit]' or check --socket (currently %s)\n", unixSocketPath)
	} else if errors.Is(err, client.ErrPermissionDenied) {
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - The socket belongs to another user. Run the command as the user that started battnotify.")
	} else if errors.Is(err, daemon.ErrAlreadyRunning) {
		fmt.Fprintln(os.Stderr, "\nError: battnotify is already running")
		fmt.Fprintln(os.Stderr, "  - Use 'battnotify status' to inspect it.")
	}
}

func main() {
	// battnotify wakes up twice a minute and does not need more.
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		handleCmdError(err)
		stop()
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "battnotify [/? | 5-99]",
		Short: "battnotify reminds you to unplug the charger once the battery is charged enough",
		Long: `battnotify watches the battery while it charges and asks you to remove the
charger once the charge reaches the upper limit (default 90%). The alert is a
modal prompt with a repeating beep, repeated while charging continues.

Run 'battnotify /?' for the short usage text.`,
		SilenceUsage:      true,
		Args:              cobra.ArbitraryArgs,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
		RunE: runMonitor,
	}

	// Anything that is not a limit or /? is shown as an invalid parameter,
	// including things that look like flags.
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		arg, ok := unknownFlagArg(err)
		if c.HasParent() || !ok {
			return err
		}
		res, parseErr := config.ParseArgs([]string{arg})
		logrus.WithError(parseErr).Debug("not starting monitoring")
		showMessage(c, res.Message)
		return nil
	})
	// "help" is an invalid parameter too. --help still works.
	cmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&unixSocketPath, "socket", defaultSocketPath(), "status socket path, empty disables the status socket")

	f := cmd.Flags()
	f.DurationVar(&interval, "interval", config.DefaultInterval, "time between two battery checks")
	f.BoolVar(&sound, "sound", true, "beep while an alert is shown")
	f.BoolVar(&toast, "toast", false, "also post a desktop notification for each alert")
	f.StringVar(&source, "source", sourceAuto, "power status source (auto, battery, smc)")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewStatusCommand(),
		NewLimitCommand(),
		NewEventsCommand(),
		NewVersionCommand(),
		NewInstallCommand(),
		NewUninstallCommand(),
	)

	return cmd
}

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

// showMessage shows help and invalid input like any other message. They
// are not failures.
func showMessage(cmd *cobra.Command, message string) {
	err := newNotifier(toast).Notify(cmd.Context(), message, false)
	if err != nil && cmd.Context().Err() == nil {
		logrus.WithError(err).Warn("failed to show message")
	}
}

// unknownFlagArg returns the argument pflag rejected as an unknown flag.
func unknownFlagArg(err error) (string, bool) {
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "unknown shorthand flag: "):
		// unknown shorthand flag: '1' in -1
		if i := strings.LastIndex(msg, " in "); i >= 0 {
			return msg[i+len(" in "):], true
		}
	case strings.HasPrefix(msg, "unknown flag: "):
		return strings.TrimPrefix(msg, "unknown flag: "), true
	}
	return "", false
}

// runMonitor is the root command: parse the limit, then watch the battery
// until interrupted.
func runMonitor(cmd *cobra.Command, args []string) error {
	res, err := config.ParseArgs(args)
	if err != nil {
		logrus.WithError(err).Debug("not starting monitoring")
	}

	if !res.MonitoringEnabled() {
		showMessage(cmd, res.Message)
		return nil
	}

	conf, err := config.New(
		config.WithUpperLimit(res.UpperLimit),
		config.WithInterval(interval),
		config.WithSound(sound),
		config.WithToast(toast),
	)
	if err != nil {
		return err
	}

	provider, err := newProvider(source)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"version": version.Version,
		"commit":  version.GitCommit,
		"source":  source,
		"socket":  unixSocketPath,
	}).Info("battnotify starting")

	d := daemon.New(conf, provider, newNotifier(conf.Toast()))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var (
		wg       sync.WaitGroup
		serveErr error
	)
	if unixSocketPath != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := daemon.Serve(ctx, d, unixSocketPath)
			if err == nil {
				return
			}
			if errors.Is(err, daemon.ErrAlreadyRunning) {
				serveErr = err
				cancel()
				return
			}
			logrus.WithError(err).Warn("status socket unavailable, monitoring continues without it")
		}()
	}

	err = d.Run(ctx)
	cancel()
	wg.Wait()

	if serveErr != nil {
		return serveErr
	}
	return err
}
