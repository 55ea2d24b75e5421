package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/battnotify/battnotify/pkg/autostart"
	"github.com/battnotify/battnotify/pkg/config"
)

// newInstaller is replaced in tests.
var newInstaller = func() (*autostart.Installer, error) {
	return autostart.NewInstaller()
}

func NewInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "install [5-99]",
		Short:   "Start battnotify when you log in",
		GroupID: gInstallation,
		Long: `Register the current executable to start when you log in.

On macOS a LaunchAgent is written to ~/Library/LaunchAgents and loaded right
away. On Linux an autostart entry is written to ~/.config/autostart and takes
effect on the next login.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			res, err := config.ParseArgs(args)
			if err != nil {
				return err
			}
			if !res.MonitoringEnabled() {
				return fmt.Errorf("invalid limit: %s", res.Message)
			}

			exePath, err := os.Executable()
			if err != nil {
				return fmt.Errorf("failed to get the path to the current executable: %w", err)
			}

			i, err := newInstaller()
			if err != nil {
				return err
			}

			p, err := i.Install(exePath, []string{strconv.Itoa(res.UpperLimit)})
			if err != nil {
				return fmt.Errorf("failed to install: %w", err)
			}

			logrus.Infof("installation succeeded, battnotify will alert at %d%% (%s)", res.UpperLimit, p)
			return nil
		},
	}
}

func NewUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall",
		Short:   "Stop starting battnotify when you log in",
		GroupID: gInstallation,
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			i, err := newInstaller()
			if err != nil {
				return err
			}
			if err := i.Uninstall(); err != nil {
				return fmt.Errorf("failed to uninstall: %w", err)
			}

			logrus.Infof("battnotify will no longer start at login")
			return nil
		},
	}
}
