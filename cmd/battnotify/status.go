package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/battnotify/battnotify/pkg/client"
	"github.com/battnotify/battnotify/pkg/types"
	"github.com/battnotify/battnotify/pkg/version"
)

func NewStatusCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "status",
		GroupID: gMonitor,
		Short:   "Get the status of the running battnotify",
		Long:    `Get the upper limit, monitor state, last battery reading and notification history of the running battnotify.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := client.NewClient(unixSocketPath)

			status, err := c.GetStatus(cmd.Context())
			if err != nil {
				return err
			}

			if daemonVersion, err := c.GetVersion(cmd.Context()); err == nil {
				if daemonVersion != version.Version {
					logrus.WithFields(logrus.Fields{
						"clientVersion": version.Version,
						"daemonVersion": daemonVersion,
					}).Warn("Version mismatch between this command and the running battnotify.")
				}
			} else if errors.Is(err, client.ErrNotFound) {
				logrus.Warn("running battnotify is too old to report its version")
			}

			if asJSON {
				b, err := json.MarshalIndent(status, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal status: %w", err)
				}
				cmd.Println(string(b))
				return nil
			}

			printStatus(cmd, status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print status as JSON")

	return cmd
}

func NewLimitCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "limit",
		GroupID: gMonitor,
		Short:   "Print the upper limit of the running battnotify",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, err := client.NewClient(unixSocketPath).GetLimit(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("%d%%\n", limit)
			return nil
		},
	}
}

func printStatus(cmd *cobra.Command, s *types.Status) {
	cmd.Println(bold("Monitor:"))
	cmd.Printf("  Upper limit: %s\n", bold("%d%%", s.UpperLimit))
	switch {
	case s.PendingHighLimit > 0:
		cmd.Printf("  State: %s (last alert at %d%%)\n", bold("%s", s.State), s.PendingHighLimit)
		cmd.Println("    You will be reminded again if the charge keeps rising.")
	default:
		cmd.Printf("  State: %s\n", bold("%s", s.State))
		cmd.Printf("    You will be alerted once the charge reaches %d%% while charging.\n", s.UpperLimit)
	}
	cmd.Printf("  Poll interval: %s, %d checks", s.Interval, s.Ticks)
	if s.StartedAt != "" {
		cmd.Printf(" since %s", formatTimestamp(s.StartedAt))
	}
	cmd.Println()

	cmd.Println()
	cmd.Println(bold("Battery status:"))
	if s.LastSample == nil {
		cmd.Println("  No reading yet.")
	} else {
		cmd.Printf("  Current charge: %s\n", bold("%d%%", s.LastSample.Percent))
		cmd.Println("  Charging: " + bool2Text(s.LastSample.Charging))
		cmd.Printf("  State: %s\n", s.LastSample.State)
		if s.LastSampleAt != "" {
			cmd.Printf("  Read at: %s\n", formatTimestamp(s.LastSampleAt))
		}
	}
	if s.LastError != "" {
		cmd.Printf("  Last error: %s\n", color.New(color.FgRed).Sprint(s.LastError))
	}

	cmd.Println()
	cmd.Println(bold("Notifications:"))
	cmd.Printf("  Sent: %d\n", s.Notifications)
	if s.LastNotification != "" {
		cmd.Printf("  Last: %s at %s\n", strings.ReplaceAll(s.LastNotification, "\n", " "), formatTimestamp(s.LastNotifiedAt))
	}
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format(time.Kitchen)
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
