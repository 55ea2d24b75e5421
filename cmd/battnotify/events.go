package main

import (
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/battnotify/battnotify/pkg/client"
	"github.com/battnotify/battnotify/pkg/events"
)

func NewEventsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "events",
		GroupID: gMonitor,
		Short:   "Stream alerts and state changes of the running battnotify",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ch, err := client.NewClient(unixSocketPath).SubscribeEvents(cmd.Context())
			if err != nil {
				return err
			}

			for ev := range ch {
				printEvent(cmd, ev)
			}
			return nil
		},
	}
}

func printEvent(cmd *cobra.Command, ev events.Event) {
	switch ev.Name {
	case events.MonitorNotified:
		e, err := events.DecodeAs[events.NotifiedEvent](ev)
		if err != nil {
			logrus.WithError(err).Warn("failed to decode event")
			return
		}
		cmd.Printf("%s %s %s (%d%%, charging: %s)\n",
			formatUnix(e.Ts),
			color.New(color.Bold, color.FgYellow).Sprint("alert"),
			strings.ReplaceAll(e.Message, "\n", " "),
			e.Percent,
			bool2Text(e.Charging))
	case events.MonitorTransition:
		e, err := events.DecodeAs[events.TransitionEvent](ev)
		if err != nil {
			logrus.WithError(err).Warn("failed to decode event")
			return
		}
		cmd.Printf("%s %s %s -> %s (pending %d%%)\n",
			formatUnix(e.Ts),
			bold("state"),
			e.From,
			e.To,
			e.PendingHighLimit)
	default:
		cmd.Printf("%s %s\n", bold("%s", ev.Name), string(ev.Data))
	}
}

func formatUnix(ts int64) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(ts, 0).Format(time.Kitchen)
}
