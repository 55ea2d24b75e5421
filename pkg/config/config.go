package config

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// MinUpperLimit and MaxUpperLimit bound the configurable limit, inclusive.
	MinUpperLimit = 5
	MaxUpperLimit = 99
	// DefaultUpperLimit is used when no limit is given on the command line.
	DefaultUpperLimit = 90
	// DefaultInterval is the time between two poll ticks.
	DefaultInterval = 30 * time.Second
)

// Config is the read-only runtime configuration. It is fixed at startup.
type Config interface {
	// UpperLimit is the charge percentage at which the user is asked to
	// remove the charger.
	UpperLimit() int
	// MonitoringEnabled is false when the poll loop must not start, e.g.
	// help was requested or the argument was invalid.
	MonitoringEnabled() bool
	// Interval is the time between two poll ticks.
	Interval() time.Duration
	// Sound enables the repeating beep while an alert is shown.
	Sound() bool
	// Toast additionally posts a desktop notification for each alert.
	Toast() bool

	LogrusFields() logrus.Fields
}
