// Package monitor decides when to ask the user to unplug the charger.
//
// The Monitor has two states. It is Idle until the charge first reaches the
// upper limit while plugged in, then Armed at the level it notified for. While
// Armed it notifies again only when the charge climbs further, and it returns
// to Idle once the charge falls below both the armed level and the limit.
package monitor

import (
	"fmt"

	"github.com/battnotify/battnotify/pkg/powerinfo"
)

// State is the state of the Monitor.
type State int

const (
	// Idle means no notification is active for the current charge cycle.
	Idle State = iota
	// Armed means a notification has fired and the Monitor is watching
	// for further climbing or for the charge to fall below the limit.
	Armed
)

func (s State) String() string {
	if s == Armed {
		return "armed"
	}
	return "idle"
}

// Decision is the outcome of evaluating one sample.
type Decision struct {
	Notify  bool
	Message string
}

// Monitor is the threshold-crossing state machine. It performs no I/O and
// is not safe for concurrent use.
type Monitor struct {
	upperLimit int
	// pendingHighLimit is the level of the last notification, 0 if inactive.
	pendingHighLimit int
}

// New returns an Idle Monitor for upperLimit.
func New(upperLimit int) *Monitor {
	return &Monitor{upperLimit: upperLimit}
}

// UpperLimit returns the configured limit.
func (m *Monitor) UpperLimit() int {
	return m.upperLimit
}

// PendingHighLimit returns the level the last notification fired at, or 0.
func (m *Monitor) PendingHighLimit() int {
	return m.pendingHighLimit
}

// State returns the current state.
func (m *Monitor) State() State {
	if m.pendingHighLimit > 0 {
		return Armed
	}
	return Idle
}

func (m *Monitor) reset() {
	m.pendingHighLimit = 0
}

// Evaluate feeds a sample to the Monitor and returns whether to notify.
func (m *Monitor) Evaluate(s powerinfo.Sample) Decision {
	percent := s.Percent

	// First crossing of the limit while plugged in.
	if s.Charging && m.pendingHighLimit == 0 && percent >= m.upperLimit {
		m.pendingHighLimit = percent
		return Decision{Notify: true, Message: FirstCrossingMessage(m.upperLimit)}
	}

	// Dropped under both the last notified level and the limit.
	if m.pendingHighLimit > percent && m.upperLimit > percent {
		m.reset()
		return Decision{}
	}

	// Still plugged in and climbing.
	if s.Charging && m.pendingHighLimit > 0 && m.pendingHighLimit < percent {
		m.pendingHighLimit = percent
		return Decision{Notify: true, Message: StillChargingMessage(percent, m.upperLimit)}
	}

	return Decision{}
}

// FirstCrossingMessage is shown when the limit is first reached.
func FirstCrossingMessage(upperLimit int) string {
	return fmt.Sprintf("Please remove the charger.\nBattery percentage is >= %d%%", upperLimit)
}

// StillChargingMessage is shown when the charge keeps climbing after a notification.
func StillChargingMessage(percent, upperLimit int) string {
	return fmt.Sprintf("You have not removed the charger. Please remove it.\nBattery percentage is exceeding %d%% > %d%%", percent, upperLimit)
}
