package powerinfo

import (
	"context"
	"errors"
)

// BatteryState represents the charging state of the battery.
type BatteryState int

const (
	// Unknown indicates the state could not be determined.
	Unknown BatteryState = iota
	// Discharging indicates the battery is discharging.
	Discharging
	// Charging indicates the battery is charging.
	Charging
	// Full indicates the battery is full.
	Full
	// Idle indicates the battery is neither charging nor discharging,
	// which usually means the charger is connected but charging is inhibited.
	Idle
)

func (s BatteryState) String() string {
	switch s {
	case Discharging:
		return "discharging"
	case Charging:
		return "charging"
	case Full:
		return "full"
	case Idle:
		return "idle"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s BatteryState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *BatteryState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "discharging":
		*s = Discharging
	case "charging":
		*s = Charging
	case "full":
		*s = Full
	case "idle":
		*s = Idle
	default:
		*s = Unknown
	}
	return nil
}

// Sample is a single power status reading, taken once per poll tick.
type Sample struct {
	// Charging is true if and only if the AC line is connected.
	Charging bool `json:"charging"`
	// Percent is the battery charge in [0, 100].
	Percent int `json:"percent"`
	// State is informative only. Decisions are made on Charging.
	State BatteryState `json:"state"`
}

// ErrNoBattery is returned when the machine has no battery, e.g. a desktop.
var ErrNoBattery = errors.New("no battery found")

// Provider reads the current power status.
type Provider interface {
	Sample(ctx context.Context) (Sample, error)
}

// ProviderFunc adapts a function to a Provider.
type ProviderFunc func(ctx context.Context) (Sample, error)

// Sample calls f(ctx).
func (f ProviderFunc) Sample(ctx context.Context) (Sample, error) {
	return f(ctx)
}

// clampPercent keeps p within [0, 100].
func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
