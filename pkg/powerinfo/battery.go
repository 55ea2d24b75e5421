package powerinfo

import (
	"context"
	"math"
	"runtime"
	"strings"

	"github.com/distatus/battery"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ACDetector reports whether the AC line is connected.
type ACDetector interface {
	ACOnline() (bool, error)
}

// BatteryProvider samples power status through github.com/distatus/battery.
type BatteryProvider struct {
	getAll func() ([]*battery.Battery, error)
	ac     ACDetector
}

// NewBatteryProvider returns a BatteryProvider. If ac is not nil, it takes
// precedence over the battery state when deciding whether the charger is
// connected.
func NewBatteryProvider(ac ACDetector) *BatteryProvider {
	return &BatteryProvider{
		getAll: battery.GetAll,
		ac:     ac,
	}
}

// Auto returns the best provider available on this platform using the
// battery library. On Linux the AC line is read from sysfs.
func Auto() *BatteryProvider {
	if runtime.GOOS == "linux" {
		return NewBatteryProvider(NewSysfsACDetector(""))
	}
	return NewBatteryProvider(nil)
}

// Sample implements Provider.
func (p *BatteryProvider) Sample(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}

	batteries, err := p.getAll()
	bat := firstUsable(batteries)
	if bat == nil {
		if err != nil {
			return Sample{}, pkgerrors.Wrapf(err, "failed to read battery info")
		}
		return Sample{}, ErrNoBattery
	}
	if err != nil {
		// Partial errors are common on Linux (e.g. missing charge rate).
		logrus.WithError(err).Trace("battery info partially unavailable")
	}

	state := convertState(bat.State.String())
	s := Sample{
		Percent: clampPercent(int(math.Round(bat.Current / bat.Full * 100))),
		State:   state,
		// Idle means the charger is connected but the battery is not charging.
		Charging: state == Charging || state == Full || state == Idle,
	}

	if p.ac != nil {
		online, err := p.ac.ACOnline()
		if err == nil {
			s.Charging = online
		} else {
			logrus.WithError(err).Trace("AC line detection failed, using battery state")
		}
	}

	logrus.WithFields(logrus.Fields{
		"percent":  s.Percent,
		"charging": s.Charging,
		"state":    s.State,
	}).Trace("battery sampled")

	return s, nil
}

func firstUsable(batteries []*battery.Battery) *battery.Battery {
	for _, b := range batteries {
		if b != nil && b.Full > 0 {
			return b
		}
	}
	return nil
}

func convertState(s string) BatteryState {
	switch strings.ToLower(s) {
	case "charging":
		return Charging
	case "discharging", "empty":
		return Discharging
	case "full":
		return Full
	case "idle", "not charging":
		return Idle
	default:
		return Unknown
	}
}
