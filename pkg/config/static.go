package config

import (
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var _ Config = &Static{}

// Static is an immutable Config built from command-line input.
type Static struct {
	upperLimit        int
	monitoringEnabled bool
	interval          time.Duration
	sound             bool
	toast             bool
}

// Option customizes a Static config.
type Option func(*Static)

// WithUpperLimit sets the upper limit.
func WithUpperLimit(limit int) Option {
	return func(s *Static) { s.upperLimit = limit }
}

// WithMonitoring enables or disables the poll loop.
func WithMonitoring(enabled bool) Option {
	return func(s *Static) { s.monitoringEnabled = enabled }
}

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) Option {
	return func(s *Static) { s.interval = d }
}

// WithSound enables or disables the alert sound.
func WithSound(enabled bool) Option {
	return func(s *Static) { s.sound = enabled }
}

// WithToast enables or disables desktop toasts.
func WithToast(enabled bool) Option {
	return func(s *Static) { s.toast = enabled }
}

// New returns a Static config with defaults overridden by opts.
func New(opts ...Option) (*Static, error) {
	s := &Static{
		upperLimit:        DefaultUpperLimit,
		monitoringEnabled: true,
		interval:          DefaultInterval,
		sound:             true,
	}
	for _, o := range opts {
		o(s)
	}

	if err := ValidateUpperLimit(s.upperLimit); err != nil {
		return nil, err
	}
	if s.interval <= 0 {
		return nil, pkgerrors.Wrapf(ErrInvalidInterval, "got %s", s.interval)
	}

	return s, nil
}

func (s *Static) UpperLimit() int { return s.upperLimit }

func (s *Static) MonitoringEnabled() bool { return s.monitoringEnabled }

func (s *Static) Interval() time.Duration { return s.interval }

func (s *Static) Sound() bool { return s.sound }

func (s *Static) Toast() bool { return s.toast }

func (s *Static) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"upperLimit":        s.upperLimit,
		"monitoringEnabled": s.monitoringEnabled,
		"interval":          s.interval.String(),
		"sound":             s.sound,
		"toast":             s.toast,
	}
}
