package daemon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/battnotify/battnotify/pkg/config"
	"github.com/battnotify/battnotify/pkg/events"
	"github.com/battnotify/battnotify/pkg/monitor"
	"github.com/battnotify/battnotify/pkg/notify"
	"github.com/battnotify/battnotify/pkg/powerinfo"
	"github.com/battnotify/battnotify/pkg/types"
)

const recorderSize = 60

// Daemon owns the configuration and the Monitor, and drives the poll loop.
type Daemon struct {
	conf     config.Config
	provider powerinfo.Provider
	notifier notify.Notifier
	monitor  *monitor.Monitor
	hub      *events.EventHub
	recorder *TimeSeriesRecorder

	// status is read by the status socket while the loop writes it.
	mu     sync.RWMutex
	status types.Status

	// Only touched by the poll loop.
	lastPrintTime time.Time
	lastStatus    tickStatus
	sampleFailing bool
}

// New returns a Daemon. Nothing runs until Run is called.
func New(conf config.Config, provider powerinfo.Provider, notifier notify.Notifier) *Daemon {
	return &Daemon{
		conf:     conf,
		provider: provider,
		notifier: notifier,
		monitor:  monitor.New(conf.UpperLimit()),
		hub:      events.NewEventHub(),
		recorder: NewTimeSeriesRecorder(recorderSize),
		status: types.Status{
			UpperLimit: conf.UpperLimit(),
			Interval:   conf.Interval().String(),
			State:      monitor.Idle.String(),
		},
	}
}

// Events returns the hub notifications and state transitions are published to.
func (d *Daemon) Events() *events.EventHub {
	return d.hub
}

// Status returns a snapshot of the monitor.
func (d *Daemon) Status() types.Status {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s := d.status
	if s.LastSample != nil {
		sample := *s.LastSample
		s.LastSample = &sample
	}
	return s
}

// Run announces the start of monitoring and runs the poll loop until ctx
// is done. It returns immediately if monitoring is disabled.
func (d *Daemon) Run(ctx context.Context) error {
	if !d.conf.MonitoringEnabled() {
		logrus.Debug("monitoring disabled, not starting poll loop")
		return nil
	}

	d.mu.Lock()
	d.status.StartedAt = time.Now().Format(time.RFC3339)
	d.mu.Unlock()

	logrus.WithFields(d.conf.LogrusFields()).Info("battery monitoring starting")

	err := d.notifier.Notify(ctx, fmt.Sprintf("Battery Monitoring started for %d%%", d.conf.UpperLimit()), false)
	if err != nil && ctx.Err() == nil {
		logrus.WithError(err).Warn("failed to show start notification")
	}

	logrus.Debugln("poll loop starts")
	d.loop(ctx)
	logrus.Info("poll loop stopped")

	return nil
}
