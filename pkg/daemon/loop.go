package daemon

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/battnotify/battnotify/pkg/events"
	"github.com/battnotify/battnotify/pkg/monitor"
	"github.com/battnotify/battnotify/pkg/powerinfo"
)

// loop runs poll ticks until ctx is done.
func (d *Daemon) loop(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		d.checkMissedTicks()
		d.tick(ctx)
		d.recorder.AddRecordNow()

		timer.Reset(d.conf.Interval())
	}
}

// checkMissedTicks logs when the previous tick is more than three intervals
// old, which usually means the system was asleep. The history before the
// gap is dropped afterwards.
func (d *Daemon) checkMissedTicks() bool {
	last := d.recorder.GetLastRecord()
	if last.IsZero() {
		return false
	}

	window := 3 * d.conf.Interval()
	gap := time.Since(last)
	if gap <= window {
		return false
	}

	logrus.WithFields(logrus.Fields{
		"lastTick":       last.Format(time.RFC3339),
		"gap":            gap.Round(time.Second).String(),
		"interval":       d.conf.Interval().String(),
		"ticksBeforeGap": len(d.recorder.GetRecords()),
		"recentRecords":  formatRelativeTimes(d.recorder.GetLastRecords(gap + window)),
	}).Info("Possibly missed poll ticks, the system may have been asleep")

	d.recorder.ClearRecords()
	return true
}

// tick samples the power status once, feeds it to the Monitor and notifies
// the user if the Monitor says so.
func (d *Daemon) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	sample, err := d.provider.Sample(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		d.handleSampleError(err)
		return
	}
	if d.sampleFailing {
		logrus.Info("power status available again")
		d.sampleFailing = false
	}

	before := d.monitor.State()
	decision := d.monitor.Evaluate(sample)
	after := d.monitor.State()

	d.printStatus(sample, after)
	d.recordSample(sample)

	if before != after {
		logrus.WithFields(logrus.Fields{
			"from":             before.String(),
			"to":               after.String(),
			"pendingHighLimit": d.monitor.PendingHighLimit(),
		}).Debug("monitor state changed")
		d.hub.Publish(events.MonitorTransition, events.TransitionEvent{
			From:             before.String(),
			To:               after.String(),
			PendingHighLimit: d.monitor.PendingHighLimit(),
			Ts:               time.Now().Unix(),
		})
	}

	if !decision.Notify {
		return
	}

	logrus.WithFields(logrus.Fields{
		"percent":    sample.Percent,
		"upperLimit": d.monitor.UpperLimit(),
	}).Info("Battery charge is above upper limit, notifying user")

	d.recordNotification(decision.Message)
	d.hub.Publish(events.MonitorNotified, events.NotifiedEvent{
		Message:  decision.Message,
		Percent:  sample.Percent,
		Charging: sample.Charging,
		Ts:       time.Now().Unix(),
	})

	// Notification failures must not stop the loop.
	if err := d.notifier.Notify(ctx, decision.Message, d.conf.Sound()); err != nil && ctx.Err() == nil {
		logrus.WithError(err).Error("failed to notify user")
	}
}

func (d *Daemon) handleSampleError(err error) {
	d.mu.Lock()
	d.status.LastError = err.Error()
	d.mu.Unlock()

	entry := logrus.WithError(err)
	if d.sampleFailing {
		entry.Debug("power status unavailable, skipping tick")
		return
	}
	d.sampleFailing = true

	if errors.Is(err, powerinfo.ErrNoBattery) {
		entry.Warn("no battery found, will keep checking")
		return
	}
	entry.Warn("power status unavailable, skipping tick")
}

func (d *Daemon) recordSample(s powerinfo.Sample) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.status.Ticks++
	d.status.LastSample = &s
	d.status.LastSampleAt = time.Now().Format(time.RFC3339)
	d.status.LastError = ""
	d.status.State = d.monitor.State().String()
	d.status.PendingHighLimit = d.monitor.PendingHighLimit()
}

func (d *Daemon) recordNotification(message string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.status.Notifications++
	d.status.LastNotification = message
	d.status.LastNotifiedAt = time.Now().Format(time.RFC3339)
}

type tickStatus struct {
	percent          int
	charging         bool
	state            monitor.State
	pendingHighLimit int
}

func (d *Daemon) printStatus(s powerinfo.Sample, state monitor.State) {
	currentStatus := tickStatus{
		percent:          s.Percent,
		charging:         s.Charging,
		state:            state,
		pendingHighLimit: d.monitor.PendingHighLimit(),
	}

	fields := logrus.Fields{
		"percent":          s.Percent,
		"charging":         s.Charging,
		"batteryState":     s.State.String(),
		"upperLimit":       d.conf.UpperLimit(),
		"monitorState":     state.String(),
		"pendingHighLimit": currentStatus.pendingHighLimit,
	}

	defer func() { d.lastPrintTime = time.Now() }()

	// Skip printing if the last print was less than Interval+1 seconds ago and everything is the same.
	if time.Since(d.lastPrintTime) < d.conf.Interval()+time.Second && d.lastStatus == currentStatus {
		logrus.WithFields(fields).Trace("poll tick status")
		return
	}

	logrus.WithFields(fields).Debug("poll tick status")

	d.lastStatus = currentStatus
}
