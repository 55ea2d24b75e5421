package notify

import (
	"context"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultTitle is the title of every alert.
	DefaultTitle = "Battery Notification"

	beepFrequency    = 530
	beepDurationMS   = 300
	defaultBeepPause = time.Second
)

// Notifier tells the user something and blocks until it is acknowledged.
type Notifier interface {
	Notify(ctx context.Context, message string, withSound bool) error
}

// Prompter shows a message and blocks until the user acknowledges it or
// ctx is done.
type Prompter interface {
	Prompt(ctx context.Context, title, message string) error
}

// Sounder plays a single short audible signal.
type Sounder interface {
	Beep() error
}

// BeeepSounder beeps through github.com/gen2brain/beeep.
type BeeepSounder struct{}

// Beep implements Sounder.
func (BeeepSounder) Beep() error {
	return beeep.Beep(beepFrequency, beepDurationMS)
}

// Alerter is a Notifier that shows a blocking prompt and, if asked, repeats
// a beep until the prompt is dismissed.
type Alerter struct {
	prompter  Prompter
	sounder   Sounder
	title     string
	beepPause time.Duration
	toast     func(title, message string) error
}

// AlerterOption customizes an Alerter.
type AlerterOption func(*Alerter)

// WithSounder replaces the sound source. A nil Sounder disables sound.
func WithSounder(s Sounder) AlerterOption {
	return func(a *Alerter) { a.sounder = s }
}

// WithBeepPause sets the silence between two beeps.
func WithBeepPause(d time.Duration) AlerterOption {
	return func(a *Alerter) { a.beepPause = d }
}

// WithTitle sets the prompt title.
func WithTitle(title string) AlerterOption {
	return func(a *Alerter) { a.title = title }
}

// WithDesktopToast also posts a desktop notification for every alert.
func WithDesktopToast(enabled bool) AlerterOption {
	return func(a *Alerter) {
		if enabled {
			a.toast = func(title, message string) error {
				return beeep.Notify(title, message, "")
			}
		} else {
			a.toast = nil
		}
	}
}

// NewAlerter returns an Alerter using p to show messages.
func NewAlerter(p Prompter, opts ...AlerterOption) *Alerter {
	a := &Alerter{
		prompter:  p,
		sounder:   BeeepSounder{},
		title:     DefaultTitle,
		beepPause: defaultBeepPause,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Notify implements Notifier. The sound task started here never outlives
// the call.
func (a *Alerter) Notify(ctx context.Context, message string, withSound bool) error {
	if a.toast != nil {
		if err := a.toast(a.title, message); err != nil {
			logrus.WithError(err).Debug("failed to post desktop notification")
		}
	}

	if !withSound || a.sounder == nil {
		return a.prompter.Prompt(ctx, a.title, message)
	}

	soundCtx, stopSound := context.WithCancel(ctx)
	wg := &sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.repeatBeep(soundCtx)
	}()

	err := a.prompter.Prompt(ctx, a.title, message)

	stopSound()
	wg.Wait()

	return err
}

func (a *Alerter) repeatBeep(ctx context.Context) {
	t := time.NewTimer(0)
	defer t.Stop()

	failed := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		if err := a.sounder.Beep(); err != nil && !failed {
			// Keep the prompt up even if the platform has no sound.
			logrus.WithError(err).Warn("failed to play alert sound")
			failed = true
		}
		t.Reset(a.beepPause)
	}
}
