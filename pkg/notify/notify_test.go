package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSounder struct {
	beeps atomic.Int32
	err   error
	// reached is closed once beeps hits target.
	target  int32
	reached chan struct{}
	once    sync.Once
}

func newCountingSounder(target int32) *countingSounder {
	return &countingSounder{target: target, reached: make(chan struct{})}
}

func (s *countingSounder) Beep() error {
	if s.beeps.Add(1) >= s.target {
		s.once.Do(func() { close(s.reached) })
	}
	return s.err
}

type waitingPrompter struct {
	wait    <-chan struct{}
	err     error
	title   string
	message string
	calls   int
}

func (p *waitingPrompter) Prompt(ctx context.Context, title, message string) error {
	p.calls++
	p.title = title
	p.message = message
	if p.wait != nil {
		select {
		case <-p.wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.err
}

func TestAlerter_SoundStopsWhenPromptDismissed(t *testing.T) {
	sounder := newCountingSounder(3)
	prompter := &waitingPrompter{wait: sounder.reached}
	a := NewAlerter(prompter, WithSounder(sounder), WithBeepPause(time.Millisecond))

	err := a.Notify(context.Background(), "unplug", true)
	require.NoError(t, err)

	after := sounder.beeps.Load()
	assert.GreaterOrEqual(t, after, int32(3))

	// The sound task has been joined, so no more beeps can happen.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, sounder.beeps.Load())
	assert.Equal(t, DefaultTitle, prompter.title)
	assert.Equal(t, "unplug", prompter.message)
}

func TestAlerter_NoSoundWhenNotRequested(t *testing.T) {
	sounder := newCountingSounder(1)
	prompter := &waitingPrompter{}
	a := NewAlerter(prompter, WithSounder(sounder), WithBeepPause(time.Millisecond))

	require.NoError(t, a.Notify(context.Background(), "started", false))
	assert.Equal(t, int32(0), sounder.beeps.Load())
	assert.Equal(t, 1, prompter.calls)
}

func TestAlerter_NilSounderDisablesSound(t *testing.T) {
	prompter := &waitingPrompter{}
	a := NewAlerter(prompter, WithSounder(nil))
	require.NoError(t, a.Notify(context.Background(), "x", true))
	assert.Equal(t, 1, prompter.calls)
}

func TestAlerter_SoundFailureKeepsPrompt(t *testing.T) {
	sounder := newCountingSounder(2)
	sounder.err = errors.New("no audio device")
	prompter := &waitingPrompter{wait: sounder.reached}
	a := NewAlerter(prompter, WithSounder(sounder), WithBeepPause(time.Millisecond))

	assert.NoError(t, a.Notify(context.Background(), "x", true))
}

func TestAlerter_PromptErrorIsReturned(t *testing.T) {
	promptErr := errors.New("dialog crashed")
	a := NewAlerter(&waitingPrompter{err: promptErr}, WithSounder(newCountingSounder(1)), WithBeepPause(time.Millisecond))
	assert.ErrorIs(t, a.Notify(context.Background(), "x", true), promptErr)
}

func TestAlerter_CancelledContext(t *testing.T) {
	sounder := newCountingSounder(1)
	prompter := &waitingPrompter{wait: make(chan struct{})}
	a := NewAlerter(prompter, WithSounder(sounder), WithBeepPause(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-sounder.reached
		cancel()
	}()

	err := a.Notify(ctx, "x", true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAlerter_Toast(t *testing.T) {
	var gotTitle, gotMessage string
	a := NewAlerter(&waitingPrompter{}, WithSounder(nil), WithTitle("T"))
	a.toast = func(title, message string) error {
		gotTitle, gotMessage = title, message
		return errors.New("ignored")
	}

	require.NoError(t, a.Notify(context.Background(), "M", false))
	assert.Equal(t, "T", gotTitle)
	assert.Equal(t, "M", gotMessage)

	WithDesktopToast(false)(a)
	assert.Nil(t, a.toast)
}

func TestTerminalPrompter(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewTerminalPrompter(strings.NewReader("\n"), out)

	require.NoError(t, p.Prompt(context.Background(), "Title", "hello"))
	assert.Contains(t, out.String(), "Title")
	assert.Contains(t, out.String(), "hello")
}

func TestTerminalPrompter_EOF(t *testing.T) {
	p := NewTerminalPrompter(strings.NewReader(""), io.Discard)
	assert.NoError(t, p.Prompt(context.Background(), "T", "M"))
}

func TestTerminalPrompter_Cancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewTerminalPrompter(r, io.Discard)
	assert.ErrorIs(t, p.Prompt(ctx, "T", "M"), context.Canceled)
}

func TestLogPrompter(t *testing.T) {
	assert.NoError(t, LogPrompter{}.Prompt(context.Background(), "T", "line1\nline2"))
}
