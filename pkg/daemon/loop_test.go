package daemon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battnotify/battnotify/pkg/config"
	"github.com/battnotify/battnotify/pkg/events"
	"github.com/battnotify/battnotify/pkg/monitor"
	"github.com/battnotify/battnotify/pkg/powerinfo"
)

type result struct {
	sample powerinfo.Sample
	err    error
}

func plugged(p int) result   { return result{sample: powerinfo.Sample{Charging: true, Percent: p}} }
func unplugged(p int) result { return result{sample: powerinfo.Sample{Charging: false, Percent: p}} }

// scriptedProvider replays results and cancels the loop once they run out.
type scriptedProvider struct {
	results []result
	next    int
	cancel  context.CancelFunc
}

func (p *scriptedProvider) Sample(_ context.Context) (powerinfo.Sample, error) {
	if p.next >= len(p.results) {
		p.cancel()
		return powerinfo.Sample{}, context.Canceled
	}
	r := p.results[p.next]
	p.next++
	return r.sample, r.err
}

type notifyCall struct {
	message   string
	withSound bool
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, message string, withSound bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{message: message, withSound: withSound})
	return n.err
}

func newTestDaemon(t *testing.T, results []result, opts ...config.Option) (*Daemon, *recordingNotifier, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	conf, err := config.New(append([]config.Option{config.WithInterval(time.Millisecond)}, opts...)...)
	require.NoError(t, err)

	n := &recordingNotifier{}
	d := New(conf, &scriptedProvider{results: results, cancel: cancel}, n)
	return d, n, ctx
}

func TestRun_Scenario(t *testing.T) {
	d, n, ctx := newTestDaemon(t, []result{
		plugged(89),
		plugged(90),
		plugged(90),
		plugged(95),
		plugged(93),
		plugged(85),
		plugged(90),
	})

	require.NoError(t, d.Run(ctx))

	assert.Equal(t, []notifyCall{
		{message: "Battery Monitoring started for 90%", withSound: false},
		{message: monitor.FirstCrossingMessage(90), withSound: true},
		{message: monitor.StillChargingMessage(95, 90), withSound: true},
		{message: monitor.FirstCrossingMessage(90), withSound: true},
	}, n.calls)

	status := d.Status()
	assert.Equal(t, 7, status.Ticks)
	assert.Equal(t, 3, status.Notifications)
	assert.Equal(t, monitor.Armed.String(), status.State)
	assert.Equal(t, 90, status.PendingHighLimit)
	require.NotNil(t, status.LastSample)
	assert.Equal(t, 90, status.LastSample.Percent)
	assert.NotEmpty(t, status.StartedAt)
}

func TestRun_MonitoringDisabled(t *testing.T) {
	d, n, ctx := newTestDaemon(t, []result{plugged(99)}, config.WithMonitoring(false))

	require.NoError(t, d.Run(ctx))
	assert.Empty(t, n.calls)
	assert.Equal(t, 0, d.Status().Ticks)
}

func TestRun_ProviderErrorsAreSkipped(t *testing.T) {
	d, n, ctx := newTestDaemon(t, []result{
		{err: powerinfo.ErrNoBattery},
		{err: errors.New("driver failure")},
		plugged(91),
		{err: errors.New("driver failure")},
		plugged(92),
	})

	require.NoError(t, d.Run(ctx))

	assert.Equal(t, []notifyCall{
		{message: "Battery Monitoring started for 90%"},
		{message: monitor.FirstCrossingMessage(90), withSound: true},
		{message: monitor.StillChargingMessage(92, 90), withSound: true},
	}, n.calls)
	assert.Equal(t, 2, d.Status().Ticks)
	assert.Empty(t, d.Status().LastError)
}

func TestRun_NotifierFailureDoesNotStopLoop(t *testing.T) {
	d, n, ctx := newTestDaemon(t, []result{
		plugged(91),
		unplugged(80),
		plugged(91),
	})
	n.err = errors.New("dialog crashed")

	require.NoError(t, d.Run(ctx))
	assert.Len(t, n.calls, 3)
	assert.Equal(t, 3, d.Status().Ticks)
}

func TestRun_SoundDisabled(t *testing.T) {
	d, n, ctx := newTestDaemon(t, []result{plugged(95)}, config.WithSound(false))

	require.NoError(t, d.Run(ctx))
	require.Len(t, n.calls, 2)
	assert.False(t, n.calls[1].withSound)
}

func TestRun_StopsOnCancel(t *testing.T) {
	conf, err := config.New(config.WithInterval(time.Hour))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	p := powerinfo.ProviderFunc(func(context.Context) (powerinfo.Sample, error) {
		return powerinfo.Sample{Charging: true, Percent: 50}, nil
	})
	d := New(conf, p, &recordingNotifier{})

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool { return d.Status().Ticks == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestTick_PublishesEvents(t *testing.T) {
	d, _, ctx := newTestDaemon(t, []result{plugged(95), unplugged(80)})
	ch := d.Events().Subscribe()
	defer d.Events().Unsubscribe(ch)

	d.tick(ctx)

	var names []string
	for len(ch) > 0 {
		names = append(names, (<-ch).Name)
	}
	assert.Equal(t, []string{events.MonitorTransition, events.MonitorNotified}, names)

	d.tick(ctx)
	ev := <-ch
	assert.Equal(t, events.MonitorTransition, ev.Name)
	payload, err := events.DecodeAs[events.TransitionEvent](ev)
	require.NoError(t, err)
	assert.Equal(t, "armed", payload.From)
	assert.Equal(t, "idle", payload.To)
}

func TestCheckMissedTicks(t *testing.T) {
	d, _, _ := newTestDaemon(t, nil, config.WithInterval(10*time.Second))

	assert.False(t, d.checkMissedTicks(), "no records yet")

	d.recorder.AddRecord(time.Now().Add(-10 * time.Second))
	assert.False(t, d.checkMissedTicks())

	// A late tick of up to three intervals is not a gap.
	d.recorder.ClearRecords()
	d.recorder.AddRecord(time.Now().Add(-25 * time.Second))
	assert.False(t, d.checkMissedTicks())

	d.recorder.ClearRecords()
	d.recorder.AddRecord(time.Now().Add(-6 * time.Minute))
	d.recorder.AddRecord(time.Now().Add(-5 * time.Minute))
	assert.True(t, d.checkMissedTicks())
	assert.Empty(t, d.recorder.GetRecords(), "history before the gap is dropped")
	assert.False(t, d.checkMissedTicks())
}
