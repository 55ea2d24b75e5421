package powerinfo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/distatus/battery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAC struct {
	online bool
	err    error
}

func (f fakeAC) ACOnline() (bool, error) { return f.online, f.err }

func newTestProvider(bats []*battery.Battery, err error, ac ACDetector) *BatteryProvider {
	return &BatteryProvider{
		getAll: func() ([]*battery.Battery, error) { return bats, err },
		ac:     ac,
	}
}

func TestBatteryProvider_NoBattery(t *testing.T) {
	p := newTestProvider(nil, nil, nil)
	_, err := p.Sample(context.Background())
	assert.ErrorIs(t, err, ErrNoBattery)
}

func TestBatteryProvider_ReadError(t *testing.T) {
	readErr := errors.New("boom")
	p := newTestProvider(nil, readErr, nil)
	_, err := p.Sample(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, readErr)
}

func TestBatteryProvider_SkipsUnusableBatteries(t *testing.T) {
	p := newTestProvider([]*battery.Battery{
		nil,
		{Full: 0, Current: 10},
		{Full: 50000, Current: 45500},
	}, errors.New("partial"), fakeAC{online: true})

	s, err := p.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 91, s.Percent)
	assert.True(t, s.Charging)
}

func TestBatteryProvider_ACDetectorWins(t *testing.T) {
	p := newTestProvider([]*battery.Battery{{Full: 100, Current: 100}}, nil, fakeAC{online: false})
	s, err := p.Sample(context.Background())
	require.NoError(t, err)
	assert.False(t, s.Charging)
	assert.Equal(t, 100, s.Percent)
}

func TestBatteryProvider_ACDetectorErrorFallsBack(t *testing.T) {
	p := newTestProvider([]*battery.Battery{{Full: 100, Current: 40}}, nil, fakeAC{err: ErrNoACAdapter})
	s, err := p.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 40, s.Percent)
}

func TestBatteryProvider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newTestProvider([]*battery.Battery{{Full: 100, Current: 40}}, nil, nil)
	_, err := p.Sample(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvertState(t *testing.T) {
	tests := map[string]BatteryState{
		"Charging":     Charging,
		"Discharging":  Discharging,
		"Empty":        Discharging,
		"Full":         Full,
		"Idle":         Idle,
		"Not charging": Idle,
		"Unknown":      Unknown,
		"Undefined":    Unknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, convertState(in), in)
	}
}

func TestSysfsACDetector(t *testing.T) {
	writeOnline := func(t *testing.T, dir, name, value string) {
		t.Helper()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name, "online"), []byte(value+"\n"), 0o644))
	}

	t.Run("online", func(t *testing.T) {
		dir := t.TempDir()
		writeOnline(t, dir, "AC", "1")
		online, err := NewSysfsACDetector(dir).ACOnline()
		require.NoError(t, err)
		assert.True(t, online)
	})

	t.Run("offline", func(t *testing.T) {
		dir := t.TempDir()
		writeOnline(t, dir, "ADP1", "0")
		online, err := NewSysfsACDetector(dir).ACOnline()
		require.NoError(t, err)
		assert.False(t, online)
	})

	t.Run("no adapter", func(t *testing.T) {
		_, err := NewSysfsACDetector(t.TempDir()).ACOnline()
		assert.ErrorIs(t, err, ErrNoACAdapter)
	})
}
