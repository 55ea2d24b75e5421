//go:build darwin

// Package smc reads battery charge and AC line status from the Apple SMC.
package smc

import (
	"context"
	"sync"

	"github.com/charlie0129/gosmc"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/battnotify/battnotify/pkg/powerinfo"
)

// AppleSMC is a read-only wrapper of gosmc.Connection.
type AppleSMC struct {
	conn Connection
	mu   sync.Mutex
	open bool
}

// New returns a new AppleSMC.
func New() *AppleSMC {
	return &AppleSMC{
		conn: gosmc.New(),
	}
}

// Open opens the connection.
func (c *AppleSMC) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open {
		return nil
	}
	if err := c.conn.Open(); err != nil {
		return pkgerrors.Wrap(err, "failed to open SMC connection")
	}
	c.open = true
	return nil
}

// Close closes the connection.
func (c *AppleSMC) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil
	}
	c.open = false
	return c.conn.Close()
}

// Read reads a value from SMC.
func (c *AppleSMC) Read(key string) (gosmc.SMCVal, error) {
	logrus.WithFields(logrus.Fields{
		"key": key,
	}).Trace("Trying to read from SMC")

	v, err := c.conn.Read(key)
	if err != nil {
		return v, err
	}

	logrus.WithFields(logrus.Fields{
		"key": key,
		"val": v,
	}).Trace("Load from SMC succeed")

	return v, nil
}

// Sample implements powerinfo.Provider. The connection is opened on first use.
func (c *AppleSMC) Sample(ctx context.Context) (powerinfo.Sample, error) {
	if err := ctx.Err(); err != nil {
		return powerinfo.Sample{}, err
	}
	if err := c.Open(); err != nil {
		return powerinfo.Sample{}, err
	}

	charge, err := c.GetBatteryCharge()
	if err != nil {
		return powerinfo.Sample{}, pkgerrors.Wrap(err, "failed to read battery charge")
	}

	pluggedIn, err := c.IsPluggedIn()
	if err != nil {
		return powerinfo.Sample{}, pkgerrors.Wrap(err, "failed to read AC power status")
	}

	state := powerinfo.Discharging
	switch {
	case pluggedIn && charge >= 100:
		state = powerinfo.Full
	case pluggedIn:
		state = powerinfo.Charging
	}

	return powerinfo.Sample{
		Charging: pluggedIn,
		Percent:  min(max(charge, 0), 100),
		State:    state,
	}, nil
}

var _ powerinfo.Provider = &AppleSMC{}
