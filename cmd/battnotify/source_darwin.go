//go:build darwin

package main

import (
	"github.com/sirupsen/logrus"

	"github.com/battnotify/battnotify/pkg/powerinfo"
	"github.com/battnotify/battnotify/pkg/smc"
)

func smcProvider() (powerinfo.Provider, error) {
	c := smc.New()
	if err := c.Open(); err != nil {
		return nil, err
	}
	return c, nil
}

// autoProvider prefers the SMC and falls back to IOKit through the battery
// library when the SMC cannot be opened.
func autoProvider() powerinfo.Provider {
	p, err := smcProvider()
	if err != nil {
		logrus.WithError(err).Warn("SMC unavailable, falling back to battery source")
		return powerinfo.Auto()
	}
	return p
}
