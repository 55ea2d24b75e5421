package main

import (
	"fmt"

	"github.com/battnotify/battnotify/pkg/powerinfo"
)

const (
	sourceAuto    = "auto"
	sourceBattery = "battery"
	sourceSMC     = "smc"
)

// newProvider is replaced in tests.
var newProvider = func(source string) (powerinfo.Provider, error) {
	switch source {
	case sourceAuto:
		return autoProvider(), nil
	case sourceBattery:
		return powerinfo.Auto(), nil
	case sourceSMC:
		return smcProvider()
	default:
		return nil, fmt.Errorf("unknown power source %q, expected one of %s, %s, %s", source, sourceAuto, sourceBattery, sourceSMC)
	}
}
