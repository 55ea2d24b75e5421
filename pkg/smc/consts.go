//go:build darwin

package smc

import "runtime"

// Various SMC keys.
const (
	ACPowerKey            = "AC-W"
	BatteryChargeKeyApple = "BUIC"
	BatteryChargeKeyIntel = "BBIF" // Not verified yet.
)

// batteryChargeKey returns the charge key for the running architecture.
func batteryChargeKey() string {
	if runtime.GOARCH == "amd64" {
		return BatteryChargeKeyIntel
	}
	return BatteryChargeKeyApple
}
