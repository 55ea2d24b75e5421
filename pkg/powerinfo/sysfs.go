package powerinfo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const defaultPowerSupplyDir = "/sys/class/power_supply"

// ErrNoACAdapter is returned when sysfs exposes no mains power supply.
var ErrNoACAdapter = errors.New("no AC adapter found in sysfs")

// SysfsACDetector reads the AC line status from the Linux power_supply class.
type SysfsACDetector struct {
	dir string
}

// NewSysfsACDetector returns a detector rooted at dir. An empty dir means
// /sys/class/power_supply.
func NewSysfsACDetector(dir string) *SysfsACDetector {
	if dir == "" {
		dir = defaultPowerSupplyDir
	}
	return &SysfsACDetector{dir: dir}
}

// ACOnline reports whether any mains adapter is online.
func (d *SysfsACDetector) ACOnline() (bool, error) {
	found := false
	for _, pattern := range []string{"AC*", "ACAD*", "ADP*"} {
		matches, err := filepath.Glob(filepath.Join(d.dir, pattern, "online"))
		if err != nil {
			return false, err
		}
		for _, m := range matches {
			b, err := os.ReadFile(m)
			if err != nil {
				continue
			}
			found = true
			if strings.TrimSpace(string(b)) == "1" {
				return true, nil
			}
		}
	}

	if !found {
		return false, ErrNoACAdapter
	}
	return false, nil
}
