package types

import "github.com/battnotify/battnotify/pkg/powerinfo"

// Status is a snapshot of the running monitor.
// This struct is shared between the daemon and client packages.
type Status struct {
	UpperLimit       int               `json:"upperLimit"`
	Interval         string            `json:"interval"`
	State            string            `json:"state"`
	PendingHighLimit int               `json:"pendingHighLimit"`
	Ticks            int               `json:"ticks"`
	StartedAt        string            `json:"startedAt"`
	LastSample       *powerinfo.Sample `json:"lastSample,omitempty"`
	LastSampleAt     string            `json:"lastSampleAt,omitempty"`
	LastError        string            `json:"lastError,omitempty"`
	LastNotification string            `json:"lastNotification,omitempty"`
	LastNotifiedAt   string            `json:"lastNotifiedAt,omitempty"`
	Notifications    int               `json:"notifications"`
}
