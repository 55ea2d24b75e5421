package client

import "errors"

var (
	// ErrDaemonNotRunning is returned when no monitor is listening on the socket
	ErrDaemonNotRunning = errors.New("battnotify is not running")

	// ErrPermissionDenied is returned when the socket belongs to another user
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when 404 is returned from the monitor
	ErrNotFound = errors.New("404 not found")
)
