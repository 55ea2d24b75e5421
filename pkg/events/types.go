package events

import "encoding/json"

// Event name constants
const (
	MonitorNotified   = "monitor.notified"
	MonitorTransition = "monitor.transition"
)

// Event is a generic SSE event from the monitor.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// NotifiedEvent is the typed payload for monitor.notified.
type NotifiedEvent struct {
	Message  string `json:"message"`
	Percent  int    `json:"percent"`
	Charging bool   `json:"charging"`
	Ts       int64  `json:"ts"`
}

// TransitionEvent is the typed payload for monitor.transition.
type TransitionEvent struct {
	From             string `json:"from"`
	To               string `json:"to"`
	PendingHighLimit int    `json:"pendingHighLimit"`
	Ts               int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is empty,
// it returns the zero value of T with a nil error.
//
// Example:
//
//	payload, err := events.DecodeAs[events.NotifiedEvent](ev)
//	if err != nil { /* handle */ }
//	fmt.Println(payload.Message)
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
