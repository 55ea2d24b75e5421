package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

var (
	// ErrLimitOutOfRange is returned when the limit is outside [5, 99].
	ErrLimitOutOfRange = errors.New("monitoring value should be in range 5-99")
	// ErrInvalidParameter is returned for arguments that are neither a number nor /?.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInvalidInterval is returned for a non-positive poll interval.
	ErrInvalidInterval = errors.New("poll interval must be positive")
)

// HelpArg is the argument that asks for the usage text.
const HelpArg = "/?"

// HelpText is shown for /? and appended to invalid argument messages.
const HelpText = `

Usage:
********

battnotify /? (Help)
battnotify <5-99> (Default value is: 90%)`

// Action is what the program should do after parsing its arguments.
type Action int

const (
	// ActionMonitor starts the poll loop.
	ActionMonitor Action = iota
	// ActionHelp shows the help text and exits.
	ActionHelp
	// ActionInvalid shows an error message and exits.
	ActionInvalid
)

// ArgResult is the outcome of ParseArgs.
type ArgResult struct {
	Action     Action
	UpperLimit int
	// Message is shown to the user for ActionHelp and ActionInvalid.
	Message string
}

// MonitoringEnabled reports whether the poll loop should start.
func (r ArgResult) MonitoringEnabled() bool {
	return r.Action == ActionMonitor
}

// ValidateUpperLimit checks that limit is within [5, 99].
func ValidateUpperLimit(limit int) error {
	if limit < MinUpperLimit || limit > MaxUpperLimit {
		return pkgerrors.Wrapf(ErrLimitOutOfRange, "got %d", limit)
	}
	return nil
}

// ParseArgs interprets the positional command-line arguments. A non-nil
// error is always accompanied by ActionInvalid and a user-facing Message.
func ParseArgs(args []string) (ArgResult, error) {
	if len(args) == 0 {
		return ArgResult{Action: ActionMonitor, UpperLimit: DefaultUpperLimit}, nil
	}

	if len(args) > 1 {
		joined := strings.Join(args, " ")
		return invalidParam(joined), pkgerrors.Wrapf(ErrInvalidParameter, "too many arguments: %s", joined)
	}

	param := args[0]
	switch {
	case param == HelpArg:
		return ArgResult{Action: ActionHelp, UpperLimit: DefaultUpperLimit, Message: strings.TrimLeft(HelpText, "\n")}, nil
	case isNumeric(param):
		limit, err := strconv.Atoi(param)
		if err != nil {
			// Only overflow can fail here.
			return outOfRange(), pkgerrors.Wrapf(ErrLimitOutOfRange, "got %s", param)
		}
		if err := ValidateUpperLimit(limit); err != nil {
			return outOfRange(), err
		}
		return ArgResult{Action: ActionMonitor, UpperLimit: limit}, nil
	default:
		return invalidParam(param), pkgerrors.Wrapf(ErrInvalidParameter, "%q", param)
	}
}

func outOfRange() ArgResult {
	return ArgResult{
		Action:     ActionInvalid,
		UpperLimit: DefaultUpperLimit,
		Message:    ErrLimitOutOfRange.Error(),
	}
}

func invalidParam(param string) ArgResult {
	return ArgResult{
		Action:     ActionInvalid,
		UpperLimit: DefaultUpperLimit,
		Message:    fmt.Sprintf("Invalid param: %s%s", param, HelpText),
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
