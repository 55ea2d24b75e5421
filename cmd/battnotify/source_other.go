//go:build !darwin

package main

import (
	"errors"

	"github.com/battnotify/battnotify/pkg/powerinfo"
)

func smcProvider() (powerinfo.Provider, error) {
	return nil, errors.New("the smc source is only available on macOS")
}

func autoProvider() powerinfo.Provider {
	return powerinfo.Auto()
}
