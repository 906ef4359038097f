// Package app wires devices, monitors, the control loop and the status surface together.
package app

import (
	"log/slog"

	"github.com/frudas24/padpin/internal/control"
	"github.com/frudas24/padpin/internal/cursor"
	"github.com/frudas24/padpin/internal/feedback"
	"github.com/frudas24/padpin/internal/gamepad"
	"github.com/frudas24/padpin/internal/monitor"
)

// Feedback plays sounds for status changes until closed.
type Feedback interface {
	Notify(control.Status)
	Close()
}

// Platform bundles the OS-facing collaborators so tests can swap them.
type Platform struct {
	ListDevices  func() ([]gamepad.Info, error)
	OpenDevice   func(gamepad.Info) (gamepad.Device, error)
	NewSource    func(...gamepad.Device) (gamepad.Source, error)
	ListMonitors func() ([]monitor.Monitor, error)
	NewInjector  func(useSendInput bool) (cursor.Injector, error)
	NewFeedback func(*slog.Logger) (Feedback, error)
	// Clock paces the loop; nil means the wall clock.
	Clock control.Clock
}

// DefaultPlatform returns the real device, monitor, cursor and audio backends.
func DefaultPlatform() Platform {
	return Platform{
		ListDevices:  gamepad.List,
		OpenDevice:   gamepad.Open,
		NewSource:    gamepad.NewSource,
		ListMonitors: monitor.ListMonitors,
		NewInjector:  cursor.NewInjector,
		NewFeedback: func(log *slog.Logger) (Feedback, error) {
			tones, err := feedback.New(log)
			if err != nil {
				return nil, err
			}
			return tones, nil
		},
	}
}
