//go:build !windows

// Package cursor moves and reads the OS pointer.
package cursor

import "github.com/go-vgo/robotgo"

// RobotInjector moves the pointer through robotgo.
type RobotInjector struct{}

// NewInjector returns a robotgo-backed cursor injector. SendInput only
// exists on Windows, so useSendInput is ignored here.
func NewInjector(useSendInput bool) (Injector, error) {
	return &RobotInjector{}, nil
}

// MoveAbs moves the pointer to an absolute screen coordinate.
func (r *RobotInjector) MoveAbs(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

// CursorPos reports the current pointer position.
func (r *RobotInjector) CursorPos() (int, int, bool) {
	x, y := robotgo.Location()
	return x, y, true
}
