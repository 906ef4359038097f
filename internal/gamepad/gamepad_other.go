//go:build !linux && !windows

// Package gamepad enumerates game controllers and turns their buttons into
// ordered press/release edges.
package gamepad

// List reports that controller input is unavailable.
func List() ([]Info, error) {
	return nil, ErrUnsupported
}

// Open reports that controller input is unavailable.
func Open(Info) (Device, error) {
	return nil, ErrUnsupported
}

// NewSource reports that controller input is unavailable.
func NewSource(...Device) (Source, error) {
	return nil, ErrUnsupported
}
