// Package testutil holds fakes shared by package tests.
package testutil

import (
	"errors"

	"github.com/frudas24/padpin/internal/cursor"
)

// ErrInjectFailed is returned by FakeInjector while Fail is set.
var ErrInjectFailed = errors.New("inject failed")

// Call records a single injected action.
type Call struct {
	Name string
	X    int
	Y    int
}

// FakeInjector implements cursor.Injector and records calls for tests.
type FakeInjector struct {
	Calls []Call
	X     int
	Y     int
	HasXY bool
	// Fail makes MoveAbs return ErrInjectFailed without recording the move.
	Fail bool
}

// Ensure FakeInjector implements the interface.
var _ cursor.Injector = (*FakeInjector)(nil)

// MoveAbs records an absolute move and updates the fake cursor.
func (f *FakeInjector) MoveAbs(x, y int) error {
	if f.Fail {
		return ErrInjectFailed
	}
	f.Calls = append(f.Calls, Call{Name: "MoveAbs", X: x, Y: y})
	f.X, f.Y, f.HasXY = x, y, true
	return nil
}

// CursorPos returns the fake cursor position.
func (f *FakeInjector) CursorPos() (int, int, bool) {
	return f.X, f.Y, f.HasXY
}

// Moves returns only the MoveAbs calls.
func (f *FakeInjector) Moves() []Call {
	var out []Call
	for _, c := range f.Calls {
		if c.Name == "MoveAbs" {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls.
func (f *FakeInjector) Reset() {
	f.Calls = nil
}
