// Package cursor moves and reads the OS pointer.
package cursor

// Injector defines the pointer operations used by the control loop.
type Injector interface {
	// MoveAbs moves the pointer to an absolute virtual-desktop coordinate.
	MoveAbs(x, y int) error
	// CursorPos reports the current pointer position.
	CursorPos() (x, y int, ok bool)
}
