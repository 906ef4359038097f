//go:build windows

// Package cursor moves and reads the OS pointer.
package cursor

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
)

// WinInjector moves the pointer with SendInput, or with SetCursorPos when
// SendInput is turned off.
type WinInjector struct {
	useSendInput bool
}

// NewInjector returns a Windows cursor injector.
func NewInjector(useSendInput bool) (Injector, error) {
	return &WinInjector{useSendInput: useSendInput}, nil
}

// sendMouseInput dispatches a single mouse input event.
func sendMouseInput(flags uint32, dx, dy int32) error {
	input := win.MOUSE_INPUT{
		Type: win.INPUT_MOUSE,
		Mi: win.MOUSEINPUT{
			Dx:      dx,
			Dy:      dy,
			DwFlags: flags,
		},
	}
	if win.SendInput(1, unsafe.Pointer(&input), int32(unsafe.Sizeof(input))) != 1 {
		return fmt.Errorf("SendInput failed: %w", syscall.Errno(win.GetLastError()))
	}
	return nil
}
