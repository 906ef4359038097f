//go:build windows

// Package cursor moves and reads the OS pointer.
package cursor

import (
	"fmt"
	"syscall"

	"github.com/lxn/win"
)

// MoveAbs moves the cursor to an absolute virtual-desktop coordinate.
// SendInput failures fall back to SetCursorPos.
func (w *WinInjector) MoveAbs(x, y int) error {
	if !w.useSendInput {
		if !win.SetCursorPos(int32(x), int32(y)) {
			return fmt.Errorf("SetCursorPos failed: %w", syscall.Errno(win.GetLastError()))
		}
		return nil
	}
	dx, dy := mapAbsolute(x, y)
	flags := uint32(win.MOUSEEVENTF_MOVE | win.MOUSEEVENTF_ABSOLUTE | win.MOUSEEVENTF_VIRTUALDESK)
	if err := sendMouseInput(flags, dx, dy); err != nil {
		if win.SetCursorPos(int32(x), int32(y)) {
			return nil
		}
		return err
	}
	return nil
}

// CursorPos reports the current cursor position in virtual-desktop pixels.
func (w *WinInjector) CursorPos() (int, int, bool) {
	var pt win.POINT
	if !win.GetCursorPos(&pt) {
		return 0, 0, false
	}
	return int(pt.X), int(pt.Y), true
}

// mapAbsolute converts screen coordinates to the 0..65535 SendInput range of the virtual desktop.
func mapAbsolute(x, y int) (int32, int32) {
	vx := win.GetSystemMetrics(win.SM_XVIRTUALSCREEN)
	vy := win.GetSystemMetrics(win.SM_YVIRTUALSCREEN)
	vw := win.GetSystemMetrics(win.SM_CXVIRTUALSCREEN)
	vh := win.GetSystemMetrics(win.SM_CYVIRTUALSCREEN)
	return scaleAbsolute(x, vx, vw), scaleAbsolute(y, vy, vh)
}
