//go:build windows

// Package monitor describes display geometry and enumeration.
package monitor

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procEnumDisplayMonitors = user32.NewProc("EnumDisplayMonitors")
)

// ListMonitors returns the list of available displays using WinAPI.
func ListMonitors() ([]Monitor, error) {
	state := &enumState{}
	callback := syscall.NewCallback(state.enumProc)

	ok, _, err := procEnumDisplayMonitors.Call(0, 0, callback, 0)
	if ok == 0 {
		return nil, fmt.Errorf("EnumDisplayMonitors failed: %w", err)
	}
	if len(state.list) == 0 {
		return nil, fmt.Errorf("no monitors detected")
	}
	return state.list, nil
}

type enumState struct {
	list []Monitor
}

func (s *enumState) enumProc(hMonitor, hdc, rect, lparam uintptr) uintptr {
	var info win.MONITORINFO
	info.CbSize = uint32(unsafe.Sizeof(info))
	if !win.GetMonitorInfo(win.HMONITOR(hMonitor), &info) {
		return 1
	}
	s.list = append(s.list, fromMonitorInfo(len(s.list), info))
	return 1
}

// fromMonitorInfo converts a MONITORINFO into a Monitor at index.
func fromMonitorInfo(index int, info win.MONITORINFO) Monitor {
	bounds := info.RcMonitor
	return Monitor{
		Index:   index,
		X:       int(bounds.Left),
		Y:       int(bounds.Top),
		W:       int(bounds.Right - bounds.Left),
		H:       int(bounds.Bottom - bounds.Top),
		Primary: info.DwFlags&win.MONITORINFOF_PRIMARY != 0,
	}
}
