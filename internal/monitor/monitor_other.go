//go:build !windows

// Package monitor describes display geometry and enumeration.
package monitor

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// ListMonitors returns the displays reported by the robotgo screen backend.
func ListMonitors() ([]Monitor, error) {
	count := robotgo.DisplaysNum()
	if count <= 0 {
		return nil, fmt.Errorf("no monitors detected")
	}
	list := make([]Monitor, 0, count)
	for i := 0; i < count; i++ {
		x, y, w, h := robotgo.GetDisplayBounds(i)
		if w <= 0 || h <= 0 {
			continue
		}
		list = append(list, Monitor{
			Index:   len(list),
			X:       x,
			Y:       y,
			W:       w,
			H:       h,
			Primary: i == robotgo.GetMainId(),
		})
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("no monitors detected")
	}
	return list, nil
}
