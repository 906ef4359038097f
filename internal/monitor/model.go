// Package monitor describes display geometry and enumeration.
package monitor

import "github.com/frudas24/padpin/internal/geom"

// Monitor describes a display and its bounds in virtual-desktop pixels.
type Monitor struct {
	Index   int  `json:"index"`
	X       int  `json:"x"`
	Y       int  `json:"y"`
	W       int  `json:"w"`
	H       int  `json:"h"`
	Primary bool `json:"primary"`
}

// Rect returns the monitor bounds as a rectangle.
func (m Monitor) Rect() geom.Rect {
	return geom.Rect{X: m.X, Y: m.Y, W: m.W, H: m.H}
}

// GetMonitorByIndex returns the monitor matching the 0-based index.
func GetMonitorByIndex(list []Monitor, idx int) (Monitor, bool) {
	for _, m := range list {
		if m.Index == idx {
			return m, true
		}
	}
	return Monitor{}, false
}

// VirtualBounds returns the rectangle covering every monitor.
func VirtualBounds(list []Monitor) geom.Rect {
	rects := make([]geom.Rect, 0, len(list))
	for _, m := range list {
		rects = append(rects, m.Rect())
	}
	return geom.Bounds(rects...)
}
