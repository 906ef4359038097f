// Package control runs the button-to-cursor loop: bindings, toggle, nudging and re-apply.
package control

import (
	"github.com/frudas24/padpin/internal/config"
	"github.com/frudas24/padpin/internal/geom"
	"github.com/frudas24/padpin/internal/monitor"
)

// CageRect returns the rectangle targets are clamped to: the selected monitor,
// or the bounding box of every monitor in virtual mode.
func CageRect(space config.ClampSpace, selected monitor.Monitor, all []monitor.Monitor) geom.Rect {
	if space == config.ClampVirtual {
		if r := monitor.VirtualBounds(all); !r.Empty() {
			return r
		}
	}
	return selected.Rect()
}

// ClampPointToRect keeps p on the last addressable pixel of rect.
func ClampPointToRect(rect geom.Rect, p geom.Point) geom.Point {
	return geom.Clamp(rect, p)
}
