// Package control runs the button-to-cursor loop: bindings, toggle, nudging and re-apply.
package control

import (
	"math"

	"github.com/frudas24/padpin/internal/config"
	"github.com/frudas24/padpin/internal/geom"
	"github.com/frudas24/padpin/internal/monitor"
)

// BaseTarget maps the configured position into absolute coordinates on m and
// clamps the result to cage.
func BaseTarget(pos config.Position, m monitor.Monitor, cage geom.Rect) geom.Point {
	var p geom.Point
	if pos.Fractional {
		p = geom.Point{X: fracToPixels(m.X, pos.XFrac, m.W), Y: fracToPixels(m.Y, pos.YFrac, m.H)}
	} else {
		p = geom.Point{X: m.X + pos.X, Y: m.Y + pos.Y}
	}
	return ClampPointToRect(cage, p)
}

// fracToPixels rounds origin+frac*span half to even.
func fracToPixels(origin int, frac float64, span int) int {
	return int(math.RoundToEven(float64(origin) + frac*float64(span)))
}
