package control

import (
	"testing"

	"github.com/frudas24/padpin/internal/config"
	"github.com/frudas24/padpin/internal/geom"
	"github.com/frudas24/padpin/internal/monitor"
)

var fullHD = monitor.Monitor{Index: 0, X: 0, Y: 0, W: 1920, H: 1080, Primary: true}

// TestBaseTarget_FractionalCenter verifies a centered fractional target.
func TestBaseTarget_FractionalCenter(t *testing.T) {
	pos := config.Position{Fractional: true, XFrac: 0.5, YFrac: 0.5}
	got := BaseTarget(pos, fullHD, fullHD.Rect())
	if got != (geom.Point{X: 960, Y: 540}) {
		t.Fatalf("expected (960,540), got %+v", got)
	}
}

// TestBaseTarget_FractionalClampsRightEdge verifies frac 1.0 lands on the last pixel.
func TestBaseTarget_FractionalClampsRightEdge(t *testing.T) {
	pos := config.Position{Fractional: true, XFrac: 1, YFrac: 1}
	got := BaseTarget(pos, fullHD, fullHD.Rect())
	if got != (geom.Point{X: 1919, Y: 1079}) {
		t.Fatalf("expected (1919,1079), got %+v", got)
	}
}

// TestBaseTarget_RoundsHalfToEven verifies ties round to the even pixel.
func TestBaseTarget_RoundsHalfToEven(t *testing.T) {
	m := monitor.Monitor{X: 0, Y: 0, W: 5, H: 7}
	pos := config.Position{Fractional: true, XFrac: 0.5, YFrac: 0.5}
	got := BaseTarget(pos, m, geom.Rect{X: 0, Y: 0, W: 100, H: 100})
	if got != (geom.Point{X: 2, Y: 4}) {
		t.Fatalf("expected (2,4), got %+v", got)
	}
}

// TestBaseTarget_PixelOffsetOnSecondMonitor verifies pixel offsets are monitor relative.
func TestBaseTarget_PixelOffsetOnSecondMonitor(t *testing.T) {
	m := monitor.Monitor{Index: 1, X: -1280, Y: 100, W: 1280, H: 1024}
	pos := config.Position{X: 10, Y: 20}
	got := BaseTarget(pos, m, m.Rect())
	if got != (geom.Point{X: -1270, Y: 120}) {
		t.Fatalf("expected (-1270,120), got %+v", got)
	}
}

// TestBaseTarget_PixelOffsetClamped verifies offsets beyond the monitor are clamped.
func TestBaseTarget_PixelOffsetClamped(t *testing.T) {
	got := BaseTarget(config.Position{X: 5000, Y: -3}, fullHD, fullHD.Rect())
	if got != (geom.Point{X: 1919, Y: 0}) {
		t.Fatalf("expected (1919,0), got %+v", got)
	}
}
