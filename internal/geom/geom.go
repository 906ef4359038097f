// Package geom holds screen-space points and rectangles.
package geom

// Point is an absolute screen coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p shifted by (dx, dy).
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Rect describes a rectangle using top-left origin and size.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Normalize returns a rectangle with non-negative width/height.
func Normalize(r Rect) Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// Clamp bounds p to the last addressable pixel of rect on every side.
// Empty rectangles leave p untouched.
func Clamp(rect Rect, p Point) Point {
	rect = Normalize(rect)
	if rect.Empty() {
		return p
	}
	p.X = clampInt(p.X, rect.X, rect.X+rect.W-1)
	p.Y = clampInt(p.Y, rect.Y, rect.Y+rect.H-1)
	return p
}

// Bounds returns the smallest rectangle covering every non-empty rect.
func Bounds(rects ...Rect) Rect {
	var (
		out   Rect
		found bool
	)
	for _, r := range rects {
		r = Normalize(r)
		if r.Empty() {
			continue
		}
		if !found {
			out = r
			found = true
			continue
		}
		minX := min(out.X, r.X)
		minY := min(out.Y, r.Y)
		maxX := max(out.X+out.W, r.X+r.W)
		maxY := max(out.Y+out.H, r.Y+r.H)
		out = Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
