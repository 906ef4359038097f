// Package cursor moves and reads the OS pointer.
package cursor

import "math"

// absoluteRange is the normalized coordinate span used by absolute pointer events.
const absoluteRange = 65535

// scaleAbsolute maps a pixel coordinate on an axis starting at origin with
// the given span onto 0..absoluteRange.
func scaleAbsolute(v int, origin, span int32) int32 {
	denom := float64(span - 1)
	if denom < 1 {
		denom = 1
	}
	return int32(math.Round(float64(int64(v)-int64(origin)) * absoluteRange / denom))
}
