// Package control runs the button-to-cursor loop: bindings, toggle, nudging and re-apply.
package control

import (
	"math"
	"time"
)

// HoldFlags tracks which directional buttons are physically held.
type HoldFlags struct {
	IncX bool `json:"inc_x"`
	DecX bool `json:"dec_x"`
	IncY bool `json:"inc_y"`
	DecY bool `json:"dec_y"`
}

// Set updates the flag for a directional action; other actions are ignored.
func (h *HoldFlags) Set(a Action, held bool) {
	switch a {
	case ActIncX:
		h.IncX = held
	case ActDecX:
		h.DecX = held
	case ActIncY:
		h.IncY = held
	case ActDecY:
		h.DecY = held
	}
}

// Any reports whether any directional button is held.
func (h HoldFlags) Any() bool {
	return h.IncX || h.DecX || h.IncY || h.DecY
}

// Integrate converts held directions into a pixel delta for elapsed time.
// contributes decides per action whether a held flag counts this tick, which
// is where modifier gating is re-evaluated. Opposite directions cancel.
func Integrate(h HoldFlags, contributes func(Action) bool, velocity int, elapsed time.Duration) (dx, dy int) {
	if !h.Any() || elapsed <= 0 {
		return 0, 0
	}
	axis := func(inc bool, incAct Action, dec bool, decAct Action) int {
		v := 0
		if inc && contributes(incAct) {
			v++
		}
		if dec && contributes(decAct) {
			v--
		}
		return v
	}
	vx := axis(h.IncX, ActIncX, h.DecX, ActDecX)
	vy := axis(h.IncY, ActIncY, h.DecY, ActDecY)
	secs := elapsed.Seconds()
	return step(vx, velocity, secs), step(vy, velocity, secs)
}

// step rounds half to even so repeated runs land on identical pixels.
func step(v, velocity int, secs float64) int {
	if v == 0 {
		return 0
	}
	return int(math.RoundToEven(float64(v) * float64(velocity) * secs))
}
