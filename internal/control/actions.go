// Package control runs the button-to-cursor loop: bindings, toggle, nudging and re-apply.
package control

// Action identifies what a bound button does.
type Action int

const (
	// ActNone means the button is not bound.
	ActNone Action = iota
	// ActToggle flips between inactive and active.
	ActToggle
	// ActForceOff deactivates without toggling on.
	ActForceOff
	// ActIncX nudges right while held.
	ActIncX
	// ActDecX nudges left while held.
	ActDecX
	// ActIncY nudges down while held.
	ActIncY
	// ActDecY nudges up while held.
	ActDecY
)

// String returns the configuration-style action name.
func (a Action) String() string {
	switch a {
	case ActToggle:
		return "toggle"
	case ActForceOff:
		return "off"
	case ActIncX:
		return "inc_x"
	case ActDecX:
		return "dec_x"
	case ActIncY:
		return "inc_y"
	case ActDecY:
		return "dec_y"
	default:
		return "none"
	}
}

// Directional reports whether the action is a hold-to-nudge action.
func (a Action) Directional() bool {
	return a >= ActIncX && a <= ActDecY
}
