// Package control runs the button-to-cursor loop: bindings, toggle, nudging and re-apply.
package control

import "time"

// DebounceWindow is the minimum spacing between accepted toggle/off transitions.
const DebounceWindow = 150 * time.Millisecond

// ToggleState is the on/off state of cursor pinning.
type ToggleState int

const (
	// Inactive leaves the cursor alone.
	Inactive ToggleState = iota
	// Active keeps the cursor on the current target.
	Active
)

// String returns an upper-case state label for logs.
func (s ToggleState) String() string {
	if s == Active {
		return "ACTIVE"
	}
	return "INACTIVE"
}

// ToggleMachine decides toggle/off transitions with a shared debounce clock.
type ToggleMachine struct {
	state      ToggleState
	lastChange time.Time
}

// NewToggleMachine starts inactive with the debounce clock at start.
func NewToggleMachine(start time.Time) *ToggleMachine {
	return &ToggleMachine{state: Inactive, lastChange: start}
}

// State returns the current state.
func (m *ToggleMachine) State() ToggleState {
	return m.state
}

// Debounced reports whether a transition at now would be refused by the
// debounce window.
func (m *ToggleMachine) Debounced(now time.Time) bool {
	return now.Sub(m.lastChange) < DebounceWindow
}

// Request applies a toggle or off press at now and reports the new state when
// a transition happened. Off while inactive and debounced presses change nothing.
func (m *ToggleMachine) Request(a Action, now time.Time) (ToggleState, bool) {
	var next ToggleState
	switch a {
	case ActToggle:
		next = Active
		if m.state == Active {
			next = Inactive
		}
	case ActForceOff:
		if m.state == Inactive {
			return m.state, false
		}
		next = Inactive
	default:
		return m.state, false
	}
	if m.Debounced(now) {
		return m.state, false
	}
	m.state = next
	m.lastChange = now
	return next, true
}
