// Package control runs the button-to-cursor loop: bindings, toggle, nudging and re-apply.
package control

import "github.com/frudas24/padpin/internal/gamepad"

// ModifierGate answers whether the modifier button is held right now.
type ModifierGate struct {
	reader     gamepad.ButtonReader
	button     int
	configured bool
}

// NewModifierGate returns a gate reading button on reader. A nil reader or
// configured=false yields a gate that is never held.
func NewModifierGate(reader gamepad.ButtonReader, button int, configured bool) *ModifierGate {
	return &ModifierGate{reader: reader, button: button, configured: configured && reader != nil}
}

// Configured reports whether a modifier button is wired.
func (g *ModifierGate) Configured() bool {
	return g != nil && g.configured
}

// Held queries the live button state. Read failures count as not held.
func (g *ModifierGate) Held() bool {
	if !g.Configured() {
		return false
	}
	held, err := g.reader.ButtonHeld(g.button)
	if err != nil {
		return false
	}
	return held
}
