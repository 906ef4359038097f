// Package control runs the button-to-cursor loop: bindings, toggle, nudging and re-apply.
package control

import (
	"fmt"

	"github.com/frudas24/padpin/internal/config"
	"github.com/frudas24/padpin/internal/gamepad"
)

// Binding maps one button (and modifier requirement) to an action.
type Binding struct {
	Action           Action
	Button           int
	RequiresModifier bool
}

// String formats the binding the way settings files spell it.
func (b Binding) String() string {
	return fmt.Sprintf("%s=%s", b.Action, config.ButtonSpec{Button: b.Button, RequiresModifier: b.RequiresModifier})
}

// BindingsFromSettings lists the configured bindings in a fixed order.
func BindingsFromSettings(s config.Settings) []Binding {
	out := []Binding{{Action: ActToggle, Button: s.Toggle.Button, RequiresModifier: s.Toggle.RequiresModifier}}
	optional := []struct {
		action Action
		spec   *config.ButtonSpec
	}{
		{ActForceOff, s.Off},
		{ActIncX, s.IncX},
		{ActDecX, s.DecX},
		{ActIncY, s.IncY},
		{ActDecY, s.DecY},
	}
	for _, o := range optional {
		if o.spec == nil {
			continue
		}
		out = append(out, Binding{Action: o.action, Button: o.spec.Button, RequiresModifier: o.spec.RequiresModifier})
	}
	return out
}

// buttonSlot holds what a single button can trigger.
type buttonSlot struct {
	command     *Binding
	directional *Binding
}

// BindingTable resolves button edges to actions.
type BindingTable struct {
	slots map[int]*buttonSlot
	gated map[Action]bool
	list  []Binding
}

// NewBindingTable validates bindings and builds the lookup table.
// Ambiguous combinations are rejected here so the loop never has to choose.
func NewBindingTable(bindings []Binding) (*BindingTable, error) {
	t := &BindingTable{
		slots: make(map[int]*buttonSlot),
		gated: make(map[Action]bool),
	}
	seen := make(map[config.ButtonSpec]Action, len(bindings))
	for _, b := range bindings {
		if b.Action == ActNone {
			continue
		}
		if b.Button < 0 {
			return nil, fmt.Errorf("%s: negative button index", b)
		}
		if _, dup := t.gated[b.Action]; dup {
			return nil, fmt.Errorf("%s: action bound twice", b)
		}
		key := config.ButtonSpec{Button: b.Button, RequiresModifier: b.RequiresModifier}
		if other, dup := seen[key]; dup {
			return nil, fmt.Errorf("%s conflicts with %s on the same button", b, other)
		}
		seen[key] = b.Action
		t.gated[b.Action] = b.RequiresModifier

		slot := t.slots[b.Button]
		if slot == nil {
			slot = &buttonSlot{}
			t.slots[b.Button] = slot
		}
		binding := b
		if b.Action.Directional() {
			if slot.directional != nil {
				return nil, fmt.Errorf("%s conflicts with %s: one button cannot hold two directions", b, *slot.directional)
			}
			slot.directional = &binding
		} else {
			if slot.command != nil {
				return nil, fmt.Errorf("%s conflicts with %s on the same button", b, *slot.command)
			}
			slot.command = &binding
		}
		if slot.command != nil && !slot.command.RequiresModifier && slot.directional != nil {
			return nil, fmt.Errorf("%s shadows %s; require the modifier on one of them", *slot.command, *slot.directional)
		}
		t.list = append(t.list, b)
	}
	if _, ok := t.gated[ActToggle]; !ok {
		return nil, fmt.Errorf("toggle binding is required")
	}
	return t, nil
}

// Bindings returns the accepted bindings in configuration order.
func (t *BindingTable) Bindings() []Binding {
	return append([]Binding(nil), t.list...)
}

// RequiresModifier reports whether the action only counts while the modifier is held.
func (t *BindingTable) RequiresModifier(a Action) bool {
	return t.gated[a]
}

// DirectionalFor returns the directional action bound to button, if any.
func (t *BindingTable) DirectionalFor(button int) Action {
	if slot := t.slots[button]; slot != nil && slot.directional != nil {
		return slot.directional.Action
	}
	return ActNone
}

// Lookup returns the action for an edge. Toggle and off fire only on press and
// only when their modifier requirement is met; modHeld is consulted lazily.
// Directional actions fire on both edges regardless of the modifier.
func (t *BindingTable) Lookup(button int, edge gamepad.Edge, modHeld func() bool) Action {
	slot := t.slots[button]
	if slot == nil {
		return ActNone
	}
	if edge == gamepad.Pressed && slot.command != nil {
		if !slot.command.RequiresModifier || (modHeld != nil && modHeld()) {
			return slot.command.Action
		}
	}
	if slot.directional != nil {
		return slot.directional.Action
	}
	return ActNone
}
