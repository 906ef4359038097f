// Package config loads padpin settings from a YAML file and environment overrides.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ButtonSpec binds a controller button, optionally gated by the modifier button.
type ButtonSpec struct {
	Button           int
	RequiresModifier bool
}

// String formats the spec the way it is written in settings, e.g. "25M".
func (b ButtonSpec) String() string {
	if b.RequiresModifier {
		return strconv.Itoa(b.Button) + "M"
	}
	return strconv.Itoa(b.Button)
}

// ParseButtonSpec parses "25" or "25M". Empty input and a bare "M" yield nil.
func ParseButtonSpec(raw string) (*ButtonSpec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	requiresModifier := strings.EqualFold(s[len(s)-1:], "m")
	num := s
	if requiresModifier {
		num = strings.TrimSpace(s[:len(s)-1])
	}
	if num == "" {
		return nil, nil
	}
	button, err := strconv.Atoi(num)
	if err != nil || button < 0 {
		return nil, fmt.Errorf("invalid button spec %q, use e.g. '25' or '25M'", raw)
	}
	return &ButtonSpec{Button: button, RequiresModifier: requiresModifier}, nil
}
