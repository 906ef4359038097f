// Package gamepad enumerates game controllers and turns their buttons into
// ordered press/release edges.
package gamepad

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNoDevice indicates no controller matched the selector.
	ErrNoDevice = errors.New("no matching controller")
	// ErrUnsupported indicates controller input is not available on this build.
	ErrUnsupported = errors.New("controller input is not supported on this platform")
)

// Info describes an enumerated controller.
type Info struct {
	Index   int    `json:"index"`
	GUID    string `json:"guid"`
	Name    string `json:"name"`
	Buttons int    `json:"buttons"`
	// Path identifies the controller for the lifetime of the process.
	Path string `json:"path"`
}

// String formats the controller for device listings.
func (i Info) String() string {
	return fmt.Sprintf("Index=%2d | Buttons=%3d | GUID=%s | Name=%q", i.Index, i.Buttons, i.GUID, i.Name)
}

// Edge is the direction of a button transition.
type Edge int

const (
	// Pressed marks a button going down.
	Pressed Edge = iota + 1
	// Released marks a button going up.
	Released
)

// String returns a short edge label.
func (e Edge) String() string {
	switch e {
	case Pressed:
		return "DOWN"
	case Released:
		return "UP"
	default:
		return "?"
	}
}

// EventKind separates button edges from device notifications.
type EventKind int

const (
	// ButtonEvent is a press or release of one button.
	ButtonEvent EventKind = iota
	// RemovedEvent reports that a device disappeared.
	RemovedEvent
)

// Event is one drained input record.
type Event struct {
	Kind     EventKind
	DeviceID string
	Button   int
	Edge     Edge
}

// ButtonReader reports the live state of a button by ordinal index.
type ButtonReader interface {
	ButtonHeld(index int) (bool, error)
}

// Device is an opened controller.
type Device interface {
	ButtonReader
	Info() Info
	Close() error
}

// Source drains pending edges without blocking.
type Source interface {
	Drain() ([]Event, error)
}

// Resolve picks a controller by GUID (case-insensitive) first, then by index.
func Resolve(list []Info, guid string, index int, hasIndex bool) (Info, error) {
	if guid = strings.TrimSpace(guid); guid != "" {
		for _, info := range list {
			if strings.EqualFold(info.GUID, guid) {
				return info, nil
			}
		}
	}
	if hasIndex {
		for _, info := range list {
			if info.Index == index {
				return info, nil
			}
		}
	}
	switch {
	case guid != "" && hasIndex:
		return Info{}, fmt.Errorf("%w: guid %s or index %d", ErrNoDevice, guid, index)
	case guid != "":
		return Info{}, fmt.Errorf("%w: guid %s", ErrNoDevice, guid)
	case hasIndex:
		return Info{}, fmt.Errorf("%w: index %d", ErrNoDevice, index)
	default:
		return Info{}, fmt.Errorf("%w: no guid or index configured", ErrNoDevice)
	}
}

// legacyGUID formats bus/vendor/product/version in the 32 hex digit
// little-endian layout controller databases use.
func legacyGUID(bus, vendor, product, version uint16) string {
	var b strings.Builder
	for _, v := range []uint16{bus, vendor, product, version} {
		fmt.Fprintf(&b, "%02x%02x0000", v&0xff, v>>8)
	}
	return b.String()
}

// diffButtons turns two button bitmasks into edges in ascending button order.
func diffButtons(deviceID string, prev, cur uint32, count int) []Event {
	changed := prev ^ cur
	if changed == 0 {
		return nil
	}
	var out []Event
	for i := 0; i < count && i < 32; i++ {
		bit := uint32(1) << i
		if changed&bit == 0 {
			continue
		}
		edge := Released
		if cur&bit != 0 {
			edge = Pressed
		}
		out = append(out, Event{Kind: ButtonEvent, DeviceID: deviceID, Button: i, Edge: edge})
	}
	return out
}

// joystickBase is the first key code of the joystick/gamepad block.
const joystickBase = 0x120

// orderButtonCodes sorts key codes so joystick/gamepad buttons get the lowest indexes.
func orderButtonCodes(codes []uint16) []uint16 {
	out := append([]uint16(nil), codes...)
	sort.Slice(out, func(i, j int) bool {
		hi, hj := out[i] >= joystickBase, out[j] >= joystickBase
		if hi != hj {
			return hi
		}
		return out[i] < out[j]
	})
	return out
}
