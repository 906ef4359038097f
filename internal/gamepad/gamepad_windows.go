//go:build windows

// Package gamepad enumerates game controllers and turns their buttons into
// ordered press/release edges.
package gamepad

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	joyReturnButtons = 0x00000080
	joyErrNoError    = 0
	joyErrUnplugged  = 167
	maxPnameLen      = 32
	maxJoyOEMVxdLen  = 260
)

var (
	winmm             = windows.NewLazySystemDLL("winmm.dll")
	procJoyGetNumDevs = winmm.NewProc("joyGetNumDevs")
	procJoyGetDevCaps = winmm.NewProc("joyGetDevCapsW")
	procJoyGetPosEx   = winmm.NewProc("joyGetPosEx")
)

// joyCaps mirrors JOYCAPSW.
type joyCaps struct {
	Mid        uint16
	Pid        uint16
	Pname      [maxPnameLen]uint16
	Xmin       uint32
	Xmax       uint32
	Ymin       uint32
	Ymax       uint32
	Zmin       uint32
	Zmax       uint32
	NumButtons uint32
	PeriodMin  uint32
	PeriodMax  uint32
	Rmin       uint32
	Rmax       uint32
	Umin       uint32
	Umax       uint32
	Vmin       uint32
	Vmax       uint32
	Caps       uint32
	MaxAxes    uint32
	NumAxes    uint32
	MaxButtons uint32
	RegKey     [maxPnameLen]uint16
	OEMVxD     [maxJoyOEMVxdLen]uint16
}

// joyInfoEx mirrors JOYINFOEX.
type joyInfoEx struct {
	Size         uint32
	Flags        uint32
	Xpos         uint32
	Ypos         uint32
	Zpos         uint32
	Rpos         uint32
	Upos         uint32
	Vpos         uint32
	Buttons      uint32
	ButtonNumber uint32
	POV          uint32
	Reserved1    uint32
	Reserved2    uint32
}

// List enumerates connected winmm joysticks.
func List() ([]Info, error) {
	if err := procJoyGetNumDevs.Find(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	n, _, _ := procJoyGetNumDevs.Call()
	var list []Info
	for id := uint32(0); id < uint32(n); id++ {
		if _, rc := readButtons(id); rc != joyErrNoError {
			continue
		}
		var caps joyCaps
		rc, _, _ := procJoyGetDevCaps.Call(uintptr(id), uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
		if rc != joyErrNoError {
			continue
		}
		list = append(list, Info{
			Index:   len(list),
			GUID:    legacyGUID(0x03, caps.Mid, caps.Pid, 0),
			Name:    windows.UTF16ToString(caps.Pname[:]),
			Buttons: int(caps.NumButtons),
			Path:    fmt.Sprintf("joy%d", id),
		})
	}
	return list, nil
}

// Open binds to the joystick named by info.Path.
func Open(info Info) (Device, error) {
	var id uint32
	if _, err := fmt.Sscanf(info.Path, "joy%d", &id); err != nil {
		return nil, fmt.Errorf("invalid joystick path %q: %w", info.Path, err)
	}
	buttons, rc := readButtons(id)
	if rc != joyErrNoError {
		return nil, fmt.Errorf("open %s: winmm error %d", info.Path, rc)
	}
	return &winmmDevice{info: info, id: id, last: buttons}, nil
}

// NewSource polls the given devices; duplicates are read once.
func NewSource(devices ...Device) (Source, error) {
	src := &winmmSource{}
	seen := make(map[string]bool, len(devices))
	for _, d := range devices {
		if d == nil {
			continue
		}
		wd, ok := d.(*winmmDevice)
		if !ok {
			return nil, fmt.Errorf("device %s was not opened by this backend", d.Info().Path)
		}
		if seen[wd.info.Path] {
			continue
		}
		seen[wd.info.Path] = true
		src.devices = append(src.devices, wd)
	}
	if len(src.devices) == 0 {
		return nil, ErrNoDevice
	}
	return src, nil
}

type winmmDevice struct {
	info Info
	id   uint32

	mu      sync.Mutex
	last    uint32
	removed bool
}

// Info returns the enumeration record the device was opened from.
func (d *winmmDevice) Info() Info {
	return d.info
}

// ButtonHeld reads the live button mask.
func (d *winmmDevice) ButtonHeld(index int) (bool, error) {
	if index < 0 || index >= 32 {
		return false, nil
	}
	buttons, rc := readButtons(d.id)
	if rc != joyErrNoError {
		return false, fmt.Errorf("%s: winmm error %d", d.info.Path, rc)
	}
	return buttons&(1<<uint(index)) != 0, nil
}

// Close is a no-op; winmm has no per-device handle.
func (d *winmmDevice) Close() error {
	return nil
}

// poll diffs the current mask against the previous one.
func (d *winmmDevice) poll() ([]Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.removed {
		return nil, nil
	}
	buttons, rc := readButtons(d.id)
	switch rc {
	case joyErrNoError:
	case joyErrUnplugged:
		d.removed = true
		return []Event{{Kind: RemovedEvent, DeviceID: d.info.Path}}, nil
	default:
		return nil, fmt.Errorf("%s: winmm error %d", d.info.Path, rc)
	}
	count := d.info.Buttons
	if count <= 0 {
		count = 32
	}
	events := diffButtons(d.info.Path, d.last, buttons, count)
	d.last = buttons
	return events, nil
}

type winmmSource struct {
	devices []*winmmDevice
}

// Drain polls every device once; removals follow button edges.
func (s *winmmSource) Drain() ([]Event, error) {
	var out, tail []Event
	for _, d := range s.devices {
		events, err := d.poll()
		if err != nil {
			return append(out, tail...), err
		}
		for _, ev := range events {
			if ev.Kind == RemovedEvent {
				tail = append(tail, ev)
				continue
			}
			out = append(out, ev)
		}
	}
	return append(out, tail...), nil
}

func readButtons(id uint32) (uint32, uintptr) {
	info := joyInfoEx{Flags: joyReturnButtons}
	info.Size = uint32(unsafe.Sizeof(info))
	rc, _, _ := procJoyGetPosEx.Call(uintptr(id), uintptr(unsafe.Pointer(&info)))
	return info.Buttons, rc
}
