//go:build linux

// Package gamepad enumerates game controllers and turns their buttons into
// ordered press/release edges.
package gamepad

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"syscall"

	evdev "github.com/holoplot/go-evdev"
)

// List enumerates evdev nodes that expose joystick or gamepad buttons.
func List() ([]Info, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, err
	}
	sort.Slice(paths, func(i, j int) bool {
		return paths[i].Path < paths[j].Path
	})

	list := make([]Info, 0, len(paths))
	for _, path := range paths {
		dev, err := openInputDevice(path.Path)
		if err != nil {
			continue
		}
		codes := buttonCodes(dev)
		if isController(codes) {
			list = append(list, describe(dev, path.Path, path.Name, len(list), len(codes)))
		}
		_ = dev.Close()
	}
	return list, nil
}

// Open opens the controller at info.Path. Key state is captured before the
// descriptor goes non-blocking and is then tracked from the event stream.
func Open(info Info) (Device, error) {
	dev, err := openInputDevice(info.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", info.Path, err)
	}
	codes := buttonCodes(dev)
	state, err := dev.State(evdev.EV_KEY)
	if err != nil {
		_ = dev.Close()
		return nil, fmt.Errorf("read key state of %s: %w", info.Path, err)
	}
	if err := dev.NonBlock(); err != nil {
		_ = dev.Close()
		return nil, fmt.Errorf("failed to set nonblocking mode for %s: %w", info.Path, err)
	}
	d := newEvdevDevice(info, dev, codes)
	for i, code := range codes {
		d.held[i] = state[code]
	}
	return d, nil
}

// NewSource starts one reader per device; duplicates are read once.
func NewSource(devices ...Device) (Source, error) {
	var list []*evdevDevice
	seen := make(map[string]bool, len(devices))
	for _, d := range devices {
		if d == nil {
			continue
		}
		ed, ok := d.(*evdevDevice)
		if !ok {
			return nil, fmt.Errorf("device %s was not opened by this backend", d.Info().Path)
		}
		if seen[ed.info.Path] {
			continue
		}
		seen[ed.info.Path] = true
		list = append(list, ed)
	}
	if len(list) == 0 {
		return nil, ErrNoDevice
	}
	src := &evdevSource{events: make(chan stampedEvent, sourceBuffer)}
	for _, d := range list {
		go d.readLoop(src.events)
	}
	return src, nil
}

// sourceBuffer bounds queued edges between two drains.
const sourceBuffer = 256

// eventReader is the part of *evdev.InputDevice the reader goroutine uses.
type eventReader interface {
	ReadOne() (*evdev.InputEvent, error)
	Close() error
}

type evdevDevice struct {
	info  Info
	dev   eventReader
	codes []evdev.EvCode
	index map[evdev.EvCode]int

	mu   sync.Mutex
	held map[int]bool

	closeOnce sync.Once
	closed    chan struct{}
}

func newEvdevDevice(info Info, dev eventReader, codes []evdev.EvCode) *evdevDevice {
	index := make(map[evdev.EvCode]int, len(codes))
	for i, code := range codes {
		index[code] = i
	}
	return &evdevDevice{
		info:   info,
		dev:    dev,
		codes:  codes,
		index:  index,
		held:   make(map[int]bool, len(codes)),
		closed: make(chan struct{}),
	}
}

// Info returns the enumeration record the device was opened from.
func (d *evdevDevice) Info() Info {
	return d.info
}

// ButtonHeld reports the tracked key state for the button at index.
func (d *evdevDevice) ButtonHeld(index int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.held[index], nil
}

// Close releases the device node and stops its reader.
func (d *evdevDevice) Close() error {
	var err error
	d.closeOnce.Do(func() {
		close(d.closed)
		err = d.dev.Close()
	})
	return err
}

// readLoop blocks on the device and forwards key edges until it is closed or gone.
func (d *evdevDevice) readLoop(out chan<- stampedEvent) {
	path := d.info.Path
	for {
		ev, err := d.dev.ReadOne()
		if err != nil {
			switch {
			case d.isClosed() || errors.Is(err, os.ErrClosed):
				return
			case isDeviceGoneError(err):
				d.send(out, stampedEvent{Event: Event{Kind: RemovedEvent, DeviceID: path}})
			default:
				d.send(out, stampedEvent{Event: Event{DeviceID: path}, err: fmt.Errorf("read %s: %w", path, err)})
			}
			return
		}
		if ev == nil || ev.Type != evdev.EV_KEY {
			continue
		}
		button, ok := d.index[ev.Code]
		if !ok {
			continue
		}
		d.mu.Lock()
		d.held[button] = ev.Value != 0
		d.mu.Unlock()
		if ev.Value > 1 {
			continue
		}
		edge := Released
		if ev.Value == 1 {
			edge = Pressed
		}
		if !d.send(out, stampedEvent{
			Event: Event{Kind: ButtonEvent, DeviceID: path, Button: button, Edge: edge},
			sec:   int64(ev.Time.Sec),
			usec:  int64(ev.Time.Usec),
		}) {
			return
		}
	}
}

// send queues ev unless the device was closed meanwhile.
func (d *evdevDevice) send(out chan<- stampedEvent, ev stampedEvent) bool {
	select {
	case out <- ev:
		return true
	case <-d.closed:
		return false
	}
}

func (d *evdevDevice) isClosed() bool {
	select {
	case <-d.closed:
		return true
	default:
		return false
	}
}

type evdevSource struct {
	events chan stampedEvent
}

type stampedEvent struct {
	Event
	sec  int64
	usec int64
	err  error
}

// Drain returns every queued edge ordered by kernel timestamp, without waiting.
// Removal notices come last.
func (s *evdevSource) Drain() ([]Event, error) {
	var (
		stamped []stampedEvent
		tail    []Event
	)
	for {
		select {
		case ev := <-s.events:
			switch {
			case ev.err != nil:
				return flatten(stamped, tail), ev.err
			case ev.Kind == RemovedEvent:
				tail = append(tail, ev.Event)
			default:
				stamped = append(stamped, ev)
			}
		default:
			return flatten(stamped, tail), nil
		}
	}
}

func flatten(stamped []stampedEvent, tail []Event) []Event {
	sort.SliceStable(stamped, func(i, j int) bool {
		if stamped[i].sec != stamped[j].sec {
			return stamped[i].sec < stamped[j].sec
		}
		return stamped[i].usec < stamped[j].usec
	})
	out := make([]Event, 0, len(stamped)+len(tail))
	for _, ev := range stamped {
		out = append(out, ev.Event)
	}
	return append(out, tail...)
}

func openInputDevice(path string) (*evdev.InputDevice, error) {
	return evdev.OpenWithFlags(path, os.O_RDONLY)
}

// buttonCodes returns the device key codes in button-index order.
func buttonCodes(dev *evdev.InputDevice) []evdev.EvCode {
	raw := make([]uint16, 0)
	for _, code := range dev.CapableEvents(evdev.EV_KEY) {
		raw = append(raw, uint16(code))
	}
	ordered := orderButtonCodes(raw)
	out := make([]evdev.EvCode, len(ordered))
	for i, code := range ordered {
		out[i] = evdev.EvCode(code)
	}
	return out
}

// isController reports whether any code falls in the joystick/gamepad button block.
func isController(codes []evdev.EvCode) bool {
	for _, code := range codes {
		if code >= evdev.BTN_JOYSTICK && code <= evdev.BTN_THUMBR {
			return true
		}
	}
	return false
}

func describe(dev *evdev.InputDevice, path, fallbackName string, index, buttons int) Info {
	name := fallbackName
	if actual, err := dev.Name(); err == nil && actual != "" {
		name = actual
	}
	guid := "N/A"
	if id, err := dev.InputID(); err == nil {
		guid = legacyGUID(id.BusType, id.Vendor, id.Product, id.Version)
	}
	return Info{Index: index, GUID: guid, Name: name, Buttons: buttons, Path: path}
}

func isDeviceGoneError(err error) bool {
	return errors.Is(err, syscall.ENODEV) || errors.Is(err, syscall.EBADF)
}
