// Package testutil holds fakes shared by package tests.
package testutil

import "github.com/frudas24/padpin/internal/gamepad"

// ScriptedSource hands out queued batches, one per Drain.
type ScriptedSource struct {
	batches [][]gamepad.Event
	Err     error
}

// Push queues events to be returned together by the next Drain.
func (s *ScriptedSource) Push(events ...gamepad.Event) {
	s.batches = append(s.batches, events)
}

// Press queues a single press of button on device.
func (s *ScriptedSource) Press(device string, button int) {
	s.Push(gamepad.Event{Kind: gamepad.ButtonEvent, DeviceID: device, Button: button, Edge: gamepad.Pressed})
}

// Release queues a single release of button on device.
func (s *ScriptedSource) Release(device string, button int) {
	s.Push(gamepad.Event{Kind: gamepad.ButtonEvent, DeviceID: device, Button: button, Edge: gamepad.Released})
}

// Remove queues a removal notice for device.
func (s *ScriptedSource) Remove(device string) {
	s.Push(gamepad.Event{Kind: gamepad.RemovedEvent, DeviceID: device})
}

// Drain returns the oldest queued batch, or nothing.
func (s *ScriptedSource) Drain() ([]gamepad.Event, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.batches) == 0 {
		return nil, nil
	}
	batch := s.batches[0]
	s.batches = s.batches[1:]
	return batch, nil
}

// FakeButtons is a ButtonReader backed by a map.
type FakeButtons struct {
	Held map[int]bool
	Err  error
}

// NewFakeButtons returns a reader with no buttons held.
func NewFakeButtons() *FakeButtons {
	return &FakeButtons{Held: make(map[int]bool)}
}

// Set marks button as held or released.
func (b *FakeButtons) Set(button int, held bool) {
	b.Held[button] = held
}

// ButtonHeld implements gamepad.ButtonReader.
func (b *FakeButtons) ButtonHeld(index int) (bool, error) {
	if b.Err != nil {
		return false, b.Err
	}
	return b.Held[index], nil
}

// FakeDevice is an opened controller backed by FakeButtons.
type FakeDevice struct {
	*FakeButtons
	Meta   gamepad.Info
	Closed bool
}

// NewFakeDevice returns a device describing info with no buttons held.
func NewFakeDevice(info gamepad.Info) *FakeDevice {
	return &FakeDevice{FakeButtons: NewFakeButtons(), Meta: info}
}

// Info implements gamepad.Device.
func (d *FakeDevice) Info() gamepad.Info {
	return d.Meta
}

// Close implements gamepad.Device.
func (d *FakeDevice) Close() error {
	d.Closed = true
	return nil
}
