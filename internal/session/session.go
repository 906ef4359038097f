// Package session holds the latest loop status for concurrent readers.
package session

import (
	"sync"

	"github.com/frudas24/padpin/internal/config"
	"github.com/frudas24/padpin/internal/control"
	"github.com/frudas24/padpin/internal/gamepad"
	"github.com/frudas24/padpin/internal/monitor"
)

// Snapshot represents a read-only view of the current session state.
type Snapshot struct {
	Status     control.Status    `json:"status"`
	Device     gamepad.Info      `json:"device"`
	Monitor    monitor.Monitor   `json:"monitor"`
	ClampSpace config.ClampSpace `json:"clampSpace"`
	Updates    uint64            `json:"updates"`
}

// Session holds runtime state published by the control loop.
type Session struct {
	mu         sync.RWMutex
	status     control.Status
	device     gamepad.Info
	monitor    monitor.Monitor
	clampSpace config.ClampSpace
	updates    uint64
}

// New returns an empty session.
func New() *Session {
	return &Session{clampSpace: config.ClampMonitor}
}

// SetDevice records the primary controller in use.
func (s *Session) SetDevice(info gamepad.Info) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device = info
}

// SetMonitor records the target monitor and clamp space.
func (s *Session) SetMonitor(m monitor.Monitor, space config.ClampSpace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monitor = m
	s.clampSpace = space
}

// Update stores the latest loop status.
func (s *Session) Update(st control.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
	s.updates++
}

// Status returns the latest loop status.
func (s *Session) Status() control.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Status:     s.status,
		Device:     s.device,
		Monitor:    s.monitor,
		ClampSpace: s.clampSpace,
		Updates:    s.updates,
	}
}
