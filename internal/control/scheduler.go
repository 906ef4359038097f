// Package control runs the button-to-cursor loop: bindings, toggle, nudging and re-apply.
package control

import (
	"time"

	"github.com/frudas24/padpin/internal/cursor"
	"github.com/frudas24/padpin/internal/geom"
)

// ApplyScheduler pushes the target onto the cursor and paces re-applies.
type ApplyScheduler struct {
	injector cursor.Injector
	interval time.Duration
	wiggle   bool
	log      Logger

	last    time.Time
	flip    bool
	failing bool
}

// NewApplyScheduler returns a scheduler whose re-apply clock starts at start.
func NewApplyScheduler(injector cursor.Injector, interval time.Duration, wiggle bool, start time.Time, log Logger) *ApplyScheduler {
	return &ApplyScheduler{
		injector: injector,
		interval: interval,
		wiggle:   wiggle,
		log:      orDiscard(log),
		last:     start,
	}
}

// Due reports whether a periodic re-apply is owed at now.
func (s *ApplyScheduler) Due(now time.Time) bool {
	return now.Sub(s.last) >= s.interval
}

// LastApply returns when the cursor was last asserted.
func (s *ApplyScheduler) LastApply() time.Time {
	return s.last
}

// Apply moves the cursor to target, one pixel right on alternate applies when
// wiggle is on, and restarts the re-apply clock. It returns the injected point.
func (s *ApplyScheduler) Apply(target geom.Point, now time.Time) geom.Point {
	p := target
	if s.wiggle && s.flip {
		p.X++
	}
	s.inject(p)
	s.flip = !s.flip
	s.last = now
	return p
}

// Restore moves the cursor once without touching the re-apply clock or wiggle phase.
func (s *ApplyScheduler) Restore(p geom.Point) {
	s.inject(p)
}

// inject calls the injector and logs only the edges of a failure streak.
func (s *ApplyScheduler) inject(p geom.Point) {
	if err := s.injector.MoveAbs(p.X, p.Y); err != nil {
		if !s.failing {
			s.log.Warn("cursor move failed", "x", p.X, "y", p.Y, "err", err)
		}
		s.failing = true
		return
	}
	if s.failing {
		s.log.Info("cursor move recovered", "x", p.X, "y", p.Y)
		s.failing = false
	}
}
