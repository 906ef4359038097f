// Package control runs the button-to-cursor loop: bindings, toggle, nudging and re-apply.
package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frudas24/padpin/internal/config"
	"github.com/frudas24/padpin/internal/cursor"
	"github.com/frudas24/padpin/internal/gamepad"
	"github.com/frudas24/padpin/internal/geom"
)

// ErrDeviceRemoved reports that the primary controller went away.
var ErrDeviceRemoved = errors.New("primary device removed")

const defaultPollInterval = 4 * time.Millisecond

// Status reasons.
const (
	ReasonStart      = "start"
	ReasonActivate   = "activate"
	ReasonDeactivate = "deactivate"
	ReasonNudge      = "nudge"
)

// Status is an immutable snapshot published after state changes.
type Status struct {
	Active bool       `json:"active"`
	State  string     `json:"state"`
	Target geom.Point `json:"target"`
	Base   geom.Point `json:"base"`
	Holds  HoldFlags  `json:"holds"`
	Reason string     `json:"reason"`
	At     time.Time  `json:"at"`
}

// Options configures a Loop.
type Options struct {
	Source    gamepad.Source
	PrimaryID string
	Bindings  *BindingTable
	Gate      *ModifierGate
	Injector  cursor.Injector
	Clock     Clock
	Logger    Logger
	// Notify receives every published Status on the loop goroutine.
	Notify func(Status)

	Base geom.Point
	Cage geom.Rect

	PollInterval  time.Duration
	StartupGrace  time.Duration
	Repeat        time.Duration
	NudgeVelocity int

	RestoreOnOff   bool
	Wiggle         bool
	ToggleFeedback bool
	LogApply       bool
	DebugButtons   bool
}

// OptionsFromSettings copies timing and behavior flags from settings.
// Devices, bindings, geometry and collaborators are left for the caller.
func OptionsFromSettings(s config.Settings) Options {
	return Options{
		PollInterval:   s.PollInterval(),
		StartupGrace:   s.StartupGrace,
		Repeat:         s.Repeat,
		NudgeVelocity:  s.NudgeVelocity,
		RestoreOnOff:   s.RestoreOnOff,
		Wiggle:         s.Wiggle,
		ToggleFeedback: s.ToggleFeedback,
		LogApply:       s.LogApply,
		DebugButtons:   s.DebugButtons,
	}
}

// State is all mutable loop state. Only the loop goroutine touches it.
type State struct {
	Toggle   *ToggleMachine
	Current  geom.Point
	Saved    geom.Point
	HasSaved bool
	Holds    HoldFlags
}

// Loop is the polling control loop.
type Loop struct {
	opts  Options
	log   Logger
	clock Clock
	gate  *ModifierGate
	sched *ApplyScheduler

	state      State
	graceUntil time.Time
	prevTick   time.Time
}

// NewLoop validates options and prepares a loop starting at the clock's now.
func NewLoop(opts Options) (*Loop, error) {
	if opts.Source == nil {
		return nil, errors.New("control: input source is required")
	}
	if opts.Bindings == nil {
		return nil, errors.New("control: binding table is required")
	}
	if opts.Injector == nil {
		return nil, errors.New("control: cursor injector is required")
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Repeat <= 0 {
		opts.Repeat = time.Second
	}
	if opts.Gate == nil {
		opts.Gate = NewModifierGate(nil, 0, false)
	}
	opts.Base = ClampPointToRect(opts.Cage, opts.Base)

	log := orDiscard(opts.Logger)
	start := opts.Clock.Now()
	return &Loop{
		opts:  opts,
		log:   log,
		clock: opts.Clock,
		gate:  opts.Gate,
		sched: NewApplyScheduler(opts.Injector, opts.Repeat, opts.Wiggle, start, log),
		state: State{
			Toggle:  NewToggleMachine(start),
			Current: opts.Base,
		},
		graceUntil: start.Add(opts.StartupGrace),
		prevTick:   start,
	}, nil
}

// Run ticks until ctx is done or the primary device is removed.
// Cancellation is a clean stop and returns nil.
func (l *Loop) Run(ctx context.Context) error {
	l.publish(ReasonStart, l.clock.Now())
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := l.Tick(l.clock.Now()); err != nil {
			return err
		}
		if err := l.clock.Sleep(ctx, l.opts.PollInterval); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// Tick runs one iteration: drain edges, integrate holds, re-apply when due.
func (l *Loop) Tick(now time.Time) error {
	elapsed := now.Sub(l.prevTick)
	l.prevTick = now

	events, err := l.opts.Source.Drain()
	if err != nil {
		return fmt.Errorf("drain input: %w", err)
	}
	for _, ev := range events {
		if ev.Kind == gamepad.RemovedEvent {
			if l.isPrimary(ev.DeviceID) {
				l.log.Warn("primary device removed, exiting", "device", ev.DeviceID)
				return ErrDeviceRemoved
			}
			l.log.Warn("device removed", "device", ev.DeviceID)
			continue
		}
		if l.opts.DebugButtons {
			l.log.Info("button", "edge", ev.Edge, "device", ev.DeviceID, "button", ev.Button, "mod", onOff(l.gate.Held()))
		}
		if now.Before(l.graceUntil) || !l.isPrimary(ev.DeviceID) {
			continue
		}
		l.handleEdge(&l.state, ev, now)
	}

	l.integrate(&l.state, elapsed, now)

	if l.state.Toggle.State() == Active && l.sched.Due(now) {
		p := l.sched.Apply(l.state.Current, now)
		if l.opts.LogApply {
			l.log.Info("apply", "x", p.X, "y", p.Y)
		}
	}
	return nil
}

// Snapshot returns the current status. Call it from the loop goroutine only.
func (l *Loop) Snapshot(reason string, at time.Time) Status {
	st := l.state.Toggle.State()
	return Status{
		Active: st == Active,
		State:  st.String(),
		Target: l.state.Current,
		Base:   l.opts.Base,
		Holds:  l.state.Holds,
		Reason: reason,
		At:     at,
	}
}

// handleEdge routes one primary-device edge through bindings and the toggle machine.
func (l *Loop) handleEdge(st *State, ev gamepad.Event, now time.Time) {
	action := l.opts.Bindings.Lookup(ev.Button, ev.Edge, l.gate.Held)
	switch {
	case action == ActNone:
		return
	case action.Directional():
		st.Holds.Set(action, ev.Edge == gamepad.Pressed)
		return
	}
	debounced := st.Toggle.Debounced(now)
	next, changed := st.Toggle.Request(action, now)
	if !changed {
		l.log.Debug("toggle ignored", "action", action, "state", st.Toggle.State())
		// A debounced press on a shared button still starts the directional hold.
		if dir := l.opts.Bindings.DirectionalFor(ev.Button); debounced && dir != ActNone {
			st.Holds.Set(dir, true)
		}
		return
	}
	if next == Active {
		l.activate(st, now)
		return
	}
	l.deactivate(st, now)
}

// activate saves the cursor, recenters and pins immediately.
func (l *Loop) activate(st *State, now time.Time) {
	if x, y, ok := l.opts.Injector.CursorPos(); ok {
		st.Saved = geom.Point{X: x, Y: y}
		st.HasSaved = true
	} else {
		st.HasSaved = false
	}
	st.Current = l.opts.Base
	l.sched.Apply(st.Current, now)
	if l.opts.ToggleFeedback {
		l.log.Info("toggle", "state", Active, "x", st.Current.X, "y", st.Current.Y)
	}
	l.publish(ReasonActivate, now)
}

// deactivate optionally restores the saved cursor position.
func (l *Loop) deactivate(st *State, now time.Time) {
	restore := l.opts.RestoreOnOff && st.HasSaved
	if restore {
		l.sched.Restore(st.Saved)
	}
	if l.opts.ToggleFeedback {
		l.log.Info("toggle", "state", Inactive, "restore", restore)
	}
	l.publish(ReasonDeactivate, now)
}

// integrate applies held directions for elapsed time.
func (l *Loop) integrate(st *State, elapsed time.Duration, now time.Time) {
	var (
		modKnown bool
		modHeld  bool
	)
	contributes := func(a Action) bool {
		if !l.opts.Bindings.RequiresModifier(a) {
			return true
		}
		if !modKnown {
			modHeld, modKnown = l.gate.Held(), true
		}
		return modHeld
	}
	dx, dy := Integrate(st.Holds, contributes, l.opts.NudgeVelocity, elapsed)
	if dx == 0 && dy == 0 {
		return
	}
	st.Current = ClampPointToRect(l.opts.Cage, st.Current.Add(dx, dy))
	if st.Toggle.State() == Active {
		l.sched.Apply(st.Current, now)
	}
	l.publish(ReasonNudge, now)
}

func (l *Loop) publish(reason string, at time.Time) {
	if l.opts.Notify != nil {
		l.opts.Notify(l.Snapshot(reason, at))
	}
}

func (l *Loop) isPrimary(id string) bool {
	return l.opts.PrimaryID == "" || id == l.opts.PrimaryID
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "off"
}
