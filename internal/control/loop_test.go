package control

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frudas24/padpin/internal/gamepad"
	"github.com/frudas24/padpin/internal/geom"
	"github.com/frudas24/padpin/internal/testutil"
)

const (
	pad      = "pad0"
	btnTog   = 0
	btnOff   = 1
	btnIncX  = 2
	btnDecX  = 3
	btnIncY  = 4
	btnDecY  = 5
	btnMod   = 9
	velocity = 600
)

var base = geom.Point{X: 960, Y: 540}

type harness struct {
	loop  *Loop
	src   *testutil.ScriptedSource
	inj   *testutil.FakeInjector
	clock *testutil.FakeClock
	mods  *testutil.FakeButtons
	log   *testutil.RecordingLogger
	seen  []Status
}

func defaultBindings() []Binding {
	return []Binding{
		{Action: ActToggle, Button: btnTog},
		{Action: ActForceOff, Button: btnOff},
		{Action: ActIncX, Button: btnIncX},
		{Action: ActDecX, Button: btnDecX},
		{Action: ActIncY, Button: btnIncY},
		{Action: ActDecY, Button: btnDecY},
	}
}

// newHarness builds a loop on virtual time; tweak adjusts options before construction.
func newHarness(t *testing.T, bindings []Binding, tweak func(*Options)) *harness {
	t.Helper()
	table, err := NewBindingTable(bindings)
	if err != nil {
		t.Fatalf("NewBindingTable failed: %v", err)
	}
	h := &harness{
		src:   &testutil.ScriptedSource{},
		inj:   &testutil.FakeInjector{X: 100, Y: 100, HasXY: true},
		clock: testutil.NewFakeClock(t0),
		mods:  testutil.NewFakeButtons(),
		log:   &testutil.RecordingLogger{},
	}
	opts := Options{
		Source:        h.src,
		PrimaryID:     pad,
		Bindings:      table,
		Gate:          NewModifierGate(h.mods, btnMod, true),
		Injector:      h.inj,
		Clock:         h.clock,
		Logger:        h.log,
		Notify:        func(s Status) { h.seen = append(h.seen, s) },
		Base:          base,
		Cage:          geom.Rect{X: 0, Y: 0, W: 1920, H: 1080},
		PollInterval:  4 * time.Millisecond,
		Repeat:        time.Second,
		NudgeVelocity: velocity,
	}
	if tweak != nil {
		tweak(&opts)
	}
	loop, err := NewLoop(opts)
	if err != nil {
		t.Fatalf("NewLoop failed: %v", err)
	}
	h.loop = loop
	return h
}

// tickAfter advances virtual time by d and runs one tick.
func (h *harness) tickAfter(t *testing.T, d time.Duration) {
	t.Helper()
	if err := h.loop.Tick(h.clock.Advance(d)); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
}

// press queues a press and runs a tick after d.
func (h *harness) press(t *testing.T, button int, d time.Duration) {
	t.Helper()
	h.src.Press(pad, button)
	h.tickAfter(t, d)
}

// release queues a release and runs a tick after d.
func (h *harness) release(t *testing.T, button int, d time.Duration) {
	t.Helper()
	h.src.Release(pad, button)
	h.tickAfter(t, d)
}

func pressEvent(button int) gamepad.Event {
	return gamepad.Event{Kind: gamepad.ButtonEvent, DeviceID: pad, Button: button, Edge: gamepad.Pressed}
}

// activate presses toggle once the start debounce has passed.
func (h *harness) activate(t *testing.T) {
	t.Helper()
	h.press(t, btnTog, 200*time.Millisecond)
	if h.loop.state.Toggle.State() != Active {
		t.Fatalf("expected Active after toggle")
	}
}

// TestLoop_ActivateRecentersAndApplies verifies activation pins the base target at once.
func TestLoop_ActivateRecentersAndApplies(t *testing.T) {
	h := newHarness(t, defaultBindings(), nil)
	h.activate(t)
	moves := h.inj.Moves()
	if len(moves) != 1 || moves[0].X != 960 || moves[0].Y != 540 {
		t.Fatalf("expected one move to base, got %#v", moves)
	}
	if !h.loop.state.HasSaved || h.loop.state.Saved != (geom.Point{X: 100, Y: 100}) {
		t.Fatalf("expected saved cursor (100,100), got %+v", h.loop.state.Saved)
	}
	last := h.seen[len(h.seen)-1]
	if last.Reason != ReasonActivate || !last.Active || last.Target != base {
		t.Fatalf("unexpected status %+v", last)
	}
}

// TestLoop_HoldIncXHalfSecond verifies a half second hold moves 300px at 600px/s.
func TestLoop_HoldIncXHalfSecond(t *testing.T) {
	h := newHarness(t, defaultBindings(), nil)
	h.activate(t)
	h.press(t, btnIncX, 0)
	h.tickAfter(t, 500*time.Millisecond)

	if got := h.loop.state.Current; got != (geom.Point{X: 1260, Y: 540}) {
		t.Fatalf("expected (1260,540), got %+v", got)
	}
	moves := h.inj.Moves()
	if len(moves) != 2 || moves[1].X != 1260 {
		t.Fatalf("expected an immediate apply at 1260, got %#v", moves)
	}
}

// TestLoop_HoldClampsToMonitor verifies nudging stops at the last pixel.
func TestLoop_HoldClampsToMonitor(t *testing.T) {
	h := newHarness(t, defaultBindings(), nil)
	h.activate(t)
	h.press(t, btnIncX, 0)
	h.tickAfter(t, 3*time.Second)
	if got := h.loop.state.Current.X; got != 1919 {
		t.Fatalf("expected x clamped to 1919, got %d", got)
	}
}

// TestLoop_OppositeHoldsCancel verifies inc and dec on one axis leave the target alone.
func TestLoop_OppositeHoldsCancel(t *testing.T) {
	h := newHarness(t, defaultBindings(), nil)
	h.activate(t)
	h.src.Push(
		pressEvent(btnIncX),
		pressEvent(btnDecX),
	)
	h.tickAfter(t, 0)
	h.tickAfter(t, 500*time.Millisecond)
	if got := h.loop.state.Current; got != base {
		t.Fatalf("expected target unchanged, got %+v", got)
	}
	if len(h.inj.Moves()) != 1 {
		t.Fatalf("expected no extra applies, got %#v", h.inj.Moves())
	}
}

// TestLoop_ReleaseStopsMovement verifies releasing the hold stops nudging.
func TestLoop_ReleaseStopsMovement(t *testing.T) {
	h := newHarness(t, defaultBindings(), nil)
	h.activate(t)
	h.press(t, btnDecY, 0)
	h.tickAfter(t, 100*time.Millisecond)
	h.release(t, btnDecY, 0)
	h.tickAfter(t, 100*time.Millisecond)
	if got := h.loop.state.Current; got != (geom.Point{X: 960, Y: 480}) {
		t.Fatalf("expected (960,480), got %+v", got)
	}
}

// TestLoop_RestoreOnOff verifies exactly one move to the saved cursor on deactivation.
func TestLoop_RestoreOnOff(t *testing.T) {
	h := newHarness(t, defaultBindings(), func(o *Options) { o.RestoreOnOff = true })
	h.activate(t)
	h.inj.Reset()
	h.press(t, btnTog, 200*time.Millisecond)

	if h.loop.state.Toggle.State() != Inactive {
		t.Fatalf("expected Inactive")
	}
	moves := h.inj.Moves()
	if len(moves) != 1 || moves[0].X != 100 || moves[0].Y != 100 {
		t.Fatalf("expected exactly one restore to (100,100), got %#v", moves)
	}
}

// TestLoop_NoRestoreByDefault verifies the cursor is left alone on deactivation.
func TestLoop_NoRestoreByDefault(t *testing.T) {
	h := newHarness(t, defaultBindings(), nil)
	h.activate(t)
	h.inj.Reset()
	h.press(t, btnOff, 200*time.Millisecond)
	if h.loop.state.Toggle.State() != Inactive || len(h.inj.Moves()) != 0 {
		t.Fatalf("expected Inactive without moves, got %s %#v", h.loop.state.Toggle.State(), h.inj.Moves())
	}
}

// TestLoop_DebouncedSecondToggle verifies a toggle 50ms after activation is ignored.
func TestLoop_DebouncedSecondToggle(t *testing.T) {
	h := newHarness(t, defaultBindings(), nil)
	h.activate(t)
	h.press(t, btnTog, 50*time.Millisecond)
	if h.loop.state.Toggle.State() != Active {
		t.Fatalf("expected to remain Active")
	}
	activations := 0
	for _, s := range h.seen {
		if s.Reason == ReasonActivate || s.Reason == ReasonDeactivate {
			activations++
		}
	}
	if activations != 1 {
		t.Fatalf("expected exactly one transition, got %d", activations)
	}
}

// TestLoop_RecenterAfterNudge verifies reactivation always returns to the base target.
func TestLoop_RecenterAfterNudge(t *testing.T) {
	h := newHarness(t, defaultBindings(), nil)
	h.activate(t)
	h.press(t, btnIncY, 0)
	h.tickAfter(t, 250*time.Millisecond)
	h.release(t, btnIncY, 0)
	h.press(t, btnTog, 0)
	if h.loop.state.Current == base {
		t.Fatalf("expected nudge to move the target before recentering")
	}
	h.inj.Reset()
	h.press(t, btnTog, 200*time.Millisecond)
	if h.loop.state.Current != base {
		t.Fatalf("expected recenter to %+v, got %+v", base, h.loop.state.Current)
	}
	moves := h.inj.Moves()
	if len(moves) != 1 || moves[0].X != base.X || moves[0].Y != base.Y {
		t.Fatalf("expected immediate apply at base, got %#v", moves)
	}
}

// TestLoop_NudgeWhileInactiveDoesNotMoveCursor verifies holds only move the target while inactive.
func TestLoop_NudgeWhileInactiveDoesNotMoveCursor(t *testing.T) {
	h := newHarness(t, defaultBindings(), nil)
	h.press(t, btnIncX, 0)
	h.tickAfter(t, 100*time.Millisecond)
	if len(h.inj.Moves()) != 0 {
		t.Fatalf("expected no cursor moves while inactive, got %#v", h.inj.Moves())
	}
	if h.loop.state.Current.X != 1020 {
		t.Fatalf("expected target to track holds, got %+v", h.loop.state.Current)
	}
}

// TestLoop_PeriodicReapply verifies the cursor is re-asserted every repeat interval while active.
func TestLoop_PeriodicReapply(t *testing.T) {
	h := newHarness(t, defaultBindings(), nil)
	h.activate(t)
	h.tickAfter(t, 999*time.Millisecond)
	if len(h.inj.Moves()) != 1 {
		t.Fatalf("expected no re-apply before the interval, got %#v", h.inj.Moves())
	}
	h.tickAfter(t, time.Millisecond)
	if len(h.inj.Moves()) != 2 {
		t.Fatalf("expected a re-apply at the interval, got %#v", h.inj.Moves())
	}
}

// TestLoop_ForcedApplyRestartsCadence verifies a nudge apply pushes the next re-apply out.
func TestLoop_ForcedApplyRestartsCadence(t *testing.T) {
	h := newHarness(t, defaultBindings(), nil)
	h.activate(t)
	h.press(t, btnIncX, 0)
	h.tickAfter(t, 800*time.Millisecond)
	h.release(t, btnIncX, 0)
	before := len(h.inj.Moves())
	h.tickAfter(t, 500*time.Millisecond)
	if len(h.inj.Moves()) != before {
		t.Fatalf("expected no re-apply 500ms after a forced apply")
	}
	h.tickAfter(t, 500*time.Millisecond)
	if len(h.inj.Moves()) != before+1 {
		t.Fatalf("expected re-apply one interval after the forced apply")
	}
}

// TestLoop_NoReapplyWhileInactive verifies the scheduler is idle when inactive.
func TestLoop_NoReapplyWhileInactive(t *testing.T) {
	h := newHarness(t, defaultBindings(), nil)
	for i := 0; i < 5; i++ {
		h.tickAfter(t, time.Second)
	}
	if len(h.inj.Moves()) != 0 {
		t.Fatalf("expected no moves, got %#v", h.inj.Moves())
	}
}

// TestLoop_WiggleSharedAcrossApplies verifies the one pixel offset alternates across every apply kind.
func TestLoop_WiggleSharedAcrossApplies(t *testing.T) {
	h := newHarness(t, defaultBindings(), func(o *Options) { o.Wiggle = true })
	// activate 960, re-apply 961, nudge +3 to 963, re-apply 964
	h.activate(t)
	h.tickAfter(t, time.Second)
	h.press(t, btnIncX, 0)
	h.tickAfter(t, 5*time.Millisecond)
	h.release(t, btnIncX, 0)
	h.tickAfter(t, time.Second)
	var xs []int
	for _, m := range h.inj.Moves() {
		xs = append(xs, m.X)
	}
	want := []int{960, 961, 963, 964}
	if len(xs) != len(want) {
		t.Fatalf("expected %v, got %v", want, xs)
	}
	for i := range want {
		if xs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, xs)
		}
	}
}

// TestLoop_ModifierLiveness verifies releasing the modifier stops a gated hold next tick.
func TestLoop_ModifierLiveness(t *testing.T) {
	bindings := defaultBindings()
	bindings[2] = Binding{Action: ActIncX, Button: btnIncX, RequiresModifier: true}
	h := newHarness(t, bindings, nil)
	h.activate(t)
	h.mods.Set(btnMod, true)
	h.press(t, btnIncX, 0)
	h.tickAfter(t, 100*time.Millisecond)
	if got := h.loop.state.Current.X; got != 1020 {
		t.Fatalf("expected 1020 with modifier held, got %d", got)
	}
	h.mods.Set(btnMod, false)
	h.tickAfter(t, 100*time.Millisecond)
	if got := h.loop.state.Current.X; got != 1020 {
		t.Fatalf("expected no movement after modifier release, got %d", got)
	}
	if !h.loop.state.Holds.IncX {
		t.Fatalf("expected the directional hold to stay latched")
	}
	h.mods.Set(btnMod, true)
	h.tickAfter(t, 100*time.Millisecond)
	if got := h.loop.state.Current.X; got != 1080 {
		t.Fatalf("expected movement to resume, got %d", got)
	}
}

// TestLoop_GatedToggle verifies a modifier-gated toggle needs the modifier at press time.
func TestLoop_GatedToggle(t *testing.T) {
	bindings := defaultBindings()
	bindings[0] = Binding{Action: ActToggle, Button: btnTog, RequiresModifier: true}
	h := newHarness(t, bindings, nil)
	h.press(t, btnTog, 200*time.Millisecond)
	if h.loop.state.Toggle.State() != Inactive {
		t.Fatalf("expected toggle without modifier to be ignored")
	}
	h.mods.Set(btnMod, true)
	h.press(t, btnTog, 0)
	if h.loop.state.Toggle.State() != Active {
		t.Fatalf("expected toggle with modifier to activate")
	}
}

// TestLoop_DebouncedSharedPressStartsHold verifies a gated off refused by the
// debounce window falls through to the directional bound to the same button.
func TestLoop_DebouncedSharedPressStartsHold(t *testing.T) {
	bindings := []Binding{
		{Action: ActToggle, Button: btnTog},
		{Action: ActForceOff, Button: btnIncX, RequiresModifier: true},
		{Action: ActIncX, Button: btnIncX},
	}
	h := newHarness(t, bindings, nil)
	h.mods.Set(btnMod, true)

	h.press(t, btnIncX, 200*time.Millisecond)
	if h.loop.state.Holds.IncX {
		t.Fatalf("off while inactive outside the debounce window must not start a hold")
	}
	h.release(t, btnIncX, 0)

	h.activate(t)
	h.press(t, btnIncX, 50*time.Millisecond)
	if h.loop.state.Toggle.State() != Active {
		t.Fatalf("expected debounced off to be ignored")
	}
	if !h.loop.state.Holds.IncX {
		t.Fatalf("expected debounced press to start the inc_x hold")
	}
	h.release(t, btnIncX, 10*time.Millisecond)
	if h.loop.state.Holds.IncX {
		t.Fatalf("expected release to end the hold")
	}

	h.press(t, btnIncX, 200*time.Millisecond)
	if h.loop.state.Toggle.State() != Inactive {
		t.Fatalf("expected off with modifier to deactivate")
	}
	if h.loop.state.Holds.IncX {
		t.Fatalf("accepted off must not start a hold")
	}
}

// TestLoop_GatedToggleWithoutModifierConfigured verifies gated bindings never fire with no modifier.
func TestLoop_GatedToggleWithoutModifierConfigured(t *testing.T) {
	bindings := defaultBindings()
	bindings[0] = Binding{Action: ActToggle, Button: btnTog, RequiresModifier: true}
	h := newHarness(t, bindings, func(o *Options) { o.Gate = nil })
	h.press(t, btnTog, 200*time.Millisecond)
	if h.loop.state.Toggle.State() != Inactive {
		t.Fatalf("expected gated toggle to stay inert")
	}
}

// TestLoop_ModifierReadFailureIsNotHeld verifies a failing modifier device reads as released.
func TestLoop_ModifierReadFailureIsNotHeld(t *testing.T) {
	bindings := defaultBindings()
	bindings[0] = Binding{Action: ActToggle, Button: btnTog, RequiresModifier: true}
	h := newHarness(t, bindings, nil)
	h.mods.Set(btnMod, true)
	h.mods.Err = errors.New("gone")
	h.press(t, btnTog, 200*time.Millisecond)
	if h.loop.state.Toggle.State() != Inactive {
		t.Fatalf("expected failing modifier to count as not held")
	}
}

// TestLoop_StartupGraceDiscardsEvents verifies edges inside the grace window have no effect.
func TestLoop_StartupGraceDiscardsEvents(t *testing.T) {
	h := newHarness(t, defaultBindings(), func(o *Options) { o.StartupGrace = 300 * time.Millisecond })
	h.press(t, btnIncX, 100*time.Millisecond)
	h.press(t, btnTog, 100*time.Millisecond)
	h.tickAfter(t, 200*time.Millisecond)
	if h.loop.state.Toggle.State() != Inactive || h.loop.state.Holds.Any() || h.loop.state.Current != base {
		t.Fatalf("expected grace to discard events, got %+v", h.loop.state)
	}
	h.press(t, btnTog, 0)
	if h.loop.state.Toggle.State() != Active {
		t.Fatalf("expected toggle after grace to activate")
	}
}

// TestLoop_IgnoresOtherDeviceButtons verifies only the primary device drives bindings.
func TestLoop_IgnoresOtherDeviceButtons(t *testing.T) {
	h := newHarness(t, defaultBindings(), nil)
	h.src.Press("pad1", btnTog)
	h.tickAfter(t, 200*time.Millisecond)
	if h.loop.state.Toggle.State() != Inactive {
		t.Fatalf("expected modifier-device press not to toggle")
	}
}

// TestLoop_PrimaryRemovalStops verifies removal of the primary device ends the loop.
func TestLoop_PrimaryRemovalStops(t *testing.T) {
	h := newHarness(t, defaultBindings(), nil)
	h.src.Remove("pad1")
	h.tickAfter(t, time.Millisecond)
	h.src.Remove(pad)
	if err := h.loop.Tick(h.clock.Advance(time.Millisecond)); !errors.Is(err, ErrDeviceRemoved) {
		t.Fatalf("expected ErrDeviceRemoved, got %v", err)
	}
}

// TestLoop_Deterministic verifies the same script yields identical targets.
func TestLoop_Deterministic(t *testing.T) {
	run := func() []geom.Point {
		h := newHarness(t, defaultBindings(), nil)
		h.activate(t)
		h.src.Push(pressEvent(btnIncX), pressEvent(btnDecY))
		var out []geom.Point
		for _, d := range []time.Duration{3, 7, 11, 4, 16, 1, 9} {
			h.tickAfter(t, d*time.Millisecond)
			out = append(out, h.loop.state.Current)
		}
		return out
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("tick %d diverged: %+v vs %+v", i, a[i], b[i])
		}
	}
}

// TestLoop_LogsApplyAndButtons verifies the optional diagnostic logs.
func TestLoop_LogsApplyAndButtons(t *testing.T) {
	h := newHarness(t, defaultBindings(), func(o *Options) {
		o.LogApply = true
		o.DebugButtons = true
		o.ToggleFeedback = true
	})
	h.activate(t)
	h.tickAfter(t, time.Second)
	if h.log.Count("INFO", "button") != 1 || h.log.Count("INFO", "toggle") != 1 || h.log.Count("INFO", "apply") != 1 {
		t.Fatalf("unexpected log entries %+v", h.log.Entries)
	}
}

// TestLoop_RunStopsOnCancel verifies Run exits cleanly when the context is cancelled.
func TestLoop_RunStopsOnCancel(t *testing.T) {
	h := newHarness(t, defaultBindings(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.clock.OnSleep = func() {
		if len(h.clock.Sleeps) == 3 {
			cancel()
		}
	}
	if err := h.loop.Run(ctx); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
	if len(h.clock.Sleeps) != 3 || h.clock.Sleeps[0] != 4*time.Millisecond {
		t.Fatalf("unexpected sleeps %v", h.clock.Sleeps)
	}
	if len(h.seen) == 0 || h.seen[0].Reason != ReasonStart {
		t.Fatalf("expected a start status, got %+v", h.seen)
	}
}

// TestLoop_RunReturnsRemoval verifies Run surfaces primary removal.
func TestLoop_RunReturnsRemoval(t *testing.T) {
	h := newHarness(t, defaultBindings(), nil)
	h.src.Push()
	h.src.Remove(pad)
	if err := h.loop.Run(context.Background()); !errors.Is(err, ErrDeviceRemoved) {
		t.Fatalf("expected ErrDeviceRemoved, got %v", err)
	}
}

// TestNewLoop_RequiresCollaborators verifies missing dependencies are rejected.
func TestNewLoop_RequiresCollaborators(t *testing.T) {
	if _, err := NewLoop(Options{}); err == nil {
		t.Fatalf("expected error for empty options")
	}
}
