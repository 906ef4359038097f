// Package app wires devices, monitors, the control loop and the status surface together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/frudas24/padpin/internal/config"
	"github.com/frudas24/padpin/internal/control"
	"github.com/frudas24/padpin/internal/gamepad"
	"github.com/frudas24/padpin/internal/monitor"
	"github.com/frudas24/padpin/internal/session"
	"github.com/frudas24/padpin/internal/status"
)

// App owns the opened devices and the control loop for one run.
type App struct {
	cfg      config.Settings
	platform Platform
	log      *slog.Logger
	session  *session.Session

	mu       sync.Mutex
	monitors []monitor.Monitor
	devices  []gamepad.Device
	status   *status.Server
	sound    Feedback
	loop     *control.Loop
}

// New creates an application for cfg using platform backends.
func New(cfg config.Settings, platform Platform, log *slog.Logger) (*App, error) {
	if platform.ListDevices == nil || platform.OpenDevice == nil || platform.NewSource == nil {
		return nil, errors.New("controller backend is required")
	}
	if platform.ListMonitors == nil {
		return nil, errors.New("monitor backend is required")
	}
	if platform.NewInjector == nil {
		return nil, errors.New("cursor backend is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &App{cfg: cfg, platform: platform, log: log, session: session.New()}, nil
}

// Session returns the live session.
func (a *App) Session() *session.Session {
	return a.session
}

// Start resolves devices and geometry and builds the loop.
func (a *App) Start() error {
	table, err := control.NewBindingTable(control.BindingsFromSettings(a.cfg))
	if err != nil {
		return fmt.Errorf("bindings: %w", err)
	}

	devices, err := a.platform.ListDevices()
	if err != nil {
		return fmt.Errorf("list controllers: %w", err)
	}
	for _, d := range devices {
		a.log.Info("controller", "index", d.Index, "buttons", d.Buttons, "guid", d.GUID, "name", d.Name)
	}

	monitors, err := a.platform.ListMonitors()
	if err != nil {
		return fmt.Errorf("list monitors: %w", err)
	}
	if len(monitors) == 0 {
		return errors.New("no monitors found")
	}
	for _, m := range monitors {
		a.log.Info("monitor", "index", m.Index, "primary", m.Primary, "x", m.X, "y", m.Y, "w", m.W, "h", m.H)
	}
	mon := a.selectMonitor(monitors)

	primary, err := a.openPrimary(devices)
	if err != nil {
		return err
	}
	modifier := a.openModifier(devices, primary)

	src, err := a.platform.NewSource(primary, modifier)
	if err != nil {
		a.closeDevices()
		return fmt.Errorf("open input source: %w", err)
	}
	injector, err := a.platform.NewInjector(a.cfg.UseSendInput)
	if err != nil {
		a.closeDevices()
		return fmt.Errorf("cursor injector: %w", err)
	}

	cage := control.CageRect(a.cfg.ClampSpace, mon, monitors)
	base := control.BaseTarget(a.cfg.Position, mon, cage)

	a.session.SetDevice(primary.Info())
	a.session.SetMonitor(mon, a.cfg.ClampSpace)
	a.mu.Lock()
	a.monitors = monitors
	a.mu.Unlock()

	if a.cfg.StatusAddr != "" {
		a.status = status.NewServer(a.session, a.ListMonitors, a.log)
	}
	if a.cfg.FeedbackSound && a.platform.NewFeedback != nil {
		sound, err := a.platform.NewFeedback(a.log)
		if err != nil {
			a.log.Warn("sound feedback disabled", "err", err)
		} else {
			a.sound = sound
		}
	}

	opts := control.OptionsFromSettings(a.cfg)
	opts.Source = src
	opts.PrimaryID = primary.Info().Path
	opts.Bindings = table
	opts.Gate = control.NewModifierGate(modifier, a.cfg.ModifierButton, a.cfg.HasModifier)
	opts.Injector = injector
	opts.Clock = a.platform.Clock
	opts.Logger = a.log
	opts.Notify = a.publish
	opts.Base = base
	opts.Cage = cage
	loop, err := control.NewLoop(opts)
	if err != nil {
		a.closeDevices()
		return err
	}
	a.loop = loop

	info := primary.Info()
	a.log.Info("using primary device", "index", info.Index, "guid", info.GUID, "name", info.Name)
	a.log.Info("using monitor", "index", mon.Index, "primary", mon.Primary, "x", mon.X, "y", mon.Y, "w", mon.W, "h", mon.H)
	a.log.Info("base target", "x", base.X, "y", base.Y, "repeat", a.cfg.Repeat)
	a.log.Info("clamp space", "space", a.cfg.ClampSpace)
	for _, b := range table.Bindings() {
		a.log.Debug("binding", "binding", b.String())
	}
	return nil
}

// Run serves status (when configured) and runs the loop until ctx ends or
// the primary device disappears. Device removal is a clean exit.
func (a *App) Run(ctx context.Context) error {
	if a.loop == nil {
		return errors.New("app not started")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if a.status != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.status.ListenAndServe(ctx, a.cfg.StatusAddr); err != nil {
				a.log.Error("status server stopped", "err", err)
			}
		}()
	}

	err := a.loop.Run(ctx)
	cancel()
	wg.Wait()
	if errors.Is(err, control.ErrDeviceRemoved) {
		return nil
	}
	return err
}

// Close stops sound feedback and releases opened devices. Call it after Run returns.
func (a *App) Close() error {
	if a.sound != nil {
		a.sound.Close()
	}
	return a.closeDevices()
}

// ListMonitors returns the cached monitor list.
func (a *App) ListMonitors() ([]monitor.Monitor, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]monitor.Monitor, len(a.monitors))
	copy(out, a.monitors)
	return out, nil
}

// publish fans a loop status out to the session, watchers and sound.
func (a *App) publish(st control.Status) {
	a.session.Update(st)
	if a.status != nil {
		a.status.Broadcast()
	}
	if a.sound != nil {
		a.sound.Notify(st)
	}
}

// selectMonitor picks the configured monitor, falling back to the first one.
func (a *App) selectMonitor(monitors []monitor.Monitor) monitor.Monitor {
	if m, ok := monitor.GetMonitorByIndex(monitors, a.cfg.MonitorIndex); ok {
		return m
	}
	a.log.Warn("monitor_index out of range, using 0", "monitor_index", a.cfg.MonitorIndex, "count", len(monitors))
	if m, ok := monitor.GetMonitorByIndex(monitors, 0); ok {
		return m
	}
	return monitors[0]
}

// openPrimary resolves and opens the primary controller.
func (a *App) openPrimary(devices []gamepad.Info) (gamepad.Device, error) {
	sel := a.cfg.Device
	info, err := gamepad.Resolve(devices, sel.GUID, sel.Index, sel.HasIndex)
	if err != nil {
		return nil, fmt.Errorf("could not open primary device: %w", err)
	}
	dev, err := a.platform.OpenDevice(info)
	if err != nil {
		return nil, fmt.Errorf("could not open primary device: %w", err)
	}
	a.track(dev)
	return dev, nil
}

// openModifier returns the device the modifier button is read from. It
// falls back to the primary device when none is configured or it cannot be opened.
func (a *App) openModifier(devices []gamepad.Info, primary gamepad.Device) gamepad.Device {
	if !a.cfg.HasModifier {
		if a.cfg.RequiresModifier() {
			a.log.Warn("bindings require the modifier but modifier_button is not set; they will never fire")
		}
		return primary
	}
	sel := a.cfg.ModifierDevice
	if sel.Empty() {
		return primary
	}
	info, err := gamepad.Resolve(devices, sel.GUID, sel.Index, sel.HasIndex)
	if err != nil {
		a.log.Warn("modifier device not found, using primary device", "err", err)
		return primary
	}
	if info.Path == primary.Info().Path {
		return primary
	}
	dev, err := a.platform.OpenDevice(info)
	if err != nil {
		a.log.Warn("modifier device unavailable, using primary device", "err", err)
		return primary
	}
	a.track(dev)
	a.log.Info("using modifier device", "index", info.Index, "guid", info.GUID, "name", info.Name, "button", a.cfg.ModifierButton)
	return dev
}

func (a *App) track(dev gamepad.Device) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.devices = append(a.devices, dev)
}

func (a *App) closeDevices() error {
	a.mu.Lock()
	devices := a.devices
	a.devices = nil
	a.mu.Unlock()
	var errs []error
	for _, d := range devices {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
