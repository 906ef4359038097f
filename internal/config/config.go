// Package config loads padpin settings from a YAML file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is the settings file read when no path is given.
	DefaultPath = "padpin.yaml"

	defaultPollHz         = 250
	minPollHz             = 10
	defaultStartupGraceMs = 200
	defaultRepeatMs       = 1000
	defaultNudgeVelocity  = 600
)

// ClampSpace selects the rectangle targets are bounded to.
type ClampSpace string

const (
	// ClampMonitor bounds targets to the selected monitor.
	ClampMonitor ClampSpace = "monitor"
	// ClampVirtual bounds targets to the whole virtual desktop.
	ClampVirtual ClampSpace = "virtual"
)

// DeviceSelector picks a controller by GUID first and index second.
type DeviceSelector struct {
	GUID     string
	Index    int
	HasIndex bool
}

// Empty reports whether neither a GUID nor an index was given.
func (d DeviceSelector) Empty() bool {
	return d.GUID == "" && !d.HasIndex
}

// Position is the configured base target inside the selected monitor.
type Position struct {
	Fractional bool
	XFrac      float64
	YFrac      float64
	X          int
	Y          int
}

// Settings holds the validated runtime configuration.
type Settings struct {
	Device         DeviceSelector
	ModifierDevice DeviceSelector
	ModifierButton int
	HasModifier    bool

	Toggle ButtonSpec
	Off    *ButtonSpec
	IncX   *ButtonSpec
	DecX   *ButtonSpec
	IncY   *ButtonSpec
	DecY   *ButtonSpec

	MonitorIndex  int
	Position      Position
	PollHz        int
	StartupGrace  time.Duration
	Repeat        time.Duration
	NudgeVelocity int
	ClampSpace    ClampSpace

	RestoreOnOff   bool
	Wiggle         bool
	ToggleFeedback bool
	FeedbackSound  bool
	UseSendInput   bool
	LogApply       bool
	DebugButtons   bool
	StatusAddr     string
}

// PollInterval returns the sleep between control loop ticks.
func (s Settings) PollInterval() time.Duration {
	return time.Second / time.Duration(s.PollHz)
}

// RequiresModifier reports whether any binding needs the modifier button.
func (s Settings) RequiresModifier() bool {
	if s.Toggle.RequiresModifier {
		return true
	}
	for _, b := range []*ButtonSpec{s.Off, s.IncX, s.DecX, s.IncY, s.DecY} {
		if b != nil && b.RequiresModifier {
			return true
		}
	}
	return false
}

// ResolvePath returns the settings path from the flag value, PADPIN_CONFIG, or the default.
func ResolvePath(flagValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	return envString("PADPIN_CONFIG", DefaultPath)
}

// Load reads the .env next to path, then the YAML settings file, then PADPIN_* overrides.
func Load(path string) (Settings, error) {
	if err := loadEnvFile(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return Settings{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{}, fmt.Errorf("config file %q not found", path)
		}
		return Settings{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML settings, applies PADPIN_* overrides and validates the result.
func Parse(data []byte) (Settings, error) {
	var file fileSettings
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	if file.Input == nil {
		return Settings{}, errors.New("missing input section")
	}
	in := *file.Input
	if err := in.applyEnv(); err != nil {
		return Settings{}, err
	}
	return in.settings()
}

type fileSettings struct {
	Input *rawInput `yaml:"input"`
}

type rawInput struct {
	DeviceGUID          string      `yaml:"device_guid"`
	DeviceIndex         *int        `yaml:"device_index"`
	ModifierDeviceGUID  string      `yaml:"modifier_device_guid"`
	ModifierDeviceIndex *int        `yaml:"modifier_device_index"`
	ModifierButton      *int        `yaml:"modifier_button"`
	ButtonToggle        buttonField `yaml:"button_toggle"`
	LegacyButton        buttonField `yaml:"button"`
	ButtonOff           buttonField `yaml:"button_off"`
	ButtonIncX          buttonField `yaml:"button_inc_x"`
	ButtonDecX          buttonField `yaml:"button_dec_x"`
	ButtonIncY          buttonField `yaml:"button_inc_y"`
	ButtonDecY          buttonField `yaml:"button_dec_y"`
	MonitorIndex        *int        `yaml:"monitor_index"`
	XFrac               *float64    `yaml:"x_frac"`
	YFrac               *float64    `yaml:"y_frac"`
	X                   *int        `yaml:"x"`
	Y                   *int        `yaml:"y"`
	PollHz              *int        `yaml:"poll_hz"`
	StartupGraceMs      *int        `yaml:"startup_grace_ms"`
	RepeatMs            *int        `yaml:"repeat_ms"`
	NudgeVelocity       *int        `yaml:"nudge_velocity_px_s"`
	ClampSpace          string      `yaml:"clamp_space"`
	RestoreOnOff        *bool       `yaml:"restore_on_off"`
	WiggleOnePixel      *bool       `yaml:"wiggle_one_pixel"`
	ToggleFeedback      *bool       `yaml:"toggle_feedback"`
	FeedbackSound       *bool       `yaml:"feedback_sound"`
	UseSendInput        *bool       `yaml:"use_sendinput"`
	LogApply            *bool       `yaml:"log_apply"`
	DebugButtons        *bool       `yaml:"debug_buttons"`
	StatusAddr          string      `yaml:"status_addr"`
}

// buttonField accepts both `25` and `"25M"` scalars.
type buttonField string

// UnmarshalYAML keeps the literal scalar text.
func (b *buttonField) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: button spec must be a scalar", node.Line)
	}
	*b = buttonField(strings.TrimSpace(node.Value))
	return nil
}

// applyEnv overrides scalar keys from PADPIN_* environment variables.
func (in *rawInput) applyEnv() error {
	in.DeviceGUID = envString("PADPIN_DEVICE_GUID", in.DeviceGUID)
	in.ClampSpace = envString("PADPIN_CLAMP_SPACE", in.ClampSpace)
	in.StatusAddr = envString("PADPIN_STATUS_ADDR", in.StatusAddr)

	ints := []struct {
		key string
		dst **int
	}{
		{"PADPIN_DEVICE_INDEX", &in.DeviceIndex},
		{"PADPIN_MONITOR_INDEX", &in.MonitorIndex},
		{"PADPIN_POLL_HZ", &in.PollHz},
		{"PADPIN_REPEAT_MS", &in.RepeatMs},
		{"PADPIN_NUDGE_VELOCITY_PX_S", &in.NudgeVelocity},
	}
	for _, o := range ints {
		v, err := envOptionalInt(o.key, *o.dst)
		if err != nil {
			return err
		}
		*o.dst = v
	}

	in.RestoreOnOff = envOptionalBool("PADPIN_RESTORE_ON_OFF", in.RestoreOnOff)
	in.WiggleOnePixel = envOptionalBool("PADPIN_WIGGLE_ONE_PIXEL", in.WiggleOnePixel)
	in.FeedbackSound = envOptionalBool("PADPIN_FEEDBACK_SOUND", in.FeedbackSound)
	in.UseSendInput = envOptionalBool("PADPIN_USE_SENDINPUT", in.UseSendInput)
	return nil
}

// settings validates the raw input and fills in defaults.
func (in rawInput) settings() (Settings, error) {
	cfg := Settings{
		Device:         DeviceSelector{GUID: strings.TrimSpace(in.DeviceGUID)},
		ModifierDevice: DeviceSelector{GUID: strings.TrimSpace(in.ModifierDeviceGUID)},
		MonitorIndex:   intOr(in.MonitorIndex, 0),
		PollHz:         max(minPollHz, intOr(in.PollHz, defaultPollHz)),
		StartupGrace:   time.Duration(max(0, intOr(in.StartupGraceMs, defaultStartupGraceMs))) * time.Millisecond,
		Repeat:         time.Duration(max(1, intOr(in.RepeatMs, defaultRepeatMs))) * time.Millisecond,
		NudgeVelocity:  max(1, intOr(in.NudgeVelocity, defaultNudgeVelocity)),
		ClampSpace:     normalizeClampSpace(in.ClampSpace),
		RestoreOnOff:   boolOr(in.RestoreOnOff, false),
		Wiggle:         boolOr(in.WiggleOnePixel, false),
		ToggleFeedback: boolOr(in.ToggleFeedback, true),
		FeedbackSound:  boolOr(in.FeedbackSound, false),
		UseSendInput:   boolOr(in.UseSendInput, true),
		LogApply:       boolOr(in.LogApply, false),
		DebugButtons:   boolOr(in.DebugButtons, false),
		StatusAddr:     strings.TrimSpace(in.StatusAddr),
	}
	if in.DeviceIndex != nil {
		cfg.Device.Index, cfg.Device.HasIndex = *in.DeviceIndex, true
	}
	if in.ModifierDeviceIndex != nil {
		cfg.ModifierDevice.Index, cfg.ModifierDevice.HasIndex = *in.ModifierDeviceIndex, true
	}
	if in.ModifierButton != nil {
		cfg.ModifierButton, cfg.HasModifier = *in.ModifierButton, true
	}

	toggleRaw := in.ButtonToggle
	if toggleRaw == "" {
		toggleRaw = in.LegacyButton
	}
	toggle, err := ParseButtonSpec(string(toggleRaw))
	if err != nil {
		return Settings{}, fmt.Errorf("button_toggle: %w", err)
	}
	if toggle == nil {
		return Settings{}, errors.New("button_toggle (or legacy button) is required")
	}
	cfg.Toggle = *toggle

	optional := []struct {
		key string
		raw buttonField
		dst **ButtonSpec
	}{
		{"button_off", in.ButtonOff, &cfg.Off},
		{"button_inc_x", in.ButtonIncX, &cfg.IncX},
		{"button_dec_x", in.ButtonDecX, &cfg.DecX},
		{"button_inc_y", in.ButtonIncY, &cfg.IncY},
		{"button_dec_y", in.ButtonDecY, &cfg.DecY},
	}
	for _, o := range optional {
		spec, err := ParseButtonSpec(string(o.raw))
		if err != nil {
			return Settings{}, fmt.Errorf("%s: %w", o.key, err)
		}
		*o.dst = spec
	}

	pos, err := parsePosition(in)
	if err != nil {
		return Settings{}, err
	}
	cfg.Position = pos
	return cfg, nil
}

// parsePosition enforces exactly one of the fractional and pixel pairs.
func parsePosition(in rawInput) (Position, error) {
	useFrac := in.XFrac != nil && in.YFrac != nil
	usePx := in.X != nil && in.Y != nil
	switch {
	case useFrac && usePx:
		return Position{}, errors.New("provide x_frac & y_frac or x & y, not both")
	case useFrac:
		if math.IsNaN(*in.XFrac) || math.IsNaN(*in.YFrac) {
			return Position{}, errors.New("x_frac and y_frac must be numbers")
		}
		return Position{Fractional: true, XFrac: *in.XFrac, YFrac: *in.YFrac}, nil
	case usePx:
		return Position{X: *in.X, Y: *in.Y}, nil
	default:
		return Position{}, errors.New("provide x_frac & y_frac or x & y")
	}
}

// normalizeClampSpace falls back to monitor clamping for unknown values.
func normalizeClampSpace(value string) ClampSpace {
	switch ClampSpace(strings.ToLower(strings.TrimSpace(value))) {
	case ClampVirtual:
		return ClampVirtual
	default:
		return ClampMonitor
	}
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
