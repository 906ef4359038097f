// Package feedback plays short tones when pinning turns on or off.
package feedback

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/frudas24/padpin/internal/control"
)

const (
	sampleRate   = beep.SampleRate(44100)
	toneDuration = 90 * time.Millisecond
	toneRelease  = 30 * time.Millisecond
	activateHz   = 880.0
	deactivateHz = 440.0
	// toneVolume is in beep's base-2 scale; -2 is a quarter of full amplitude.
	toneVolume = -2.0
)

// Tones plays one tone per toggle transition.
type Tones struct {
	rate  beep.SampleRate
	play  func(...beep.Streamer)
	clear func()
	log   *slog.Logger
}

// New initializes the speaker. Callers treat an error as "sound disabled".
func New(log *slog.Logger) (*Tones, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	return newTones(sampleRate, speaker.Play, speaker.Clear, log), nil
}

func newTones(rate beep.SampleRate, play func(...beep.Streamer), clear func(), log *slog.Logger) *Tones {
	if log == nil {
		log = slog.Default()
	}
	return &Tones{rate: rate, play: play, clear: clear, log: log}
}

// Notify plays the tone for activate and deactivate statuses and ignores the rest.
func (t *Tones) Notify(st control.Status) {
	freq, ok := toneFor(st.Reason)
	if !ok {
		return
	}
	t.log.Debug("feedback tone", "reason", st.Reason, "hz", freq)
	t.play(newTone(freq, toneDuration, toneRelease, t.rate))
}

// Close drops any tone still playing.
func (t *Tones) Close() {
	t.clear()
}

func toneFor(reason string) (float64, bool) {
	switch reason {
	case control.ReasonActivate:
		return activateHz, true
	case control.ReasonDeactivate:
		return deactivateHz, true
	default:
		return 0, false
	}
}

// sine is a fixed-length sine wave with a linear fade-out.
type sine struct {
	step     float64
	phase    float64
	total    int
	release  int
	position int
}

func newTone(freq float64, duration, release time.Duration, rate beep.SampleRate) beep.Streamer {
	s := &sine{
		step:    freq / float64(rate),
		total:   rate.N(duration),
		release: min(rate.N(release), rate.N(duration)),
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: toneVolume}
}

// Stream implements beep.Streamer.
func (s *sine) Stream(samples [][2]float64) (int, bool) {
	if s.position >= s.total {
		return 0, false
	}
	for i := range samples {
		if s.position >= s.total {
			return i, true
		}
		gain := 1.0
		if left := s.total - s.position; left < s.release {
			gain = float64(left) / float64(s.release)
		}
		v := gain * math.Sin(2*math.Pi*s.phase)
		samples[i][0], samples[i][1] = v, v
		s.phase += s.step
		s.phase -= math.Floor(s.phase)
		s.position++
	}
	return len(samples), true
}

// Err implements beep.Streamer.
func (s *sine) Err() error { return nil }
