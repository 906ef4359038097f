// Package control runs the button-to-cursor loop: bindings, toggle, nudging and re-apply.
package control

import (
	"context"
	"log/slog"
	"time"
)

// Clock supplies time and paces the loop.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sleep waits for d or until ctx is done.
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Logger is the subset of *slog.Logger the loop uses.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

func orDiscard(log Logger) Logger {
	if log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return log
}
