// Package testutil holds fakes shared by package tests.
package testutil

import (
	"context"
	"time"
)

// FakeClock is a manual clock; Sleep advances it instead of blocking.
type FakeClock struct {
	now    time.Time
	Sleeps []time.Duration
	// OnSleep runs after each Sleep advanced the clock.
	OnSleep func()
}

// NewFakeClock returns a clock set to start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the fake time.
func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward and returns the new time.
func (c *FakeClock) Advance(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

// Sleep advances the clock by d unless ctx is already done.
func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.now = c.now.Add(d)
	c.Sleeps = append(c.Sleeps, d)
	if c.OnSleep != nil {
		c.OnSleep()
	}
	return ctx.Err()
}
