// Package polltest provides a simulated clock for polling loops.
package polltest

import (
	"context"
	"sync"
	"time"
)

// Clock advances only when Sleep is called. OnSleep, if set, runs after
// each advance with the new time.
type Clock struct {
	mu      sync.Mutex
	now     time.Time
	slept   []time.Duration
	OnSleep func(now time.Time)
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.slept = append(c.slept, d)
	now := c.now
	hook := c.OnSleep
	c.mu.Unlock()

	if hook != nil {
		hook(now)
	}
	return nil
}

// Slept returns every duration passed to Sleep, in order.
func (c *Clock) Slept() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.slept...)
}

// Elapsed is the simulated time since NewClock.
func (c *Clock) Elapsed() time.Duration {
	return c.Now().Sub(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}
