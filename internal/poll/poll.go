// Package poll runs a check on a fixed interval until it succeeds or a
// deadline passes. Time comes from a Clock so loops can be driven by a
// simulated clock in tests.
package poll

import (
	"context"
	"fmt"
	"time"

	"repackget/internal/common"
)

// ErrDeadline is returned by Schedule.Run when the timeout elapses first.
var ErrDeadline = fmt.Errorf("poll deadline reached: %w", common.ErrTimedOut)

type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

// Real is the wall clock.
var Real Clock = realClock{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Schedule describes a bounded polling loop. A zero Timeout polls until
// ctx is done.
type Schedule struct {
	Interval time.Duration
	Timeout  time.Duration
	Clock    Clock
}

// Check reports whether the awaited condition holds. attempt starts at 1.
type Check func(attempt int) (done bool, err error)

// Run calls check, then sleeps Interval, until check reports done, returns
// an error, the timeout elapses or ctx is cancelled.
func (s Schedule) Run(ctx context.Context, check Check) error {
	clock := s.Clock
	if clock == nil {
		clock = Real
	}
	start := clock.Now()

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := check(attempt)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		wait := s.Interval
		if s.Timeout > 0 {
			remaining := s.Timeout - clock.Now().Sub(start)
			if remaining <= 0 {
				return ErrDeadline
			}
			wait = min(wait, remaining)
		}
		if err := clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}
