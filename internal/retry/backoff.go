// Package retry spaces out repeated checks with exponential backoff and
// fails fast through a circuit breaker once an operation keeps erroring.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Backoff grows the delay between polls exponentially, optionally with
// jitter.
type Backoff struct {
	// InitialDelay is the delay after the first check (default 100ms).
	InitialDelay time.Duration
	// MaxDelay caps a single delay (default 1s).
	MaxDelay time.Duration
	// Multiplier increases the delay each round (default 2.0).
	Multiplier float64
	// Jitter adds ±25% randomisation so parallel pollers drift apart.
	Jitter bool
}

// DefaultBackoff returns the schedule used while waiting for a join to
// settle.
func DefaultBackoff() *Backoff {
	return &Backoff{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Poll calls check until it reports done, returns an error, the window
// elapses, or ctx is cancelled.  The last check runs at the end of the
// window, so a condition that becomes true just before the deadline is
// still seen.
//
// attempt is 1-based.  An error from check stops polling and is
// returned unchanged; expiry of the window is not an error.
func (b *Backoff) Poll(ctx context.Context, window time.Duration, check func(attempt int) (bool, error)) (bool, error) {
	delay := b.InitialDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	multiplier := b.Multiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}
	maxDelay := b.MaxDelay
	if maxDelay <= 0 {
		maxDelay = time.Second
	}

	deadline := time.Now().Add(window)
	timer := time.NewTimer(0)
	<-timer.C
	defer timer.Stop()

	for attempt := 1; ; attempt++ {
		done, err := check(attempt)
		if err != nil || done {
			return done, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, nil
		}

		wait := delay
		if b.Jitter {
			wait = addJitter(delay)
		}
		if wait > remaining {
			wait = remaining
		}

		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return false, fmt.Errorf("poll cancelled: %w", ctx.Err())
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * multiplier)
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}

// addJitter adds ±25% randomisation to a duration.
func addJitter(d time.Duration) time.Duration {
	quarter := float64(d) * 0.25
	delta := (rand.Float64() * 2 * quarter) - quarter
	return time.Duration(math.Max(float64(d)+delta, float64(time.Millisecond)))
}
