package retry

import (
	"fmt"
	"sync"
	"time"

	wperrors "wifiprobe/internal/errors"
)

// State is the breaker's operational state.
type State int

const (
	// StateClosed passes every call through.
	StateClosed State = iota
	// StateOpen rejects calls until the cooldown has passed.
	StateOpen
	// StateHalfOpen lets a single call through to test recovery.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a [Breaker].
type BreakerConfig struct {
	// Threshold is the number of consecutive counted failures that
	// opens the breaker.  Zero disables the breaker.
	Threshold int
	// Cooldown is how long the breaker stays open (default 30s).
	Cooldown time.Duration
	// Counts decides which errors count as failures.  Nil counts all.
	Counts func(error) bool
	// OnStateChange runs under the lock on every transition.
	OnStateChange func(from, to State)
}

// Breaker stops calling an operation that keeps failing.  A nil or
// disabled Breaker passes every call through.
type Breaker struct {
	mu       sync.Mutex
	cfg      BreakerConfig
	state    State
	failures int
	openedAt time.Time
	probing  bool
	rejected int
	now      func() time.Time
}

// NewBreaker returns a breaker, or nil when cfg.Threshold is zero.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.Threshold <= 0 {
		return nil
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

// Do runs fn unless the breaker is open.  A rejected call returns an
// error wrapping errors.ErrCircuitOpen without running fn.
func (b *Breaker) Do(fn func() error) error {
	if b == nil {
		return fn()
	}
	if err := b.admit(); err != nil {
		return err
	}
	err := fn()
	b.record(err)
	return err
}

// CurrentState returns the breaker state.
func (b *Breaker) CurrentState() State {
	if b == nil {
		return StateClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Rejected returns how many calls were refused while open.
func (b *Breaker) Rejected() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rejected
}

// ── internal ─────────────────────────────────────────────────────────

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			b.rejected++
			return fmt.Errorf("%w after %d consecutive command errors", wperrors.ErrCircuitOpen, b.failures)
		}
		b.transition(StateHalfOpen)
		b.probing = true
		return nil
	case StateHalfOpen:
		if b.probing {
			b.rejected++
			return fmt.Errorf("%w: recovery probe in flight", wperrors.ErrCircuitOpen)
		}
		b.probing = true
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.probing = false
	}
	if err != nil && (b.cfg.Counts == nil || b.cfg.Counts(err)) {
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.cfg.Threshold {
			b.openedAt = b.now()
			b.transition(StateOpen)
		}
		return
	}
	b.failures = 0
	b.transition(StateClosed)
}

func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(from, to)
	}
}
