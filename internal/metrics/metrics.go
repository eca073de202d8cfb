// Package metrics provides lock-free counters for a credential trial
// run.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks trial statistics for one run.
type Collector struct {
	started   atomic.Int64
	finished  atomic.Int64
	inFlight  atomic.Int64
	peak      atomic.Int64
	successes atomic.Int64
	failures  atomic.Int64
	errors    atomic.Int64
	probeNs   atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Trial lifecycle ──────────────────────────────────────────────────

// TrialStarted counts a trial that began executing and raises the
// peak in-flight gauge if needed.
func (c *Collector) TrialStarted() {
	if c == nil {
		return
	}
	c.started.Add(1)
	n := c.inFlight.Add(1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

// TrialFinished records the end of a trial that took d.
func (c *Collector) TrialFinished(d time.Duration) {
	if c == nil {
		return
	}
	c.inFlight.Add(-1)
	c.finished.Add(1)
	c.probeNs.Add(int64(d))
}

// InFlight returns the number of trials currently executing.
func (c *Collector) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// PeakInFlight returns the highest concurrent trial count observed.
func (c *Collector) PeakInFlight() int64 {
	if c == nil {
		return 0
	}
	return c.peak.Load()
}

// Started returns how many trials began.
func (c *Collector) Started() int64 {
	if c == nil {
		return 0
	}
	return c.started.Load()
}

// ── Results ──────────────────────────────────────────────────────────

// Success counts a confirmed join.
func (c *Collector) Success() {
	if c == nil {
		return
	}
	c.successes.Add(1)
}

// Failure counts a rejected candidate.
func (c *Collector) Failure() {
	if c == nil {
		return
	}
	c.failures.Add(1)
}

// RecordError counts a trial that could not be evaluated and keeps
// the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errors.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the number of errored trials.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errors.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all counters.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	TrialsStarted    int64  `json:"trials_started"`
	TrialsFinished   int64  `json:"trials_finished"`
	InFlight         int64  `json:"in_flight"`
	PeakInFlight     int64  `json:"peak_in_flight"`
	Successes        int64  `json:"successes"`
	Failures         int64  `json:"failures"`
	Errors           int64  `json:"errors"`
	MeanTrial        string `json:"mean_trial,omitempty"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:         time.Since(c.startTime).Truncate(time.Millisecond).String(),
		TrialsStarted:  c.started.Load(),
		TrialsFinished: c.finished.Load(),
		InFlight:       c.inFlight.Load(),
		PeakInFlight:   c.peak.Load(),
		Successes:      c.successes.Load(),
		Failures:       c.failures.Load(),
		Errors:         c.errors.Load(),
	}
	if s.TrialsFinished > 0 {
		mean := time.Duration(c.probeNs.Load() / s.TrialsFinished)
		s.MeanTrial = mean.Truncate(time.Millisecond).String()
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	data, _ := json.MarshalIndent(c.Snapshot(), "", "  ")
	return string(data)
}
