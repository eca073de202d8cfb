package config

import (
	"runtime"
	"time"
)

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags and environment variable loading.

const (
	// DefaultMaxWorkers caps the default pool size.  The OS network
	// stack associates with one network at a time, so a large pool only
	// adds interference.
	DefaultMaxWorkers = 4

	// DefaultSettle is how long a probe waits after issuing the join
	// before giving up on seeing the association.
	DefaultSettle = 1 * time.Second

	// DefaultAttemptTimeout bounds a whole trial, including every OS
	// command it runs.  Must exceed DefaultSettle.
	DefaultAttemptTimeout = 15 * time.Second

	// DefaultPollInterval is the first delay between association checks
	// during the settle window.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultBreakerReset is how long an open command breaker rejects
	// attempts before letting one through again.
	DefaultBreakerReset = 30 * time.Second
)

// DefaultWorkers returns min(DefaultMaxWorkers, NumCPU).
func DefaultWorkers() int {
	n := runtime.NumCPU()
	if n > DefaultMaxWorkers {
		return DefaultMaxWorkers
	}
	if n < 1 {
		return 1
	}
	return n
}
