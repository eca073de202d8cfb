package trial

import (
	"fmt"
	"time"

	"github.com/segmentio/ksuid"

	"wifiprobe/internal/probe"
)

// State is the lifecycle of one run.  Every state but StateRunning is
// terminal.
type State int

const (
	StateRunning State = iota
	// StateSatisfied: a join was confirmed.
	StateSatisfied
	// StateExhausted: every submitted trial completed without a join.
	StateExhausted
	// StateCancelled: the caller's context ended the run first.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSatisfied:
		return "satisfied"
	case StateExhausted:
		return "exhausted"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Report describes a finished run.  Outcomes are in completion order
// and hold only what was observed before Run returned.
type Report struct {
	RunID     ksuid.KSUID
	Target    string
	State     State
	Winner    *probe.Outcome
	Outcomes  []probe.Outcome
	Submitted int
	Elapsed   time.Duration
}

// Count returns how many observed outcomes have result res.
func (r *Report) Count(res probe.Result) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Result == res {
			n++
		}
	}
	return n
}

// Errors returns the causes of all Error outcomes.
func (r *Report) Errors() []error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Result == probe.Error && o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errs
}
