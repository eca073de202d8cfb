// Package probe performs single join-and-verify trials.  A Verifier
// answers "is the host on this network now?"; a JoinProbe configures
// the network with one candidate key, joins, waits for the association
// to settle and classifies the result.
package probe

import (
	"fmt"
	"time"
)

// Result classifies a finished trial.
type Result int

const (
	// Failure means the join ran and the host did not associate.
	Failure Result = iota
	// Success means the host associated with the target.
	Success
	// Error means the trial could not be carried out or its result
	// could not be determined.
	Error
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Trial is one (target, candidate) pair.  Index is the candidate's
// position in the submitted list.
type Trial struct {
	Target    string
	Candidate string
	Index     int
}

// Outcome is produced exactly once per attempted trial.  Err is set
// only when Result is Error.
type Outcome struct {
	Trial
	Result  Result
	Err     error
	Elapsed time.Duration
}
