// Package trial runs candidate keys against one target on a bounded
// worker pool and stops at the first confirmed join.
//
// Submission happens in order but trials complete in any order, so when
// several candidates would succeed the one reported is whichever
// finishes first.  Use Engine.Serial when joins must not overlap.
package trial

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/segmentio/ksuid"
	"golang.org/x/sync/errgroup"

	"wifiprobe/config"
	wperrors "wifiprobe/internal/errors"
	"wifiprobe/internal/metrics"
	"wifiprobe/internal/probe"
	"wifiprobe/util"
)

// Engine fans candidates out to a Prober.  The zero value is not
// usable; Prober must be set.
type Engine struct {
	Prober probe.Prober

	// Workers bounds the number of trials in flight.  Zero means
	// config.DefaultWorkers().
	Workers int
	// Serial forces one trial at a time regardless of Workers.
	Serial bool

	Logger  *util.Logger
	Metrics *metrics.Collector

	// OnStart and OnOutcome are called from the goroutine running Run,
	// never concurrently.  Events of trials still in flight when Run
	// returns are dropped.
	OnStart   func(t probe.Trial)
	OnOutcome func(o probe.Outcome)
}

// event is what workers hand back to the observing loop.  A nil out
// marks the start of t.
type event struct {
	t   probe.Trial
	out *probe.Outcome
}

// Limit returns the effective concurrency bound.
func (e *Engine) Limit() int {
	switch {
	case e.Serial:
		return 1
	case e.Workers > 0:
		return e.Workers
	default:
		return config.DefaultWorkers()
	}
}

// Run tries candidates against target and returns the first candidate
// whose join was confirmed.  It returns as soon as that outcome is
// observed; trials already running finish in the background and their
// outcomes are discarded.  Cancelling ctx stops submission, aborts the
// running trials, and ends the run in StateCancelled.
func (e *Engine) Run(ctx context.Context, target string, candidates []string) (winner string, ok bool, report Report) {
	start := time.Now()
	report = Report{
		RunID:  ksuid.New(),
		Target: target,
		State:  StateRunning,
	}
	log := e.logger().Tagged(shortID(report.RunID))
	defer func() { report.Elapsed = time.Since(start) }()

	if len(candidates) == 0 {
		log.Verbose("no candidates for %q", target)
		report.State = StateExhausted
		return "", false, report
	}

	limit := e.Limit()
	log.Verbose("trying %d candidate(s) against %q, %d at a time", len(candidates), target, limit)

	// Probes run under ctx, not submitCtx: a trial that has started is
	// allowed to finish even after a winner stopped submission.
	submitCtx, stopSubmit := context.WithCancel(ctx)

	var (
		found   atomic.Pointer[probe.Outcome]
		started atomic.Int64
		events  = make(chan event, 2*len(candidates))
	)

	go func() {
		defer stopSubmit()
		var g errgroup.Group
		g.SetLimit(limit)
		for i, c := range candidates {
			if submitCtx.Err() != nil {
				break
			}
			t := probe.Trial{Target: target, Candidate: c, Index: i}
			g.Go(func() error {
				// Go may have blocked on the limit while a winner
				// was found.
				if submitCtx.Err() != nil {
					return nil
				}
				started.Add(1)
				e.Metrics.TrialStarted()
				events <- event{t: t}

				out := e.attempt(ctx, t)
				e.record(out)
				if out.Result == probe.Success && found.CompareAndSwap(nil, &out) {
					stopSubmit()
				}
				events <- event{t: t, out: &out}
				return nil
			})
		}
		g.Wait() //nolint:errcheck
		close(events)
	}()

	finish := func(s State) {
		report.State = s
		report.Submitted = int(started.Load())
	}

	for {
		select {
		case <-ctx.Done():
			finish(StateCancelled)
			log.Verbose("run cancelled after %d outcome(s): %v", len(report.Outcomes), ctx.Err())
			return "", false, report

		case ev, open := <-events:
			if !open {
				if ctx.Err() != nil {
					finish(StateCancelled)
					return "", false, report
				}
				finish(StateExhausted)
				log.Verbose("exhausted %d candidate(s) without a join", report.Submitted)
				return "", false, report
			}
			if ev.out == nil {
				if e.OnStart != nil {
					e.OnStart(ev.t)
				}
				continue
			}

			out := *ev.out
			report.Outcomes = append(report.Outcomes, out)
			if e.OnOutcome != nil {
				e.OnOutcome(out)
			}
			if ev.out != found.Load() {
				continue
			}
			finish(StateSatisfied)
			report.Winner = &out
			log.Verbose("candidate #%d joined %q after %s", out.Index+1, target, time.Since(start).Truncate(time.Millisecond))
			return out.Candidate, true, report
		}
	}
}

// attempt runs one trial and turns a panicking Prober into an Error
// outcome for that candidate only.
func (e *Engine) attempt(ctx context.Context, t probe.Trial) (out probe.Outcome) {
	begin := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = probe.Outcome{
				Trial:   t,
				Result:  probe.Error,
				Err:     wperrors.WrapProbe("panic", t.Target, t.Index, fmt.Errorf("%v", r)),
				Elapsed: time.Since(begin),
			}
		}
	}()
	out = e.Prober.Attempt(ctx, t)
	out.Trial = t
	return out
}

func (e *Engine) record(out probe.Outcome) {
	e.Metrics.TrialFinished(out.Elapsed)
	switch out.Result {
	case probe.Success:
		e.Metrics.Success()
	case probe.Failure:
		e.Metrics.Failure()
	default:
		e.Metrics.RecordError(fmt.Sprint(out.Err))
	}
}

// shortID is the tail of a run ID; the head encodes the timestamp and
// repeats across runs started in the same second.
func shortID(id ksuid.KSUID) string {
	s := id.String()
	return s[len(s)-8:]
}

func (e *Engine) logger() *util.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return util.NewLogger(0)
}
