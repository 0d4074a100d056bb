package batch

import (
	"errors"
	"fmt"
	"time"

	"keyframer/internal/keyframes"
	"keyframer/internal/media"
)

// TaskOutcome records what happened to one dispatched input.
type TaskOutcome struct {
	Input     media.InputSpec
	Status    keyframes.Status
	OutputDir string
	Err       error
	Duration  time.Duration
	// CollidesWith names the earlier input that claimed the same output
	// directory in this run, when the input was skipped for that reason.
	CollidesWith string
}

// Counts tallies outcomes by status.
type Counts struct {
	Success int
	Skipped int
	Failed  int
}

// Total returns the number of outcomes counted.
func (c Counts) Total() int {
	return c.Success + c.Skipped + c.Failed
}

// Result aggregates a batch run.
type Result struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	// Outcomes is sorted by input path.
	Outcomes []TaskOutcome
	// Interrupted is set when cancellation stopped dispatch or cut an
	// in-flight task short.
	Interrupted bool
	// Cause is the context error observed when Interrupted is set.
	Cause error
}

// Counts tallies the outcomes.
func (r *Result) Counts() Counts {
	var c Counts
	for _, o := range r.Outcomes {
		switch o.Status {
		case keyframes.StatusSuccess:
			c.Success++
		case keyframes.StatusSkipped:
			c.Skipped++
		default:
			c.Failed++
		}
	}
	return c
}

// Failures returns the failed outcomes in input order.
func (r *Result) Failures() []TaskOutcome {
	var out []TaskOutcome
	for _, o := range r.Outcomes {
		if o.Status == keyframes.StatusFailed {
			out = append(out, o)
		}
	}
	return out
}

// Duration is the wall time of the run.
func (r *Result) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

func (r *Result) hasCanceledOutcome() bool {
	for _, o := range r.Outcomes {
		if o.Err != nil && keyframes.Kind(o.Err) == "canceled" {
			return true
		}
	}
	return false
}

// Err joins every task failure. It is nil when all tasks succeeded or were
// skipped and the run was not interrupted.
func (r *Result) Err() error {
	var errs []error
	for _, o := range r.Failures() {
		err := o.Err
		if err == nil {
			err = &keyframes.TaskError{Path: o.Input.Path, Err: errors.New("failed")}
		}
		errs = append(errs, err)
	}
	if r.Interrupted {
		cause := r.Cause
		if cause == nil {
			cause = errors.New("interrupted")
		}
		errs = append(errs, fmt.Errorf("batch interrupted: %w", cause))
	}
	return errors.Join(errs...)
}
