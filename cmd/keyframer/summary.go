package main

import (
	"errors"
	"fmt"
	"io"

	"keyframer/internal/batch"
	"keyframer/internal/keyframes"
)

// renderSummary prints the per-status totals of a run followed by a table of
// every failed input.
func renderSummary(w io.Writer, res *batch.Result) {
	report := newStatusReport(w)
	report.section("Keyframe extraction")
	report.line("Run", statusInfo, res.RunID)
	report.counts(res.Counts(), res.Duration())
	if res.Interrupted {
		report.line("Interrupted", statusWarn, "remaining inputs were not dispatched")
	}

	var collisions [][]string
	for _, o := range res.Outcomes {
		if o.CollidesWith != "" {
			collisions = append(collisions, []string{o.Input.Path, o.CollidesWith})
		}
	}
	if len(collisions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, renderTable("Skipped: output directory already claimed", []string{"Input", "Claimed by"}, collisions, nil))
	}

	failures := res.Failures()
	if len(failures) == 0 {
		return
	}
	rows := make([][]string, 0, len(failures))
	for _, f := range failures {
		rows = append(rows, []string{f.Input.Path, keyframes.Kind(f.Err), failureReason(f.Err)})
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, renderTable("Failures", []string{"Input", "Kind", "Reason"}, rows, nil))
}

// failureReason drops the input path prefix a TaskError adds, since the table
// already shows it.
func failureReason(err error) string {
	if err == nil {
		return ""
	}
	var taskErr *keyframes.TaskError
	if errors.As(err, &taskErr) && taskErr.Err != nil {
		return taskErr.Err.Error()
	}
	return err.Error()
}
