package batch

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"keyframer/internal/keyframes"
	"keyframer/internal/logging"
	"keyframer/internal/media"
)

// Extractor is the per-input unit of work run by the Dispatcher.
type Extractor interface {
	OutputDir(input media.InputSpec) (string, error)
	Extract(ctx context.Context, input media.InputSpec) (keyframes.Result, error)
}

// Dispatcher runs an Extractor over a discovery sequence using a Pool.
type Dispatcher struct {
	pool      *Pool
	extractor Extractor
	logger    *slog.Logger
	now       func() time.Time
}

// NewDispatcher wires a pool and extractor together.
func NewDispatcher(pool *Pool, extractor Extractor, logger *slog.Logger) (*Dispatcher, error) {
	if pool == nil {
		return nil, errors.New("dispatcher requires a pool")
	}
	if extractor == nil {
		return nil, errors.New("dispatcher requires an extractor")
	}
	return &Dispatcher{
		pool:      pool,
		extractor: extractor,
		logger:    logging.NewComponentLogger(logger, "batch"),
		now:       time.Now,
	}, nil
}

// Run submits every input to the pool and blocks until each submitted input
// has an outcome. Once ctx is cancelled no further inputs are submitted;
// in-flight tasks are left to observe the cancellation themselves.
func (d *Dispatcher) Run(ctx context.Context, inputs iter.Seq[media.InputSpec]) *Result {
	result := &Result{
		RunID:   uuid.NewString(),
		Started: d.now(),
	}
	logger := d.logger.With(logging.String(logging.FieldRunID, result.RunID))
	logger.Info("batch started", logging.Int("workers", d.pool.Size()))

	var (
		mu      sync.Mutex
		claimed = map[string]string{}
		group   = d.pool.group()
		stopped bool
	)
	record := func(o TaskOutcome) {
		mu.Lock()
		result.Outcomes = append(result.Outcomes, o)
		mu.Unlock()
	}

	for input := range inputs {
		if ctx.Err() != nil {
			stopped = true
			break
		}

		// Claim the output directory before submitting so two inputs that
		// share a stem never race for the same directory.
		dir, err := d.extractor.OutputDir(input)
		if err == nil {
			if owner, taken := claimed[dir]; taken {
				logger.Warn("output directory already claimed in this run; skipping",
					logging.String(logging.FieldInput, input.Path),
					logging.String(logging.FieldOutputDir, dir),
					logging.String("claimed_by", owner),
				)
				record(TaskOutcome{
					Input:        input,
					Status:       keyframes.StatusSkipped,
					OutputDir:    dir,
					CollidesWith: owner,
				})
				continue
			}
			claimed[dir] = input.Path
		}

		group.Go(func() error {
			record(d.runTask(ctx, logger, input))
			return nil
		})
	}
	_ = group.Wait()

	// A cancellation that lands after the last task finished changes nothing.
	if stopped || result.hasCanceledOutcome() {
		result.Interrupted = true
		result.Cause = ctx.Err()
		if result.Cause == nil {
			result.Cause = context.Canceled
		}
	}
	result.Finished = d.now()
	slices.SortFunc(result.Outcomes, func(a, b TaskOutcome) int {
		return strings.Compare(a.Input.Path, b.Input.Path)
	})

	counts := result.Counts()
	attrs := []logging.Attr{
		logging.Int("succeeded", counts.Success),
		logging.Int("skipped", counts.Skipped),
		logging.Int("failed", counts.Failed),
		logging.Duration("elapsed", result.Duration()),
	}
	switch {
	case result.Interrupted:
		logger.Warn("batch interrupted", logging.Args(attrs...)...)
	case counts.Failed > 0:
		logger.Warn("batch finished with failures", logging.Args(attrs...)...)
	default:
		logger.Info("batch finished", logging.Args(attrs...)...)
	}
	return result
}

func (d *Dispatcher) runTask(ctx context.Context, logger *slog.Logger, input media.InputSpec) TaskOutcome {
	started := d.now()
	res, err := d.extractor.Extract(ctx, input)
	outcome := TaskOutcome{
		Input:     input,
		Status:    res.Status,
		OutputDir: res.OutputDir,
		Err:       err,
		Duration:  d.now().Sub(started),
	}
	if err != nil {
		outcome.Status = keyframes.StatusFailed
		if outcome.OutputDir == "" {
			if dir, dirErr := d.extractor.OutputDir(input); dirErr == nil {
				outcome.OutputDir = dir
			}
		}
		attrs := []logging.Attr{
			logging.String(logging.FieldInput, input.Path),
			logging.String("error_kind", keyframes.Kind(err)),
			logging.Error(err),
		}
		var decErr *keyframes.DecoderError
		if errors.As(err, &decErr) {
			attrs = append(attrs, logging.Int(logging.FieldExitStatus, decErr.ExitStatus))
		}
		logger.Error("keyframe extraction failed", logging.Args(attrs...)...)
		return outcome
	}
	if outcome.Status == "" {
		outcome.Status = keyframes.StatusSuccess
	}
	logger.Debug("task finished",
		logging.String(logging.FieldInput, input.Path),
		logging.String(logging.FieldStatus, string(outcome.Status)),
		logging.Duration("elapsed", outcome.Duration),
	)
	return outcome
}
