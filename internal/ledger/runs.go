package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"keyframer/internal/batch"
	"keyframer/internal/keyframes"
)

// timeLayout keeps stored timestamps lexically sortable.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunMeta captures the settings a batch ran with.
type RunMeta struct {
	InputDir  string
	OutputDir string
	Workers   int
	Quality   int
}

// Run is a stored batch summary.
type Run struct {
	ID          string
	InputDir    string
	OutputDir   string
	Workers     int
	Quality     int
	StartedAt   time.Time
	FinishedAt  time.Time
	Succeeded   int
	Skipped     int
	Failed      int
	Interrupted bool
}

// Duration is the wall time of the run.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome is a stored per-input result.
type Outcome struct {
	InputPath    string
	OutputDir    string
	Status       keyframes.Status
	ErrorKind    string
	ErrorMessage string
	Duration     time.Duration
}

// Record stores a finished batch and all of its outcomes in one transaction.
func (s *Store) Record(ctx context.Context, result *batch.Result, meta RunMeta) error {
	if result == nil {
		return errors.New("record run: nil result")
	}
	counts := result.Counts()

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin record tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		_, err = tx.ExecContext(ctx, `INSERT INTO runs
			(id, input_dir, output_dir, workers, quality, started_at, finished_at, succeeded, skipped, failed, interrupted)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			result.RunID,
			meta.InputDir,
			meta.OutputDir,
			meta.Workers,
			meta.Quality,
			result.Started.UTC().Format(timeLayout),
			result.Finished.UTC().Format(timeLayout),
			counts.Success,
			counts.Skipped,
			counts.Failed,
			boolToInt(result.Interrupted),
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO outcomes
			(run_id, input_path, output_dir, status, error_kind, error_message, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare outcome insert: %w", err)
		}
		defer stmt.Close()

		for _, o := range result.Outcomes {
			var kind, message string
			if o.Err != nil {
				kind = keyframes.Kind(o.Err)
				message = o.Err.Error()
			} else if o.CollidesWith != "" {
				kind = "collision"
				message = "output directory claimed by " + o.CollidesWith
			}
			if _, err := stmt.ExecContext(ctx,
				result.RunID,
				o.Input.Path,
				o.OutputDir,
				string(o.Status),
				kind,
				message,
				o.Duration.Milliseconds(),
			); err != nil {
				return fmt.Errorf("insert outcome %s: %w", o.Input.Path, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit run: %w", err)
		}
		return nil
	})
}

// Recent returns up to limit runs, newest first. A limit <= 0 returns all runs.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, input_dir, output_dir, workers, quality, started_at, finished_at,
		succeeded, skipped, failed, interrupted FROM runs ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the run with id, or nil when it does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, input_dir, output_dir, workers, quality, started_at, finished_at,
		succeeded, skipped, failed, interrupted FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}

// Outcomes returns the stored outcomes of a run ordered by input path.
func (s *Store) Outcomes(ctx context.Context, runID string) ([]Outcome, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT input_path, output_dir, status, error_kind, error_message, duration_ms
		FROM outcomes WHERE run_id = ? ORDER BY input_path`, runID)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var (
			o          Outcome
			status     string
			durationMS int64
		)
		if err := rows.Scan(&o.InputPath, &o.OutputDir, &status, &o.ErrorKind, &o.ErrorMessage, &durationMS); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.Status = keyframes.Status(status)
		o.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run         Run
		started     string
		finished    string
		interrupted int
	)
	if err := row.Scan(
		&run.ID,
		&run.InputDir,
		&run.OutputDir,
		&run.Workers,
		&run.Quality,
		&started,
		&finished,
		&run.Succeeded,
		&run.Skipped,
		&run.Failed,
		&interrupted,
	); err != nil {
		return Run{}, err
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	run.Interrupted = interrupted != 0
	return run, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
