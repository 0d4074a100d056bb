package ledger_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"keyframer/internal/batch"
	"keyframer/internal/keyframes"
	"keyframer/internal/ledger"
	"keyframer/internal/media"
	"keyframer/internal/testsupport"
)

func sampleResult(id string, started time.Time) *batch.Result {
	return &batch.Result{
		RunID:    id,
		Started:  started,
		Finished: started.Add(3 * time.Second),
		Outcomes: []batch.TaskOutcome{
			{
				Input:     media.InputSpec{Path: "/videos/a.mp4"},
				Status:    keyframes.StatusSuccess,
				OutputDir: "/frames/a",
				Duration:  1500 * time.Millisecond,
			},
			{
				Input:        media.InputSpec{Path: "/videos/b/a.mov"},
				Status:       keyframes.StatusSkipped,
				OutputDir:    "/frames/a",
				CollidesWith: "/videos/a.mp4",
			},
			{
				Input:     media.InputSpec{Path: "/videos/corrupt.mkv"},
				Status:    keyframes.StatusFailed,
				OutputDir: "/frames/corrupt",
				Err: &keyframes.TaskError{
					Path: "/videos/corrupt.mkv",
					Err:  &keyframes.DecoderError{ExitStatus: 1, Stderr: "Invalid data found when processing input"},
				},
			},
		},
	}
}

func TestRecordAndReadBack(t *testing.T) {
	store := testsupport.MustOpenLedger(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	meta := ledger.RunMeta{InputDir: "/videos", OutputDir: "/frames", Workers: 4, Quality: 2}
	if err := store.Record(ctx, sampleResult("run-1", started), meta); err != nil {
		t.Fatalf("Record: %v", err)
	}

	run, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run == nil {
		t.Fatal("expected stored run")
	}
	if run.Succeeded != 1 || run.Skipped != 1 || run.Failed != 1 {
		t.Fatalf("unexpected counts %+v", run)
	}
	if run.Workers != 4 || run.InputDir != "/videos" || run.Interrupted {
		t.Fatalf("unexpected meta %+v", run)
	}
	if !run.StartedAt.Equal(started) || run.Duration() != 3*time.Second {
		t.Fatalf("unexpected timing %v %v", run.StartedAt, run.Duration())
	}

	outcomes, err := store.Outcomes(ctx, "run-1")
	if err != nil {
		t.Fatalf("Outcomes: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	byPath := map[string]ledger.Outcome{}
	for _, o := range outcomes {
		byPath[o.InputPath] = o
	}
	if got := byPath["/videos/corrupt.mkv"]; got.ErrorKind != "decoder" || got.Status != keyframes.StatusFailed {
		t.Fatalf("unexpected failure outcome %+v", got)
	}
	if got := byPath["/videos/b/a.mov"]; got.ErrorKind != "collision" {
		t.Fatalf("expected collision outcome, got %+v", got)
	}
	if got := byPath["/videos/a.mp4"]; got.Duration != 1500*time.Millisecond {
		t.Fatalf("unexpected duration %v", got.Duration)
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store := testsupport.MustOpenLedger(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		res := &batch.Result{RunID: id, Started: base.Add(time.Duration(i) * time.Hour), Finished: base.Add(time.Duration(i)*time.Hour + time.Minute)}
		if err := store.Record(ctx, res, ledger.RunMeta{}); err != nil {
			t.Fatalf("Record %s: %v", id, err)
		}
	}

	runs, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "new" || runs[1].ID != "mid" {
		t.Fatalf("unexpected order %+v", runs)
	}

	all, err := store.Recent(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected all runs, got %d %v", len(all), err)
	}
}

func TestRecordRejectsDuplicateRunID(t *testing.T) {
	store := testsupport.MustOpenLedger(t)
	ctx := context.Background()
	res := sampleResult("dup", time.Now())
	if err := store.Record(ctx, res, ledger.RunMeta{}); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	if err := store.Record(ctx, res, ledger.RunMeta{}); err == nil {
		t.Fatal("expected duplicate run id to fail")
	}
	outcomes, err := store.Outcomes(ctx, "dup")
	if err != nil || len(outcomes) != 3 {
		t.Fatalf("failed insert must not add outcomes: %d %v", len(outcomes), err)
	}
}

func TestGetRunMissing(t *testing.T) {
	store := testsupport.MustOpenLedger(t)
	run, err := store.GetRun(context.Background(), "nope")
	if err != nil || run != nil {
		t.Fatalf("expected nil run, got %+v %v", run, err)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 999"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := ledger.Open(path); !errors.Is(err, ledger.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := ledger.Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
