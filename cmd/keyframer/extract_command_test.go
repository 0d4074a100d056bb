package main

import (
	"errors"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"keyframer/internal/keyframes"
	"keyframer/internal/runlock"
	"keyframer/internal/testsupport"
)

func TestExtractProcessesTreeAndReportsFailures(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteTree(t, env.cfg.Paths.InputDir, "a.mp4", "nested/b.MKV", "corrupt.avi", "notes.txt")

	out, stderr, err := runCLI(t, []string{"extract"}, env.configPath)
	if err == nil {
		t.Fatalf("expected failure exit, got output %q", out)
	}
	requireContains(t, err.Error(), "failed for 1 input(s)")
	requireContains(t, err.Error(), filepath.Join(env.cfg.Paths.InputDir, "corrupt.avi"))
	requireContains(t, out, "Failures")
	requireContains(t, out, "corrupt.avi")
	requireContains(t, stderr, "keyframe extraction failed")

	for _, stem := range []string{"a", "b"} {
		if _, err := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, stem, "keyframe_00001.jpg")); err != nil {
			t.Fatalf("expected frames for %s: %v", stem, err)
		}
	}
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, "corrupt")); err != nil {
		t.Fatalf("failed input should leave its directory: %v", err)
	}
	if calls := env.decoderCalls(t); len(calls) != 3 {
		t.Fatalf("expected 3 decoder calls, got %v", calls)
	}
}

func TestExtractRerunSkipsFinishedInputs(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteTree(t, env.cfg.Paths.InputDir, "a.mp4", "b.mov")

	if _, _, err := runCLI(t, []string{"extract"}, env.configPath); err != nil {
		t.Fatalf("first extract: %v", err)
	}
	before := testsupport.Snapshot(t, env.cfg.Paths.OutputDir)
	callsBefore := len(env.decoderCalls(t))

	out, _, err := runCLI(t, []string{"extract"}, env.configPath)
	if err != nil {
		t.Fatalf("second extract: %v", err)
	}
	if got := len(env.decoderCalls(t)) - callsBefore; got != 0 {
		t.Fatalf("expected no decoder calls on re-run, got %d", got)
	}
	if after := testsupport.Snapshot(t, env.cfg.Paths.OutputDir); !maps.Equal(before, after) {
		t.Fatalf("output changed on re-run:\nbefore %v\nafter  %v", before, after)
	}
	requireLine(t, out, "Skipped:", "2")
}

func TestExtractEmptyTreeSucceeds(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"extract"}, env.configPath)
	if err != nil {
		t.Fatalf("extract on empty tree: %v", err)
	}
	requireContains(t, out, "Extracted:")
	if calls := env.decoderCalls(t); len(calls) != 0 {
		t.Fatalf("expected no decoder calls, got %v", calls)
	}
}

func TestExtractFlagsOverrideConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	otherInput := filepath.Join(env.baseDir, "other")
	otherOutput := filepath.Join(env.baseDir, "frames")
	testsupport.WriteTree(t, otherInput, "x/clip.webm", "y/clip.webm", "skip.mp4")

	_, _, err := runCLI(t, []string{
		"extract",
		"--input", otherInput,
		"--output", otherOutput,
		"--extensions", "WEBM",
		"--layout", "relative",
		"--threads", "1",
		"--completion-marker",
	}, env.configPath)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	for _, dir := range []string{"x/clip.webm", "y/clip.webm"} {
		path := filepath.Join(otherOutput, filepath.FromSlash(dir))
		if !keyframes.AlreadyDone(path, true) {
			t.Fatalf("expected completed output at %s", path)
		}
	}
	if _, err := os.Stat(filepath.Join(otherOutput, "skip")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("mp4 should be excluded by --extensions: %v", err)
	}
}

func TestExtractRequiresInput(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Paths.InputDir = ""
	configPath := filepath.Join(env.baseDir, "no-input.toml")
	file, err := os.Create(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := env.cfg.Encode(file); err != nil {
		t.Fatalf("encode config: %v", err)
	}
	_ = file.Close()

	_, _, err = runCLI(t, []string{"extract"}, configPath)
	if err == nil || !strings.Contains(err.Error(), "--input") {
		t.Fatalf("expected missing input error, got %v", err)
	}
}

func TestExtractPreflightRejectsMissingFFmpeg(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteTree(t, env.cfg.Paths.InputDir, "a.mp4")

	_, _, err := runCLI(t, []string{"extract", "--ffmpeg", filepath.Join(env.baseDir, "nope")}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "preflight failed") {
		t.Fatalf("expected preflight failure, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, "a")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("no task should run when preflight fails")
	}
}

func TestExtractRefusesLockedOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	lock, err := runlock.Acquire(env.cfg.Paths.OutputDir)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lock.Release()

	_, _, err = runCLI(t, []string{"extract"}, env.configPath)
	if !errors.Is(err, runlock.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestExtractRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteTree(t, env.cfg.Paths.InputDir, "a.mp4", "corrupt.mp4")

	if _, _, err := runCLI(t, []string{"extract", "--ledger"}, env.configPath); err == nil {
		t.Fatal("expected failure for corrupt input")
	}

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, env.cfg.Paths.InputDir)

	lines := strings.Split(out, "\n")
	var runID string
	for _, line := range lines {
		fields := strings.Fields(strings.Trim(line, "│ "))
		if len(fields) > 0 && len(fields[0]) == 36 {
			runID = fields[0]
			break
		}
	}
	if runID == "" {
		t.Fatalf("expected a run id in history output:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"history", runID}, env.configPath)
	if err != nil {
		t.Fatalf("history %s: %v", runID, err)
	}
	requireContains(t, out, "corrupt.mp4")
	requireContains(t, out, "decoder")
}
