package keyframes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"keyframer/internal/logging"
	"keyframer/internal/media"
)

// Status is the result class of one extraction.
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Options configures an Extractor.
type Options struct {
	OutputRoot string
	// Quality is passed to the decoder verbatim.
	Quality int
	Layout  Layout
	// CompletionMarker enables marker-based idempotency.
	CompletionMarker bool
}

// Result describes a finished extraction.
type Result struct {
	Status    Status
	OutputDir string
}

// Extractor turns one input into a directory of keyframe images.
type Extractor struct {
	opts    Options
	decoder Decoder
	logger  *slog.Logger
}

// NewExtractor validates opts and returns an Extractor using decoder.
func NewExtractor(decoder Decoder, opts Options, logger *slog.Logger) (*Extractor, error) {
	if decoder == nil {
		return nil, errors.New("extractor requires a decoder")
	}
	if opts.OutputRoot == "" {
		return nil, errors.New("extractor requires an output root")
	}
	if opts.Layout == "" {
		opts.Layout = LayoutStem
	}
	return &Extractor{
		opts:    opts,
		decoder: decoder,
		logger:  logging.NewComponentLogger(logger, "extractor"),
	}, nil
}

// OutputDir returns the directory input would be extracted into.
func (e *Extractor) OutputDir(input media.InputSpec) (string, error) {
	return OutputDir(input, e.opts.OutputRoot, e.opts.Layout)
}

// Extract runs the decoder for input unless its output already exists.
// Skips return StatusSkipped with no side effects. A failed decode leaves the
// output directory in place.
func (e *Extractor) Extract(ctx context.Context, input media.InputSpec) (Result, error) {
	dir, err := e.OutputDir(input)
	if err != nil {
		return Result{Status: StatusFailed}, err
	}
	result := Result{Status: StatusFailed, OutputDir: dir}

	if AlreadyDone(dir, e.opts.CompletionMarker) {
		e.logger.Debug("output already present; skipping",
			logging.String(logging.FieldInput, input.Path),
			logging.String(logging.FieldOutputDir, dir),
		)
		result.Status = StatusSkipped
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return result, wrap(err, input.Path, "", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return result, wrap(ErrDirectoryCreate, input.Path, dir, err)
	}
	if e.opts.CompletionMarker {
		if err := removeStaleFrames(dir); err != nil {
			return result, wrap(ErrDirectoryCreate, input.Path, "clear incomplete output", err)
		}
	}

	args := BuildArgs(input.Path, dir, e.opts.Quality)
	e.logger.Debug("starting decoder",
		logging.String(logging.FieldInput, input.Path),
		logging.Any("args", args),
	)

	decoded, err := e.decoder.Decode(ctx, args)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, wrap(ctxErr, input.Path, "", nil)
		}
		return result, wrap(ErrProcessSpawn, input.Path, "", err)
	}
	if decoded.ExitStatus != 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, wrap(ctxErr, input.Path, "decoder interrupted", nil)
		}
		return result, &TaskError{
			Path: input.Path,
			Err:  &DecoderError{ExitStatus: decoded.ExitStatus, Stderr: decoded.Stderr},
		}
	}

	if e.opts.CompletionMarker {
		if err := writeMarker(dir); err != nil {
			return result, wrap(ErrMarkerWrite, input.Path, dir, err)
		}
	}

	result.Status = StatusSuccess
	return result, nil
}

func writeMarker(dir string) error {
	stamp := time.Now().UTC().Format(time.RFC3339) + "\n"
	return os.WriteFile(filepath.Join(dir, CompletionMarkerName), []byte(stamp), 0o644)
}

// removeStaleFrames deletes frames left by an interrupted decode so the
// decoder never stops to ask about overwriting them.
func removeStaleFrames(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "keyframe_*.jpg"))
	if err != nil {
		return fmt.Errorf("glob stale frames: %w", err)
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}
