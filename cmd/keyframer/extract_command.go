package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"keyframer/internal/batch"
	"keyframer/internal/config"
	"keyframer/internal/keyframes"
	"keyframer/internal/ledger"
	"keyframer/internal/logging"
	"keyframer/internal/media"
	"keyframer/internal/preflight"
	"keyframer/internal/runlock"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract keyframes from every video below the input directory",
		Long: `Walk the input directory recursively and run ffmpeg once per video file,
writing its keyframes to <output>/<name>/keyframe_00001.jpg and onward.

Inputs whose output directory already exists are skipped, so an interrupted
batch can be re-run. Use --completion-marker to only skip directories that
ffmpeg finished writing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd.Flags())
			if err != nil {
				return err
			}
			return runExtract(cmd, cfg, skipPreflight)
		},
	}

	flags := cmd.Flags()
	flags.StringP("input", "i", "", "Directory tree to scan for videos")
	flags.StringP("output", "o", "", "Root directory for extracted keyframes (default ./keyframes_output)")
	flags.IntP("threads", "t", 0, "Concurrent ffmpeg processes (default: number of CPUs)")
	flags.IntP("quality", "q", 0, "JPEG quality passed to ffmpeg, 1 best to 31 worst (default 2)")
	flags.String("extensions", "", "Comma separated video extensions (default mp4,mov,avi,mkv,flv)")
	flags.String("layout", "", "Output directory layout: stem or relative")
	flags.Bool("completion-marker", false, "Only skip output directories that ffmpeg completed")
	flags.String("ffmpeg", "", "ffmpeg executable name or path")
	flags.Bool("ledger", false, "Record this run in the history database")
	flags.BoolVar(&skipPreflight, "skip-preflight", false, "Do not verify directories and ffmpeg before starting")

	return cmd
}

func runExtract(cmd *cobra.Command, cfg *config.Config, skipPreflight bool) error {
	if err := cfg.RequireInput(); err != nil {
		return err
	}

	logger, closer, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closer.Close()

	runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !skipPreflight {
		if failed := preflight.Failed(preflight.RunAll(runCtx, cfg)); len(failed) > 0 {
			msgs := make([]string, 0, len(failed))
			for _, r := range failed {
				msgs = append(msgs, fmt.Sprintf("%s: %s", r.Name, r.Detail))
			}
			return fmt.Errorf("preflight failed:\n  %s", strings.Join(msgs, "\n  "))
		}
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	lock, err := runlock.Acquire(cfg.Paths.OutputDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	layout, err := keyframes.ParseLayout(cfg.Extraction.Layout)
	if err != nil {
		return err
	}
	extractor, err := keyframes.NewExtractor(
		keyframes.NewFFmpeg(cfg.FFmpegBinary()),
		keyframes.Options{
			OutputRoot:       cfg.Paths.OutputDir,
			Quality:          cfg.Extraction.Quality,
			Layout:           layout,
			CompletionMarker: cfg.Extraction.CompletionMarker,
		},
		logger,
	)
	if err != nil {
		return err
	}
	dispatcher, err := batch.NewDispatcher(batch.NewPool(cfg.Extraction.Workers), extractor, logger)
	if err != nil {
		return err
	}

	logger.Info("scanning input directory",
		logging.String(logging.FieldInput, cfg.Paths.InputDir),
		logging.String(logging.FieldOutputDir, cfg.Paths.OutputDir),
	)
	allowed := media.NewExtensionSet(cfg.Extraction.Extensions...)
	result := dispatcher.Run(runCtx, media.Discover(cfg.Paths.InputDir, allowed))

	if cfg.Ledger.Enabled {
		recordRun(logger, cfg, result)
	}

	out := cmd.OutOrStdout()
	renderSummary(out, result)

	if err := result.Err(); err != nil {
		if result.Interrupted {
			return fmt.Errorf("keyframe extraction interrupted: %w", context.Canceled)
		}
		return fmt.Errorf("keyframe extraction failed for %d input(s):\n%w", len(result.Failures()), err)
	}
	return nil
}

// recordRun stores result in the ledger. Ledger errors never fail the batch.
func recordRun(logger *slog.Logger, cfg *config.Config, result *batch.Result) {
	store, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		logger.Warn("run history unavailable", logging.Error(err))
		return
	}
	defer store.Close()

	meta := ledger.RunMeta{
		InputDir:  cfg.Paths.InputDir,
		OutputDir: cfg.Paths.OutputDir,
		Workers:   cfg.Extraction.Workers,
		Quality:   cfg.Extraction.Quality,
	}
	// Interrupted runs are recorded too, so the batch context is not reused.
	if err := store.Record(context.Background(), result, meta); err != nil {
		logger.Warn("failed to record run history", logging.Error(err))
	}
}
