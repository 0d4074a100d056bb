package preflight

import (
	"context"
	"path/filepath"

	"keyframer/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if cfg.Paths.InputDir != "" {
		results = append(results, CheckDirectoryAccess("Input directory", cfg.Paths.InputDir, ReadOnly))
	}
	results = append(results, CheckCreatableDirectory("Output directory", cfg.Paths.OutputDir))
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckCreatableDirectory("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckDecoder(ctx, cfg.FFmpegBinary()))

	if cfg.Ledger.Enabled {
		results = append(results, CheckCreatableDirectory("Ledger directory", filepath.Dir(cfg.Ledger.Path)))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
