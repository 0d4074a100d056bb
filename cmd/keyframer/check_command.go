package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"keyframer/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify directories and ffmpeg before a batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd.Flags())
			if err != nil {
				return err
			}

			report := newStatusReport(cmd.OutOrStdout())
			report.section("Preflight")
			if ctx.configPath != "" {
				report.line("Config", statusInfo, ctx.configPath)
			}
			if cfg.Paths.InputDir == "" {
				report.line("Input directory", statusWarn, "not configured (pass --input to extract)")
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				report.line(r.Name, kind, r.Detail)
			}
			report.line("Ledger", statusInfo, yesNo(cfg.Ledger.Enabled))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d preflight check(s) failed", len(failed))
			}
			return nil
		},
	}
}
