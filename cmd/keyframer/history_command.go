package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"keyframer/internal/batch"
	"keyframer/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent runs, or the outcomes of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd.Flags())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if _, err := os.Stat(cfg.Ledger.Path); errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintf(out, "No runs recorded (%s does not exist; enable [ledger] or pass --ledger to extract)\n", cfg.Ledger.Path)
				return nil
			}

			store, err := ledger.Open(cfg.Ledger.Path)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			if len(args) == 1 {
				return showRun(cmd, store, args[0])
			}

			if limit <= 0 {
				limit = cfg.Ledger.HistoryLimit
			}
			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					humanize.Time(run.StartedAt),
					run.Duration().Round(time.Second).String(),
					run.InputDir,
					strconv.Itoa(run.Succeeded),
					strconv.Itoa(run.Skipped),
					strconv.Itoa(run.Failed),
					yesNo(run.Interrupted),
				})
			}
			fmt.Fprintln(out, renderTable("",
				[]string{"Run", "Started", "Elapsed", "Input", "Extracted", "Skipped", "Failed", "Interrupted"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of runs to show (default from [ledger] history_limit)")
	return cmd
}

func showRun(cmd *cobra.Command, store *ledger.Store, id string) error {
	run, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", id)
	}
	outcomes, err := store.Outcomes(cmd.Context(), id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	report := newStatusReport(out)
	report.section("Run " + run.ID)
	report.line("Input", statusInfo, run.InputDir)
	report.line("Output", statusInfo, run.OutputDir)
	report.line("Workers", statusInfo, strconv.Itoa(run.Workers))
	report.line("Quality", statusInfo, strconv.Itoa(run.Quality))
	report.counts(batch.Counts{Success: run.Succeeded, Skipped: run.Skipped, Failed: run.Failed}, run.Duration())

	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, []string{
			o.InputPath,
			string(o.Status),
			o.Duration.Round(time.Millisecond).String(),
			o.ErrorKind,
			o.ErrorMessage,
		})
	}
	fmt.Fprintln(out, renderTable("",
		[]string{"Input", "Status", "Elapsed", "Kind", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	))
	return nil
}
