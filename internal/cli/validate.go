package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hgrotzin/language-localizer/trial"
)

func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var mode, stimuliDir string

	cmd := &cobra.Command{
		Use:   "validate <table.csv>",
		Short: "Check a trial table without running it",
		Long: `Parse and validate a trial table the way a session would, and optionally
check that every stimulus it names exists in the stimuli directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, args[0], mode, stimuliDir)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "scanner", "run mode the table is for (scanner|backup)")
	cmd.Flags().StringVar(&stimuliDir, "stimuli-dir", "", "also check stimulus files exist here")
	return cmd
}

func runValidate(cmd *cobra.Command, rootOpts *RootOptions, path, modeName, stimuliDir string) error {
	mode, err := trial.ParseMode(modeName)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid mode", err)
	}

	table, err := trial.Load(path, mode)
	if err != nil {
		var verr *trial.ValidationError
		if errors.As(err, &verr) || errors.Is(err, trial.ErrEmptyTable) {
			return WrapExitError(ExitFailure, "validation failed", err)
		}
		return WrapExitError(ExitCommandError, "cannot read table", err)
	}

	ids := table.StimulusIDs()
	if stimuliDir != "" {
		var missing []error
		for _, id := range ids {
			if _, err := os.Stat(filepath.Join(stimuliDir, id)); err != nil {
				missing = append(missing, fmt.Errorf("stimulus %q: %w", id, err))
			}
		}
		if len(missing) > 0 {
			return WrapExitError(ExitFailure, fmt.Sprintf("%d stimulus file(s) missing", len(missing)), errors.Join(missing...))
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d trials, %d stimuli, %s mode\n", path, table.Len(), len(ids), table.Mode)
	if rootOpts.Verbose {
		blocks := 0
		prev := trial.BlockNone
		for _, d := range table.Descriptors {
			if d.Block != prev {
				blocks++
				prev = d.Block
			}
		}
		fmt.Fprintf(out, "%d block(s), %s total\n", blocks, totalDuration(table))
	}
	return nil
}

func totalDuration(t *trial.Table) string {
	var total int64
	for _, d := range t.Descriptors {
		total += int64(d.Duration.Seconds())
	}
	return fmt.Sprintf("%dm%02ds", total/60, total%60)
}
