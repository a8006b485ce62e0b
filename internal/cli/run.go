package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hgrotzin/language-localizer/config"
	"github.com/hgrotzin/language-localizer/session"
	"github.com/hgrotzin/language-localizer/trial"
)

type RunOptions struct {
	Participant string
	Mode        string
	Database    string
	StimuliDir  string
	OutputDir   string
	TriggerPort string
	DLPDevice   string
	Windowed    bool
}

func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one session for a participant",
		Long: `Run one session of the localizer. Scanner mode uses the scanner table
and waits for the experimenter and the scanner trigger at every block;
backup mode uses the backup table and runs straight through.

Press the abort key (escape by default) at any time to stop; the trials
completed so far are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Participant, "participant", "p", "", "participant id (required)")
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", "scanner", "run mode (scanner|backup)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "also store results in this SQLite database")
	cmd.Flags().StringVar(&opts.StimuliDir, "stimuli-dir", "", "directory containing the WAV stimuli")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "", "directory for results and logs")
	cmd.Flags().StringVar(&opts.TriggerPort, "trigger-port", "", "serial device of the scanner trigger box")
	cmd.Flags().StringVar(&opts.DLPDevice, "dlp", "", "DLP-IO8-G device for onset markers")
	cmd.Flags().BoolVar(&opts.Windowed, "windowed", false, "run in a window instead of fullscreen")
	_ = cmd.MarkFlagRequired("participant")

	return cmd
}

func (o *RunOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("db", &cfg.Database, o.Database)
	set("stimuli-dir", &cfg.StimuliDir, o.StimuliDir)
	set("output-dir", &cfg.OutputDir, o.OutputDir)
	set("trigger-port", &cfg.TriggerPort, o.TriggerPort)
	set("dlp", &cfg.DLPDevice, o.DLPDevice)
	if o.Windowed {
		cfg.Fullscreen = false
	}
}

func runSession(cmd *cobra.Command, rootOpts *RootOptions, opts *RunOptions) error {
	cfg, err := loadConfig(rootOpts)
	if err != nil {
		return err
	}
	opts.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	mode, err := trial.ParseMode(opts.Mode)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid mode", err)
	}
	info, err := session.NewInfo(opts.Participant, mode, cfg.ExperimentName, time.Now())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid participant", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := session.Run(ctx, cfg, info, session.Options{Verbose: rootOpts.Verbose})
	if err != nil {
		return WrapExitError(ExitFailure, "session failed", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d trials recorded in %s\n", res.Summary.Trials, res.Paths.Results)
	if res.Summary.Aborted {
		return NewExitError(ExitAborted, "session aborted")
	}
	return nil
}
