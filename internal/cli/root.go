// Package cli holds the cobra commands of the langloc binary.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/hgrotzin/language-localizer/config"
)

type RootOptions struct {
	ConfigFile string
	Verbose    bool
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "langloc",
		Short: "Auditory language localizer",
		Long: `Runs the auditory language localizer task, either synchronised with the
scanner (scanner mode) or on its own (backup mode), and writes one result
row per trial.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log progress to stderr")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	return cmd
}

// loadConfig returns the defaults overlaid with the --config file, if any.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigFile == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}
