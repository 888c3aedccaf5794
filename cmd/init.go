package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/dmdoc/internal/config"
	"github.com/zjrosen/dmdoc/internal/flags"
)

type initOptions struct {
	path    string
	sources []string
	strict  bool
	force   bool
}

var initOpts initOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a commented default configuration to .dmdoc/config.yaml.

Examples:
  dmdoc init
  dmdoc init --source docs/code --source docs/guide
  dmdoc init --strict --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runInit(cmd.OutOrStdout(), initOpts)
	},
}

func init() {
	initCmd.Flags().StringVar(&initOpts.path, "path", config.DefaultPath, "where to write the config")
	initCmd.Flags().StringArrayVar(&initOpts.sources, "source", nil, "source directory (repeatable)")
	initCmd.Flags().BoolVar(&initOpts.strict, "strict", false, "enable the strict-duplicates flag")
	initCmd.Flags().BoolVar(&initOpts.force, "force", false, "overwrite an existing config")
	rootCmd.AddCommand(initCmd)
}

func runInit(out io.Writer, opts initOptions) error {
	if _, err := os.Stat(opts.path); err == nil && !opts.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", opts.path)
	}

	if err := config.WriteDefaultConfig(opts.path); err != nil {
		return err
	}
	if len(opts.sources) > 0 {
		if err := config.SaveSources(opts.path, opts.sources); err != nil {
			return fmt.Errorf("saving sources: %w", err)
		}
	}
	if opts.strict {
		if err := config.SaveFlag(opts.path, flags.FlagStrictDuplicates, true); err != nil {
			return fmt.Errorf("saving flags: %w", err)
		}
	}

	_, err := fmt.Fprintf(out, "Wrote %s\n", opts.path)
	return err
}
