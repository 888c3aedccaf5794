package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/dmdoc/internal/config"
	"github.com/zjrosen/dmdoc/internal/presentation"
	"github.com/zjrosen/dmdoc/internal/xref"
)

var (
	buildJSON   bool
	buildStrict bool
)

var buildCmd = &cobra.Command{
	Use:   "build [dir...]",
	Short: "Register every declaration and resolve every reference",
	Long: `Scan the documentation sources, register all declarations, then resolve
all cross-references and print a summary.

Warnings (duplicates, malformed signatures, unresolved references) never
fail the build. Without arguments the configured sources are used.

Examples:
  dmdoc build
  dmdoc build docs/code docs/guide
  dmdoc build --strict
  dmdoc build --json | jq '.unresolved'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd.Context(), cmd.OutOrStdout(), cfg, sourceRoots(cfg, args), buildStrict, buildJSON)
	},
}

func init() {
	buildCmd.Flags().BoolVar(&buildJSON, "json", false, "print the full report as JSON")
	buildCmd.Flags().BoolVar(&buildStrict, "strict", false, "reject a path declared by two documents")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(ctx context.Context, out io.Writer, c config.Config, roots []string, strict, asJSON bool) error {
	docs, err := loadDocuments(c, roots)
	if err != nil {
		return err
	}

	builder := xref.New(builderOptions(c, strict))
	defer builder.Close()

	report, err := builder.Build(contextOrBackground(ctx), docs)
	if err != nil {
		return err
	}

	formatter := presentation.NewFormatter(out)
	if asJSON {
		return formatter.FormatReport(report)
	}
	return formatter.FormatSummary(report)
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
