package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/dmdoc/internal/config"
	"github.com/zjrosen/dmdoc/internal/presentation"
	"github.com/zjrosen/dmdoc/internal/xref"
)

var objectsCmd = &cobra.Command{
	Use:   "objects [dir...]",
	Short: "List registered objects as JSON",
	Long: `Register every declaration and list the registry in insertion order.

Examples:
  dmdoc objects
  dmdoc objects | jq '.[] | select(.type == "proc") | .name'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runObjects(cmd.Context(), cmd.OutOrStdout(), cfg, sourceRoots(cfg, args))
	},
}

func init() {
	rootCmd.AddCommand(objectsCmd)
}

func runObjects(ctx context.Context, out io.Writer, c config.Config, roots []string) error {
	docs, err := loadDocuments(c, roots)
	if err != nil {
		return err
	}

	builder := xref.New(builderOptions(c, false))
	defer builder.Close()

	if _, err := builder.Register(contextOrBackground(ctx), docs); err != nil {
		return err
	}

	dtos := presentation.FromEntries(builder.Registry().Entries())
	return presentation.NewFormatter(out).FormatObjects(dtos)
}
