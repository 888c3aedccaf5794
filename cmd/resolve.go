package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/dmdoc/internal/config"
	"github.com/zjrosen/dmdoc/internal/domain/dm"
	"github.com/zjrosen/dmdoc/internal/presentation"
	"github.com/zjrosen/dmdoc/internal/xref"
)

type resolveOptions struct {
	container string
	role      string
	specific  bool
	asJSON    bool
}

var resolveOpts resolveOptions

var resolveCmd = &cobra.Command{
	Use:   "resolve <target> [dir...]",
	Short: "Resolve one reference against the registry",
	Long: `Register every declaration, then resolve a single reference.

The bare target is tried first, then the container-qualified form.
--specific reverses that order. --role narrows member lookup to one kind.
An unresolved target is reported but is not an error.

Examples:
  dmdoc resolve /mob/proc/Move
  dmdoc resolve "Entered()" --container /turf/simulated
  dmdoc resolve say --container /mob --role v --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResolve(cmd.Context(), cmd.OutOrStdout(), cfg, args[0], sourceRoots(cfg, args[1:]), resolveOpts)
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveOpts.container, "container", "", "enclosing object path")
	resolveCmd.Flags().StringVar(&resolveOpts.role, "role", "", "reference role: p, v or a")
	resolveCmd.Flags().BoolVar(&resolveOpts.specific, "specific", false, "try the container-qualified form first")
	resolveCmd.Flags().BoolVar(&resolveOpts.asJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(ctx context.Context, out io.Writer, c config.Config, target string, roots []string, opts resolveOptions) error {
	var hints []dm.Kind
	if opts.role != "" {
		role, err := dm.LookupRole(opts.role)
		if err != nil {
			return err
		}
		hints = append(hints, role.Kind)
	}

	docs, err := loadDocuments(c, roots)
	if err != nil {
		return err
	}

	builder := xref.New(builderOptions(c, false))
	defer builder.Close()

	ctx = contextOrBackground(ctx)
	if _, err := builder.Register(ctx, docs); err != nil {
		return err
	}

	order := dm.SearchGeneral
	if opts.specific {
		order = dm.SearchSpecific
	}
	container := dm.ParsePath(opts.container)
	entry, found, err := builder.Lookup(ctx, container, target, order, hints...)
	if err != nil {
		return err
	}

	dto := presentation.FromLookup(container, target, order, entry, found)
	formatter := presentation.NewFormatter(out)
	if opts.asJSON {
		return formatter.FormatJSON(dto)
	}
	return formatter.FormatLookup(dto)
}
