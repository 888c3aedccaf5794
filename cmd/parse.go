package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/dmdoc/internal/domain/dm"
	"github.com/zjrosen/dmdoc/internal/presentation"
)

var parseContainer string

var parseCmd = &cobra.Command{
	Use:   "parse <signature>",
	Short: "Show how a signature is decomposed",
	Long: `Parse one signature and print its breakdown as JSON.

Examples:
  dmdoc parse "/mob/proc/Move(NewLoc, Dir)"
  dmdoc parse "proc/Entered(atom/movable/AM)" --container /turf/simulated`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParse(cmd.OutOrStdout(), args[0], parseContainer)
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseContainer, "container", "", "enclosing object path")
	rootCmd.AddCommand(parseCmd)
}

func runParse(out io.Writer, signature, container string) error {
	c := dm.ParsePath(container)
	sig := dm.ParseSignature(signature, c)
	return presentation.NewFormatter(out).FormatSignature(presentation.FromSignature(sig, c))
}
