package cli

import (
	"os"

	"github.com/spf13/cobra"

	nerrors "github.com/matzehuels/nugraph/pkg/errors"
	"github.com/matzehuels/nugraph/pkg/pipeline"
)

// renderCommand creates the "render" command drawing a graph saved with
// --output graph.json again, without restoring anything.
func (c *CLI) renderCommand() *cobra.Command {
	opts := &graphOpts{}
	cmd := &cobra.Command{
		Use:   "render <graph.json>",
		Short: "Draw a dependency graph saved as JSON",
		Long: `Draw a dependency graph previously written with --output graph.json.

The same output flags as the root command apply, so a saved graph can be
opened in another viewer, converted to Mermaid or Graphviz, or filtered with
more --ignore patterns.

Examples:
  nugraph Serilog -o serilog.json
  nugraph render serilog.json -m graphviz -u print
  nugraph render serilog.json -i 'System.*' -o serilog.mmd`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir, err := os.Getwd()
			if err != nil {
				return nerrors.Wrap(nerrors.ErrCodeInternal, err, "get working directory")
			}
			po, actions, err := c.pipelineOptions(cmd.Flags(), opts, args[0], workDir)
			if err != nil {
				return err
			}
			result, err := pipeline.LoadGraph(args[0], po)
			if err != nil {
				return err
			}
			if err := pipeline.Render(result, po); err != nil {
				return err
			}
			c.Logger.Info("rendered graph", "nodes", result.Stats.NodeCount, "ignored", result.Stats.Ignored, "format", result.Format)
			return c.report(cmd, result, actions)
		},
	}
	opts.registerOutput(cmd)
	return cmd
}
