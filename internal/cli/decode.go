package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nugraph/pkg/export"
)

// decodeCommand creates the "decode" command, the inverse of URL export.
func (c *CLI) decodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <url>",
		Short: "Print the diagram text encoded in a viewer URL",
		Long: `Print the Mermaid or Graphviz text encoded in a mermaid.live, mermaid.ink,
kroki.io or edotor.net URL.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := export.Decode(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(text))
			return err
		},
	}
}
