package cli

import (
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nugraph/internal/server"
	nerrors "github.com/matzehuels/nugraph/pkg/errors"
	"github.com/matzehuels/nugraph/pkg/pipeline"
)

const defaultAddr = "localhost:8080"

// serveCommand creates the "serve" command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dependency graphs over HTTP",
		Long: `Serve the dependency graph pipeline as a JSON HTTP API.

Routes:
  GET  /healthz
  POST /v1/encode?service=mermaid-live-view   body: diagram text
  GET  /v1/packages/{id}?version=&framework=
  GET  /v1/graph/{id}?version=&framework=&runtime=&format=&direction=

Format, direction, ignore patterns and links come from the configuration file.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			workDir, err := os.Getwd()
			if err != nil {
				return nerrors.Wrap(nerrors.ErrCodeInternal, err, "get working directory")
			}
			runner, closeRunner, err := c.newRunner(ctx, workDir)
			if err != nil {
				return err
			}
			defer closeRunner()

			defaults := pipeline.Options{
				Format:          c.config.Format,
				Direction:       c.config.Direction,
				IncludeVersions: c.config.IncludeVersion,
				Ignore:          slices.Clone(c.config.Ignore),
				NoLinks:         !c.config.Links,
				Logger:          c.Logger,
			}
			srv := server.New(runner, defaults, c.Logger)
			printInfo("Serving on %s", StyleLink.Render("http://"+addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "address to listen on")
	return cmd
}
