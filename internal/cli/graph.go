package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/nugraph/pkg/config"
	nerrors "github.com/matzehuels/nugraph/pkg/errors"
	"github.com/matzehuels/nugraph/pkg/export"
	"github.com/matzehuels/nugraph/pkg/pipeline"
)

// graphOpts holds the command-line flags for drawing a graph.
type graphOpts struct {
	framework      string   // target framework, e.g. net8.0
	runtime        string   // runtime identifier, e.g. linux-x64
	output         string   // output file; empty produces a viewer URL
	format         string   // viewer service or diagram language
	urlAction      string   // open, print or both
	direction      string   // LeftToRight or TopToBottom
	title          string   // diagram title override
	includeVersion bool     // show versions in node labels
	ignore         []string // glob patterns of packages to hide
	noLinks        bool     // omit nuget.org links
	includeIgnored bool     // keep ignored packages in the output
	diagnose       bool     // print environment information instead
}

// openURL opens a URL in the default browser. Replaced in tests.
var openURL = func(u string) error {
	browser.Stdout = uiOut
	return browser.OpenURL(u)
}

// register adds the graph flags to cmd.
func (o *graphOpts) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.framework, "framework", "f", "", "target framework to draw, e.g. net8.0 (default: selected automatically)")
	f.StringVarP(&o.runtime, "runtime", "r", "", "runtime identifier, e.g. linux-x64")
	f.BoolVar(&o.diagnose, "diagnose", false, "print diagnostic information and exit")
	_ = f.MarkHidden("diagnose")
	o.registerOutput(cmd)
}

// registerOutput adds the flags shaping the diagram and where it goes.
func (o *graphOpts) registerOutput(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "write the graph to a file: .mmd/.mermaid, .json or Graphviz for any other extension")
	f.StringVarP(&o.format, "format", "m", pipeline.DefaultFormat, "viewer service or diagram language: "+formatNames())
	f.StringVarP(&o.urlAction, "url", "u", config.URLOpen, "what to do with the viewer URL: open, print or open,print")
	f.StringVarP(&o.direction, "direction", "d", "LeftToRight", "graph direction: LeftToRight or TopToBottom")
	f.StringVarP(&o.title, "title", "t", "", "diagram title")
	f.BoolVarP(&o.includeVersion, "include-version", "s", false, "include package versions in the graph")
	f.StringArrayVarP(&o.ignore, "ignore", "i", nil, "ignore packages matching a glob pattern (repeatable)")
	f.BoolVar(&o.noLinks, "no-links", false, "do not link packages to nuget.org")
	f.BoolVar(&o.includeIgnored, "include-ignored-packages", false, "keep ignored packages in the output")
	_ = f.MarkHidden("include-ignored-packages")
}

func formatNames() string {
	names := []string{"mermaid", "graphviz"}
	for _, s := range export.Services() {
		names = append(names, s.String())
	}
	return strings.Join(names, ", ")
}

// pipelineOptions merges flags over the configuration file. A flag wins only
// when it was given explicitly.
func (c *CLI) pipelineOptions(flags *pflag.FlagSet, o *graphOpts, source, workDir string) (pipeline.Options, config.URLActions, error) {
	cfg := c.config
	pick := func(name, flag, fromConfig string) string {
		if flags.Changed(name) || fromConfig == "" {
			return flag
		}
		return fromConfig
	}

	includeVersion := cfg.IncludeVersion
	if flags.Changed("include-version") {
		includeVersion = o.includeVersion
	}
	noLinks := !cfg.Links
	if flags.Changed("no-links") {
		noLinks = o.noLinks
	}

	opts := pipeline.Options{
		Source:          source,
		Framework:       o.framework,
		Runtime:         o.runtime,
		Format:          pick("format", o.format, cfg.Format),
		Output:          o.output,
		Direction:       pick("direction", o.direction, cfg.Direction),
		Title:           o.title,
		IncludeVersions: includeVersion,
		Ignore:          append(slices.Clone(cfg.Ignore), o.ignore...),
		WriteIgnored:    o.includeIgnored,
		NoLinks:         noLinks,
		WorkDir:         workDir,
		Logger:          c.Logger,
	}
	actions, err := config.ParseURLActions(pick("url", o.urlAction, cfg.URL))
	if err != nil {
		return opts, actions, nerrors.Wrap(nerrors.ErrCodeInvalidInput, err, "invalid --url")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, actions, err
	}
	return opts, actions, nil
}

// runGraph draws the graph of source.
func (c *CLI) runGraph(cmd *cobra.Command, o *graphOpts, source string) error {
	if o.diagnose {
		return c.runDiagnose(cmd)
	}
	ctx := cmd.Context()

	workDir, err := os.Getwd()
	if err != nil {
		return nerrors.Wrap(nerrors.ErrCodeInternal, err, "get working directory")
	}
	opts, actions, err := c.pipelineOptions(cmd.Flags(), o, source, workDir)
	if err != nil {
		return err
	}

	runner, closeRunner, err := c.newRunner(ctx, workDir)
	if err != nil {
		return err
	}
	defer closeRunner()

	var spin *Spinner
	if showSpinner(c.Logger) {
		spin = newSpinnerWithContext(ctx, "Resolving")
		spin.Start()
		opts.Progress = spin.SetMessage
	} else {
		opts.Progress = func(status string) { c.Logger.Info(status) }
	}

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, opts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Drew %d packages with %d dependencies", result.Stats.NodeCount, result.Stats.EdgeCount))

	for _, w := range result.Warnings {
		printWarning("%s", w)
	}
	return c.report(cmd, result, actions)
}

// report tells the user where the graph went.
func (c *CLI) report(cmd *cobra.Command, result *pipeline.Result, actions config.URLActions) error {
	name := graphName(result)
	if result.Output != "" {
		abs, err := filepath.Abs(result.Output)
		if err != nil {
			abs = result.Output
		}
		printSuccess("The %s dependency graph has been written to %s", name, StyleLink.Render(fileURI(abs)))
		printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.Ignored)
		return nil
	}

	if actions.Print {
		fmt.Fprintln(cmd.OutOrStdout(), result.URL)
	}
	if !actions.Open {
		return nil
	}
	if err := nerrors.ValidateURL(result.URL); err != nil {
		return err
	}
	if err := openURL(result.URL); err != nil {
		c.Logger.Debug("open browser", "err", err)
		printWarning("The default browser could not be opened: %v", err)
		if !actions.Print {
			fmt.Fprintln(cmd.OutOrStdout(), result.URL)
		}
		return nil
	}
	printSuccess("The %s dependency graph has been opened in the default browser", name)
	return nil
}

// graphName names the drawn graph in status messages.
func graphName(result *pipeline.Result) string {
	if result.Package != nil {
		return result.Package.Identity.ID + " " + result.Package.Identity.Version.String()
	}
	return result.Source.Name()
}

// fileURI returns the file:// URI of an absolute path.
func fileURI(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// showSpinner reports whether the spinner should run. Log lines would tear
// the spinner line apart, and pipes have no use for it.
func showSpinner(l *log.Logger) bool {
	return l.GetLevel() > log.InfoLevel && isTerminal(os.Stderr)
}
