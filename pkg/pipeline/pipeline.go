// Package pipeline turns a source into a dependency diagram.
//
// A source is a project file, a directory holding one, or a package
// identity ("Serilog" or "Serilog/4.3.0"). Package sources are resolved
// against the configured feeds, get a framework from the selector and are
// restored through a throwaway project; project sources are restored in
// place. The restore's project.assets.json becomes a [dag.DAG], which is
// written as Mermaid or Graphviz text and either exported to a viewer URL or
// written to a file.
//
// # Usage
//
//	runner := pipeline.NewRunner(resolver, selector, restorer, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Source: "Serilog"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.URL)
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nugraph/pkg/dag"
	nerrors "github.com/matzehuels/nugraph/pkg/errors"
	"github.com/matzehuels/nugraph/pkg/export"
	"github.com/matzehuels/nugraph/pkg/framework"
	"github.com/matzehuels/nugraph/pkg/integrations/nuget"
	ng "github.com/matzehuels/nugraph/pkg/nuget"
	"github.com/matzehuels/nugraph/pkg/render"
	"github.com/matzehuels/nugraph/pkg/resolve"
)

// DefaultFormat is the export format used when none is given.
const DefaultFormat = "mermaid"

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Source is a project file, a directory or "Id[/Version]". Empty means
	// WorkDir.
	Source string `json:"source,omitempty"`
	// Package, when set, is drawn instead of Source. It is never looked up
	// on disk.
	Package *ng.PackageIdentity `json:"-"`
	// Framework overrides the framework selection, e.g. "net8.0".
	Framework string `json:"framework,omitempty"`
	// Runtime selects a runtime-specific target, e.g. "linux-x64".
	Runtime string `json:"runtime,omitempty"`

	// Format picks the export service when Output is empty; see
	// export.ParseFormat.
	Format string `json:"format,omitempty"`
	// Output writes the diagram to a file instead of producing a URL.
	Output string `json:"output,omitempty"`

	Direction       string   `json:"direction,omitempty"`
	Title           string   `json:"title,omitempty"`
	IncludeVersions bool     `json:"include_versions,omitempty"`
	Ignore          []string `json:"ignore,omitempty"`
	WriteIgnored    bool     `json:"write_ignored,omitempty"`
	NoLinks         bool     `json:"no_links,omitempty"`

	// Runtime options (not serialized)
	WorkDir  string              `json:"-"`
	TempRoot string              `json:"-"` // parent of the throwaway project directory
	Logger   *log.Logger         `json:"-"`
	Progress func(status string) `json:"-"`

	framework framework.Framework
	direction render.Direction
	service   export.Service
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Source Source
	// Package and Selection are set for package sources.
	Package   *nuget.Package
	Selection *resolve.Selection
	Framework framework.Framework
	// Target is the assets file target the graph was read from.
	Target string
	Title  string

	Graph   *dag.DAG
	Format  render.Format
	Diagram []byte
	// URL is the viewer URL, set when Options.Output is empty.
	URL string
	// Output is the written file, set when Options.Output is not empty.
	Output string

	Warnings []string
	Stats    Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	Ignored     int
	ResolveTime time.Duration
	RestoreTime time.Duration
	RenderTime  time.Duration
}

// ValidateAndSetDefaults parses the option strings and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Framework != "" {
		fw, err := framework.Parse(o.Framework)
		if err != nil {
			return nerrors.Wrap(nerrors.ErrCodeInvalidInput, err, "invalid framework %q", o.Framework)
		}
		o.framework = fw
	}
	o.Runtime = strings.TrimSpace(o.Runtime)

	dir, err := render.ParseDirection(o.Direction)
	if err != nil {
		return nerrors.Wrap(nerrors.ErrCodeInvalidInput, err, "invalid options")
	}
	o.direction = dir

	if o.Format == "" {
		o.Format = DefaultFormat
	}
	s, err := export.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	o.service = s

	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.Progress == nil {
		o.Progress = func(string) {}
	}
	o.validated = true
	return nil
}

// Service returns the export service picked by Format.
func (o *Options) Service() export.Service { return o.service }

func (o *Options) renderOptions(title string) render.Options {
	return render.Options{
		Direction:       o.direction,
		Title:           title,
		IncludeVersions: o.IncludeVersions,
		WriteIgnored:    o.WriteIgnored,
		Links:           !o.NoLinks,
	}
}
