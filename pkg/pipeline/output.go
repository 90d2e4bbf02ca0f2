package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/nugraph/pkg/dag"
	nerrors "github.com/matzehuels/nugraph/pkg/errors"
	"github.com/matzehuels/nugraph/pkg/export"
	nio "github.com/matzehuels/nugraph/pkg/io"
	"github.com/matzehuels/nugraph/pkg/render"
)

// FileFormat returns the diagram language for an output file: Mermaid for
// .mmd and .mermaid, Graphviz otherwise.
func FileFormat(path string) render.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mmd", ".mermaid":
		return render.FormatMermaid
	}
	return render.FormatGraphviz
}

// WriteFile writes g to path. A .json path gets the graph JSON; other paths
// get the diagram text picked by FileFormat.
func WriteFile(path string, g *dag.DAG, opts render.Options) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nerrors.Wrap(nerrors.ErrCodeInvalidInput, err, "create output directory")
		}
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := nio.ExportJSON(g, path, opts.WriteIgnored); err != nil {
			return nerrors.Wrap(nerrors.ErrCodeInvalidInput, err, "write %s", path)
		}
		return nil
	}

	var buf strings.Builder
	if err := render.Write(&buf, g, FileFormat(path), opts); err != nil {
		return nerrors.Wrap(nerrors.ErrCodeInternal, err, "render")
	}
	if err := os.WriteFile(path, []byte(buf.String()), 0o644); err != nil {
		return nerrors.Wrap(nerrors.ErrCodeInvalidInput, err, "write %s", path)
	}
	return nil
}

// Render turns result.Graph into output: the file opts.Output when set,
// otherwise diagram text for opts.Service() and its viewer URL.
func Render(result *Result, opts Options) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	start := time.Now()
	defer func() { result.Stats.RenderTime = time.Since(start) }()

	ro := opts.renderOptions(result.Title)
	if opts.Output != "" {
		if err := WriteFile(opts.Output, result.Graph, ro); err != nil {
			return err
		}
		result.Output = opts.Output
		result.Format = FileFormat(opts.Output)
		return nil
	}

	result.Format = opts.service.Format()
	var buf bytes.Buffer
	if err := render.Write(&buf, result.Graph, result.Format, ro); err != nil {
		return nerrors.Wrap(nerrors.ErrCodeInternal, err, "render")
	}
	result.Diagram = buf.Bytes()
	url, err := export.Encode(result.Diagram, opts.service)
	if err != nil {
		return err
	}
	result.URL = url
	return nil
}

// LoadGraph reads a graph previously written as JSON and applies
// opts.Ignore, so it can be rendered again without a restore.
func LoadGraph(path string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	g, err := nio.ImportJSON(path)
	if err != nil {
		return nil, nerrors.Wrap(nerrors.ErrCodeInvalidManifest, err, "read graph %s", path)
	}
	src := Source{Kind: SourceFile, Path: path}
	result := &Result{Source: src, Graph: g, Title: "Dependency graph of " + src.Name()}
	if opts.Title != "" {
		result.Title = opts.Title
	}
	result.Target, _ = g.Meta()["target"].(string)
	result.Stats.Ignored = g.Ignore(opts.Ignore)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	return result, nil
}
