package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/nugraph/pkg/dag"
)

// Graphviz writes g as a DOT digraph.
func Graphviz(w io.Writer, g *dag.DAG, opts Options) error {
	var buf bytes.Buffer
	buf.WriteString("digraph {\n")
	rankdir := "LR"
	if opts.Direction == TopToBottom {
		rankdir = "TB"
	}
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  labelloc=t;\n  label=%s;\n", dotQuote(opts.Title))
	}
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=\"#cbf0ff\", color=\"#0090c8\", fontname=\"Helvetica\"];\n")
	buf.WriteString("\n")

	nodes, index := visible(g, opts)
	for _, n := range nodes {
		attrs := []string{"label=" + dotQuote(n.Label(opts.IncludeVersions))}
		switch {
		case n.Ignored:
			attrs = append(attrs, `fillcolor="#eeeeee"`, `color="#999999"`, `fontcolor="#666666"`, `style="rounded,filled,dashed"`)
		case n.IsProject():
			attrs = append(attrs, `fillcolor="#fae0ff"`, `color="#ae00ff"`)
		}
		if n.Root {
			attrs = append(attrs, "penwidth=3")
		}
		if hasLink(n, opts) {
			attrs = append(attrs, "URL="+dotQuote(PackageURL(n)), "tooltip="+dotQuote(n.Label(true)))
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", dotQuote(n.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		_, okF := index[strings.ToLower(e.From)]
		_, okT := index[strings.ToLower(e.To)]
		if okF && okT {
			fmt.Fprintf(&buf, "  %s -> %s;\n", dotQuote(e.From), dotQuote(e.To))
		}
	}
	buf.WriteString("}\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// dotQuote returns s as a DOT double-quoted string.
func dotQuote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s) + `"`
}
