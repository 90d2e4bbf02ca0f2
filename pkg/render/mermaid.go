package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/nugraph/pkg/dag"
)

// Mermaid class names.
const (
	classRoot    = "root"
	classProject = "project"
	classIgnored = "ignored"
	classDefault = "default"
)

var mermaidClasses = []struct{ name, style string }{
	{classRoot, "fill:#cbf0ff,stroke:#0090c8,stroke-width:4px"},
	{classProject, "fill:#fae0ff,stroke:#ae00ff"},
	{classIgnored, "fill:#eeeeee,stroke:#999999,color:#666666,stroke-dasharray:5 5"},
	{classDefault, "fill:#cbf0ff,stroke:#0090c8"},
}

// Mermaid writes g as a Mermaid flowchart.
//
// Node identifiers are positional (n0, n1, ...) in sorted order since package
// IDs may contain characters Mermaid reserves; the package ID is the label.
func Mermaid(w io.Writer, g *dag.DAG, opts Options) error {
	bw := bufio.NewWriter(w)
	if opts.Title != "" {
		fmt.Fprintf(bw, "---\ntitle: %s\n---\n\n", mermaidTitle(opts.Title))
	}
	dir := "LR"
	if opts.Direction == TopToBottom {
		dir = "TD"
	}
	fmt.Fprintf(bw, "graph %s\n\n", dir)

	for _, c := range mermaidClasses {
		fmt.Fprintf(bw, "classDef %s %s\n", c.name, c.style)
	}
	bw.WriteString("\n")

	nodes, index := visible(g, opts)
	for i, n := range nodes {
		fmt.Fprintf(bw, "n%d[\"%s\"]", i, mermaidLabel(n.Label(opts.IncludeVersions)))
		if class := mermaidClass(n); class != "" {
			bw.WriteString(":::" + class)
		}
		bw.WriteString("\n")
	}

	if opts.Links {
		bw.WriteString("\n")
		for i, n := range nodes {
			if hasLink(n, opts) {
				fmt.Fprintf(bw, "click n%d \"%s\" \"%s\"\n", i, PackageURL(n), mermaidLabel(n.Label(true)))
			}
		}
	}

	bw.WriteString("\n")
	for _, e := range g.Edges() {
		from, okF := index[strings.ToLower(e.From)]
		to, okT := index[strings.ToLower(e.To)]
		if okF && okT {
			fmt.Fprintf(bw, "n%d --> n%d\n", from, to)
		}
	}
	return bw.Flush()
}

// mermaidClass returns the single class of a node; ignored wins over project,
// project over root.
func mermaidClass(n *dag.Node) string {
	switch {
	case n.Ignored:
		return classIgnored
	case n.IsProject():
		return classProject
	case n.Root:
		return classRoot
	}
	return ""
}

// mermaidLabel escapes a string for use inside a quoted label.
func mermaidLabel(s string) string {
	return strings.NewReplacer(`"`, "#quot;", "\n", " ").Replace(s)
}

func mermaidTitle(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
