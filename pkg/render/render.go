package render

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/matzehuels/nugraph/pkg/dag"
)

// Direction is the main axis of the diagram.
type Direction string

const (
	LeftToRight Direction = "LeftToRight"
	TopToBottom Direction = "TopToBottom"
)

// ParseDirection accepts the long names and the short LR/TD/TB forms,
// case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lefttoright", "lr", "":
		return LeftToRight, nil
	case "toptobottom", "td", "tb":
		return TopToBottom, nil
	}
	return "", fmt.Errorf("invalid direction %q (use LeftToRight or TopToBottom)", s)
}

// Format is a diagram language.
type Format int

const (
	FormatMermaid Format = iota
	FormatGraphviz
)

// String returns "mermaid" or "graphviz".
func (f Format) String() string {
	if f == FormatGraphviz {
		return "graphviz"
	}
	return "mermaid"
}

// Options configures both writers.
type Options struct {
	Direction Direction
	Title     string
	// IncludeVersions labels nodes "Id/Version" instead of "Id".
	IncludeVersions bool
	// WriteIgnored keeps nodes marked by dag.Ignore, styled as ignored.
	WriteIgnored bool
	// Links adds a link from every package node to its nuget.org page.
	Links bool
}

// Write writes g in the given format.
func Write(w io.Writer, g *dag.DAG, f Format, opts Options) error {
	if f == FormatGraphviz {
		return Graphviz(w, g, opts)
	}
	return Mermaid(w, g, opts)
}

// PackageURL returns the nuget.org gallery page of a package version.
func PackageURL(n *dag.Node) string {
	u := "https://www.nuget.org/packages/" + url.PathEscape(n.ID)
	if n.Version != "" {
		u += "/" + url.PathEscape(n.Version)
	}
	return u
}

// visible returns the nodes to write and a lookup of their IDs.
func visible(g *dag.DAG, opts Options) ([]*dag.Node, map[string]int) {
	var nodes []*dag.Node
	index := make(map[string]int)
	for _, n := range g.Nodes() {
		if n.Ignored && !opts.WriteIgnored {
			continue
		}
		index[strings.ToLower(n.ID)] = len(nodes)
		nodes = append(nodes, n)
	}
	return nodes, index
}

func hasLink(n *dag.Node, opts Options) bool {
	return opts.Links && !n.IsProject()
}
