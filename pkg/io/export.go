package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/nugraph/pkg/dag"
)

type graph struct {
	Meta  dag.Metadata `json:"meta,omitempty"`
	Nodes []node       `json:"nodes"`
	Edges []edge       `json:"edges"`
}

type node struct {
	ID      string       `json:"id"`
	Version string       `json:"version,omitempty"`
	Kind    string       `json:"kind,omitempty"`
	Root    bool         `json:"root,omitempty"`
	Ignored bool         `json:"ignored,omitempty"`
	Meta    dag.Metadata `json:"meta,omitempty"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteJSON encodes a graph as JSON and writes it to w. Ignored nodes are
// skipped unless withIgnored is set.
func WriteJSON(g *dag.DAG, w io.Writer, withIgnored bool) error {
	out := graph{Meta: g.Meta(), Nodes: []node{}, Edges: []edge{}}
	skip := make(map[string]bool)
	for _, n := range g.Nodes() {
		if n.Ignored && !withIgnored {
			skip[n.ID] = true
			continue
		}
		nd := node{ID: n.ID, Version: n.Version, Root: n.Root, Ignored: n.Ignored, Meta: n.Meta}
		if n.IsProject() {
			nd.Kind = n.Kind.String()
		}
		out.Nodes = append(out.Nodes, nd)
	}
	for _, e := range g.Edges() {
		if skip[e.From] || skip[e.To] {
			continue
		}
		out.Edges = append(out.Edges, edge{From: e.From, To: e.To})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a graph to a JSON file at path.
func ExportJSON(g *dag.DAG, path string, withIgnored bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(g, f, withIgnored); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
