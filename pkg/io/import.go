package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/nugraph/pkg/dag"
)

// ReadJSON decodes a JSON graph written by [WriteJSON].
//
// ReadJSON returns an error if the JSON is malformed, a node has a duplicate
// or empty ID, or an edge references an unknown node. Errors are wrapped with
// the offending node or edge; use errors.Is to check for specific dag errors.
func ReadJSON(r io.Reader) (*dag.DAG, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := dag.New(data.Meta)
	for _, n := range data.Nodes {
		nd := dag.Node{ID: n.ID, Version: n.Version, Root: n.Root, Ignored: n.Ignored, Meta: n.Meta}
		if n.Kind == dag.NodeKindProject.String() {
			nd.Kind = dag.NodeKindProject
		}
		if err := g.AddNode(nd); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(dag.Edge{From: e.From, To: e.To}); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}

// ImportJSON reads a JSON graph file at path.
func ImportJSON(path string) (*dag.DAG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
