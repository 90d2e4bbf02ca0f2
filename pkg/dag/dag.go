package dag

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID, compared case-insensitively, already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [DAG.Validate] when an edge
	// references a node that doesn't exist.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph,
// such as the target framework or the source the graph was built from.
// Metadata maps are never nil after AddNode or New.
type Metadata map[string]any

// NodeKind distinguishes NuGet packages from project references.
type NodeKind int

const (
	// NodeKindPackage is a package restored from a source.
	NodeKindPackage NodeKind = iota
	// NodeKindProject is a project referenced by the restored project.
	NodeKindProject
)

// String returns "package" or "project".
func (k NodeKind) String() string {
	if k == NodeKindProject {
		return "project"
	}
	return "package"
}

// Node is one package or project in the graph.
//
// The zero value is not usable - ID must be set before adding to a DAG.
type Node struct {
	ID      string // Package ID as written in the manifest
	Version string // Resolved version, empty for unversioned projects
	Kind    NodeKind
	// Root marks a direct dependency of the restored project.
	Root bool
	// Ignored marks a node matched by an ignore pattern, or only reachable
	// through such nodes. See [DAG.Ignore].
	Ignored bool
	Meta    Metadata
}

// IsProject reports whether the node is a project reference.
func (n Node) IsProject() bool { return n.Kind == NodeKindProject }

// Label returns the ID, followed by the version when withVersion is set.
func (n Node) Label(withVersion bool) string {
	if withVersion && n.Version != "" {
		return n.ID + "/" + n.Version
	}
	return n.ID
}

// Edge is a dependency of From on To.
type Edge struct {
	From string
	To   string
}

// DAG is a package dependency graph.
//
// Node IDs are unique case-insensitively, the way NuGet compares package IDs,
// and lookups accept any casing. Iteration order is sorted by ID so that every
// writer produces the same text for the same graph.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes    map[string]*Node // lowercase ID -> node
	edges    []Edge
	outgoing map[string][]string // lowercase ID -> children IDs
	incoming map[string][]string // lowercase ID -> parent IDs
	meta     Metadata
}

// New creates an empty DAG with optional graph-level metadata.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     meta,
	}
}

func key(id string) string { return strings.ToLower(id) }

// Meta returns the graph-level metadata map.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode adds a node to the graph. Returns ErrInvalidNodeID if the node ID
// is empty, or ErrDuplicateNodeID if the ID is already taken.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	k := key(n.ID)
	if _, exists := d.nodes[k]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	d.nodes[k] = node
	return nil
}

// AddEdge adds a directed edge between two existing nodes, using their
// canonical IDs. Adding an edge that already exists is a no-op.
func (d *DAG) AddEdge(e Edge) error {
	from, ok := d.nodes[key(e.From)]
	if !ok {
		return ErrUnknownSourceNode
	}
	to, ok := d.nodes[key(e.To)]
	if !ok {
		return ErrUnknownTargetNode
	}
	if slices.Contains(d.outgoing[key(from.ID)], to.ID) {
		return nil
	}
	d.edges = append(d.edges, Edge{From: from.ID, To: to.ID})
	d.outgoing[key(from.ID)] = append(d.outgoing[key(from.ID)], to.ID)
	d.incoming[key(to.ID)] = append(d.incoming[key(to.ID)], from.ID)
	return nil
}

// RemoveEdge removes the edge from→to if it exists.
func (d *DAG) RemoveEdge(from, to string) {
	match := func(s string) bool { return strings.EqualFold(s, to) }
	d.edges = slices.DeleteFunc(d.edges, func(e Edge) bool {
		return strings.EqualFold(e.From, from) && strings.EqualFold(e.To, to)
	})
	d.outgoing[key(from)] = slices.DeleteFunc(d.outgoing[key(from)], match)
	d.incoming[key(to)] = slices.DeleteFunc(d.incoming[key(to)], func(s string) bool { return strings.EqualFold(s, from) })
}

// RemoveNode removes a node and every edge touching it.
func (d *DAG) RemoveNode(id string) {
	n, ok := d.nodes[key(id)]
	if !ok {
		return
	}
	for _, c := range slices.Clone(d.outgoing[key(n.ID)]) {
		d.RemoveEdge(n.ID, c)
	}
	for _, p := range slices.Clone(d.incoming[key(n.ID)]) {
		d.RemoveEdge(p, n.ID)
	}
	delete(d.outgoing, key(n.ID))
	delete(d.incoming, key(n.ID))
	delete(d.nodes, key(n.ID))
}

// Nodes returns all nodes sorted by ID. The returned slice contains pointers
// to the actual node structs, so modifications affect the graph.
func (d *DAG) Nodes() []*Node {
	nodes := make([]*Node, 0, len(d.nodes))
	for _, k := range slices.Sorted(maps.Keys(d.nodes)) {
		nodes = append(nodes, d.nodes[k])
	}
	return nodes
}

// Edges returns a copy of all edges sorted by source then target ID.
func (d *DAG) Edges() []Edge {
	edges := slices.Clone(d.edges)
	slices.SortFunc(edges, func(a, b Edge) int {
		if c := strings.Compare(key(a.From), key(b.From)); c != 0 {
			return c
		}
		return strings.Compare(key(a.To), key(b.To))
	})
	return edges
}

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the IDs of the node's dependencies.
// The returned slice should not be modified.
func (d *DAG) Children(id string) []string { return d.outgoing[key(id)] }

// Parents returns the IDs of nodes that depend on this node.
// The returned slice should not be modified.
func (d *DAG) Parents(id string) []string { return d.incoming[key(id)] }

// OutDegree returns the number of outgoing edges from the node.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[key(id)]) }

// InDegree returns the number of incoming edges to the node.
func (d *DAG) InDegree(id string) int { return len(d.incoming[key(id)]) }

// Node returns the node with the given ID, in any casing.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[key(id)]
	return n, ok
}

// Sources returns nodes with no incoming edges, sorted by ID.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, n := range d.Nodes() {
		if len(d.incoming[key(n.ID)]) == 0 {
			sources = append(sources, n)
		}
	}
	return sources
}

// Sinks returns nodes with no outgoing edges, sorted by ID.
func (d *DAG) Sinks() []*Node {
	var sinks []*Node
	for _, n := range d.Nodes() {
		if len(d.outgoing[key(n.ID)]) == 0 {
			sinks = append(sinks, n)
		}
	}
	return sinks
}

// Roots returns the nodes marked Root, sorted by ID. A graph without marked
// roots falls back to its sources.
func (d *DAG) Roots() []*Node {
	var roots []*Node
	for _, n := range d.Nodes() {
		if n.Root {
			roots = append(roots, n)
		}
	}
	if len(roots) == 0 {
		return d.Sources()
	}
	return roots
}

// Validate checks that all edges connect existing nodes.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		_, okS := d.nodes[key(e.From)]
		_, okD := d.nodes[key(e.To)]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
	}
	return nil
}

// NodeIDs extracts the ID from each node in a slice.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
