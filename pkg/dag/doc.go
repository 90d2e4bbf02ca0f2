// Package dag provides the package dependency graph produced by a restore.
//
// # Overview
//
// Nodes are NuGet packages or project references; an edge from A to B means
// A depends on B. The direct dependencies of the restored project are marked
// as roots. Node IDs compare case-insensitively, as NuGet package IDs do.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "Serilog.Sinks.Console", Version: "6.0.0", Root: true})
//	g.AddNode(dag.Node{ID: "Serilog", Version: "4.3.0"})
//	g.AddEdge(dag.Edge{From: "Serilog.Sinks.Console", To: "Serilog"})
//
// [DAG.Nodes] and [DAG.Edges] return their elements sorted by ID, so writers
// iterating a graph produce deterministic text.
//
// # Ignoring Packages
//
// [DAG.Ignore] marks packages matching wildcard patterns such as "System.*",
// together with everything that is only reachable through them. Writers can
// either skip ignored nodes or style them; [DAG.RemoveIgnored] drops them.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use.
package dag
