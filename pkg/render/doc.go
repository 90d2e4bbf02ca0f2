// Package render writes package graphs as diagram text.
//
// # Overview
//
// Two writers are provided: [Mermaid] (flowchart syntax understood by the
// Mermaid Live Editor and mermaid.ink) and [Graphviz] (DOT). Both take the
// same [Options] and write nodes and edges sorted by package ID, so the same
// graph always produces the same bytes. That matters downstream: the export
// encoder turns these bytes into viewer URLs that must be reproducible.
//
//	var buf bytes.Buffer
//	err := render.Mermaid(&buf, g, render.Options{
//	    Direction: render.LeftToRight,
//	    Title:     "Dependency graph of Serilog 4.3.0 (net9.0)",
//	    Links:     true,
//	})
//
// # Styling
//
// Roots (the direct dependencies), project references and ignored packages
// get their own styles. Ignored packages are only written when
// [Options.WriteIgnored] is set.
package render
