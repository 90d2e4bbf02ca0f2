// Package io provides JSON import and export of package graphs.
//
// # JSON Format
//
//	{
//	  "meta": {"framework": "net8.0"},
//	  "nodes": [
//	    {"id": "Serilog.Sinks.Console", "version": "6.0.0", "root": true},
//	    {"id": "Serilog", "version": "4.3.0"},
//	    {"id": "Lib", "version": "1.0.0", "kind": "project"}
//	  ],
//	  "edges": [
//	    {"from": "Serilog.Sinks.Console", "to": "Serilog"}
//	  ]
//	}
//
// Nodes and edges are written sorted, like the diagram writers. kind defaults
// to "package"; ignored marks nodes matched by an ignore pattern.
package io
