package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/nugraph/pkg/dag"
)

func testGraph(t *testing.T) *dag.DAG {
	t.Helper()
	g := dag.New(nil)
	nodes := []dag.Node{
		{ID: "Serilog.Sinks.Console", Version: "6.0.0", Root: true},
		{ID: "Serilog", Version: "4.3.0"},
		{ID: "Lib", Version: "1.0.0", Kind: dag.NodeKindProject, Root: true},
		{ID: "System.Memory", Version: "4.5.5", Ignored: true},
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range []dag.Edge{
		{From: "Serilog.Sinks.Console", To: "Serilog"},
		{From: "Serilog", To: "System.Memory"},
		{From: "Lib", To: "Serilog"},
	} {
		if err := g.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestMermaid(t *testing.T) {
	var buf bytes.Buffer
	err := Mermaid(&buf, testGraph(t), Options{Direction: LeftToRight, Title: "Dependency graph of App", Links: true})
	if err != nil {
		t.Fatalf("Mermaid() error: %v", err)
	}
	want := `---
title: Dependency graph of App
---

graph LR

classDef root fill:#cbf0ff,stroke:#0090c8,stroke-width:4px
classDef project fill:#fae0ff,stroke:#ae00ff
classDef ignored fill:#eeeeee,stroke:#999999,color:#666666,stroke-dasharray:5 5
classDef default fill:#cbf0ff,stroke:#0090c8

n0["Lib"]:::project
n1["Serilog"]
n2["Serilog.Sinks.Console"]:::root

click n1 "https://www.nuget.org/packages/Serilog/4.3.0" "Serilog/4.3.0"
click n2 "https://www.nuget.org/packages/Serilog.Sinks.Console/6.0.0" "Serilog.Sinks.Console/6.0.0"

n0 --> n1
n2 --> n1
`
	if got := buf.String(); got != want {
		t.Errorf("Mermaid() =\n%s\nwant\n%s", got, want)
	}
}

func TestMermaidOptions(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		contains []string
		excludes []string
	}{
		{
			name:     "top to bottom without title",
			opts:     Options{Direction: TopToBottom},
			contains: []string{"graph TD\n"},
			excludes: []string{"---", "click"},
		},
		{
			name:     "versions",
			opts:     Options{IncludeVersions: true},
			contains: []string{`n1["Serilog/4.3.0"]`, `n0["Lib/1.0.0"]:::project`},
		},
		{
			name:     "ignored written",
			opts:     Options{WriteIgnored: true},
			contains: []string{`n3["System.Memory"]:::ignored`, "n1 --> n3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Mermaid(&buf, testGraph(t), tt.opts); err != nil {
				t.Fatalf("Mermaid() error: %v", err)
			}
			out := buf.String()
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("output contains %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestGraphviz(t *testing.T) {
	var buf bytes.Buffer
	err := Graphviz(&buf, testGraph(t), Options{Direction: TopToBottom, Title: `Graph of "App"`, Links: true, IncludeVersions: true})
	if err != nil {
		t.Fatalf("Graphviz() error: %v", err)
	}
	want := `digraph {
  rankdir=TB;
  labelloc=t;
  label="Graph of \"App\"";
  node [shape=box, style="rounded,filled", fillcolor="#cbf0ff", color="#0090c8", fontname="Helvetica"];

  "Lib" [label="Lib/1.0.0", fillcolor="#fae0ff", color="#ae00ff", penwidth=3];
  "Serilog" [label="Serilog/4.3.0", URL="https://www.nuget.org/packages/Serilog/4.3.0", tooltip="Serilog/4.3.0"];
  "Serilog.Sinks.Console" [label="Serilog.Sinks.Console/6.0.0", penwidth=3, URL="https://www.nuget.org/packages/Serilog.Sinks.Console/6.0.0", tooltip="Serilog.Sinks.Console/6.0.0"];

  "Lib" -> "Serilog";
  "Serilog.Sinks.Console" -> "Serilog";
}
`
	if got := buf.String(); got != want {
		t.Errorf("Graphviz() =\n%s\nwant\n%s", got, want)
	}
}

func TestDeterministic(t *testing.T) {
	for _, f := range []Format{FormatMermaid, FormatGraphviz} {
		t.Run(f.String(), func(t *testing.T) {
			var a, b bytes.Buffer
			opts := Options{Links: true, WriteIgnored: true}
			if err := Write(&a, testGraph(t), f, opts); err != nil {
				t.Fatal(err)
			}
			if err := Write(&b, testGraph(t), f, opts); err != nil {
				t.Fatal(err)
			}
			if a.String() != b.String() {
				t.Error("output differs between runs")
			}
		})
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"LeftToRight", LeftToRight, false},
		{"lr", LeftToRight, false},
		{"", LeftToRight, false},
		{"TopToBottom", TopToBottom, false},
		{"TD", TopToBottom, false},
		{"tb", TopToBottom, false},
		{"sideways", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDirection(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseDirection(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestMermaidLabelEscaping(t *testing.T) {
	if got := mermaidLabel(`a "b"`); got != "a #quot;b#quot;" {
		t.Errorf("mermaidLabel() = %s", got)
	}
}
