package graph

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// roleColors fills nodes by role.
var roleColors = map[string]string{
	"project":     "lightsteelblue",
	"hmi-project": "lightsteelblue",
	"program":     "palegreen",
	"package":     "palegreen",
	"library":     "white",
	"undefined":   "lightgrey",
}

// ToDOT converts g to Graphviz DOT format. Dependencies point from the
// dependent package to its dependency; packages nothing depends on are
// drawn bold.
func ToDOT(g Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, nodeAttrs(n))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n Node) string {
	label := n.ID
	if n.Version != "" {
		label += "\n" + n.Version
	}
	attrs := fmt.Sprintf("label=%q", label)
	if c, ok := roleColors[n.Role]; ok && c != "white" {
		attrs += fmt.Sprintf(", fillcolor=%s", c)
	}
	if n.Root {
		attrs += ", penwidth=2"
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
