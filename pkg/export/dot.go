// Package export serializes derived topology graphs to interchange
// formats: JSON for frontends and tooling, DOT and SVG for documentation.
package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/launchmap/launchmap/pkg/topo"
)

// DOTOptions configures DOT output.
type DOTOptions struct {
	// Detailed includes status, health, and connection counts in node
	// labels. When false, only the label is shown.
	Detailed bool

	// RankDir sets the Graphviz rank direction. Defaults to TB.
	RankDir string
}

// ToDOT converts a topology graph to Graphviz DOT. The output can be
// rendered with [RenderSVG] or any dot(1)-compatible tool.
//
// Node shapes follow kind: the project hub is a doubleoctagon, services
// are rounded boxes, group nodes become cluster-less grey boxes. Edge
// styles follow kind: root links dotted, dependencies solid, user
// connections bold.
func ToDOT(g topo.Graph, opts DOTOptions) string {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "TB"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph topology {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := nodeAttrs(n, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		attrs := edgeAttrs(e)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n topo.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(n, detailed))}

	switch n.Kind {
	case topo.NodeRoot:
		attrs = append(attrs, "shape=doubleoctagon", "fillcolor=lightyellow")
	case topo.NodeGroup:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	case topo.NodeService:
		if n.Status == topo.StatusError {
			attrs = append(attrs, "fillcolor=mistyrose")
		}
	}
	return attrs
}

func nodeLabel(n topo.Node, detailed bool) string {
	label := n.Label
	if n.Kind == topo.NodeGroup {
		return fmt.Sprintf("%s (%d)", n.Label, n.ChildCount)
	}
	if !detailed || n.Kind != topo.NodeService {
		return label
	}

	parts := []string{label}
	if n.Status != "" {
		parts = append(parts, "status: "+string(n.Status))
	}
	if n.Health != "" {
		parts = append(parts, "health: "+string(n.Health))
	}
	if n.Connections > 0 {
		parts = append(parts, fmt.Sprintf("connections: %d", n.Connections))
	}
	return strings.Join(parts, "\n")
}

func edgeAttrs(e topo.Edge) []string {
	switch e.Kind {
	case topo.EdgeRootLink:
		return []string{"style=dotted", "color=grey50"}
	case topo.EdgeUserConnection:
		attrs := []string{"style=bold"}
		if e.Type != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.Type))
		}
		return attrs
	default:
		return nil
	}
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
