// Package flowchart builds the linear roadmap diagram shown alongside a
// career answer: one rectangular node per step, one edge between each
// consecutive pair. Output is deterministic for a given step list.
package flowchart

import (
	"fmt"
	"strings"
)

// Node styling, matching the product's diagram theme.
const (
	nodeShape     = "rectangle"
	nodeFillColor = "#4e5a75"
	nodeFontColor = "white"
	nodeWidth     = "2"
)

// Node is one roadmap step in the diagram.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Edge is a directed connection between two consecutive steps.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is a simple path graph over ordered roadmap steps.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Build creates the diagram for an ordered step list: len(steps) nodes and
// max(0, len(steps)-1) edges connecting consecutive indices only.
func Build(steps []string) Graph {
	g := Graph{}
	for i, step := range steps {
		g.Nodes = append(g.Nodes, Node{ID: nodeID(i), Label: step})
		if i > 0 {
			g.Edges = append(g.Edges, Edge{From: nodeID(i - 1), To: nodeID(i)})
		}
	}
	return g
}

// Empty reports whether the graph has no nodes.
func (g Graph) Empty() bool {
	return len(g.Nodes) == 0
}

// DOT renders the graph in Graphviz DOT syntax.
func (g Graph) DOT() string {
	var b strings.Builder
	b.WriteString("digraph roadmap {\n")
	for _, n := range g.Nodes {
		fmt.Fprintf(&b, "\t%s [label=%q shape=%s style=filled fillcolor=%q fontcolor=%s width=%s];\n",
			n.ID, n.Label, nodeShape, nodeFillColor, nodeFontColor, nodeWidth)
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&b, "\t%s -> %s;\n", e.From, e.To)
	}
	b.WriteString("}\n")
	return b.String()
}

func nodeID(i int) string {
	return fmt.Sprintf("step%d", i)
}
