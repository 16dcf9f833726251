package graph

import (
	"github.com/loupeteam/lpm/pkg/deps"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// Graph is the serialization format of a resolution.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Node is one resolved package.
type Node struct {
	ID      string `json:"id" yaml:"id"`                               // scoped package name
	Version string `json:"version,omitempty" yaml:"version,omitempty"` // pinned version, if any
	Role    string `json:"role" yaml:"role"`
	Root    bool   `json:"root,omitempty" yaml:"root,omitempty"` // nothing in the graph depends on it
}

// Edge is a declared dependency.
type Edge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// FromResult converts a resolution. Nodes keep resolution order.
func FromResult(res *deps.Result) Graph {
	g := Graph{Nodes: []Node{}, Edges: []Edge{}}
	if res == nil || res.Set == nil {
		return g
	}
	depended := map[string]bool{}
	for _, e := range res.Edges {
		g.Edges = append(g.Edges, Edge{From: e.From.FullName(), To: e.To.FullName()})
		depended[e.To.FullName()] = true
	}
	for _, ref := range res.Set.Refs() {
		id := ref.FullName()
		g.Nodes = append(g.Nodes, Node{
			ID:      id,
			Version: ref.Version,
			Role:    res.Role(ref).String(),
			Root:    !depended[id],
		})
	}
	return g
}

// IDs returns the node IDs in order.
func (g Graph) IDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}
