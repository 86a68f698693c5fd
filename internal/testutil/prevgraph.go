package testutil

import (
	"fmt"

	"github.com/roach88/verdant/internal/dep"
	"github.com/roach88/verdant/internal/serial"
)

// PrevGraphBuilder assembles a simulated previous-session graph from
// named nodes, so tests can write dependency structure by name instead of
// juggling indices.
//
// Nodes must be added before they are referenced as dependencies; the
// resulting index order is insertion order.
type PrevGraphBuilder struct {
	names   []string
	nodes   []serial.NodeData
	edges   [][]dep.PrevNodeIndex
	indexOf map[string]dep.PrevNodeIndex
}

// NewPrevGraphBuilder creates an empty builder.
func NewPrevGraphBuilder() *PrevGraphBuilder {
	return &PrevGraphBuilder{indexOf: make(map[string]dep.PrevNodeIndex)}
}

// Add records a node under name with the given identity and result
// fingerprint, depending on previously added names. Panics on an unknown
// or duplicate name - test fixtures are static, so that is a test bug.
func (b *PrevGraphBuilder) Add(name string, node dep.Node, fingerprint dep.Fingerprint, deps ...string) *PrevGraphBuilder {
	if _, dup := b.indexOf[name]; dup {
		panic(fmt.Sprintf("testutil: duplicate node name %q", name))
	}

	var targets []dep.PrevNodeIndex
	for _, d := range deps {
		i, ok := b.indexOf[d]
		if !ok {
			panic(fmt.Sprintf("testutil: node %q depends on unknown %q", name, d))
		}
		targets = append(targets, i)
	}

	b.indexOf[name] = dep.PrevNodeIndex(len(b.nodes))
	b.names = append(b.names, name)
	b.nodes = append(b.nodes, serial.NodeData{Node: node, Fingerprint: fingerprint})
	b.edges = append(b.edges, targets)
	return b
}

// AddKeyed is Add with the node derived from (kind, name): the name
// doubles as the query key and the fingerprint label.
func (b *PrevGraphBuilder) AddKeyed(name string, kind dep.Kind, deps ...string) *PrevGraphBuilder {
	return b.Add(name, dep.NewNode(kind, name), FingerprintOf(name), deps...)
}

// Index returns the index assigned to name.
func (b *PrevGraphBuilder) Index(name string) dep.PrevNodeIndex {
	i, ok := b.indexOf[name]
	if !ok {
		panic(fmt.Sprintf("testutil: unknown node name %q", name))
	}
	return i
}

// Node returns the identity recorded under name.
func (b *PrevGraphBuilder) Node(name string) dep.Node {
	return b.nodes[b.Index(name)].Node
}

// Build freezes the builder into a serialized graph.
func (b *PrevGraphBuilder) Build() *serial.Graph {
	g, err := serial.New(b.nodes, b.edges)
	if err != nil {
		panic(fmt.Sprintf("testutil: invalid test graph: %v", err))
	}
	return g
}
