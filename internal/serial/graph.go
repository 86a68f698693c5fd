package serial

import (
	"fmt"

	"github.com/roach88/verdant/internal/dep"
)

// NodeData is one row of the serialized node table: the node's identity
// plus the fingerprint of the result it produced in its session.
type NodeData struct {
	Node        dep.Node
	Fingerprint dep.Fingerprint
}

// Graph is the immutable previous-session dependency graph.
//
// Node i's outgoing edges occupy edgeData[edgeIndex[i][0]:edgeIndex[i][1]].
// Index handles into this graph are dep.PrevNodeIndex; they are only ever
// produced by the graph itself, so an out-of-range access is internal
// corruption and panics rather than returning an error.
type Graph struct {
	nodes     []NodeData
	edgeIndex [][2]uint32
	edgeData  []dep.PrevNodeIndex
	byNode    map[dep.Node]dep.PrevNodeIndex
}

// New builds a Graph from a node table and per-node edge lists.
// Returns an error if any edge target is out of range or a node appears
// twice - both would make the graph unaddressable.
func New(nodes []NodeData, edges [][]dep.PrevNodeIndex) (*Graph, error) {
	if len(edges) != len(nodes) {
		return nil, fmt.Errorf("serial: %d nodes but %d edge lists", len(nodes), len(edges))
	}

	g := &Graph{
		nodes:     nodes,
		edgeIndex: make([][2]uint32, len(nodes)),
		byNode:    make(map[dep.Node]dep.PrevNodeIndex, len(nodes)),
	}

	total := 0
	for _, targets := range edges {
		total += len(targets)
	}
	g.edgeData = make([]dep.PrevNodeIndex, 0, total)

	for i, nd := range nodes {
		if _, dup := g.byNode[nd.Node]; dup {
			return nil, fmt.Errorf("serial: duplicate node %s in table", nd.Node)
		}
		g.byNode[nd.Node] = dep.PrevNodeIndex(i)

		start := uint32(len(g.edgeData))
		for _, target := range edges[i] {
			if int(target) >= len(nodes) {
				return nil, fmt.Errorf("serial: node %s has edge target %d out of range (%d nodes)",
					nd.Node, target, len(nodes))
			}
			g.edgeData = append(g.edgeData, target)
		}
		g.edgeIndex[i] = [2]uint32{start, uint32(len(g.edgeData))}
	}

	return g, nil
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// NumEdges returns the total edge count.
func (g *Graph) NumEdges() int {
	return len(g.edgeData)
}

// Node returns the identity of node i.
func (g *Graph) Node(i dep.PrevNodeIndex) dep.Node {
	return g.nodes[g.check(i)].Node
}

// Fingerprint returns the result fingerprint recorded for node i.
func (g *Graph) Fingerprint(i dep.PrevNodeIndex) dep.Fingerprint {
	return g.nodes[g.check(i)].Fingerprint
}

// EdgeTargets returns the outgoing edges of node i as a shared slice.
// O(1): a sub-slice of the flat edge array. Callers must not mutate it.
func (g *Graph) EdgeTargets(i dep.PrevNodeIndex) []dep.PrevNodeIndex {
	idx := g.edgeIndex[g.check(i)]
	return g.edgeData[idx[0]:idx[1]]
}

// IndexOf translates a node identity to its index in this graph.
func (g *Graph) IndexOf(n dep.Node) (dep.PrevNodeIndex, bool) {
	i, ok := g.byNode[n]
	return i, ok
}

// check panics on an out-of-range index. Indices only ever come from this
// graph, so out-of-range means logic corruption, not a recoverable error.
func (g *Graph) check(i dep.PrevNodeIndex) int {
	if int(i) >= len(g.nodes) {
		panic(fmt.Sprintf("serial: node index %d out of range (%d nodes)", i, len(g.nodes)))
	}
	return int(i)
}
