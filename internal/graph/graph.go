package graph

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/verdant/internal/dep"
	"github.com/roach88/verdant/internal/serial"
)

// ProfilerEvent names a fire-and-forget observation the graph emits.
type ProfilerEvent string

const (
	// EventNodeCreated fires when a task interns a fresh node.
	EventNodeCreated ProfilerEvent = "node_created"

	// EventNodeReused fires when an interned node's fingerprint matched
	// the previous session (its cached result was still valid).
	EventNodeReused ProfilerEvent = "node_reused"

	// EventMarkedGreen fires when coloring classifies a previous-session
	// node as reusable without recomputation.
	EventMarkedGreen ProfilerEvent = "marked_green"

	// EventMarkedRed fires when coloring classifies a previous-session
	// node as changed.
	EventMarkedRed ProfilerEvent = "marked_red"
)

// ProfilerFunc receives profiler events. Purely observational: the graph
// makes no assumption about what it does and ignores nothing it returns.
type ProfilerFunc func(event ProfilerEvent, node dep.Node)

// FingerprintOracle reports the current-session fingerprint of a node
// without running its task, when the caller knows how to compute it
// cheaply (re-hashing an input file, for instance). Returning ok=false
// means "unknown" - coloring then trusts Green dependencies alone.
type FingerprintOracle func(dep.Node) (dep.Fingerprint, bool)

// Option configures a Graph at construction.
type Option func(*Graph)

// WithProfiler installs a profiler hook.
func WithProfiler(fn ProfilerFunc) Option {
	return func(g *Graph) { g.profiler = fn }
}

// WithCurrentFingerprints installs the fingerprint oracle consulted by
// TryMarkGreen to re-validate nodes whose dependencies are all green.
func WithCurrentFingerprints(oracle FingerprintOracle) Option {
	return func(g *Graph) { g.oracle = oracle }
}

// nodeData is one interned node of the current session.
type nodeData struct {
	node        dep.Node
	fingerprint dep.Fingerprint
	edges       []dep.NodeIndex
}

// Graph is the dependency-tracking engine for one compilation session.
//
// It owns the mutable current-session graph (append-only: nodes and edges
// are never removed mid-session) and a read-only view of the previous
// session's serialized graph, if one was loaded. One Graph exists per
// session; every worker reaches it through its own EvalContext.
type Graph struct {
	prev     *serial.Graph // nil on a clean build
	session  string
	profiler ProfilerFunc
	oracle   FingerprintOracle

	// mu guards the interning state. Held only for the short critical
	// section at frame pop - never while a task body runs.
	mu     sync.Mutex
	nodes  []nodeData
	byNode map[dep.Node]dep.NodeIndex

	// markMu guards the color table; one TryMarkGreen walk at a time.
	markMu sync.Mutex
	colors []Color
}

// New creates the graph for a new session. prev is the previous session's
// graph, or nil for a clean build.
func New(prev *serial.Graph, opts ...Option) *Graph {
	g := &Graph{
		prev:    prev,
		session: uuid.Must(uuid.NewV7()).String(),
		byNode:  make(map[dep.Node]dep.NodeIndex),
	}
	if prev != nil {
		g.colors = make([]Color, prev.NumNodes())
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SessionToken returns this session's unique token.
func (g *Graph) SessionToken() string {
	return g.session
}

// HasPrev reports whether a previous-session graph was loaded.
func (g *Graph) HasPrev() bool {
	return g.prev != nil
}

// PrevIndexOf translates a node identity into the previous session's
// index space. ok is false for nodes the previous session never saw.
func (g *Graph) PrevIndexOf(n dep.Node) (dep.PrevNodeIndex, bool) {
	if g.prev == nil {
		return 0, false
	}
	return g.prev.IndexOf(n)
}

// intern is the single mutation point of shared state: it assigns the
// node's dense index, stores its fingerprint and edge list, and performs
// change detection against the previous session.
func (g *Graph) intern(node dep.Node, fingerprint dep.Fingerprint, reads []dep.NodeIndex) (dep.NodeIndex, error) {
	g.mu.Lock()
	if existing, ok := g.byNode[node]; ok {
		if !node.Kind.IsEvalAlways() {
			g.mu.Unlock()
			// A false cache miss re-ran a node already recorded. Fatal:
			// the memoization layer above is broken.
			return dep.InvalidNodeIndex, newDuplicateNodeError(node)
		}
		// Re-executing eval-always nodes is their contract. Keep the
		// original index, replace fingerprint and edges.
		g.nodes[existing] = nodeData{node: node, fingerprint: fingerprint, edges: reads}
		g.mu.Unlock()
		g.profile(EventNodeCreated, node)
		return existing, nil
	}

	index := dep.NodeIndex(len(g.nodes))
	g.nodes = append(g.nodes, nodeData{node: node, fingerprint: fingerprint, edges: reads})
	g.byNode[node] = index
	g.mu.Unlock()

	g.profile(EventNodeCreated, node)

	// Change detection: executed nodes color their previous-session
	// counterpart by fingerprint comparison. Nodes absent from the
	// previous session have nothing to color - they are implicitly red.
	if g.prev != nil && !node.Kind.IsEvalAlways() {
		if prevIndex, ok := g.prev.IndexOf(node); ok {
			if g.prev.Fingerprint(prevIndex) == fingerprint {
				g.setColor(prevIndex, ColorGreen)
				g.profile(EventNodeReused, node)
			} else {
				g.setColor(prevIndex, ColorRed)
			}
		}
	}

	return index, nil
}

// NumNodes returns the current session's node count.
func (g *Graph) NumNodes() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

// IndexOf returns the current-session index of node, if interned.
func (g *Graph) IndexOf(node dep.Node) (dep.NodeIndex, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i, ok := g.byNode[node]
	return i, ok
}

// NodeAt returns the identity of the interned node at index i.
func (g *Graph) NodeAt(i dep.NodeIndex) dep.Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nodes[g.checkLocked(i)].node
}

// FingerprintAt returns the result fingerprint recorded at index i.
func (g *Graph) FingerprintAt(i dep.NodeIndex) dep.Fingerprint {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nodes[g.checkLocked(i)].fingerprint
}

// EdgesAt returns a copy of the edge list recorded at index i, in
// first-touch order.
func (g *Graph) EdgesAt(i dep.NodeIndex) []dep.NodeIndex {
	g.mu.Lock()
	defer g.mu.Unlock()
	edges := g.nodes[g.checkLocked(i)].edges
	out := make([]dep.NodeIndex, len(edges))
	copy(out, edges)
	return out
}

func (g *Graph) checkLocked(i dep.NodeIndex) int {
	if int(i) >= len(g.nodes) {
		panic(fmt.Sprintf("graph: node index %d out of range (%d nodes)", i, len(g.nodes)))
	}
	return int(i)
}

// Serialize flattens the current session into its frozen on-disk form.
// Called once at session end; the result feeds cache.Dir.Save.
func (g *Graph) Serialize() (*serial.Graph, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	nodes := make([]serial.NodeData, len(g.nodes))
	edges := make([][]dep.PrevNodeIndex, len(g.nodes))
	for i, nd := range g.nodes {
		nodes[i] = serial.NodeData{Node: nd.node, Fingerprint: nd.fingerprint}
		targets := make([]dep.PrevNodeIndex, len(nd.edges))
		for j, e := range nd.edges {
			// Current indices become the next session's "previous"
			// index space unchanged: insertion order is index order.
			targets[j] = dep.PrevNodeIndex(e)
		}
		edges[i] = targets
	}

	sg, err := serial.New(nodes, edges)
	if err != nil {
		return nil, fmt.Errorf("serialize dep-graph: %w", err)
	}
	return sg, nil
}

// Stats summarizes the session for tooling and the profiler surface.
type Stats struct {
	SessionToken string         `json:"session_token"`
	Nodes        int            `json:"nodes"`
	Edges        int            `json:"edges"`
	NodesByKind  map[string]int `json:"nodes_by_kind"`
	PrevNodes    int            `json:"prev_nodes"`
	Green        int            `json:"green"`
	Red          int            `json:"red"`
}

// Stats returns a snapshot of the session's counters.
func (g *Graph) Stats() Stats {
	s := Stats{
		SessionToken: g.session,
		NodesByKind:  make(map[string]int),
	}

	g.mu.Lock()
	s.Nodes = len(g.nodes)
	for _, nd := range g.nodes {
		s.Edges += len(nd.edges)
		s.NodesByKind[nd.node.Kind.String()]++
	}
	g.mu.Unlock()

	if g.prev != nil {
		s.PrevNodes = g.prev.NumNodes()
		g.markMu.Lock()
		for _, c := range g.colors {
			switch c {
			case ColorGreen:
				s.Green++
			case ColorRed:
				s.Red++
			}
		}
		g.markMu.Unlock()
	}

	return s
}

func (g *Graph) profile(event ProfilerEvent, node dep.Node) {
	if g.profiler != nil {
		g.profiler(event, node)
	}
}
