package graph

import (
	"fmt"

	"github.com/roach88/verdant/internal/dep"
)

// Color classifies a previous-session node's reusability this session.
type Color uint8

const (
	// ColorUnknown means not yet classified this session.
	ColorUnknown Color = iota

	// ColorGreen means known unchanged: the cached result and its
	// fingerprint are safe to substitute without recomputation.
	ColorGreen

	// ColorRed means known changed: own fingerprint differs, a
	// transitive dependency is red, or the kind is eval-always.
	ColorRed
)

// String returns the color's name.
func (c Color) String() string {
	switch c {
	case ColorUnknown:
		return "unknown"
	case ColorGreen:
		return "green"
	case ColorRed:
		return "red"
	default:
		return fmt.Sprintf("Color(%d)", uint8(c))
	}
}

// ColorOf returns the memoized color of a previous-session node without
// doing any marking work.
func (g *Graph) ColorOf(i dep.PrevNodeIndex) Color {
	g.mustPrev()
	g.markMu.Lock()
	defer g.markMu.Unlock()
	g.prev.Node(i) // bounds check
	return g.colors[i]
}

func (g *Graph) setColor(i dep.PrevNodeIndex, c Color) {
	g.markMu.Lock()
	g.colors[i] = c
	g.markMu.Unlock()
}

func (g *Graph) mustPrev() {
	if g.prev == nil {
		panic("graph: no previous session loaded; previous-session indices cannot exist")
	}
}

// TryMarkGreen decides whether previous-session node i can be treated as
// unchanged without recomputation.
//
// The walk is a three-color reachability problem over the previous
// graph's edges: eval-always is red unconditionally, any red dependency
// is absorbing, all-green dependencies yield green subject to the
// fingerprint oracle re-validating the node itself. Results are memoized,
// so repeated and diamond-shaped queries do no duplicate work.
//
// A cycle encountered during the walk is a fatal InternalError carrying
// the node chain: the graph is a DAG by construction, so a cycle is an
// upstream scheduling bug, never something to recover from silently.
func (g *Graph) TryMarkGreen(i dep.PrevNodeIndex) (Color, error) {
	g.mustPrev()

	// One walk at a time. Coloring is a shared-memo recursion; a single
	// lock over the whole walk keeps the in-progress set private to it,
	// so concurrent callers serialize instead of seeing each other's
	// partial walks as false cycles.
	g.markMu.Lock()
	defer g.markMu.Unlock()

	w := &markWalk{
		g:      g,
		onPath: make(map[dep.PrevNodeIndex]struct{}),
	}
	return w.mark(i)
}

// markWalk carries the state of one TryMarkGreen recursion.
type markWalk struct {
	g      *Graph
	path   []dep.PrevNodeIndex
	onPath map[dep.PrevNodeIndex]struct{}
}

func (w *markWalk) mark(i dep.PrevNodeIndex) (Color, error) {
	g := w.g
	node := g.prev.Node(i) // panics on out-of-range: internal corruption

	// Eval-always nodes never participate in reuse.
	if node.Kind.IsEvalAlways() {
		g.colors[i] = ColorRed
		g.profile(EventMarkedRed, node)
		return ColorRed, nil
	}

	if c := g.colors[i]; c != ColorUnknown {
		return c, nil
	}

	if _, revisiting := w.onPath[i]; revisiting {
		return ColorUnknown, newCycleError(w.chain(i))
	}
	w.onPath[i] = struct{}{}
	w.path = append(w.path, i)
	defer func() {
		delete(w.onPath, i)
		w.path = w.path[:len(w.path)-1]
	}()

	color := ColorGreen
	for _, target := range g.prev.EdgeTargets(i) {
		c, err := w.mark(target)
		if err != nil {
			return ColorUnknown, err
		}
		if c == ColorRed {
			// Red is absorbing - no need to check remaining deps.
			color = ColorRed
			break
		}
	}

	// All dependencies green: the node itself must still fingerprint the
	// same. The oracle is the query layer's cheap re-hash of inputs; when
	// it has no answer, green dependencies alone vouch for the node.
	if color == ColorGreen && g.oracle != nil {
		if current, ok := g.oracle(node); ok && current != g.prev.Fingerprint(i) {
			color = ColorRed
		}
	}

	g.colors[i] = color
	if color == ColorGreen {
		g.profile(EventMarkedGreen, node)
	} else {
		g.profile(EventMarkedRed, node)
	}
	return color, nil
}

// chain reconstructs the cycle for diagnostics: the path from the first
// occurrence of i through the walk back to i.
func (w *markWalk) chain(i dep.PrevNodeIndex) []dep.Node {
	start := 0
	for pos, p := range w.path {
		if p == i {
			start = pos
			break
		}
	}
	var nodes []dep.Node
	for _, p := range w.path[start:] {
		nodes = append(nodes, w.g.prev.Node(p))
	}
	nodes = append(nodes, w.g.prev.Node(i))
	return nodes
}
