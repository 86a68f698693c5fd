package graph

import (
	"fmt"

	"github.com/roach88/verdant/internal/dep"
)

// EvalContext is one worker's handle onto the graph.
//
// It owns the explicit stack of task frames for that worker. Frames push
// and pop in strict LIFO order around task execution, so the top frame is
// always the innermost running task. An EvalContext is NOT safe for
// concurrent use - each worker gets its own - but any number of contexts
// may run tasks against the same Graph in parallel.
type EvalContext struct {
	graph  *Graph
	frames []*taskFrame
}

// taskFrame is the edge-recording scratch buffer for one running task.
// Push-only during the task's dynamic extent; converted into the node's
// permanent edge list at frame pop.
type taskFrame struct {
	node dep.Node

	// reads preserves first-touch order for deterministic diagnostics;
	// readSet deduplicates. Color propagation itself is order-independent.
	reads   []dep.NodeIndex
	readSet map[dep.NodeIndex]struct{}
}

// NewEvalContext creates a fresh per-worker evaluation context.
func (g *Graph) NewEvalContext() *EvalContext {
	return &EvalContext{graph: g}
}

// Graph returns the graph this context evaluates against.
func (ec *EvalContext) Graph() *Graph {
	return ec.graph
}

// InTask reports whether a task frame is currently active.
func (ec *EvalContext) InTask() bool {
	return len(ec.frames) > 0
}

// Read records that the running task consumed the result of node i.
//
// Called by query evaluation whenever it uses another node's result; i is
// always an already-interned index, so a task can never read its own
// in-progress node. Re-reading an index is a no-op (set semantics).
// Outside any task this records nothing - top-level reads during session
// setup are intentionally untracked.
func (ec *EvalContext) Read(i dep.NodeIndex) {
	if len(ec.frames) == 0 {
		return
	}
	f := ec.frames[len(ec.frames)-1]
	if _, seen := f.readSet[i]; seen {
		return
	}
	f.readSet[i] = struct{}{}
	f.reads = append(f.reads, i)
}

func (ec *EvalContext) push(node dep.Node) {
	ec.frames = append(ec.frames, &taskFrame{
		node:    node,
		readSet: make(map[dep.NodeIndex]struct{}),
	})
}

func (ec *EvalContext) pop(node dep.Node) *taskFrame {
	f := ec.frames[len(ec.frames)-1]
	if f.node != node {
		panic(fmt.Sprintf("graph: frame pop for %s but top of stack is %s", node, f.node))
	}
	ec.frames = ec.frames[:len(ec.frames)-1]
	return f
}

// WithTask runs body as the tracked computation of node.
//
// The protocol: push a fresh frame, run the body (nested Read calls land
// in that frame), pop the frame, then intern the node with the body's
// result fingerprint and the recorded edge set. The returned index is the
// node's dense handle in the current session.
//
// The body returns its result, the fingerprint of that result, and an
// error. On a body error the frame is discarded and nothing is interned.
// Interning a non-eval-always node that already exists this session is a
// fatal InternalError (see errors.go).
func WithTask[T any](ec *EvalContext, node dep.Node, body func(*EvalContext) (T, dep.Fingerprint, error)) (T, dep.NodeIndex, error) {
	ec.push(node)
	result, fingerprint, err := body(ec)
	frame := ec.pop(node)

	var zero T
	if err != nil {
		return zero, dep.InvalidNodeIndex, err
	}

	index, err := ec.graph.intern(node, fingerprint, frame.reads)
	if err != nil {
		return zero, dep.InvalidNodeIndex, err
	}
	return result, index, nil
}
