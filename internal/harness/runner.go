package harness

import (
	"fmt"
	"sort"

	"github.com/roach88/verdant/internal/dep"
	"github.com/roach88/verdant/internal/graph"
	"github.com/roach88/verdant/internal/serial"
)

// TraceEvent is one observed node color.
type TraceEvent struct {
	Node  string `json:"node"`
	Color string `json:"color"`
}

// Result captures one scenario execution.
type Result struct {
	// ScenarioName echoes the scenario for snapshots.
	ScenarioName string

	// Marked holds the TryMarkGreen outcome for each expected node, in
	// sorted name order (the order they were marked).
	Marked []TraceEvent

	// Final holds the memoized color of every previous-session node in
	// index order after all marking.
	Final []TraceEvent

	// Failures lists human-readable expectation mismatches. Empty means
	// the scenario passed.
	Failures []string
}

// Pass reports whether every expectation held.
func (r *Result) Pass() bool {
	return len(r.Failures) == 0
}

// Run executes a scenario against the real engine: it freezes the
// declared previous session into a serialized graph, wires the declared
// current fingerprints in as the oracle, marks every expected node, and
// compares colors.
func Run(sc *Scenario) (*Result, error) {
	prev, byName, err := buildPrevious(sc)
	if err != nil {
		return nil, err
	}

	oracle, err := buildOracle(sc, byName)
	if err != nil {
		return nil, err
	}

	g := graph.New(prev, graph.WithCurrentFingerprints(oracle))

	result := &Result{ScenarioName: sc.Name}

	expected := make([]string, 0, len(sc.Expect.Colors))
	for name := range sc.Expect.Colors {
		expected = append(expected, name)
	}
	sort.Strings(expected)

	for _, name := range expected {
		node, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("scenario %s: expectation on undeclared node %q", sc.Name, name)
		}
		index, ok := prev.IndexOf(node)
		if !ok {
			return nil, fmt.Errorf("scenario %s: node %q missing from previous graph", sc.Name, name)
		}

		color, err := g.TryMarkGreen(index)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: marking %q: %w", sc.Name, name, err)
		}
		result.Marked = append(result.Marked, TraceEvent{Node: name, Color: color.String()})

		if want := sc.Expect.Colors[name]; color.String() != want {
			result.Failures = append(result.Failures,
				fmt.Sprintf("node %q: expected %s, got %s", name, want, color))
		}
	}

	for i, spec := range sc.Previous.Nodes {
		color := g.ColorOf(dep.PrevNodeIndex(i))
		result.Final = append(result.Final, TraceEvent{Node: spec.Name, Color: color.String()})
	}

	return result, nil
}

// buildPrevious freezes the scenario's previous session.
func buildPrevious(sc *Scenario) (*serial.Graph, map[string]dep.Node, error) {
	byName := make(map[string]dep.Node, len(sc.Previous.Nodes))
	indexOf := make(map[string]dep.PrevNodeIndex, len(sc.Previous.Nodes))

	nodes := make([]serial.NodeData, 0, len(sc.Previous.Nodes))
	edges := make([][]dep.PrevNodeIndex, 0, len(sc.Previous.Nodes))

	for i, spec := range sc.Previous.Nodes {
		node, err := nodeFromSpec(spec)
		if err != nil {
			return nil, nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		if _, dup := byName[spec.Name]; dup {
			return nil, nil, fmt.Errorf("scenario %s: duplicate node name %q", sc.Name, spec.Name)
		}

		var targets []dep.PrevNodeIndex
		for _, d := range spec.Deps {
			target, ok := indexOf[d]
			if !ok {
				return nil, nil, fmt.Errorf("scenario %s: node %q depends on undeclared %q", sc.Name, spec.Name, d)
			}
			targets = append(targets, target)
		}

		byName[spec.Name] = node
		indexOf[spec.Name] = dep.PrevNodeIndex(i)
		nodes = append(nodes, serial.NodeData{Node: node, Fingerprint: labelFingerprint(spec.Result)})
		edges = append(edges, targets)
	}

	prev, err := serial.New(nodes, edges)
	if err != nil {
		return nil, nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	return prev, byName, nil
}

// buildOracle turns the declared current fingerprints into the engine's
// fingerprint oracle.
func buildOracle(sc *Scenario, byName map[string]dep.Node) (graph.FingerprintOracle, error) {
	answers := make(map[dep.Node]dep.Fingerprint, len(sc.Current.Fingerprints))
	for name, label := range sc.Current.Fingerprints {
		node, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("scenario %s: current fingerprint for undeclared node %q", sc.Name, name)
		}
		answers[node] = labelFingerprint(label)
	}
	return func(n dep.Node) (dep.Fingerprint, bool) {
		fp, ok := answers[n]
		return fp, ok
	}, nil
}

func nodeFromSpec(spec NodeSpec) (dep.Node, error) {
	kind, err := dep.KindFromName(spec.Kind)
	if err != nil {
		return dep.Node{}, fmt.Errorf("node %q: %w", spec.Name, err)
	}
	if !kind.HasParams() {
		return dep.SingletonNode(kind), nil
	}
	key := spec.Key
	if key == "" {
		key = spec.Name
	}
	return dep.NewNode(kind, key), nil
}

// labelFingerprint derives a stable fingerprint from a scenario label:
// equal labels mean "unchanged between sessions".
func labelFingerprint(label string) dep.Fingerprint {
	return dep.HashResult([]byte(label))
}
