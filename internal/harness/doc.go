// Package harness provides conformance testing for the dependency graph.
//
// Scenarios describe two compilation sessions declaratively: the node
// table and edges of a previous session, the fingerprints the current
// session would observe, and the colors the engine is expected to assign.
// The harness builds the real serialized graph, runs the real coloring
// algorithm, and compares.
//
// # Scenario Format
//
// Scenarios are YAML files validated against an embedded CUE schema:
//
//	name: chain-unchanged
//	description: "What this scenario validates"
//	previous:
//	  nodes:
//	    - name: C
//	      kind: SourceFile
//	      result: C          # fingerprint label, not a literal hash
//	    - name: B
//	      kind: TypeCheck
//	      deps: [C]
//	      result: B
//	current:
//	  fingerprints:          # what re-hashing inputs yields this session
//	    C: C
//	expect:
//	  colors:
//	    B: green
//
// Fingerprints are written as labels: the same label means "unchanged
// between sessions", a different label means "changed". Nodes may list
// only already-declared nodes as deps, so scenario graphs are DAGs by
// construction, like the real thing.
//
// # Deterministic Testing
//
// Expected nodes are marked in sorted name order and the trace snapshot
// is serialized deterministically, so runs are identical and golden
// files (testdata/golden/<name>.golden) stay byte-stable.
package harness
