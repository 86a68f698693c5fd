// Package graph implements the verdant dependency-tracking engine.
//
// The graph records, for every tracked computation (a "task"), exactly the
// set of other computations it read during its dynamic extent. Across
// sessions it answers one question: which previously computed results are
// still safe to reuse?
//
// ARCHITECTURE:
//
// Two graphs, one session:
// A Graph owns the mutable graph being built this session and a read-only
// reference to the previous session's serialized graph (absent on a clean
// build). The previous graph is never mutated; the current graph is
// append-only for the whole session.
//
// Task protocol:
// Query evaluation wraps each computation in WithTask. The evaluation
// context owns an explicit LIFO stack of task frames; nested Read calls
// append deduplicated edges to the top frame. All of that is frame-local
// and needs no synchronization. The only shared-state mutation is the
// intern step at frame pop: one short critical section per task, guarded
// by a single lock. Different workers use different EvalContexts and may
// run tasks truly in parallel.
//
// Red/green coloring:
// Every previous-session node is Unknown until classified. A node turns
// Red when its own fingerprint changed, when any transitive dependency is
// Red, or when its kind is eval-always. It turns Green when every
// dependency is Green and its fingerprint still holds - then the cached
// result substitutes for recomputation. TryMarkGreen memoizes colors, so
// diamond-shaped graphs are walked once, and detects dependency cycles,
// which are bugs in upstream scheduling and abort with the full chain.
//
// Failure policy:
// Duplicate interning and dependency cycles indicate memoization bugs in
// the query layer and surface as InternalError with a bug-report prompt.
// Everything about the previous session degrades instead: an unreadable
// graph means a full rebuild, never a failed one.
package graph
