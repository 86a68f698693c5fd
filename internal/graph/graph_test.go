package graph

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/verdant/internal/dep"
	"github.com/roach88/verdant/internal/serial"
	"github.com/roach88/verdant/internal/testutil"
)

func TestIntern_DuplicateNodeIsFatal(t *testing.T) {
	g := New(nil)
	ec := g.NewEvalContext()
	node := dep.NewNode(dep.KindTypeCheck, "item")

	runTask(t, ec, node, "first")

	_, _, err := WithTask(ec, node, func(*EvalContext) (struct{}, dep.Fingerprint, error) {
		return struct{}{}, testutil.FingerprintOf("second"), nil
	})
	require.Error(t, err)
	assert.True(t, IsDuplicateNodeError(err))
	assert.Contains(t, err.Error(), "TypeCheck")
	assert.Contains(t, err.Error(), "please report")
}

func TestIntern_EvalAlwaysMayRerun(t *testing.T) {
	g := New(nil)
	ec := g.NewEvalContext()
	node := dep.NewNode(dep.KindEnvVar, "PATH")

	first := runTask(t, ec, node, "v1")
	second := runTask(t, ec, node, "v2")

	// Re-execution is the eval-always contract: same index, new result.
	assert.Equal(t, first, second)
	assert.Equal(t, 1, g.NumNodes())
	assert.Equal(t, testutil.FingerprintOf("v2"), g.FingerprintAt(first))
}

func TestIntern_ChangeDetectionAgainstPrev(t *testing.T) {
	b := testutil.NewPrevGraphBuilder().
		AddKeyed("same", dep.KindSourceFile).
		AddKeyed("changed", dep.KindSourceFile)
	g := New(b.Build())
	ec := g.NewEvalContext()

	// Same fingerprint as the previous session: green.
	runTask(t, ec, b.Node("same"), "same")
	assert.Equal(t, ColorGreen, g.ColorOf(b.Index("same")))

	// Different fingerprint: red.
	runTask(t, ec, b.Node("changed"), "changed-v2")
	assert.Equal(t, ColorRed, g.ColorOf(b.Index("changed")))
}

func TestIntern_NewNodeHasNoPrevIndex(t *testing.T) {
	g := New(testutil.NewPrevGraphBuilder().AddKeyed("old", dep.KindSourceFile).Build())
	ec := g.NewEvalContext()

	fresh := dep.NewNode(dep.KindSourceFile, "fresh")
	runTask(t, ec, fresh, "fresh")

	_, ok := g.PrevIndexOf(fresh)
	assert.False(t, ok, "a node the previous session never saw has no prior fingerprint to trust")
}

func TestGraph_SerializeRoundTrip(t *testing.T) {
	g := New(nil)
	ec := g.NewEvalContext()

	c := runTask(t, ec, dep.NewNode(dep.KindSourceFile, "c"), "c")
	b := runTask(t, ec, dep.NewNode(dep.KindParse, "b"), "b", c)
	a := runTask(t, ec, dep.NewNode(dep.KindTypeCheck, "a"), "a", b)

	flat, err := g.Serialize()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, flat.Encode(&buf))
	decoded, err := serial.Decode(buf.Bytes())
	require.NoError(t, err)

	// decode(encode(flatten(G))) == flatten(G): nodes, fingerprints and
	// edge sets all survive.
	require.Equal(t, g.NumNodes(), decoded.NumNodes())
	for _, idx := range []dep.NodeIndex{a, b, c} {
		prevIdx := dep.PrevNodeIndex(idx)
		assert.Equal(t, g.NodeAt(idx), decoded.Node(prevIdx))
		assert.Equal(t, g.FingerprintAt(idx), decoded.Fingerprint(prevIdx))

		edges := g.EdgesAt(idx)
		targets := decoded.EdgeTargets(prevIdx)
		require.Len(t, targets, len(edges))
		for i, e := range edges {
			assert.Equal(t, dep.PrevNodeIndex(e), targets[i])
		}
	}
}

func TestGraph_SessionTokensAreUnique(t *testing.T) {
	a, b := New(nil), New(nil)
	assert.NotEmpty(t, a.SessionToken())
	assert.NotEqual(t, a.SessionToken(), b.SessionToken())
}

func TestGraph_Stats(t *testing.T) {
	b := testutil.NewPrevGraphBuilder().
		AddKeyed("keep", dep.KindSourceFile).
		AddKeyed("drop", dep.KindSourceFile)
	g := New(b.Build())
	ec := g.NewEvalContext()

	keep := runTask(t, ec, b.Node("keep"), "keep")
	runTask(t, ec, b.Node("drop"), "drop-v2")
	runTask(t, ec, dep.NewNode(dep.KindTypeCheck, "t"), "t", keep)

	s := g.Stats()
	assert.Equal(t, g.SessionToken(), s.SessionToken)
	assert.Equal(t, 3, s.Nodes)
	assert.Equal(t, 1, s.Edges)
	assert.Equal(t, 2, s.NodesByKind["SourceFile"])
	assert.Equal(t, 1, s.NodesByKind["TypeCheck"])
	assert.Equal(t, 2, s.PrevNodes)
	assert.Equal(t, 1, s.Green)
	assert.Equal(t, 1, s.Red)
}

func TestGraph_ProfilerHook(t *testing.T) {
	var mu sync.Mutex
	events := map[ProfilerEvent]int{}

	b := testutil.NewPrevGraphBuilder().AddKeyed("same", dep.KindSourceFile)
	g := New(b.Build(), WithProfiler(func(event ProfilerEvent, _ dep.Node) {
		mu.Lock()
		events[event]++
		mu.Unlock()
	}))
	ec := g.NewEvalContext()

	runTask(t, ec, b.Node("same"), "same")
	runTask(t, ec, dep.NewNode(dep.KindParse, "new"), "new")

	assert.Equal(t, 2, events[EventNodeCreated])
	assert.Equal(t, 1, events[EventNodeReused])
}

func TestGraph_NodeAccessorsPanicOutOfRange(t *testing.T) {
	g := New(nil)
	assert.Panics(t, func() { g.NodeAt(0) })
	assert.Panics(t, func() { g.EdgesAt(3) })
}

func TestGraph_NoPrevPanicsOnPrevQueries(t *testing.T) {
	g := New(nil)
	assert.False(t, g.HasPrev())
	assert.Panics(t, func() { g.ColorOf(0) })
	assert.Panics(t, func() { _, _ = g.TryMarkGreen(0) })
}
