package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/wtgraph/internal/pipeline"
	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

func TestProvenance_PutDeduplicatesPerKey(t *testing.T) {
	g := wtg.NewGraph(nil)
	a := wtg.NewWindow("A", wtg.KindActivity)
	b := wtg.NewWindow("B", wtg.KindActivity)
	g.AddNode(a)
	g.AddNode(b)
	h := g.Handler(a, "btn", wtg.EventClick, "A.onClick")

	x, err := wtg.NewEdge(g.Node(a), g.Node(b), []*wtg.Handler{h}, wtg.StartActivity, nil, nil)
	require.NoError(t, err)
	y, err := wtg.NewEdge(g.Node(a), g.Node(b), []*wtg.Handler{h}, wtg.StartActivity, []wtg.StackOp{wtg.PushOp(b)}, nil)
	require.NoError(t, err)
	y2, err := wtg.NewEdge(g.Node(a), g.Node(b), []*wtg.Handler{h}, wtg.StartActivity, []wtg.StackOp{wtg.PushOp(b)}, nil)
	require.NoError(t, err)

	p := pipeline.NewProvenance(pipeline.LifecycleForward)
	assert.True(t, p.Put(x, y))
	assert.False(t, p.Put(x, y2), "same signature under the same key")
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, 1, p.Size())
	assert.Same(t, y, p.Produced(x.Signature())[0])
	assert.True(t, p.Has(x.Signature()))
	assert.False(t, p.Has(y.Signature()))
	assert.Equal(t, "lifecycle_forward", p.Stage().String())
}

// An edge deduplicated against one already in the graph is not installed,
// and neither is anything that only led to it.
func TestPrune_DeduplicatedEdgeKillsItsProducers(t *testing.T) {
	g := wtg.NewGraph(nil)
	a := wtg.NewWindow("A", wtg.KindActivity)
	b := wtg.NewWindow("B", wtg.KindActivity)
	g.AddNode(a)
	g.AddNode(b)
	h := g.Handler(a, "btn", wtg.EventClick, "A.onClick")
	edge := func(ops ...wtg.StackOp) *wtg.Edge {
		e, err := wtg.NewEdge(g.Node(a), g.Node(b), []*wtg.Handler{h}, wtg.StartActivity, ops, nil)
		require.NoError(t, err)
		return e
	}

	x := edge()
	y := edge(wtg.PushOp(b))
	existing := edge(wtg.PushOp(b))
	_, err := g.AddEdge(existing)
	require.NoError(t, err)

	first := pipeline.NewProvenance(pipeline.ExplicitForward)
	first.Put(x, x)
	second := pipeline.NewProvenance(pipeline.LifecycleForward)
	second.Put(x, y)

	installed, dups, err := pipeline.Install(g, second)
	require.NoError(t, err)
	assert.Equal(t, 0, installed)
	assert.Equal(t, 1, dups)

	removed := pipeline.Prune(g, []*pipeline.Provenance{first, second})
	assert.Equal(t, []int{1, 1}, removed)
	assert.Zero(t, first.Len())
	assert.Zero(t, second.Len())
}

func TestPrune_KeepsInstalledChain(t *testing.T) {
	g := wtg.NewGraph(nil)
	a := wtg.NewWindow("A", wtg.KindActivity)
	b := wtg.NewWindow("B", wtg.KindActivity)
	g.AddNode(a)
	g.AddNode(b)
	h := g.Handler(a, "btn", wtg.EventClick, "")
	x, err := wtg.NewEdge(g.Node(a), g.Node(b), []*wtg.Handler{h}, wtg.StartActivity, nil, nil)
	require.NoError(t, err)
	y, err := wtg.NewEdge(g.Node(a), g.Node(b), []*wtg.Handler{h}, wtg.StartActivity, []wtg.StackOp{wtg.PushOp(b)}, nil)
	require.NoError(t, err)

	first := pipeline.NewProvenance(pipeline.ExplicitForward)
	first.Put(x, x)
	second := pipeline.NewProvenance(pipeline.LifecycleForward)
	second.Put(x, y)

	installed, _, err := pipeline.Install(g, second)
	require.NoError(t, err)
	assert.Equal(t, 1, installed)
	assert.Equal(t, []int{0, 0}, pipeline.Prune(g, []*pipeline.Provenance{first, second}))
	assert.Equal(t, []*wtg.Edge{x}, first.Edges())
	assert.Equal(t, []*wtg.Edge{y}, second.Edges())
}
