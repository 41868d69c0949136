package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

func TestSuccessors(t *testing.T) {
	g := wtg.NewGraph(nil)
	l := wtg.NewWindow("launcher", wtg.KindLauncher)
	main := wtg.NewWindow("Main", wtg.KindActivity)
	list := wtg.NewWindow("List", wtg.KindActivity)
	detail := wtg.NewWindow("Detail", wtg.KindActivity)
	menu := wtg.NewWindow("Menu", wtg.KindOptionsMenu)
	orphan := wtg.NewWindow("Orphan", wtg.KindActivity)
	g.AddLauncherNode(l)
	for _, w := range []*wtg.Window{main, list, detail, menu, orphan} {
		g.AddNode(w)
	}
	edge := func(src, tgt *wtg.Window, tag wtg.RootTag, ops ...wtg.StackOp) *wtg.Edge {
		h := g.Handler(src, src.Name, wtg.EventClick, "")
		e, err := wtg.NewEdge(g.Node(src), g.Node(tgt), []*wtg.Handler{h}, tag, ops, nil)
		require.NoError(t, err)
		return e
	}
	push, pop := wtg.PushOp, wtg.PopOp

	edges := []*wtg.Edge{
		edge(l, main, wtg.ImplicitLaunch, push(main)),
		edge(main, menu, wtg.OpenOptionsMenu, push(menu)),
		// menu item closes the menu and starts List, whose on_create opens Detail
		edge(menu, detail, wtg.StartActivity, pop(menu), push(list), push(detail)),
		edge(menu, list, wtg.FakeInterimEdge, pop(menu), push(list)),
		// back edges are not followed
		edge(detail, main, wtg.ImplicitBack, pop(detail)),
	}
	s := newSuccessors(edges, l, DefaultSuccessorDepth)

	assert.Equal(t, []*wtg.Window{l}, s.of(main))
	assert.Equal(t, []*wtg.Window{main}, s.of(menu))
	assert.Equal(t, []*wtg.Window{list}, s.of(detail))
	assert.Equal(t, []*wtg.Window{main}, s.of(list), "popped menu is replayed back to its opener")
	assert.Equal(t, []*wtg.Window(nil), s.of(orphan), "a window nothing opens has no successor but itself")

	// cached
	assert.Equal(t, s.of(detail), s.of(detail))
	assert.Len(t, s.cache, 5)
}

func TestSuccessors_DepthBound(t *testing.T) {
	g := wtg.NewGraph(nil)
	l := wtg.NewWindow("launcher", wtg.KindLauncher)
	a := wtg.NewWindow("A", wtg.KindActivity)
	d1 := wtg.NewWindow("D1", wtg.KindDialog)
	d2 := wtg.NewWindow("D2", wtg.KindDialog)
	d3 := wtg.NewWindow("D3", wtg.KindDialog)
	g.AddLauncherNode(l)
	for _, w := range []*wtg.Window{a, d1, d2, d3} {
		g.AddNode(w)
	}
	edge := func(src, tgt *wtg.Window, tag wtg.RootTag, ops ...wtg.StackOp) *wtg.Edge {
		h := g.Handler(src, src.Name, wtg.EventClick, "")
		e, err := wtg.NewEdge(g.Node(src), g.Node(tgt), []*wtg.Handler{h}, tag, ops, nil)
		require.NoError(t, err)
		return e
	}
	push, pop := wtg.PushOp, wtg.PopOp
	// each dialog replaces the previous one
	edges := []*wtg.Edge{
		edge(l, a, wtg.ImplicitLaunch, push(a)),
		edge(a, d1, wtg.ShowDialog, push(d1)),
		edge(d1, d2, wtg.ShowDialog, pop(d1), push(d2)),
		edge(d2, d3, wtg.ShowDialog, pop(d2), push(d3)),
	}

	assert.Equal(t, []*wtg.Window{a}, newSuccessors(edges, l, 4).of(d3))
	assert.Empty(t, newSuccessors(edges, l, 2).of(d3))
}
