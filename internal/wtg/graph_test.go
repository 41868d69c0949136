package wtg_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

type fixture struct {
	g          *wtg.Graph
	launcher   *wtg.Window
	main, next *wtg.Window
	dialog     *wtg.Window
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		g:        wtg.NewGraph(nil),
		launcher: wtg.NewWindow("launcher", wtg.KindLauncher),
		main:     wtg.NewWindow("Main", wtg.KindActivity),
		next:     wtg.NewWindow("Next", wtg.KindActivity),
		dialog:   wtg.NewWindow("Confirm", wtg.KindDialog),
	}
	f.g.AddLauncherNode(f.launcher)
	f.g.AddNode(f.main)
	f.g.AddNode(f.next)
	f.g.AddNode(f.dialog)
	return f
}

func (f *fixture) edge(t *testing.T, src, tgt *wtg.Window, tag wtg.RootTag, widget string, ops ...wtg.StackOp) *wtg.Edge {
	t.Helper()
	h := f.g.Handler(src, widget, wtg.EventClick, "")
	e, err := wtg.NewEdge(f.g.Node(src), f.g.Node(tgt), []*wtg.Handler{h}, tag, ops, nil)
	require.NoError(t, err)
	return e
}

func (f *fixture) install(t *testing.T, src, tgt *wtg.Window, tag wtg.RootTag, widget string, ops ...wtg.StackOp) *wtg.Edge {
	t.Helper()
	e, err := f.g.AddEdge(f.edge(t, src, tgt, tag, widget, ops...))
	require.NoError(t, err)
	return e
}

func TestAddEdge_DeduplicatesBySignature(t *testing.T) {
	f := newFixture(t)
	first := f.edge(t, f.main, f.next, wtg.StartActivity, "btn", wtg.PushOp(f.next))
	second := f.edge(t, f.main, f.next, wtg.StartActivity, "btn", wtg.PushOp(f.next))
	require.NotSame(t, first, second)
	require.Equal(t, first.Signature(), second.Signature())

	got1, err := f.g.AddEdge(first)
	require.NoError(t, err)
	got2, err := f.g.AddEdge(second)
	require.NoError(t, err)

	assert.Same(t, first, got1)
	assert.Same(t, first, got2)
	assert.Equal(t, 1, f.g.EdgeCount())
	assert.Len(t, f.g.Node(f.main).OutEdges(), 1)
	assert.Len(t, f.g.Node(f.next).InEdges(), 1)
	assert.False(t, f.g.Installed(second))
}

func TestAddEdge_CallbacksDoNotAffectSignature(t *testing.T) {
	f := newFixture(t)
	h := f.g.Handler(f.main, "btn", wtg.EventClick, "Main.onClick")
	cb := f.g.Handler(f.next, "Next", wtg.EventLifecycle, "Next.onCreate")
	a, err := wtg.NewEdge(f.g.Node(f.main), f.g.Node(f.next), []*wtg.Handler{h}, wtg.StartActivity, nil, nil)
	require.NoError(t, err)
	b, err := wtg.NewEdge(f.g.Node(f.main), f.g.Node(f.next), []*wtg.Handler{h}, wtg.StartActivity, nil, []*wtg.Handler{cb})
	require.NoError(t, err)
	assert.Equal(t, a.Signature(), b.Signature())
}

func TestAddEdge_OpsDistinguishSignature(t *testing.T) {
	f := newFixture(t)
	a := f.install(t, f.main, f.next, wtg.StartActivity, "btn", wtg.PushOp(f.next))
	b := f.install(t, f.main, f.next, wtg.StartActivity, "btn", wtg.PopOp(f.main), wtg.PushOp(f.next))
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, f.g.EdgeCount())
}

func TestHandler_Interning(t *testing.T) {
	f := newFixture(t)
	a := f.g.Handler(f.main, "btn", wtg.EventClick, "Main$1.onClick")
	b := f.g.Handler(f.main, "btn", wtg.EventClick, "Main$1.onClick")
	c := f.g.Handler(f.main, "btn", wtg.EventClick, "Main$2.onClick")
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)

	e1, err := wtg.NewEdge(f.g.Node(f.main), f.g.Node(f.next), []*wtg.Handler{a, c}, wtg.StartActivity, nil, nil)
	require.NoError(t, err)
	e2, err := wtg.NewEdge(f.g.Node(f.main), f.g.Node(f.next), []*wtg.Handler{c, b, a}, wtg.StartActivity, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, e1.Handlers(), e2.Handlers())
	assert.Equal(t, e1.Signature(), e2.Signature())
}

func TestNewEdge_Invalid(t *testing.T) {
	f := newFixture(t)
	main, next := f.g.Node(f.main), f.g.Node(f.next)
	click := f.g.Handler(f.main, "btn", wtg.EventClick, "")
	longClick := f.g.Handler(f.main, "btn", wtg.EventLongClick, "")

	cases := []struct {
		name     string
		src, tgt *wtg.Node
		handlers []*wtg.Handler
	}{
		{"nil source", nil, next, []*wtg.Handler{click}},
		{"nil target", main, nil, []*wtg.Handler{click}},
		{"no handlers", main, next, nil},
		{"mismatched trigger", main, next, []*wtg.Handler{click, longClick}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := wtg.NewEdge(tc.src, tc.tgt, tc.handlers, wtg.StartActivity, nil, nil)
			assert.ErrorIs(t, err, wtg.ErrInvalidEdge)
		})
	}
}

func TestAddLauncherNode_SecondLauncherIgnored(t *testing.T) {
	f := newFixture(t)
	other := wtg.NewWindow("other-launcher", wtg.KindLauncher)
	got := f.g.AddLauncherNode(other)
	assert.Same(t, f.g.Node(f.launcher), got)
	assert.Same(t, f.g.Node(f.launcher), f.g.Launcher())
}

func TestLookup_UnknownWindow(t *testing.T) {
	f := newFixture(t)
	_, err := f.g.Lookup(wtg.NewWindow("ghost", wtg.KindActivity))
	assert.True(t, errors.Is(err, wtg.ErrUnknownWindow))
}

func TestRemoveEdge_DetachesEverything(t *testing.T) {
	f := newFixture(t)
	fwd := f.install(t, f.main, f.next, wtg.StartActivity, "btn", wtg.PushOp(f.next))
	back := f.install(t, f.next, f.main, wtg.ImplicitBack, "Next", wtg.PopOp(f.next))
	other := f.install(t, f.main, f.dialog, wtg.ShowDialog, "help", wtg.PushOp(f.dialog))
	require.True(t, f.g.AddBackEdge(fwd, back))
	require.True(t, f.g.AddBackEdge(other, back))

	require.NoError(t, f.g.RemoveEdge(back))

	assert.False(t, f.g.Installed(back))
	assert.Empty(t, f.g.Node(f.next).OutEdges())
	assert.Len(t, f.g.Node(f.main).InEdges(), 0)
	assert.Empty(t, f.g.BackEdges(fwd))
	assert.Empty(t, f.g.BackEdges(other))
	assert.Empty(t, f.g.BackEdgePairs())

	require.NoError(t, f.g.RemoveEdge(fwd))
	assert.Equal(t, []*wtg.Edge{other}, f.g.Edges())
}

func TestAddBackEdge_RequiresInstalledEdges(t *testing.T) {
	f := newFixture(t)
	fwd := f.install(t, f.main, f.next, wtg.StartActivity, "btn", wtg.PushOp(f.next))
	loose := f.edge(t, f.next, f.main, wtg.ImplicitBack, "Next", wtg.PopOp(f.next))
	assert.False(t, f.g.AddBackEdge(fwd, loose))
	assert.Empty(t, f.g.BackEdgePairs())
}

func TestFreeze_RejectsMutation(t *testing.T) {
	f := newFixture(t)
	e := f.install(t, f.main, f.next, wtg.StartActivity, "btn", wtg.PushOp(f.next))
	f.g.Freeze()
	_, err := f.g.AddEdge(f.edge(t, f.next, f.main, wtg.ImplicitBack, "Next"))
	assert.ErrorIs(t, err, wtg.ErrFrozen)
	assert.ErrorIs(t, f.g.RemoveEdge(e), wtg.ErrFrozen)
	assert.Equal(t, 1, f.g.EdgeCount())
}

func TestOwnerActivities(t *testing.T) {
	f := newFixture(t)
	menu := wtg.NewWindow("MainMenu", wtg.KindOptionsMenu)
	f.g.AddNode(menu)
	f.install(t, f.main, f.dialog, wtg.ShowDialog, "help", wtg.PushOp(f.dialog))
	f.install(t, f.next, f.dialog, wtg.ShowDialog, "help", wtg.PushOp(f.dialog))
	f.install(t, f.dialog, menu, wtg.OpenOptionsMenu, "Confirm", wtg.PushOp(menu))
	f.install(t, f.main, f.next, wtg.StartActivity, "btn", wtg.PushOp(f.next))

	owners := f.g.OwnerActivities(f.g.Node(f.dialog))
	assert.ElementsMatch(t, []*wtg.Node{f.g.Node(f.main), f.g.Node(f.next)}, owners)
	assert.ElementsMatch(t, []*wtg.Node{f.g.Node(f.main), f.g.Node(f.next)}, f.g.OwnerActivities(f.g.Node(menu)))
	assert.Empty(t, f.g.OwnerActivities(f.g.Node(f.next)))
}

func TestEdgeHelpers(t *testing.T) {
	f := newFixture(t)
	splash := wtg.NewWindow("Splash", wtg.KindActivity)
	f.g.AddNode(splash)

	redirect := f.edge(t, f.launcher, f.main, wtg.ImplicitLaunch, "launcher",
		wtg.PushOp(splash), wtg.PushOp(f.main))
	assert.Same(t, f.main, redirect.FinalTarget())
	assert.Equal(t, map[*wtg.Window]int{splash: 0}, redirect.InterimTargets())
	assert.Nil(t, redirect.PopSelf())

	finish := f.edge(t, f.dialog, f.next, wtg.StartActivity, "ok",
		wtg.PopOp(f.dialog), wtg.PopOp(f.main), wtg.PushOp(f.next))
	assert.Same(t, f.dialog, finish.PopSelf())
	assert.Same(t, f.main, finish.PopOwner())
	assert.Equal(t, []*wtg.Window{f.next}, finish.PushWindows())
	assert.Equal(t, []*wtg.Window{f.dialog, f.main}, finish.PopWindows())
	assert.Same(t, f.next, finish.FinalTarget())

	closeSelf := f.edge(t, f.dialog, f.dialog, wtg.CyclicEdge, "cancel", wtg.PopOp(f.dialog))
	assert.Nil(t, closeSelf.FinalTarget())

	loop := f.edge(t, f.launcher, f.launcher, wtg.CyclicEdge, "launcher")
	assert.True(t, loop.IsLauncherSelfLoop())
}

func TestRootTagClassification(t *testing.T) {
	for _, tag := range []wtg.RootTag{wtg.StartActivity, wtg.ShowDialog, wtg.OpenContextMenu, wtg.OpenOptionsMenu, wtg.ImplicitLaunch} {
		assert.True(t, tag.IsForward(), tag.String())
		assert.False(t, tag.IsBackward(), tag.String())
	}
	for _, tag := range []wtg.RootTag{wtg.FinishActivity, wtg.DismissDialog, wtg.CloseMenu, wtg.ImplicitBack} {
		assert.True(t, tag.IsBackward(), tag.String())
	}
	for _, tag := range []wtg.RootTag{wtg.ImplicitHome, wtg.ImplicitPower, wtg.ImplicitRotate} {
		assert.True(t, tag.IsHardware(), tag.String())
	}
	assert.False(t, wtg.ImplicitLaunch.IsExplicitForward())
	assert.Equal(t, "self_edge", wtg.CyclicEdge.String())

	parsed, err := wtg.ParseRootTag("cyclic_edge")
	require.NoError(t, err)
	assert.Equal(t, wtg.CyclicEdge, parsed)
	_, err = wtg.ParseRootTag("teleport")
	assert.Error(t, err)
}
