package explore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/wtgraph/internal/explore"
	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

// sample is a launcher, two activities and a dialog:
//
//	e1 L -> A  implicit_launch  [push A]
//	e2 A -> B  start_activity   [push B]
//	e3 B -> A  implicit_back    [pop B]
//	e4 A -> D  show_dialog      [push D]
//	e5 D -> A  dismiss_dialog   [pop D]
//	e6 B -> B  self_edge
//	e7 L -> L  self_edge
//	e8 A -> L  implicit_home
//	e9 D -> B  dismiss_dialog   [pop D]   (never feasible)
type sample struct {
	g          *wtg.Graph
	l, a, b, d *wtg.Window
	e          map[string]*wtg.Edge
}

func newSample(t *testing.T) *sample {
	t.Helper()
	s := &sample{
		g: wtg.NewGraph(nil),
		l: wtg.NewWindow("launcher", wtg.KindLauncher),
		a: wtg.NewWindow("A", wtg.KindActivity),
		b: wtg.NewWindow("B", wtg.KindActivity),
		d: wtg.NewWindow("D", wtg.KindDialog),
		e: make(map[string]*wtg.Edge),
	}
	s.g.AddLauncherNode(s.l)
	for _, w := range []*wtg.Window{s.a, s.b, s.d} {
		s.g.AddNode(w)
	}
	s.add(t, "e1", s.l, s.a, wtg.ImplicitLaunch, wtg.EventLaunch, "", nil, wtg.PushOp(s.a))
	s.add(t, "e2", s.a, s.b, wtg.StartActivity, wtg.EventClick, "A.onClick",
		[]string{"A.onPause", "B.onCreate"}, wtg.PushOp(s.b))
	s.add(t, "e3", s.b, s.a, wtg.ImplicitBack, wtg.EventBack, "", nil, wtg.PopOp(s.b))
	s.add(t, "e4", s.a, s.d, wtg.ShowDialog, wtg.EventLongClick, "", nil, wtg.PushOp(s.d))
	s.add(t, "e5", s.d, s.a, wtg.DismissDialog, wtg.EventClick, "", nil, wtg.PopOp(s.d))
	s.add(t, "e6", s.b, s.b, wtg.CyclicEdge, wtg.EventClick, "", nil)
	s.add(t, "e7", s.l, s.l, wtg.CyclicEdge, wtg.EventClick, "", nil)
	s.add(t, "e8", s.a, s.l, wtg.ImplicitHome, wtg.EventHome, "", nil)
	s.add(t, "e9", s.d, s.b, wtg.DismissDialog, wtg.EventItemClick, "", nil, wtg.PopOp(s.d))
	s.g.Freeze()
	return s
}

func (s *sample) add(t *testing.T, name string, src, tgt *wtg.Window, tag wtg.RootTag, ev wtg.EventType, cb string, lifecycle []string, ops ...wtg.StackOp) {
	t.Helper()
	h := s.g.Handler(src, name, ev, cb)
	var cbs []*wtg.Handler
	for _, c := range lifecycle {
		cbs = append(cbs, s.g.Handler(src, src.Name, wtg.EventLifecycle, c))
	}
	e, err := wtg.NewEdge(s.g.Node(src), s.g.Node(tgt), []*wtg.Handler{h}, tag, ops, cbs)
	require.NoError(t, err)
	got, err := s.g.AddEdge(e)
	require.NoError(t, err)
	require.Same(t, e, got)
	s.e[name] = e
}

func (s *sample) path(names ...string) explore.Path {
	p := make(explore.Path, len(names))
	for i, n := range names {
		p[i] = s.e[n]
	}
	return p
}

func keys(paths []explore.Path) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.String()
	}
	return out
}

func TestExplorePaths_FeasibleScenario(t *testing.T) {
	s := newSample(t)
	x := explore.New(s.g)

	got, err := x.ExplorePaths(context.Background(), s.g.Node(s.l), 2, true, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, keys([]explore.Path{s.path("e1", "e2"), s.path("e1", "e4")}), keys(got))
}

func TestExplorePaths_FeasibleSubsetOfNaive(t *testing.T) {
	s := newSample(t)
	x := explore.New(s.g)
	ctx := context.Background()

	for _, start := range []*wtg.Window{s.l, s.a, s.b, s.d} {
		for k := 1; k <= 4; k++ {
			for _, loop := range []bool{false, true} {
				naive, err := x.ExplorePaths(ctx, s.g.Node(start), k, false, loop)
				require.NoError(t, err)
				feasible, err := x.ExplorePaths(ctx, s.g.Node(start), k, true, loop)
				require.NoError(t, err)

				all := make(map[string]bool)
				for _, p := range naive {
					all[p.String()] = true
				}
				for _, p := range feasible {
					assert.True(t, all[p.String()], "feasible path %s missing from naive set", p)
					assert.True(t, wtg.NewWindowStack(p).Feasible(), "path %s", p)
					assert.Len(t, p, k)
				}
			}
		}
	}
}

func TestExplorePaths_FeasibleRejectsInconsistentStack(t *testing.T) {
	s := newSample(t)
	x := explore.New(s.g)
	ctx := context.Background()

	naive, err := x.ExplorePaths(ctx, s.g.Node(s.l), 3, false, false)
	require.NoError(t, err)
	feasible, err := x.ExplorePaths(ctx, s.g.Node(s.l), 3, true, false)
	require.NoError(t, err)

	assert.Contains(t, keys(naive), s.path("e1", "e4", "e9").String())
	assert.NotContains(t, keys(feasible), s.path("e1", "e4", "e9").String())
	assert.Contains(t, keys(feasible), s.path("e1", "e2", "e3").String())
	assert.Contains(t, keys(feasible), s.path("e1", "e4", "e5").String())
}

func TestExplorePaths_NeverUsesLauncherSelfLoop(t *testing.T) {
	s := newSample(t)
	x := explore.New(s.g)

	for k := 1; k <= 5; k++ {
		got, err := x.ExplorePaths(context.Background(), s.g.Node(s.l), k, false, true)
		require.NoError(t, err)
		for _, p := range got {
			for _, e := range p {
				assert.False(t, e.IsLauncherSelfLoop(), "path %s", p)
			}
		}
	}
	// e8 reaches the launcher mid-path; only e1 may continue from there.
	got, err := x.ExplorePaths(context.Background(), s.g.Node(s.a), 2, false, true)
	require.NoError(t, err)
	assert.Contains(t, keys(got), s.path("e8", "e1").String())
	assert.NotContains(t, keys(got), s.path("e8", "e7").String())
}

func TestExplorePaths_LoopReuse(t *testing.T) {
	s := newSample(t)
	x := explore.New(s.g)
	ctx := context.Background()

	noLoop, err := x.ExplorePaths(ctx, s.g.Node(s.b), 2, false, false)
	require.NoError(t, err)
	withLoop, err := x.ExplorePaths(ctx, s.g.Node(s.b), 2, false, true)
	require.NoError(t, err)

	selfTwice := s.path("e6", "e6").String()
	assert.NotContains(t, keys(noLoop), selfTwice)
	assert.Contains(t, keys(withLoop), selfTwice)
	for _, p := range noLoop {
		seen := make(map[*wtg.Edge]bool)
		for _, e := range p {
			assert.False(t, seen[e], "edge reused in %s", p)
			seen[e] = true
		}
	}
}

func TestExplorePaths_EdgeCases(t *testing.T) {
	s := newSample(t)
	x := explore.New(s.g)
	ctx := context.Background()

	got, err := x.ExplorePaths(ctx, s.g.Node(s.a), 0, true, false)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = x.ExplorePaths(ctx, nil, 2, true, false)
	assert.True(t, errors.Is(err, wtg.ErrUnknownWindow))

	// D's only way out pops D off an otherwise empty stack.
	got, err = x.ExplorePaths(ctx, s.g.Node(s.d), 1, true, false)
	require.NoError(t, err)
	assert.Empty(t, got)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = x.ExplorePaths(cancelled, s.g.Node(s.l), 3, false, false)
	assert.ErrorIs(t, err, context.Canceled)
}

type tagFilter wtg.RootTag

func (f tagFilter) Match(e *wtg.Edge) bool { return e.Tag() != wtg.RootTag(f) }

func TestExplorer_Options(t *testing.T) {
	s := newSample(t)
	ctx := context.Background()

	x := explore.New(s.g, explore.WithEdgeFilter(tagFilter(wtg.ShowDialog)))
	got, err := x.ExplorePaths(ctx, s.g.Node(s.l), 2, true, false)
	require.NoError(t, err)
	assert.Equal(t, []string{s.path("e1", "e2").String()}, keys(got))

	x = explore.New(s.g, explore.WithMaxPaths(1))
	got, err = x.ExplorePaths(ctx, s.g.Node(s.l), 3, false, false)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestShortestFeasiblePaths(t *testing.T) {
	s := newSample(t)
	x := explore.New(s.g)
	ctx := context.Background()

	tests := []struct {
		name     string
		src, dst *wtg.Window
		feasible bool
		want     []explore.Path
	}{
		{"launch then open", s.l, s.b, true, []explore.Path{s.path("e1", "e2")}},
		{"round trips", s.a, s.a, true, []explore.Path{s.path("e2", "e3"), s.path("e4", "e5")}},
		{"naive round trips", s.a, s.a, false, []explore.Path{s.path("e2", "e3"), s.path("e4", "e5"), s.path("e8", "e1")}},
		{"unreachable when feasible", s.d, s.l, true, nil},
		{"reachable when naive", s.d, s.l, false, []explore.Path{s.path("e5", "e8")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := x.ShortestFeasiblePaths(ctx, s.g.Node(tc.src), s.g.Node(tc.dst), tc.feasible)
			require.NoError(t, err)
			assert.ElementsMatch(t, keys(tc.want), keys(got))
		})
	}
}

func TestShortestFeasiblePaths_AllMinimal(t *testing.T) {
	s := newSample(t)
	x := explore.New(s.g)
	ctx := context.Background()

	shortest, err := x.ShortestFeasiblePaths(ctx, s.g.Node(s.l), s.g.Node(s.a), true)
	require.NoError(t, err)
	require.NotEmpty(t, shortest)
	l := len(shortest[0])
	for _, p := range shortest {
		assert.Len(t, p, l)
	}

	// Every feasible path of that length ending at A is returned.
	all, err := x.ExplorePaths(ctx, s.g.Node(s.l), l, true, false)
	require.NoError(t, err)
	var want []explore.Path
	for _, p := range all {
		if p.Target() == s.g.Node(s.a) {
			want = append(want, p)
		}
	}
	assert.ElementsMatch(t, keys(want), keys(shortest))
}

func TestPathHelpers(t *testing.T) {
	s := newSample(t)
	p := s.path("e1", "e2", "e3")

	assert.Equal(t, []*wtg.Window{s.l, s.a}, explore.GenerateWindowStack(p).Windows())
	assert.Equal(t, []wtg.StackOp{wtg.PushOp(s.a), wtg.PushOp(s.b), wtg.PopOp(s.b)}, explore.PushPopOperations(p))

	var names []string
	for _, h := range explore.CallbackSequence(p) {
		names = append(names, h.Callback())
	}
	assert.Equal(t, []string{"A.onClick", "A.onPause", "B.onCreate"}, names)

	assert.Same(t, s.g.Node(s.a), p.Target())
	assert.Nil(t, explore.Path(nil).Target())
	assert.Len(t, p.Signatures(), 3)
	assert.Equal(t, "launcher -implicit_launch-> A -start_activity-> B -implicit_back-> A", p.String())
}
