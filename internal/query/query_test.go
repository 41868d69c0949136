package query_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/wtgraph/internal/explore"
	"github.com/gyaneshwarpardhi/wtgraph/internal/facts"
	"github.com/gyaneshwarpardhi/wtgraph/internal/pipeline"
	"github.com/gyaneshwarpardhi/wtgraph/internal/query"
	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       query.Query
		wantErr string
	}{
		{name: "explore", q: query.Query{App: "notes", Kind: query.KindExplore, Depth: 2}},
		{name: "shortest", q: query.Query{App: "notes", Kind: query.KindShortest, To: "Editor"}},
		{name: "stack", q: query.Query{App: "notes", Kind: query.KindStack, Path: []int{1, 2}}},
		{name: "missing app", q: query.Query{Kind: query.KindExplore, Depth: 1}, wantErr: "app is required"},
		{name: "unknown kind", q: query.Query{App: "notes", Kind: "walk"}, wantErr: "kind must satisfy oneof"},
		{name: "explore without depth", q: query.Query{App: "notes", Kind: query.KindExplore}, wantErr: "depth is required"},
		{name: "depth too large", q: query.Query{App: "notes", Kind: query.KindExplore, Depth: 65}, wantErr: "depth must satisfy max=64"},
		{name: "shortest without target", q: query.Query{App: "notes", Kind: query.KindShortest}, wantErr: "to is required"},
		{name: "stack without path", q: query.Query{App: "notes", Kind: query.KindStack}, wantErr: "path is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, query.ErrInvalid))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func notesGraph(t *testing.T) *wtg.Graph {
	t.Helper()
	app, err := facts.Load("testdata/notes.yaml")
	require.NoError(t, err)
	b := &pipeline.Builder{Options: pipeline.Options{SuccessorDepth: pipeline.DefaultSuccessorDepth}}
	res, err := b.BuildFacts(context.Background(), app)
	require.NoError(t, err)
	return res.Graph
}

func edge(t *testing.T, g *wtg.Graph, src, tgt string, tag wtg.RootTag) *wtg.Edge {
	t.Helper()
	for _, e := range g.Edges() {
		if e.Source().Window().Name == src && e.Target().Window().Name == tgt && e.Tag() == tag {
			return e
		}
	}
	t.Fatalf("no %s edge %s -> %s", tag, src, tgt)
	return nil
}

func TestStackView(t *testing.T) {
	g := notesGraph(t)
	p := explore.Path{
		edge(t, g, "launcher", "Main", wtg.ImplicitLaunch),
		edge(t, g, "Main", "Editor", wtg.StartActivity),
	}

	v := query.NewStackView(p)
	assert.True(t, v.Feasible)
	assert.Equal(t, []string{"launcher", "Main", "Editor"}, v.Windows)
	assert.Equal(t, "Editor", v.Top)
	assert.Equal(t, []string{"push Main", "push Editor"}, v.Ops)
	assert.Equal(t, []string{
		"Main.onCreate", "Main.onStart", "Main.onResume",
		"Main$Edit.onClick",
		"Main.onPause", "Editor.onCreate", "Editor.onResume", "Main.onStop",
	}, v.Callbacks)
}

func TestStackView_Infeasible(t *testing.T) {
	g := notesGraph(t)
	// Editor is not on the stack when the save edge runs.
	p := explore.Path{
		edge(t, g, "launcher", "Main", wtg.ImplicitLaunch),
		edge(t, g, "Editor", "Main", wtg.FinishActivity),
	}

	v := query.NewStackView(p)
	assert.False(t, v.Feasible)
	assert.Empty(t, v.Top)
	assert.Equal(t, []string{"push Main", "pop Editor"}, v.Ops)
}

func TestPathView(t *testing.T) {
	g := notesGraph(t)
	launch := edge(t, g, "launcher", "Main", wtg.ImplicitLaunch)
	p := explore.Path{launch}

	v := query.NewPathView(p)
	assert.Equal(t, []int{launch.ID()}, v.Edges)
	assert.Equal(t, p.String(), v.Text)
	assert.True(t, v.Feasible)
	assert.Equal(t, []string{"launcher", "Main"}, v.Stack)

	ev := query.NewEdgeView(launch)
	assert.Equal(t, "launcher", ev.Source)
	assert.Equal(t, "Main", ev.Target)
	assert.Equal(t, wtg.ImplicitLaunch.String(), ev.Tag)
	assert.Equal(t, []string{"push Main"}, ev.Ops)
}

func TestSummarize(t *testing.T) {
	g := notesGraph(t)
	launch := edge(t, g, "launcher", "Main", wtg.ImplicitLaunch)
	paths := []explore.Path{
		{launch},
		{launch, edge(t, g, "Main", "Editor", wtg.StartActivity)},
	}

	s := query.Summarize(paths)
	assert.Equal(t, 2, s.Paths)
	assert.Equal(t, 2, s.DistinctTargets)
	assert.Equal(t, 8, s.MaxCallbacks)
	assert.InDelta(t, 5.5, s.MeanCallbacks, 1e-9)
	assert.Greater(t, s.StdDevCallbacks, 0.0)

	single := query.Summarize(paths[:1])
	assert.Zero(t, single.StdDevCallbacks)
	assert.Zero(t, query.Summarize(nil).Paths)
}

func TestComponents(t *testing.T) {
	g := notesGraph(t)
	comps := query.Components(g)
	require.Len(t, comps, 3)

	main := comps[0]
	assert.Equal(t, "Main", main.Activity)
	assert.ElementsMatch(t, []string{"Main", "About", "MainOptions", "NoteMenu"}, main.Windows)
	start := edge(t, g, "Main", "Editor", wtg.StartActivity)
	assert.Contains(t, main.Forward, start.ID())
	assert.Equal(t, "Editor", comps[1].Activity)
	assert.Equal(t, "Settings", comps[2].Activity)
}
