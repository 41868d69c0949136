package wtg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

func TestBuildComponent_BoundaryClassification(t *testing.T) {
	f := newFixture(t)
	f.install(t, f.launcher, f.main, wtg.ImplicitLaunch, "launcher", wtg.PushOp(f.main))
	show := f.install(t, f.main, f.dialog, wtg.ShowDialog, "help", wtg.PushOp(f.dialog))
	finish := f.install(t, f.dialog, f.launcher, wtg.FinishActivity, "quit", wtg.PopOp(f.dialog), wtg.PopOp(f.main))
	start := f.install(t, f.main, f.next, wtg.StartActivity, "btn", wtg.PushOp(f.next))
	home := f.install(t, f.main, f.launcher, wtg.ImplicitHome, "Main")
	jump := f.install(t, f.dialog, f.next, wtg.JumpEdge, "jump")

	c, err := wtg.BuildComponent(f.g.Node(f.main))
	require.NoError(t, err)

	assert.ElementsMatch(t, []*wtg.Node{f.g.Node(f.main), f.g.Node(f.dialog)}, c.Nodes())
	assert.Equal(t, []*wtg.Edge{finish}, c.BackwardBoundary)
	assert.Equal(t, []*wtg.Edge{start}, c.ForwardBoundary)
	assert.Equal(t, []*wtg.Edge{home}, c.HardwareBoundary)
	assert.False(t, c.IsBoundaryEdge(show))
	assert.False(t, c.IsBoundaryEdge(jump))
	assert.True(t, c.IsBoundaryEdge(finish))
	assert.False(t, c.Contains(f.g.Node(f.next)))
}

func TestBuildComponent_StopsAtActivities(t *testing.T) {
	f := newFixture(t)
	f.install(t, f.main, f.next, wtg.StartActivity, "btn", wtg.PushOp(f.next))
	f.install(t, f.next, f.dialog, wtg.ShowDialog, "help", wtg.PushOp(f.dialog))

	c, err := wtg.BuildComponent(f.g.Node(f.main))
	require.NoError(t, err)
	assert.Equal(t, []*wtg.Node{f.g.Node(f.main)}, c.Nodes())
}

func TestBuildComponent_RequiresActivity(t *testing.T) {
	f := newFixture(t)
	_, err := wtg.BuildComponent(f.g.Node(f.dialog))
	assert.ErrorIs(t, err, wtg.ErrNotActivity)
}

func TestGraph_ComponentsAfterFreeze(t *testing.T) {
	f := newFixture(t)
	f.install(t, f.main, f.dialog, wtg.ShowDialog, "help", wtg.PushOp(f.dialog))
	f.g.Freeze()
	comps := f.g.Components()
	assert.Len(t, comps, 2)
	assert.True(t, comps[f.g.Node(f.main)].Contains(f.g.Node(f.dialog)))
}
