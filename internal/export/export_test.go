package export_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/wtgraph/internal/export"
	"github.com/gyaneshwarpardhi/wtgraph/internal/facts"
	"github.com/gyaneshwarpardhi/wtgraph/internal/pipeline"
	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

func notesGraph(t *testing.T) *wtg.Graph {
	t.Helper()
	app, err := facts.Load("testdata/notes.yaml")
	require.NoError(t, err)
	b := &pipeline.Builder{Options: pipeline.Options{SuccessorDepth: pipeline.DefaultSuccessorDepth}}
	res, err := b.BuildFacts(context.Background(), app)
	require.NoError(t, err)
	return res.Graph
}

func TestRegistry(t *testing.T) {
	r := export.Default()
	assert.Equal(t, []string{"dot", "json"}, r.Formats())

	x, err := r.Get("json")
	require.NoError(t, err)
	assert.Equal(t, "application/json", x.ContentType())

	_, err = r.Get("svg")
	assert.True(t, errors.Is(err, export.ErrUnknownFormat))

	assert.Panics(t, func() { r.Register(export.JSON{}) })
}

func TestJSON(t *testing.T) {
	g := notesGraph(t)
	var buf bytes.Buffer
	require.NoError(t, export.JSON{}.Export(&buf, "notes", g))

	var doc export.Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "notes", doc.App)
	assert.Len(t, doc.Nodes, 8)
	assert.Equal(t, "launcher", doc.Nodes[0].Name)
	assert.Len(t, doc.Edges, g.EdgeCount())
	assert.Len(t, doc.BackEdges, 5)
	assert.Equal(t, g.EdgeCount(), doc.Stats.Edges)

	for _, pair := range doc.BackEdges {
		fwd, ok := g.EdgeByID(pair[0])
		require.True(t, ok)
		back, ok := g.EdgeByID(pair[1])
		require.True(t, ok)
		assert.Contains(t, g.BackEdges(fwd), back)
	}
}
