package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/wtgraph/internal/query"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildCommand(t *testing.T) {
	out, err := run(t, "build", "testdata/notes.yaml", "--hardware=false")
	require.NoError(t, err)
	assert.Contains(t, out, "app notes: 8 nodes")
	assert.Contains(t, out, "5 back-edge pairs")
	assert.Contains(t, out, "lifecycle_close")
	assert.NotContains(t, out, "warning:")
}

func TestExploreCommand(t *testing.T) {
	out, err := run(t, "explore", "testdata/notes.yaml", "--depth", "1", "--feasible")
	require.NoError(t, err)
	assert.Contains(t, out, "launcher -implicit_launch-> Main")
	assert.Contains(t, out, "1 paths")

	out, err = run(t, "explore", "testdata/notes.yaml", "--depth", "2", "--json", "--hardware=false")
	require.NoError(t, err)
	var res query.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, query.KindExplore, res.Kind)
	assert.Equal(t, res.Count, len(res.Paths))
	for _, p := range res.Paths {
		assert.True(t, strings.HasPrefix(p.Text, "launcher -implicit_launch-> Main"), p.Text)
	}
}

func TestShortestCommand(t *testing.T) {
	out, err := run(t, "shortest", "testdata/notes.yaml", "--to", "Editor", "--feasible", "--hardware=false")
	require.NoError(t, err)
	assert.Contains(t, out, "launcher -implicit_launch-> Main -start_activity-> Editor")

	_, err = run(t, "shortest", "testdata/notes.yaml")
	assert.Error(t, err, "--to is required")

	_, err = run(t, "shortest", "testdata/notes.yaml", "--to", "Nowhere")
	assert.Error(t, err)
}

func TestComponentsCommand(t *testing.T) {
	out, err := run(t, "components", "testdata/notes.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Main: Main")
	assert.Contains(t, out, "Editor: Editor, Confirm")
}

func TestExportCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.dot")
	_, err := run(t, "export", "testdata/notes.yaml", "--format", "dot", "-o", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "digraph notes"))

	_, err = run(t, "export", "testdata/notes.yaml", "--format", "svg")
	assert.Error(t, err)
}
