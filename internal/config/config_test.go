package config_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/wtgraph/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", s.Server.Addr)
	assert.Equal(t, 30*time.Second, s.Server.WriteTimeout)
	assert.Equal(t, []string{"facts/*.yaml"}, s.Facts.Files)
	assert.Equal(t, 4, s.Engine.QueryWorkers)
	assert.Equal(t, 5*time.Second, s.Engine.QueryTimeout)
	assert.True(t, s.Build.HardwareEvents)
	assert.Equal(t, 4, s.Build.SuccessorDepth)
	assert.Equal(t, 50.0, s.RateLimit.RPS)
	assert.Equal(t, slog.LevelInfo, s.LogLevel())

	opts := s.BuildOptions()
	assert.True(t, opts.HardwareEvents)
	assert.True(t, opts.Diagnostics)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("WTG_SERVER_ADDR", ":9090")
	t.Setenv("WTG_FACTS_FILES", "a.yaml,b.yaml")
	t.Setenv("WTG_ENGINE_QUERY_TIMEOUT", "250ms")
	t.Setenv("WTG_BUILD_HARDWARE_EVENTS", "false")
	t.Setenv("WTG_LOG_LEVEL", "debug")

	s, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", s.Server.Addr)
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, s.Facts.Files)
	assert.Equal(t, 250*time.Millisecond, s.Engine.QueryTimeout)
	assert.False(t, s.Build.HardwareEvents)
	assert.Equal(t, slog.LevelDebug, s.LogLevel())
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"WTG_ENGINE_QUERY_WORKERS": "0",
		"WTG_LOG_FORMAT":           "xml",
		"WTG_RATELIMIT_RPS":        "-1",
		"WTG_ENGINE_QUEUE_DEPTH":   "many",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestFactFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yaml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("app: x\n"), 0o644))
	}
	s := &config.Settings{Facts: config.FactsConf{Files: []string{
		filepath.Join(dir, "*.yaml"),
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "missing.yaml"),
	}}}

	files, err := s.FactFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "missing.yaml"),
	}, files)
}

func TestUsage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, config.Usage(&buf))
	assert.Contains(t, buf.String(), "WTG_ENGINE_QUEUE_DEPTH")
}
