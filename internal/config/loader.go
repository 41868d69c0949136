package config

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/kelseyhightower/envconfig"

	"github.com/gyaneshwarpardhi/wtgraph/internal/pipeline"
)

// Prefix is the environment variable prefix.
const Prefix = "WTG"

// Load reads Settings from the environment and validates them.
func Load() (*Settings, error) {
	var s Settings
	if err := envconfig.Process(Prefix, &s); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Usage writes the list of recognised environment variables to w.
func Usage(w io.Writer) error {
	return envconfig.Usagef(Prefix, &Settings{}, w, envconfig.DefaultTableFormat)
}

// FactFiles expands the glob patterns in Facts.Files into a sorted,
// deduplicated list of paths. Plain paths are kept even if they do not exist
// yet so that loading reports them.
func (s *Settings) FactFiles() ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range s.Facts.Files {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("config: facts pattern %q: %w", pattern, err)
		}
		if matches == nil && !hasMeta(pattern) {
			matches = []string{pattern}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func hasMeta(p string) bool {
	for _, c := range p {
		switch c {
		case '*', '?', '[', '\\':
			return true
		}
	}
	return false
}

// BuildOptions converts the build settings into pipeline options.
func (s *Settings) BuildOptions() pipeline.Options {
	return pipeline.Options{
		HardwareEvents: s.Build.HardwareEvents,
		SuccessorDepth: s.Build.SuccessorDepth,
		Diagnostics:    s.Build.Diagnostics,
	}
}

// LogLevel maps Log.Level to a slog level.
func (s *Settings) LogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
