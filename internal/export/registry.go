// Package export renders a built graph in the formats external tools read.
package export

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/gyaneshwarpardhi/wtgraph/internal/export/dot"
	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

// Exporter is the interface all output formats must satisfy.
type Exporter interface {
	// Format returns the string key this exporter is registered under.
	Format() string
	// ContentType is the media type of the output.
	ContentType() string
	// Export writes g, the graph of app, to w.
	Export(w io.Writer, app string, g *wtg.Graph) error
}

// Registry maps format strings to their exporters.
// It is safe for concurrent reads; Register should only be called at startup.
type Registry struct {
	mu        sync.RWMutex
	exporters map[string]Exporter
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{exporters: make(map[string]Exporter)}
}

// Default returns a registry holding the json and dot exporters.
func Default() *Registry {
	r := NewRegistry()
	r.Register(JSON{})
	r.Register(dot.Exporter{})
	return r
}

// Register adds an exporter. Panics on duplicate format to surface misconfiguration early.
func (r *Registry) Register(e Exporter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.exporters[e.Format()]; exists {
		panic(fmt.Sprintf("export registry: duplicate format %q", e.Format()))
	}
	r.exporters[e.Format()] = e
}

// Get returns the exporter for the given format.
func (r *Registry) Get(format string) (Exporter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.exporters[format]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
	return e, nil
}

// Formats returns all registered format strings, sorted.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.exporters))
	for k := range r.exporters {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
