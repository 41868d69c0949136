// Package pipeline builds a window transition graph from application facts
// in six ordered stages. Every stage records which edge of the previous stage
// produced each of its edges; after installation a backward sweep removes
// provenance that never led to an installed edge.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gyaneshwarpardhi/wtgraph/internal/facts"
	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

// DefaultSuccessorDepth bounds the backward walk that resolves successors.
const DefaultSuccessorDepth = 4

// Options tune a build.
type Options struct {
	HardwareEvents bool // emit rotate/home/power edges
	SuccessorDepth int
	Diagnostics    bool // compare consecutive stages and warn on suspicious diffs
}

// DefaultOptions enables every feature with the default successor depth.
func DefaultOptions() Options {
	return Options{HardwareEvents: true, SuccessorDepth: DefaultSuccessorDepth, Diagnostics: true}
}

// Builder runs the pipeline. The zero value uses slog.Default() and zero
// options; use DefaultOptions for the usual configuration.
type Builder struct {
	Logger  *slog.Logger
	Options Options
}

// StageReport summarises one stage.
type StageReport struct {
	Stage  string `json:"stage"`
	Keys   int    `json:"keys"`
	Edges  int    `json:"edges"`
	Pruned int    `json:"pruned"`
}

// Report summarises a build.
type Report struct {
	App           string        `json:"app"`
	Stages        []StageReport `json:"stages"`
	Installed     int           `json:"installed"`
	Duplicates    int           `json:"duplicates"`
	BackEdgePairs int           `json:"back_edge_pairs"`
	Warnings      []string      `json:"warnings,omitempty"`
	Duration      time.Duration `json:"duration_ns"`
}

// Result is a frozen graph with the provenance that produced it.
type Result struct {
	Graph  *wtg.Graph
	Stages []*Provenance
	Report Report
}

// build is the state shared by the stages of one run.
type build struct {
	logger   *slog.Logger
	opts     Options
	ix       *facts.Index
	g        *wtg.Graph
	owners   map[*wtg.Window][]*wtg.Window
	pairs    []pair
	warnings []string
}

type pair struct {
	forward, back *wtg.Edge
}

// Build runs all six stages over ix, installs the final edges, registers
// forward/back pairings, prunes provenance and freezes the graph.
func (b *Builder) Build(ctx context.Context, ix *facts.Index) (*Result, error) {
	start := time.Now()
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("app", ix.Name())
	opts := b.Options
	if opts.SuccessorDepth <= 0 {
		opts.SuccessorDepth = DefaultSuccessorDepth
	}

	g := wtg.NewGraph(logger)
	for _, w := range ix.Windows() {
		if w.IsLauncher() {
			g.AddLauncherNode(w)
		} else {
			g.AddNode(w)
		}
	}
	bd := &build{
		logger: logger,
		opts:   opts,
		ix:     ix,
		g:      g,
		owners: make(map[*wtg.Window][]*wtg.Window),
	}

	steps := []func(*Provenance) (*Provenance, error){
		func(*Provenance) (*Provenance, error) { return bd.explicitForward() },
		bd.lifecycleForward,
		bd.closeWindow,
		bd.callbackSequence,
		bd.backEdge,
		bd.lifecycleClose,
	}
	var (
		stages []*Provenance
		prev   *Provenance
		rep      = Report{App: ix.Name()}
	)
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := step(prev)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", ix.Name(), Stage(i), err)
		}
		if opts.Diagnostics && prev != nil {
			bd.diagnose(prev, next)
		}
		logger.Debug("stage done", "stage", Stage(i), "keys", next.Len(), "edges", next.Size())
		rep.Stages = append(rep.Stages, StageReport{Stage: Stage(i).String(), Keys: next.Len(), Edges: next.Size()})
		stages = append(stages, next)
		prev = next
	}

	installed, dups, err := Install(g, prev)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ix.Name(), err)
	}
	for _, p := range bd.pairs {
		g.AddBackEdge(p.forward, p.back)
	}
	removed := Prune(g, stages)
	g.Freeze()

	pruned := 0
	for i, n := range removed {
		rep.Stages[i].Pruned = n
		pruned += n
	}
	rep.Installed = installed
	rep.Duplicates = dups
	rep.BackEdgePairs = len(g.BackEdgePairs())
	rep.Warnings = bd.warnings
	rep.Duration = time.Since(start)

	logger.Info("graph built",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duplicates", dups,
		"pruned", pruned,
		"warnings", len(bd.warnings),
		"duration", rep.Duration,
	)
	return &Result{Graph: g, Stages: stages, Report: rep}, nil
}

// BuildFacts indexes app and builds it.
func (b *Builder) BuildFacts(ctx context.Context, app *facts.App) (*Result, error) {
	ix, err := facts.NewIndex(app)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, ix)
}

func (b *build) warn(msg string, args ...any) {
	b.logger.Warn(msg, args...)
	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", args[i], args[i+1])
	}
	b.warnings = append(b.warnings, sb.String())
}

func (b *build) node(w *wtg.Window) *wtg.Node { return b.g.Node(w) }

// owner is the first activity recorded as owning w.
func (b *build) owner(w *wtg.Window) *wtg.Window {
	if os := b.owners[w]; len(os) > 0 {
		return os[0]
	}
	return nil
}

// activityOf is w itself for an activity and its owner for dialogs and menus.
func (b *build) activityOf(w *wtg.Window) *wtg.Window {
	switch {
	case w == nil, w.IsLauncher():
		return nil
	case w.IsActivity():
		return w
	}
	return b.owner(w)
}

func (b *build) addOwner(w, owner *wtg.Window) bool {
	for _, o := range b.owners[w] {
		if o == owner {
			return false
		}
	}
	b.owners[w] = append(b.owners[w], owner)
	return true
}

func (b *build) owns(owner, w *wtg.Window) bool {
	for _, o := range b.owners[w] {
		if o == owner {
			return true
		}
	}
	return false
}
