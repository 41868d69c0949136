// Package engine keeps the built graph of every application and answers
// path queries against them on a bounded worker pool.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gyaneshwarpardhi/wtgraph/internal/config"
	"github.com/gyaneshwarpardhi/wtgraph/internal/explore"
	"github.com/gyaneshwarpardhi/wtgraph/internal/facts"
	"github.com/gyaneshwarpardhi/wtgraph/internal/filter"
	"github.com/gyaneshwarpardhi/wtgraph/internal/metrics"
	"github.com/gyaneshwarpardhi/wtgraph/internal/pipeline"
	"github.com/gyaneshwarpardhi/wtgraph/internal/query"
	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

var (
	ErrUnknownApp = errors.New("unknown app")
	ErrQueueFull    = errors.New("query queue full")
	ErrTimeout      = errors.New("query timeout")
)

// Snapshot is one frozen graph together with its build report.
type Snapshot struct {
	App     string
	Graph   *wtg.Graph
	Report  pipeline.Report
	BuiltAt time.Time
}

// Engine serves queries against the latest snapshot of each app.
type Engine struct {
	logger  *slog.Logger
	conf    config.EngineConf
	builder *pipeline.Builder

	mu     sync.RWMutex
	graphs map[string]*atomic.Pointer[Snapshot]

	pool *workerPool[*query.Query, *query.Result]
}

// New creates an Engine using conf and starts the query pool.
func New(ctx context.Context, logger *slog.Logger, conf config.EngineConf, opts pipeline.Options) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		logger: logger,
		conf:   conf,
		builder: &pipeline.Builder{Logger: logger, Options: opts},
		graphs: make(map[string]*atomic.Pointer[Snapshot]),
	}
	e.pool = newWorkerPool[*query.Query, *query.Result](
		ctx,
		conf.QueryWorkers,
		conf.QueueDepth,
		func(ctx context.Context, q *query.Query) (*query.Result, error) {
			return e.execute(ctx, q)
		},
	)
	return e
}

// Build constructs the graph of app and publishes it. On failure the
// previous snapshot, if any, stays in place.
func (e *Engine) Build(ctx context.Context, app *facts.App) (*Snapshot, error) {
	start := time.Now()
	res, err := e.builder.BuildFacts(ctx, app)
	metrics.BuildDuration.WithLabelValues(app.App).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BuildsTotal.WithLabelValues(app.App, "error").Inc()
		e.logger.Error("graph build failed", "app", app.App, "err", err)
		return nil, err
	}
	metrics.BuildsTotal.WithLabelValues(app.App, "success").Inc()
	metrics.InstalledEdges.WithLabelValues(app.App).Set(float64(res.Report.Installed))
	metrics.BuildWarnings.WithLabelValues(app.App).Set(float64(len(res.Report.Warnings)))
	for _, s := range res.Report.Stages {
		metrics.StageEdges.WithLabelValues(app.App, s.Stage).Set(float64(s.Edges))
		metrics.PrunedEdges.WithLabelValues(app.App).Add(float64(s.Pruned))
	}

	snap := &Snapshot{App: app.App, Graph: res.Graph, Report: res.Report, BuiltAt: time.Now()}
	e.Swap(snap)
	return snap, nil
}

// BuildAll builds apps concurrently, at most conf.BuildParallelism at a
// time. The first failure cancels the builds not yet finished.
func (e *Engine) BuildAll(ctx context.Context, apps []*facts.App) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.conf.BuildParallelism, 1))
	for _, app := range apps {
		g.Go(func() error {
			_, err := e.Build(ctx, app)
			return err
		})
	}
	return g.Wait()
}

// Swap atomically replaces the snapshot of s.App (used on hot-reload).
func (e *Engine) Swap(s *Snapshot) {
	e.mu.Lock()
	p, ok := e.graphs[s.App]
	if !ok {
		p = new(atomic.Pointer[Snapshot])
		e.graphs[s.App] = p
	}
	e.mu.Unlock()
	p.Store(s)
}

// Snapshot returns the current snapshot of app.
func (e *Engine) Snapshot(app string) (*Snapshot, bool) {
	e.mu.RLock()
	p, ok := e.graphs[app]
	e.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s := p.Load()
	return s, s != nil
}

// Apps returns the names of the apps with a snapshot, sorted.
func (e *Engine) Apps() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.graphs))
	for name := range e.graphs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Run executes q on the worker pool and waits for the result.
// Returns ErrQueueFull if the queue is full.
func (e *Engine) Run(ctx context.Context, q *query.Query) (*query.Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if _, ok := e.Snapshot(q.App); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownApp, q.App)
	}

	ctx, cancel := context.WithTimeout(ctx, e.conf.QueryTimeout)
	defer cancel()

	resultC, ok := e.pool.Submit(ctx, q)
	if !ok {
		metrics.QueriesDropped.Inc()
		return nil, fmt.Errorf("%w (capacity %d)", ErrQueueFull, e.conf.QueueDepth)
	}
	metrics.QueueUtilization.Set(e.QueueUtilization())

	select {
	case res := <-resultC:
		return res.value, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			metrics.QueriesTotal.WithLabelValues(string(q.Kind), "timeout").Inc()
			return nil, fmt.Errorf("%w after %v", ErrTimeout, e.conf.QueryTimeout)
		}
		return nil, ctx.Err()
	}
}

// Execute runs q on the calling goroutine.
func (e *Engine) Execute(ctx context.Context, q *query.Query) (*query.Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return e.execute(ctx, q)
}

// QueueUtilization returns queue used / capacity (0–1).
func (e *Engine) QueueUtilization() float64 {
	if e.pool.QueueCap() == 0 {
		return 0
	}
	return float64(e.pool.QueueLen()) / float64(e.pool.QueueCap())
}

func (e *Engine) execute(ctx context.Context, q *query.Query) (*query.Result, error) {
	start := time.Now()
	res, err := e.answer(ctx, q)
	metrics.QueryDuration.WithLabelValues(string(q.Kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(string(q.Kind), "error").Inc()
		return nil, err
	}
	res.DurationMs = time.Since(start).Milliseconds()
	metrics.QueriesTotal.WithLabelValues(string(q.Kind), "success").Inc()
	metrics.PathsReturned.Observe(float64(res.Count))
	return res, nil
}

func (e *Engine) answer(ctx context.Context, q *query.Query) (*query.Result, error) {
	snap, ok := e.Snapshot(q.App)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownApp, q.App)
	}
	g := snap.Graph
	res := &query.Result{QueryID: q.ID, App: q.App, Kind: q.Kind}

	if q.Kind == query.KindStack {
		p := make(explore.Path, 0, len(q.Path))
		for _, id := range q.Path {
			edge, ok := g.EdgeByID(id)
			if !ok {
				return nil, fmt.Errorf("%w: no edge %d", query.ErrInvalid, id)
			}
			p = append(p, edge)
		}
		res.Stack = query.NewStackView(p)
		res.Count = 1
		return res, nil
	}

	pred, err := filter.Compile(q.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", query.ErrInvalid, err)
	}
	x := explore.New(g, explore.WithEdgeFilter(pred), explore.WithMaxPaths(e.conf.MaxPaths))
	from, err := node(g, q.From)
	if err != nil {
		return nil, err
	}

	var paths []explore.Path
	switch q.Kind {
	case query.KindExplore:
		if q.Depth > e.conf.MaxDepth {
			return nil, fmt.Errorf("%w: depth %d exceeds %d", query.ErrInvalid, q.Depth, e.conf.MaxDepth)
		}
		paths, err = x.ExplorePaths(ctx, from, q.Depth, q.Feasible, q.AllowLoop)
		if err == nil && q.Feasible {
			var naive []explore.Path
			naive, err = x.ExplorePaths(ctx, from, q.Depth, false, q.AllowLoop)
			res.NaiveCount = len(naive)
		}
	case query.KindShortest:
		to, terr := node(g, q.To)
		if terr != nil {
			return nil, terr
		}
		paths, err = x.ShortestFeasiblePaths(ctx, from, to, q.Feasible)
	}
	if err != nil {
		return nil, err
	}

	res.Count = len(paths)
	res.Truncated = e.conf.MaxPaths > 0 && len(paths) >= e.conf.MaxPaths
	res.Paths = make([]query.PathView, len(paths))
	for i, p := range paths {
		res.Paths[i] = query.NewPathView(p)
	}
	res.Stats = query.Summarize(paths)
	return res, nil
}

// node resolves a window name; empty means the launcher.
func node(g *wtg.Graph, name string) (*wtg.Node, error) {
	if name == "" {
		if l := g.Launcher(); l != nil {
			return l, nil
		}
		return nil, fmt.Errorf("%w: graph has no launcher", query.ErrInvalid)
	}
	n := g.NodeByName(name)
	if n == nil {
		return nil, fmt.Errorf("%w: unknown window %q", query.ErrInvalid, name)
	}
	return n, nil
}

// Shutdown drains the query pool gracefully.
func (e *Engine) Shutdown() {
	e.pool.Drain()
	metrics.QueueUtilization.Set(0)
}
