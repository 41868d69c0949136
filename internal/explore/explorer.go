// Package explore enumerates paths through a frozen window transition graph,
// optionally keeping only those the back-stack simulation accepts.
package explore

import (
	"context"
	"fmt"

	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

// EdgeFilter restricts which edges a search may traverse.
type EdgeFilter interface {
	Match(e *wtg.Edge) bool
}

// Explorer runs path queries against one graph. It holds no per-query state
// and may be shared by concurrent queries.
type Explorer struct {
	g        *wtg.Graph
	filter   EdgeFilter
	maxPaths int
}

// Option configures an Explorer.
type Option func(*Explorer)

// WithEdgeFilter skips edges the filter rejects, at every position.
func WithEdgeFilter(f EdgeFilter) Option {
	return func(x *Explorer) { x.filter = f }
}

// WithMaxPaths stops a search once n paths were collected. Zero means no limit.
func WithMaxPaths(n int) Option {
	return func(x *Explorer) { x.maxPaths = n }
}

func New(g *wtg.Graph, opts ...Option) *Explorer {
	x := &Explorer{g: g}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Graph returns the graph the explorer reads.
func (x *Explorer) Graph() *wtg.Graph { return x.g }

// usable rejects launcher self-loops anywhere in a path, plus filtered edges.
func (x *Explorer) usable(e *wtg.Edge) bool {
	if e.IsLauncherSelfLoop() {
		return false
	}
	return x.filter == nil || x.filter.Match(e)
}

type frame struct {
	path  Path
	stack *wtg.WindowStack // nil when feasibility is not checked
}

// ExplorePaths returns every path of exactly k edges starting at start.
// With feasible set, each extension must keep the simulated back-stack
// consistent. Unless allowLoop is set, an edge may appear only once per path;
// nodes may repeat. The result is a set: its order carries no meaning.
func (x *Explorer) ExplorePaths(ctx context.Context, start *wtg.Node, k int, feasible, allowLoop bool) ([]Path, error) {
	if start == nil {
		return nil, fmt.Errorf("explore: %w", wtg.ErrUnknownWindow)
	}
	if k <= 0 {
		return nil, nil
	}

	var work []frame
	for _, e := range start.OutEdges() {
		if !x.usable(e) {
			continue
		}
		f := frame{path: Path{e}}
		if feasible {
			f.stack = wtg.NewWindowStack(f.path)
			if !f.stack.Feasible() {
				continue
			}
		}
		work = append(work, f)
	}

	var results []Path
	for len(work) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f := work[len(work)-1]
		work = work[:len(work)-1]

		if len(f.path) == k {
			results = append(results, f.path)
			if x.maxPaths > 0 && len(results) >= x.maxPaths {
				break
			}
			continue
		}

		var next []*wtg.Edge
		if feasible {
			next = f.stack.ExpandFeasibleEdges()
		} else {
			next = f.path.Target().OutEdges()
		}
		for _, e := range next {
			if !x.usable(e) || (!allowLoop && f.path.Contains(e)) {
				continue
			}
			child := frame{path: f.path.extend(e)}
			if feasible {
				child.stack = f.stack.Copy()
				child.stack.AddEdge(e)
			}
			work = append(work, child)
		}
	}
	return results, nil
}

// ShortestFeasiblePaths returns every path of minimum length from src to dst.
// The search is breadth-first; once a path reaches dst at length L, partial
// paths longer than L are dropped and the queue is drained. Edges are not
// reused within a path.
func (x *Explorer) ShortestFeasiblePaths(ctx context.Context, src, dst *wtg.Node, feasible bool) ([]Path, error) {
	if src == nil || dst == nil {
		return nil, fmt.Errorf("explore: %w", wtg.ErrUnknownWindow)
	}

	var queue []frame
	for _, e := range src.OutEdges() {
		if !x.usable(e) {
			continue
		}
		f := frame{path: Path{e}}
		if feasible {
			f.stack = wtg.NewWindowStack(f.path)
			if !f.stack.Feasible() {
				continue
			}
		}
		queue = append(queue, f)
	}

	best := -1
	var results []Path
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f := queue[0]
		queue = queue[1:]

		if best >= 0 && len(f.path) > best {
			continue
		}
		if f.path.Target() == dst {
			best = len(f.path)
			results = append(results, f.path)
			if x.maxPaths > 0 && len(results) >= x.maxPaths {
				break
			}
			continue
		}
		if best >= 0 && len(f.path) >= best {
			continue
		}

		var next []*wtg.Edge
		if feasible {
			next = f.stack.ExpandFeasibleEdges()
		} else {
			next = f.path.Target().OutEdges()
		}
		for _, e := range next {
			if !x.usable(e) || f.path.Contains(e) {
				continue
			}
			child := frame{path: f.path.extend(e)}
			if feasible {
				child.stack = f.stack.Copy()
				child.stack.AddEdge(e)
			}
			queue = append(queue, child)
		}
	}
	return results, nil
}

// GenerateWindowStack simulates an arbitrary edge sequence.
func GenerateWindowStack(p Path) *wtg.WindowStack {
	return wtg.NewWindowStack(p)
}

// PushPopOperations concatenates the stack operations along p.
func PushPopOperations(p Path) []wtg.StackOp {
	var ops []wtg.StackOp
	for _, e := range p {
		ops = append(ops, e.StackOps()...)
	}
	return ops
}

// CallbackSequence concatenates the lifecycle callbacks along p, each edge's
// triggering handlers first.
func CallbackSequence(p Path) []*wtg.Handler {
	var seq []*wtg.Handler
	for _, e := range p {
		for _, h := range e.Handlers() {
			if h.HasCallback() {
				seq = append(seq, h)
			}
		}
		seq = append(seq, e.Callbacks()...)
	}
	return seq
}
