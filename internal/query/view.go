package query

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/gyaneshwarpardhi/wtgraph/internal/explore"
	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

// NodeView is the wire form of a graph node.
type NodeView struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
	Out  int    `json:"out"`
	In   int    `json:"in"`
}

// EdgeView is the wire form of an edge.
type EdgeView struct {
	ID        int      `json:"id"`
	Source    string   `json:"source"`
	Target    string   `json:"target"`
	Tag       string   `json:"tag"`
	Widget    string   `json:"widget"`
	Event     string   `json:"event"`
	Handlers  []string `json:"handlers,omitempty"`
	Ops       []string `json:"ops,omitempty"`
	Callbacks []string `json:"callbacks,omitempty"`
}

// PathView is the wire form of a path.
type PathView struct {
	Edges     []int    `json:"edges"`
	Text      string   `json:"text"`
	Feasible  bool     `json:"feasible"`
	Stack     []string `json:"stack,omitempty"`
	Callbacks []string `json:"callbacks,omitempty"`
}

// StackView is the replay of one path on the window stack.
type StackView struct {
	Feasible  bool     `json:"feasible"`
	Windows   []string `json:"windows,omitempty"`
	Top       string   `json:"top,omitempty"`
	Ops       []string `json:"ops"`
	Callbacks []string `json:"callbacks"`
}

// ComponentView is the wire form of an activity component. Boundary edges
// are listed by id.
type ComponentView struct {
	Activity string   `json:"activity"`
	Windows  []string `json:"windows"`
	Forward  []int    `json:"forward_boundary"`
	Backward []int    `json:"backward_boundary"`
	Hardware []int    `json:"hardware_boundary"`
}

// PathStats summarises a path set.
type PathStats struct {
	Paths           int     `json:"paths"`
	DistinctTargets int     `json:"distinct_targets"`
	MeanCallbacks   float64 `json:"mean_callbacks"`
	StdDevCallbacks float64 `json:"stddev_callbacks"`
	MaxCallbacks    int     `json:"max_callbacks"`
}

func NewNodeView(n *wtg.Node) NodeView {
	return NodeView{
		ID:   n.ID(),
		Name: n.Window().Name,
		Kind: string(n.Window().Kind),
		Out:  len(n.OutEdges()),
		In:   len(n.InEdges()),
	}
}

func NewEdgeView(e *wtg.Edge) EdgeView {
	v := EdgeView{
		ID:     e.ID(),
		Source: e.Source().Window().Name,
		Target: e.Target().Window().Name,
		Tag:    e.Tag().String(),
		Widget: e.Widget(),
		Event:  string(e.Event()),
	}
	for _, h := range e.Handlers() {
		if h.HasCallback() {
			v.Handlers = append(v.Handlers, h.Callback())
		}
	}
	for _, op := range e.StackOps() {
		v.Ops = append(v.Ops, op.String())
	}
	v.Callbacks = callbackNames(e.Callbacks())
	return v
}

// Components lists the components of g ordered by activity node id.
func Components(g *wtg.Graph) []ComponentView {
	comps := g.Components()
	out := make([]ComponentView, 0, len(comps))
	for _, c := range comps {
		v := ComponentView{
			Activity: c.Activity.Window().Name,
			Forward:  edgeIDs(c.ForwardBoundary),
			Backward: edgeIDs(c.BackwardBoundary),
			Hardware: edgeIDs(c.HardwareBoundary),
		}
		for _, n := range c.Nodes() {
			v.Windows = append(v.Windows, n.Window().Name)
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return g.NodeByName(out[i].Activity).ID() < g.NodeByName(out[j].Activity).ID()
	})
	return out
}

func edgeIDs(es []*wtg.Edge) []int {
	out := make([]int, len(es))
	for i, e := range es {
		out[i] = e.ID()
	}
	return out
}

// NewPathView renders p, replaying it on a fresh window stack.
func NewPathView(p explore.Path) PathView {
	ws := explore.GenerateWindowStack(p)
	v := PathView{
		Edges:     make([]int, len(p)),
		Text:      p.String(),
		Feasible:  ws.Feasible(),
		Stack:     windowNames(ws.Windows()),
		Callbacks: callbackNames(explore.CallbackSequence(p)),
	}
	for i, e := range p {
		v.Edges[i] = e.ID()
	}
	return v
}

func NewStackView(p explore.Path) *StackView {
	ws := explore.GenerateWindowStack(p)
	v := &StackView{
		Feasible:  ws.Feasible(),
		Windows:   windowNames(ws.Windows()),
		Ops:       []string{},
		Callbacks: callbackNames(explore.CallbackSequence(p)),
	}
	if top := ws.Top(); top != nil {
		v.Top = top.Name
	}
	for _, op := range explore.PushPopOperations(p) {
		v.Ops = append(v.Ops, op.String())
	}
	if v.Callbacks == nil {
		v.Callbacks = []string{}
	}
	return v
}

// Summarize computes statistics over the callback-sequence lengths of paths.
func Summarize(paths []explore.Path) *PathStats {
	s := &PathStats{Paths: len(paths)}
	if len(paths) == 0 {
		return s
	}
	lens := make([]float64, len(paths))
	targets := make(map[*wtg.Node]bool)
	for i, p := range paths {
		n := len(explore.CallbackSequence(p))
		lens[i] = float64(n)
		if n > s.MaxCallbacks {
			s.MaxCallbacks = n
		}
		targets[p.Target()] = true
	}
	s.DistinctTargets = len(targets)
	s.MeanCallbacks = stat.Mean(lens, nil)
	if len(lens) > 1 {
		s.StdDevCallbacks = stat.StdDev(lens, nil)
	}
	return s
}

func callbackNames(hs []*wtg.Handler) []string {
	var out []string
	for _, h := range hs {
		out = append(out, h.Callback())
	}
	return out
}

func windowNames(ws []*wtg.Window) []string {
	var out []string
	for _, w := range ws {
		out = append(out, w.Name)
	}
	return out
}
