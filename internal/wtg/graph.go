package wtg

import (
	"fmt"
	"log/slog"
	"sync"
)

// Graph is the window transition graph of one application.
//
// It is built by a single writer and then frozen; after Freeze every method
// is safe for concurrent readers.
type Graph struct {
	logger *slog.Logger

	nodes    map[*Window]*Node
	order    []*Node
	launcher *Node

	edges    map[Signature]*Edge
	edgeList []*Edge
	lastEdge int

	hmu      sync.Mutex
	handlers map[handlerKey]*Handler

	backEdges map[*Edge][]*Edge

	owners     map[*Node][]*Node // nil until computed
	components map[*Node]*Component
	frozen     bool
}

// NewGraph allocates an empty graph. A nil logger means slog.Default().
func NewGraph(logger *slog.Logger) *Graph {
	if logger == nil {
		logger = slog.Default()
	}
	return &Graph{
		logger:    logger,
		nodes:     make(map[*Window]*Node),
		edges:     make(map[Signature]*Edge),
		handlers:  make(map[handlerKey]*Handler),
		backEdges: make(map[*Edge][]*Edge),
	}
}

// AddNode returns the node for w, creating it on first use.
func (g *Graph) AddNode(w *Window) *Node {
	if n, ok := g.nodes[w]; ok {
		return n
	}
	if g.frozen {
		g.logger.Warn("node added to frozen graph ignored", "window", w.Name)
		return nil
	}
	n := &Node{id: len(g.order) + 1, window: w}
	g.nodes[w] = n
	g.order = append(g.order, n)
	return n
}

// AddLauncherNode is AddNode that also marks the node as the launcher.
// A second, different launcher is reported and ignored; the existing launcher
// is returned.
func (g *Graph) AddLauncherNode(w *Window) *Node {
	n := g.AddNode(w)
	if g.launcher == nil {
		g.launcher = n
	} else if g.launcher != n {
		g.logger.Warn("second launcher ignored", "launcher", g.launcher.window.Name, "rejected", w.Name)
	}
	return g.launcher
}

// Launcher returns the launcher node or nil.
func (g *Graph) Launcher() *Node { return g.launcher }

// Node returns the node of w, or nil if w was never added.
func (g *Graph) Node(w *Window) *Node { return g.nodes[w] }

// Lookup is Node with an error for missing windows.
func (g *Graph) Lookup(w *Window) (*Node, error) {
	n, ok := g.nodes[w]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWindow, w)
	}
	return n, nil
}

// NodeByName finds a node by window name.
func (g *Graph) NodeByName(name string) *Node {
	for _, n := range g.order {
		if n.window.Name == name {
			return n
		}
	}
	return nil
}

// Nodes returns all nodes in creation order.
func (g *Graph) Nodes() []*Node {
	return append([]*Node(nil), g.order...)
}

// Edges returns all installed edges in installation order.
func (g *Graph) Edges() []*Edge {
	return append([]*Edge(nil), g.edgeList...)
}

// NodeCount returns the number of registered nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of installed edges.
func (g *Graph) EdgeCount() int { return len(g.edgeList) }

// EdgeBySignature returns the installed edge with signature sig.
func (g *Graph) EdgeBySignature(sig Signature) (*Edge, bool) {
	e, ok := g.edges[sig]
	return e, ok
}

// EdgeByID returns the installed edge with the given id.
func (g *Graph) EdgeByID(id int) (*Edge, bool) {
	for _, e := range g.edgeList {
		if e.id == id {
			return e, true
		}
	}
	return nil, false
}

// Installed reports whether e itself (not merely an equal edge) is in the graph.
func (g *Graph) Installed(e *Edge) bool {
	return e != nil && g.edges[e.sig] == e
}

// AddEdge installs e unless an edge with the same signature exists, in which
// case the existing edge is returned and e is discarded.
func (g *Graph) AddEdge(e *Edge) (*Edge, error) {
	if g.frozen {
		return nil, ErrFrozen
	}
	if g.nodes[e.source.window] != e.source || g.nodes[e.target.window] != e.target {
		return nil, fmt.Errorf("%w: edge %s references nodes of another graph", ErrUnknownWindow, e)
	}
	if existing, ok := g.edges[e.sig]; ok {
		return existing, nil
	}
	g.lastEdge++
	e.id = g.lastEdge
	g.edges[e.sig] = e
	g.edgeList = append(g.edgeList, e)
	e.source.out = append(e.source.out, e)
	e.target.in = append(e.target.in, e)
	return e, nil
}

// RemoveEdge uninstalls e, detaching it from both adjacency lists and from
// every forward/back pairing it takes part in. Removing an edge that is not
// installed is a no-op.
func (g *Graph) RemoveEdge(e *Edge) error {
	if g.frozen {
		return ErrFrozen
	}
	if !g.Installed(e) {
		return nil
	}
	delete(g.edges, e.sig)
	g.edgeList = removeEdge(g.edgeList, e)
	e.source.out = removeEdge(e.source.out, e)
	e.target.in = removeEdge(e.target.in, e)

	delete(g.backEdges, e)
	for fwd, backs := range g.backEdges {
		backs = removeEdge(backs, e)
		if len(backs) == 0 {
			delete(g.backEdges, fwd)
		} else {
			g.backEdges[fwd] = backs
		}
	}
	return nil
}

// Handler returns the interned handler for the tuple, creating it on first
// use. Safe for concurrent use.
func (g *Graph) Handler(w *Window, widget string, event EventType, callback string) *Handler {
	k := handlerKey{window: w, widget: widget, event: event, callback: callback}
	g.hmu.Lock()
	defer g.hmu.Unlock()
	if h, ok := g.handlers[k]; ok {
		return h
	}
	h := &Handler{id: len(g.handlers) + 1, window: w, widget: widget, event: event, callback: callback}
	g.handlers[k] = h
	return h
}

// HandlerCount returns the size of the interning table.
func (g *Graph) HandlerCount() int {
	g.hmu.Lock()
	defer g.hmu.Unlock()
	return len(g.handlers)
}

// AddBackEdge pairs a forward edge with one of its back edges. Both edges
// must be installed; otherwise nothing is recorded and false is returned.
func (g *Graph) AddBackEdge(fwd, back *Edge) bool {
	if g.frozen || !g.Installed(fwd) || !g.Installed(back) {
		return false
	}
	for _, b := range g.backEdges[fwd] {
		if b == back {
			return true
		}
	}
	g.backEdges[fwd] = append(g.backEdges[fwd], back)
	return true
}

// BackEdges returns the back edges paired with fwd.
func (g *Graph) BackEdges(fwd *Edge) []*Edge {
	return append([]*Edge(nil), g.backEdges[fwd]...)
}

// BackEdgePair is one forward/back pairing.
type BackEdgePair struct {
	Forward *Edge
	Back    *Edge
}

// BackEdgePairs lists every pairing, ordered by forward then back edge id.
func (g *Graph) BackEdgePairs() []BackEdgePair {
	var out []BackEdgePair
	for _, fwd := range g.edgeList {
		for _, back := range g.backEdges[fwd] {
			out = append(out, BackEdgePair{Forward: fwd, Back: back})
		}
	}
	return out
}

// OwnerActivities returns the activities that own n. The relation is computed
// once, on first call or at Freeze: a breadth-first walk from every activity
// over all out-edges that never enters another activity; each non-activity
// node reached is owned by the activity the walk started from.
func (g *Graph) OwnerActivities(n *Node) []*Node {
	if g.owners == nil {
		g.owners = g.computeOwnership()
	}
	return g.owners[n]
}

func (g *Graph) computeOwnership() map[*Node][]*Node {
	owners := make(map[*Node][]*Node)
	for _, act := range g.order {
		if !act.window.IsActivity() {
			continue
		}
		visited := map[*Node]bool{act: true}
		queue := []*Node{act}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			for _, e := range n.out {
				t := e.target
				if t.window.IsActivity() || visited[t] {
					continue
				}
				visited[t] = true
				owners[t] = append(owners[t], act)
				queue = append(queue, t)
			}
		}
	}
	return owners
}

// Components returns the component of every activity node.
func (g *Graph) Components() map[*Node]*Component {
	if g.components != nil {
		return g.components
	}
	comps := make(map[*Node]*Component)
	for _, n := range g.order {
		if !n.window.IsActivity() {
			continue
		}
		c, err := BuildComponent(n)
		if err != nil {
			continue
		}
		comps[n] = c
	}
	if g.frozen {
		g.components = comps
	}
	return comps
}

// Freeze makes the graph read-only and precomputes the derived views so
// concurrent readers never trigger lazy initialisation.
func (g *Graph) Freeze() {
	if g.frozen {
		return
	}
	if g.owners == nil {
		g.owners = g.computeOwnership()
	}
	g.frozen = true
	g.Components()
}

// Frozen reports whether Freeze has been called.
func (g *Graph) Frozen() bool { return g.frozen }

// Stats summarises the graph.
type Stats struct {
	Nodes         int            `json:"nodes"`
	Edges         int            `json:"edges"`
	Handlers      int            `json:"handlers"`
	BackEdgePairs int            `json:"back_edge_pairs"`
	Components    int            `json:"components"`
	EdgesByTag    map[string]int `json:"edges_by_tag"`
}

func (g *Graph) Stats() Stats {
	s := Stats{
		Nodes:      len(g.order),
		Edges:      len(g.edgeList),
		Handlers:   g.HandlerCount(),
		Components: len(g.Components()),
		EdgesByTag: make(map[string]int),
	}
	for _, e := range g.edgeList {
		s.EdgesByTag[e.tag.String()]++
	}
	for _, backs := range g.backEdges {
		s.BackEdgePairs += len(backs)
	}
	return s
}
