// Package dot writes a window transition graph in Graphviz DOT form. The
// graph is copied into a gonum multigraph so parallel transitions between
// the same two windows each get their own line.
package dot

import (
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	gdot "gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/multi"

	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

// Exporter renders DOT.
type Exporter struct {
	// Callbacks adds each edge's callback sequence as a tooltip.
	Callbacks bool
}

func (Exporter) Format() string      { return "dot" }
func (Exporter) ContentType() string { return "text/vnd.graphviz" }

func (x Exporter) Export(w io.Writer, app string, g *wtg.Graph) error {
	b, err := Marshal(app, g, x.Callbacks)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Marshal encodes g as a DOT digraph named app.
func Marshal(app string, g *wtg.Graph, callbacks bool) ([]byte, error) {
	mg := newGraph(g, callbacks)
	b, err := gdot.MarshalMulti(mg, app, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("dot: %w", err)
	}
	return append(b, '\n'), nil
}

// dotGraph adds graph-wide attributes to the multigraph.
type dotGraph struct {
	*multi.DirectedGraph
}

func (dotGraph) DOTAttributers() (g, n, e encoding.Attributer) {
	return attrs{{Key: "rankdir", Value: "LR"}}, attrs{{Key: "fontname", Value: "Helvetica"}}, attrs{{Key: "fontsize", Value: "10"}}
}

type attrs []encoding.Attribute

func (a attrs) Attributes() []encoding.Attribute { return a }

func newGraph(g *wtg.Graph, callbacks bool) dotGraph {
	mg := dotGraph{multi.NewDirectedGraph()}
	nodes := make(map[*wtg.Node]*node, g.NodeCount())
	for _, n := range g.Nodes() {
		dn := &node{n: n}
		nodes[n] = dn
		mg.AddNode(dn)
	}
	for _, e := range g.Edges() {
		mg.SetLine(&line{e: e, from: nodes[e.Source()], to: nodes[e.Target()], callbacks: callbacks})
	}
	return mg
}

var shapes = map[wtg.WindowKind]string{
	wtg.KindActivity:    "box",
	wtg.KindDialog:      "ellipse",
	wtg.KindOptionsMenu: "note",
	wtg.KindContextMenu: "note",
	wtg.KindLauncher:    "doublecircle",
}

type node struct {
	n *wtg.Node
}

func (n *node) ID() int64     { return int64(n.n.ID()) }
func (n *node) DOTID() string { return n.n.Window().Name }
func (n *node) Attributes() []encoding.Attribute {
	return []encoding.Attribute{
		{Key: "shape", Value: shapes[n.n.Window().Kind]},
		{Key: "tooltip", Value: string(n.n.Window().Kind)},
	}
}

type line struct {
	e         *wtg.Edge
	from, to  *node
	callbacks bool
}

func (l *line) From() graph.Node { return l.from }
func (l *line) To() graph.Node   { return l.to }
func (l *line) ID() int64        { return int64(l.e.ID()) }

func (l *line) ReversedLine() graph.Line {
	return &line{e: l.e, from: l.to, to: l.from, callbacks: l.callbacks}
}

func (l *line) Attributes() []encoding.Attribute {
	a := []encoding.Attribute{{Key: "label", Value: l.e.Tag().String()}}
	if l.e.IsBackward() {
		a = append(a, encoding.Attribute{Key: "style", Value: "dashed"})
	}
	if l.callbacks {
		var names []string
		for _, h := range l.e.Callbacks() {
			names = append(names, h.Callback())
		}
		a = append(a, encoding.Attribute{Key: "tooltip", Value: strings.Join(names, ", ")})
	}
	return a
}
