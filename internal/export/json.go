package export

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gyaneshwarpardhi/wtgraph/internal/query"
	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

var ErrUnknownFormat = errors.New("no exporter registered for format")

// Document is the JSON form of a whole graph.
type Document struct {
	App       string           `json:"app"`
	Stats     wtg.Stats        `json:"stats"`
	Nodes     []query.NodeView `json:"nodes"`
	Edges     []query.EdgeView `json:"edges"`
	BackEdges [][2]int         `json:"back_edges"` // forward id, back id
}

// NewDocument collects the nodes, edges and back-edge pairs of g.
func NewDocument(app string, g *wtg.Graph) *Document {
	d := &Document{
		App:       app,
		Stats:     g.Stats(),
		Nodes:     make([]query.NodeView, 0, g.NodeCount()),
		Edges:     make([]query.EdgeView, 0, g.EdgeCount()),
		BackEdges: [][2]int{},
	}
	for _, n := range g.Nodes() {
		d.Nodes = append(d.Nodes, query.NewNodeView(n))
	}
	for _, e := range g.Edges() {
		d.Edges = append(d.Edges, query.NewEdgeView(e))
	}
	for _, p := range g.BackEdgePairs() {
		d.BackEdges = append(d.BackEdges, [2]int{p.Forward.ID(), p.Back.ID()})
	}
	return d
}

// JSON writes the graph as an indented Document.
type JSON struct{}

func (JSON) Format() string      { return "json" }
func (JSON) ContentType() string { return "application/json" }

func (JSON) Export(w io.Writer, app string, g *wtg.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(app, g))
}
