package explore

import (
	"strings"

	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

// Path is an ordered sequence of edges.
type Path []*wtg.Edge

// Target returns the node the path ends at, or nil for an empty path.
func (p Path) Target() *wtg.Node {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1].Target()
}

// Contains reports whether e (by identity) is already in the path.
func (p Path) Contains(e *wtg.Edge) bool {
	for _, x := range p {
		if x == e {
			return true
		}
	}
	return false
}

// Signatures lists the edge signatures in order.
func (p Path) Signatures() []wtg.Signature {
	out := make([]wtg.Signature, len(p))
	for i, e := range p {
		out[i] = e.Signature()
	}
	return out
}

func (p Path) String() string {
	if len(p) == 0 {
		return "[]"
	}
	var b strings.Builder
	b.WriteString(p[0].Source().Window().Name)
	for _, e := range p {
		b.WriteString(" -")
		b.WriteString(e.Tag().String())
		b.WriteString("-> ")
		b.WriteString(e.Target().Window().Name)
	}
	return b.String()
}

func (p Path) extend(e *wtg.Edge) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, e)
}
