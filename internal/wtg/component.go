package wtg

import "fmt"

// Component is the part of the graph an activity reaches through explicit
// forward edges without entering another activity, together with the edges
// that leave it.
type Component struct {
	Activity *Node
	nodes    map[*Node]bool
	order    []*Node

	ForwardBoundary  []*Edge
	BackwardBoundary []*Edge
	// HardwareBoundary holds home, power and rotate edges.
	HardwareBoundary []*Edge
}

// BuildComponent computes the component rooted at activity node n.
func BuildComponent(n *Node) (*Component, error) {
	if n == nil || !n.window.IsActivity() {
		return nil, fmt.Errorf("%w: %v", ErrNotActivity, n)
	}
	c := &Component{Activity: n, nodes: make(map[*Node]bool)}

	worklist := []*Node{n}
	for len(worklist) > 0 {
		cur := worklist[0]
		worklist = worklist[1:]
		if c.nodes[cur] {
			continue
		}
		c.nodes[cur] = true
		c.order = append(c.order, cur)
		for _, e := range cur.out {
			if !e.tag.IsExplicitForward() || e.target.window.IsActivity() {
				continue
			}
			worklist = append(worklist, e.target)
		}
	}

	for _, member := range c.order {
		for _, e := range member.out {
			if c.nodes[e.target] {
				continue
			}
			switch {
			case e.tag.IsExplicitForward():
				c.ForwardBoundary = append(c.ForwardBoundary, e)
			case e.tag.IsBackward():
				c.BackwardBoundary = append(c.BackwardBoundary, e)
			case e.tag.IsHardware():
				c.HardwareBoundary = append(c.HardwareBoundary, e)
			}
		}
	}
	return c, nil
}

// Nodes returns the component members in discovery order.
func (c *Component) Nodes() []*Node { return append([]*Node(nil), c.order...) }

func (c *Component) Contains(n *Node) bool { return c.nodes[n] }

// IsBoundaryEdge reports whether e is in one of the three boundary sets.
func (c *Component) IsBoundaryEdge(e *Edge) bool {
	for _, set := range [][]*Edge{c.ForwardBoundary, c.BackwardBoundary, c.HardwareBoundary} {
		for _, b := range set {
			if b == e {
				return true
			}
		}
	}
	return false
}
