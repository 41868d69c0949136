package wtg

import "fmt"

// Node wraps one window with its ordered adjacency lists.
type Node struct {
	id     int
	window *Window
	out    []*Edge
	in     []*Edge
}

func (n *Node) ID() int         { return n.id }
func (n *Node) Window() *Window { return n.window }

// OutEdges and InEdges return the adjacency lists in insertion order.
// Callers must not modify them.
func (n *Node) OutEdges() []*Edge { return n.out }
func (n *Node) InEdges() []*Edge  { return n.in }

func (n *Node) String() string {
	return fmt.Sprintf("n%d:%s", n.id, n.window)
}

func removeEdge(list []*Edge, e *Edge) []*Edge {
	for i, x := range list {
		if x == e {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
