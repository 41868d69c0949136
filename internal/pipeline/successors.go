package pipeline

import "github.com/gyaneshwarpardhi/wtgraph/internal/wtg"

// successors resolves which windows can be on top of the stack after a
// window is popped. It walks backward over forward and fake interim in-edges,
// replaying their stack ops in reverse, until it reaches a push that is not
// matched by a pending pop. Results are cached per window.
type successors struct {
	depth    int
	launcher *wtg.Window
	in       map[*wtg.Window][]*wtg.Edge
	cache    map[*wtg.Window][]*wtg.Window
}

func newSuccessors(edges []*wtg.Edge, launcher *wtg.Window, depth int) *successors {
	s := &successors{
		depth:    depth,
		launcher: launcher,
		in:       make(map[*wtg.Window][]*wtg.Edge),
		cache:    make(map[*wtg.Window][]*wtg.Window),
	}
	for _, e := range edges {
		if e.IsForward() || e.Tag() == wtg.FakeInterimEdge {
			t := e.Target().Window()
			s.in[t] = append(s.in[t], e)
		}
	}
	return s
}

// walk is one pending state of the backward search.
type walk struct {
	at      *wtg.Window
	pending []*wtg.Window // popped windows still waiting for their push
	depth   int
	path    []*wtg.Window
}

func (s *successors) of(w *wtg.Window) []*wtg.Window {
	if out, ok := s.cache[w]; ok {
		return out
	}
	var out []*wtg.Window
	seen := map[*wtg.Window]bool{w: true}
	add := func(x *wtg.Window) {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}

	stack := []walk{{at: w, pending: []*wtg.Window{w}, depth: s.depth}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.depth <= 0 {
			continue
		}
		if cur.at == s.launcher {
			if len(cur.pending) == 0 {
				add(cur.at)
			}
			continue
		}
		if onPath(cur.path, cur.at) {
			continue
		}
		path := append(append([]*wtg.Window(nil), cur.path...), cur.at)
		in := s.in[cur.at]
		if len(in) == 0 {
			add(cur.at)
			continue
		}
		// pushed in reverse so edges are explored in declaration order
		for i := len(in) - 1; i >= 0; i-- {
			next, pending, ok := s.replay(in[i], cur.pending, add)
			if ok {
				stack = append(stack, walk{at: next, pending: pending, depth: cur.depth - 1, path: path})
			}
		}
	}
	s.cache[w] = out
	return out
}

// replay scans e's ops from the end against pending. It returns where the
// walk continues and whether it continues at all.
func (s *successors) replay(e *wtg.Edge, pending []*wtg.Window, add func(*wtg.Window)) (*wtg.Window, []*wtg.Window, bool) {
	pending = append([]*wtg.Window(nil), pending...)
	next := e.Source().Window()
	ops := e.StackOps()
	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		switch {
		case len(pending) == 0 && op.IsPush():
			add(op.Window)
			return nil, nil, false
		case !op.IsPush():
			return op.Window, append(pending, op.Window), true
		case pending[len(pending)-1] == op.Window:
			pending = pending[:len(pending)-1]
		default:
			return nil, nil, false
		}
	}
	return next, pending, true
}

func onPath(path []*wtg.Window, w *wtg.Window) bool {
	for _, p := range path {
		if p == w {
			return true
		}
	}
	return false
}
