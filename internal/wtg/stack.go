package wtg

// WindowStack replays the stack operations of a path to model the runtime
// back-stack. An empty stack after simulation means the path is infeasible;
// that is an expected outcome, not an error.
//
// A WindowStack is owned by one query and is not safe for concurrent use.
type WindowStack struct {
	path  []*Edge
	stack []*Window
}

// NewWindowStack copies path and simulates it.
func NewWindowStack(path []*Edge) *WindowStack {
	ws := &WindowStack{path: append([]*Edge(nil), path...)}
	ws.simulate()
	return ws
}

// Simulate returns the stack (bottom first) obtained by replaying path, or
// nil when the path is infeasible.
func Simulate(path []*Edge) []*Window {
	return NewWindowStack(path).Windows()
}

func (ws *WindowStack) simulate() {
	ws.stack = ws.stack[:0]
	if len(ws.path) == 0 {
		return
	}
	ws.stack = append(ws.stack, ws.path[0].source.window)
	for _, e := range ws.path {
		var ok bool
		ws.stack, ok = replay(ws.stack, e)
		if !ok {
			ws.stack = ws.stack[:0]
			return
		}
	}
}

// replay applies e's ops to stack in place and checks that e's target ends up
// on top.
func replay(stack []*Window, e *Edge) ([]*Window, bool) {
	for _, op := range e.ops {
		if op.IsPush() {
			stack = append(stack, op.Window)
			continue
		}
		found := false
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top == op.Window {
				found = true
				break
			}
		}
		if !found {
			return stack[:0], false
		}
	}
	if len(stack) == 0 || stack[len(stack)-1] != e.target.window {
		return stack[:0], false
	}
	return stack, true
}

// Feasible reports whether the simulated path is consistent.
func (ws *WindowStack) Feasible() bool { return len(ws.stack) > 0 }

// Windows returns a copy of the stack, bottom first.
func (ws *WindowStack) Windows() []*Window {
	if len(ws.stack) == 0 {
		return nil
	}
	return append([]*Window(nil), ws.stack...)
}

// Top returns the window on top, or nil when infeasible.
func (ws *WindowStack) Top() *Window {
	if len(ws.stack) == 0 {
		return nil
	}
	return ws.stack[len(ws.stack)-1]
}

// Path returns a copy of the simulated path.
func (ws *WindowStack) Path() []*Edge { return append([]*Edge(nil), ws.path...) }

func (ws *WindowStack) Len() int { return len(ws.path) }

// IsFeasibleEdge reports whether appending e keeps the path feasible. e must
// start where the path ends; an empty path accepts any edge whose own replay
// from its source is consistent.
func (ws *WindowStack) IsFeasibleEdge(e *Edge) bool {
	if len(ws.path) == 0 {
		_, ok := replay([]*Window{e.source.window}, e)
		return ok
	}
	if !ws.Feasible() || ws.path[len(ws.path)-1].target != e.source {
		return false
	}
	scratch := append(make([]*Window, 0, len(ws.stack)+len(e.ops)), ws.stack...)
	_, ok := replay(scratch, e)
	return ok
}

// ExpandFeasibleEdges returns the out-edges of the current target node that
// keep the simulated stack consistent. It returns nil for an empty or
// infeasible state.
func (ws *WindowStack) ExpandFeasibleEdges() []*Edge {
	if len(ws.path) == 0 || !ws.Feasible() {
		return nil
	}
	var out []*Edge
	for _, e := range ws.path[len(ws.path)-1].target.out {
		if ws.IsFeasibleEdge(e) {
			out = append(out, e)
		}
	}
	return out
}

// AddEdge appends e when it is feasible and reports whether it did.
func (ws *WindowStack) AddEdge(e *Edge) bool {
	if !ws.IsFeasibleEdge(e) {
		return false
	}
	if len(ws.path) == 0 {
		ws.stack = append(ws.stack[:0], e.source.window)
	}
	ws.path = append(ws.path, e)
	ws.stack, _ = replay(ws.stack, e)
	return true
}

// RemoveLastEdge drops the last edge and re-simulates from scratch.
func (ws *WindowStack) RemoveLastEdge() {
	if len(ws.path) == 0 {
		return
	}
	ws.path = ws.path[:len(ws.path)-1]
	ws.simulate()
}

// Copy returns an independent stack rebuilt by full replay.
func (ws *WindowStack) Copy() *WindowStack {
	return NewWindowStack(ws.path)
}
