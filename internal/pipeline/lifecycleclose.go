package pipeline

import (
	"github.com/gyaneshwarpardhi/wtgraph/internal/facts"
	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

// lifecycleClose drops fake interim edges and handles activities that
// finish themselves from on_create: the edge that starts such an activity is
// replaced by edges that land where the stack ends up once it is gone.
func (b *build) lifecycleClose(in *Provenance) (*Provenance, error) {
	edges := in.Edges()
	succ := newSuccessors(edges, b.ix.Launcher(), b.opts.SuccessorDepth)
	out := NewProvenance(LifecycleClose)
	for _, e := range edges {
		if e.Tag() == wtg.FakeInterimEdge {
			continue
		}
		if e.Tag() == wtg.StartActivity || e.Tag() == wtg.ImplicitLaunch {
			t := e.Target().Window()
			if closes, conditional := b.finishesOnCreate(t); closes {
				if err := b.finishOnCreate(out, succ, e, t); err != nil {
					return nil, err
				}
				if conditional {
					out.Put(e, e)
				}
				continue
			}
		}
		if e.IsBackward() && e.Tag() != wtg.ImplicitBack {
			b.checkOwnership(e)
		}
		out.Put(e, e)
	}
	return out, nil
}

// finishesOnCreate reports whether activity t's on_create closes t, and
// whether every such close is conditional.
func (b *build) finishesOnCreate(t *wtg.Window) (closes, conditional bool) {
	if !t.IsActivity() {
		return false, false
	}
	cb := b.ix.Lifecycle(t, facts.OnCreate)
	if cb == "" {
		return false, false
	}
	conditional = true
	for _, c := range b.ix.Closes(cb) {
		if c.Window == facts.CloseSelf || c.Window == t.Name {
			closes = true
			conditional = conditional && c.Conditional
		}
	}
	return closes, closes && conditional
}

func (b *build) finishOnCreate(out *Provenance, succ *successors, e *wtg.Edge, t *wtg.Window) error {
	ops := append(append([]wtg.StackOp(nil), e.StackOps()...), wtg.PopOp(t))
	prefix := callbacksThrough(e.Callbacks(), b.ix.Lifecycle(t, facts.OnCreate))

	var closed *wtg.Window
	if o := e.PopOwner(); o.IsActivity() {
		closed = o
	} else if s := e.PopSelf(); s.IsActivity() {
		closed = s
	}
	if closed != nil {
		for _, s := range succ.of(closed) {
			cbs := append([]*wtg.Handler(nil), prefix...)
			if r := b.activityOf(s); r != nil {
				cbs = b.lifecycle(cbs, r, facts.OnRestart, facts.OnStart, facts.OnResume)
			}
			cbs = b.lifecycle(cbs, t, facts.OnDestroy)
			cbs = b.lifecycle(cbs, closed, facts.OnStop, facts.OnDestroy)
			r, err := wtg.NewEdge(e.Source(), b.node(s), e.Handlers(), wtg.FinishActivity, ops, cbs)
			if err != nil {
				return err
			}
			out.Put(e, r)
		}
		return nil
	}

	probe, err := wtg.NewEdge(e.Source(), e.Source(), e.Handlers(), wtg.FinishActivity, ops, nil)
	if err != nil {
		return err
	}
	final := probe.FinalTarget()
	if final == nil {
		return nil
	}
	cbs := append([]*wtg.Handler(nil), prefix...)
	cbs = b.lifecycle(cbs, b.activityOf(e.Source().Window()), facts.OnResume)
	cbs = b.lifecycle(cbs, t, facts.OnDestroy)
	r, err := wtg.NewEdge(e.Source(), b.node(final), e.Handlers(), wtg.FinishActivity, ops, cbs)
	if err != nil {
		return err
	}
	out.Put(e, r)
	return nil
}

// callbacksThrough returns cbs up to and including the first handler bound
// to callback, or all of them when it is absent.
func callbacksThrough(cbs []*wtg.Handler, callback string) []*wtg.Handler {
	for i, h := range cbs {
		if h.Callback() == callback {
			return cbs[:i+1]
		}
	}
	return cbs
}

// checkOwnership warns when a close edge pops a window that does not own
// the one popped just before it.
func (b *build) checkOwnership(e *wtg.Edge) {
	below := e.Source().Window()
	for _, op := range e.StackOps() {
		if op.IsPush() {
			return
		}
		if op.Window != below && !b.owns(op.Window, below) {
			b.warn("close edge pops a window that does not own the one above it",
				"edge", e.String(), "popped", op.Window.Name, "above", below.Name)
		}
		below = op.Window
	}
}
