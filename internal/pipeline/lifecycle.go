package pipeline

import (
	"github.com/gyaneshwarpardhi/wtgraph/internal/facts"
	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

// lifecycleForward gives every forward edge its push and entry callbacks,
// follows windows opened from an activity's on_create, and adds hardware
// event edges.
func (b *build) lifecycleForward(in *Provenance) (*Provenance, error) {
	edges := in.Edges()
	b.computeOwnership(edges)

	out := NewProvenance(LifecycleForward)
	for _, e := range edges {
		if !e.IsForward() {
			out.Put(e, e)
			continue
		}
		t := e.Target().Window()
		keepPlain := true
		if onCreate := b.ix.Lifecycle(t, facts.OnCreate); t.IsActivity() && onCreate != "" {
			for i, o := range b.ix.Opens(onCreate) {
				if i == 0 {
					keepPlain = false
				}
				if o.Conditional {
					keepPlain = true
				}
				ops := []wtg.StackOp{wtg.PushOp(t), wtg.PushOp(o.Window)}
				cbs := append(b.entryCallbacks(t), b.entryCallbacks(o.Window)...)
				r, err := wtg.NewEdge(e.Source(), b.node(o.Window), e.Handlers(), e.Tag(), ops, cbs)
				if err != nil {
					return nil, err
				}
				out.Put(e, r)
			}
		}
		if keepPlain {
			r, err := wtg.NewEdge(e.Source(), e.Target(), e.Handlers(), e.Tag(), []wtg.StackOp{wtg.PushOp(t)}, b.entryCallbacks(t))
			if err != nil {
				return nil, err
			}
			out.Put(e, r)
		}
	}

	if b.opts.HardwareEvents {
		if err := b.hardwareEdges(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// entryCallbacks is the coarse callback sequence of a window being opened.
func (b *build) entryCallbacks(w *wtg.Window) []*wtg.Handler {
	if w.IsActivity() {
		return b.lifecycle(nil, w, facts.OnCreate, facts.OnStart, facts.OnResume)
	}
	return b.lifecycle(nil, w, facts.OnCreate)
}

// lifecycle appends the interned handlers for the given phases of w that
// have a bound callback.
func (b *build) lifecycle(seq []*wtg.Handler, w *wtg.Window, phases ...facts.Phase) []*wtg.Handler {
	if w == nil {
		return seq
	}
	for _, p := range phases {
		if cb := b.ix.Lifecycle(w, p); cb != "" {
			seq = append(seq, b.g.Handler(w, w.Name, wtg.EventLifecycle, cb))
		}
	}
	return seq
}

// computeOwnership records which activities own each dialog and menu. An
// options menu is owned by its declared activity; any other non-activity
// window is owned by the activity that opens it, or by the owners of the
// window that opens it. The relation is grown to a fixpoint.
func (b *build) computeOwnership(edges []*wtg.Edge) {
	for _, w := range b.ix.Windows() {
		if w.Kind == wtg.KindOptionsMenu {
			if o := b.ix.OptionsMenuOwner(w); o != nil {
				b.addOwner(w, o)
			}
		}
		if !w.IsActivity() {
			continue
		}
		if onCreate := b.ix.Lifecycle(w, facts.OnCreate); onCreate != "" {
			for _, o := range b.ix.Opens(onCreate) {
				if !o.Window.IsActivity() {
					b.addOwner(o.Window, w)
				}
			}
		}
	}
	for changed := true; changed; {
		changed = false
		for _, e := range edges {
			if !e.IsForward() {
				continue
			}
			s, t := e.Source().Window(), e.Target().Window()
			if t.IsActivity() || t.IsLauncher() || s.IsLauncher() {
				continue
			}
			if s.IsActivity() {
				changed = b.addOwner(t, s) || changed
				continue
			}
			for _, o := range b.owners[s] {
				changed = b.addOwner(t, o) || changed
			}
		}
	}
}

// hardwareEdges adds rotate, home and power edges for every window. Each is
// its own producer. Menus, and cancelable dialogs on rotation, land on their
// owners; everything else stays on itself.
func (b *build) hardwareEdges(out *Provenance) error {
	for _, w := range b.ix.Windows() {
		if w.IsLauncher() {
			continue
		}
		for _, hw := range []struct {
			tag wtg.RootTag
			ev  wtg.EventType
		}{
			{wtg.ImplicitRotate, wtg.EventRotate},
			{wtg.ImplicitHome, wtg.EventHome},
			{wtg.ImplicitPower, wtg.EventPower},
		} {
			h := []*wtg.Handler{b.g.Handler(w, w.Name, hw.ev, "")}
			for _, t := range b.hardwareTargets(w, hw.tag) {
				e, err := wtg.NewEdge(b.node(w), b.node(t), h, hw.tag, nil, nil)
				if err != nil {
					return err
				}
				out.Put(e, e)
			}
		}
	}
	return nil
}

func (b *build) hardwareTargets(w *wtg.Window, tag wtg.RootTag) []*wtg.Window {
	self := []*wtg.Window{w}
	switch {
	case w.IsActivity():
		return self
	case w.IsDialog():
		if tag == wtg.ImplicitRotate && b.ix.Cancelable(w) {
			return b.owners[w]
		}
		return self
	case w.Kind == wtg.KindOptionsMenu && tag == wtg.ImplicitRotate:
		return self
	}
	return b.owners[w]
}
