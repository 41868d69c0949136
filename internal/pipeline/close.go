package pipeline

import (
	"github.com/gyaneshwarpardhi/wtgraph/internal/facts"
	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

// closeWindow prepends the pops declared by handler callbacks and gives
// hardware edges their stack ops. A self-edge that closes something becomes
// a close edge whose target is provisionally its source; the back edge stage
// retargets it.
func (b *build) closeWindow(in *Provenance) (*Provenance, error) {
	out := NewProvenance(CloseWindow)
	for _, e := range in.Edges() {
		var err error
		switch e.Tag() {
		case wtg.ImplicitRotate, wtg.ImplicitHome, wtg.ImplicitPower:
			err = b.hardwareOps(out, e)
		case wtg.ImplicitBack, wtg.ImplicitLaunch:
			out.Put(e, e)
		default:
			err = b.closeForks(out, e)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (b *build) hardwareOps(out *Provenance, e *wtg.Edge) error {
	w, t := e.Source().Window(), e.Target().Window()
	emit := func(target *wtg.Window, ops ...wtg.StackOp) error {
		r, err := wtg.NewEdge(e.Source(), b.node(target), e.Handlers(), e.Tag(), ops, nil)
		if err != nil {
			return err
		}
		out.Put(e, r)
		return nil
	}
	pop, push := wtg.PopOp, wtg.PushOp

	if e.Tag() != wtg.ImplicitRotate {
		if w.IsMenu() {
			return emit(t, pop(w))
		}
		out.Put(e, e)
		return nil
	}
	switch {
	case w.IsActivity():
		return emit(w, pop(w), push(w))
	case t != w:
		// cancelable dialog or context menu: closes, and the owner restarts
		return emit(t, pop(w), pop(t), push(t))
	case len(b.owners[w]) == 0:
		return emit(w, pop(w), push(w))
	}
	for _, o := range b.owners[w] {
		if err := emit(w, pop(w), pop(o), push(o), push(w)); err != nil {
			return err
		}
	}
	return nil
}

// closeForks emits one edge per combination of "source popped or not" and
// "which owner is popped, if any". Unconditional closes leave only the
// popping choice.
func (b *build) closeForks(out *Provenance, e *wtg.Edge) error {
	src := e.Source().Window()
	selfMust, selfMay := src.IsMenu(), false
	var owners []*wtg.Window
	ownerMust := false
	addOwner := func(o *wtg.Window, cond bool) {
		if !cond {
			ownerMust = true
		}
		if !onPath(owners, o) {
			owners = append(owners, o)
		}
	}
	for _, h := range e.Handlers() {
		if !h.HasCallback() {
			continue
		}
		for _, c := range b.ix.Closes(h.Callback()) {
			switch c.Window {
			case facts.CloseSelf, src.Name:
				if c.Conditional {
					selfMay = true
				} else {
					selfMust = true
				}
			case facts.CloseOwner:
				if src.IsActivity() {
					b.warn("activity callback closes its owner", "callback", h.Callback(), "window", src.Name)
					continue
				}
				for _, o := range b.owners[src] {
					addOwner(o, c.Conditional)
				}
			default:
				w, _ := b.ix.Window(c.Window)
				addOwner(w, c.Conditional)
			}
		}
	}

	selfOpts := []bool{false}
	switch {
	case selfMust:
		selfOpts = []bool{true}
	case selfMay:
		selfOpts = []bool{false, true}
	}
	ownerOpts := []*wtg.Window{nil}
	if ownerMust && len(owners) > 0 {
		ownerOpts = nil
	}
	ownerOpts = append(ownerOpts, owners...)

	for _, popSelf := range selfOpts {
		for _, owner := range ownerOpts {
			if !popSelf && owner == nil {
				out.Put(e, e)
				continue
			}
			var ops []wtg.StackOp
			if popSelf {
				ops = append(ops, wtg.PopOp(src))
			}
			if owner != nil {
				ops = append(ops, wtg.PopOp(owner))
			}
			ops = append(ops, e.StackOps()...)
			tag, target := e.Tag(), e.Target()
			if tag == wtg.CyclicEdge {
				closing := src
				if owner != nil {
					closing = owner
				}
				tag, _ = wtg.CloseTagFor(closing.Kind)
				target = e.Source()
			}
			r, err := wtg.NewEdge(e.Source(), target, e.Handlers(), tag, ops, e.Callbacks())
			if err != nil {
				return err
			}
			out.Put(e, r)
		}
	}
	return nil
}
