package pipeline

import (
	"github.com/gyaneshwarpardhi/wtgraph/internal/facts"
	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

// callbackSequence replaces the coarse callbacks of every edge with the
// lifecycle chain its stack ops imply. Close edges do not know their
// successor yet, so their chain stops before any window resumes.
func (b *build) callbackSequence(in *Provenance) (*Provenance, error) {
	out := NewProvenance(CallbackSequence)
	for _, e := range in.Edges() {
		var cbs []*wtg.Handler
		switch {
		case e.IsHardware():
			cbs = b.hardwareChain(e)
		case len(e.StackOps()) > 0:
			cbs = b.chain(e.Source().Window(), e.StackOps(), nil)
		}
		r, err := wtg.NewEdge(e.Source(), e.Target(), e.Handlers(), e.Tag(), e.StackOps(), cbs)
		if err != nil {
			return nil, err
		}
		out.Put(e, r)
	}
	return out, nil
}

// chain derives the lifecycle callbacks of a transition from src that
// applies ops, where succ is the window that ends up on top after a pure
// close (nil when unknown).
func (b *build) chain(src *wtg.Window, ops []wtg.StackOp, succ *wtg.Window) []*wtg.Handler {
	var popped, pushed []*wtg.Window
	for _, op := range ops {
		switch {
		case op.IsPush():
			pushed = append(pushed, op.Window)
		case len(pushed) == 0:
			popped = append(popped, op.Window)
		}
	}
	// a dialog or menu is removed with the owner popped beneath it
	if len(popped) > 0 && popped[0] != src && !src.IsActivity() && !src.IsLauncher() {
		popped = append([]*wtg.Window{src}, popped...)
	}

	var seq []*wtg.Handler
	var poppedActs []*wtg.Window
	for _, p := range popped {
		switch {
		case p.IsActivity():
			poppedActs = append(poppedActs, p)
		case p.IsDialog():
			seq = b.lifecycle(seq, p, facts.OnStop)
		case p.IsMenu():
			seq = b.lifecycle(seq, p, facts.OnClose)
		}
	}

	if len(pushed) == 0 {
		if len(poppedActs) == 0 {
			return seq
		}
		seq = b.lifecycle(seq, poppedActs[0], facts.OnPause)
		if r := b.activityOf(succ); r != nil && !onPath(poppedActs, r) {
			seq = b.lifecycle(seq, r, facts.OnRestart, facts.OnStart, facts.OnResume)
		}
		for _, p := range poppedActs {
			seq = b.lifecycle(seq, p, facts.OnStop, facts.OnDestroy)
		}
		return seq
	}

	leaving := b.activityOf(src)
	if len(poppedActs) > 0 {
		leaving = poppedActs[0]
	}
	var pushedActs []*wtg.Window
	for _, w := range pushed {
		if w.IsActivity() {
			pushedActs = append(pushedActs, w)
		}
	}
	if len(pushedActs) > 0 {
		seq = b.lifecycle(seq, leaving, facts.OnPause)
	}
	var prev *wtg.Window
	for _, w := range pushed {
		if !w.IsActivity() {
			seq = b.lifecycle(seq, w, facts.OnCreate)
			continue
		}
		if prev != nil {
			seq = b.lifecycle(seq, prev, facts.OnPause)
		}
		seq = b.lifecycle(seq, w, facts.OnCreate, facts.OnStart, facts.OnResume)
		prev = w
	}
	if len(pushedActs) > 0 {
		seq = b.lifecycle(seq, leaving, facts.OnStop)
		for _, w := range pushedActs[:len(pushedActs)-1] {
			seq = b.lifecycle(seq, w, facts.OnStop)
		}
	}
	for _, p := range poppedActs {
		if p != leaving || len(pushedActs) == 0 {
			seq = b.lifecycle(seq, p, facts.OnStop)
		}
		seq = b.lifecycle(seq, p, facts.OnDestroy)
	}
	return seq
}

// hardwareChain is the fixed callback chain of a rotate, home or power edge.
func (b *build) hardwareChain(e *wtg.Edge) []*wtg.Handler {
	w, t := e.Source().Window(), e.Target().Window()
	rotate := e.Tag() == wtg.ImplicitRotate
	recreate := []facts.Phase{facts.OnStop, facts.OnDestroy, facts.OnCreate, facts.OnStart, facts.OnResume}
	restart := []facts.Phase{facts.OnStop, facts.OnRestart, facts.OnStart, facts.OnResume}
	rest := restart
	if rotate {
		rest = recreate
	}

	var seq []*wtg.Handler
	switch {
	case w.IsActivity():
		seq = b.lifecycle(seq, w, facts.OnPause)
		seq = b.lifecycle(seq, w, rest...)
	case w.IsMenu():
		o := t
		if o == w {
			o = e.PopOwner()
		}
		if o == nil {
			o = b.owner(w)
		}
		seq = b.lifecycle(seq, o, facts.OnPause)
		seq = b.lifecycle(seq, w, facts.OnClose)
		seq = b.lifecycle(seq, o, rest...)
		if rotate && w.Kind == wtg.KindOptionsMenu {
			seq = b.lifecycle(seq, w, facts.OnCreate)
		}
	case w.IsDialog():
		o := t
		if o == w {
			o = e.PopOwner()
		}
		if o == nil {
			o = b.owner(w)
		}
		seq = b.lifecycle(seq, o, facts.OnPause)
		if rotate && t != w {
			seq = b.lifecycle(seq, w, facts.OnStop)
		}
		seq = b.lifecycle(seq, o, rest...)
	}
	return seq
}
