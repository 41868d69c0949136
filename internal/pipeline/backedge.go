package pipeline

import (
	"sort"

	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

// backEdge resolves where back presses and close edges land. Windows pushed
// in the middle of an edge get fake interim edges so that the successor walk
// can see them; implicit back self-edges fan out to every successor; close
// edges are retargeted to the successors of the last window they pop.
func (b *build) backEdge(in *Provenance) (*Provenance, error) {
	out := NewProvenance(BackEdge)
	edges := in.Edges()
	index := append([]*wtg.Edge(nil), edges...)
	for _, e := range edges {
		interim := e.InterimTargets()
		windows := make([]*wtg.Window, 0, len(interim))
		for w := range interim {
			windows = append(windows, w)
		}
		sort.Slice(windows, func(i, j int) bool { return interim[windows[i]] < interim[windows[j]] })
		for _, w := range windows {
			fake, err := wtg.NewEdge(e.Source(), b.node(w), e.Handlers(), wtg.FakeInterimEdge, e.StackOps()[:interim[w]+1], nil)
			if err != nil {
				return nil, err
			}
			out.Put(e, fake)
			index = append(index, fake)
		}
	}

	succ := newSuccessors(index, b.ix.Launcher(), b.opts.SuccessorDepth)
	for _, e := range edges {
		var err error
		switch {
		case e.Tag() == wtg.ImplicitBack:
			err = b.implicitBack(out, succ, e)
		case isProvisionalClose(e):
			err = b.retargetClose(out, succ, e)
		default:
			out.Put(e, e)
		}
		if err != nil {
			return nil, err
		}
	}
	b.recordPairs(out.Edges())
	return out, nil
}

func (b *build) implicitBack(out *Provenance, succ *successors, e *wtg.Edge) error {
	w := e.Source().Window()
	if w.IsDialog() && !b.ix.Cancelable(w) {
		return nil
	}
	ops := []wtg.StackOp{wtg.PopOp(w)}
	for _, s := range succ.of(w) {
		r, err := wtg.NewEdge(e.Source(), b.node(s), e.Handlers(), wtg.ImplicitBack, ops, b.chain(w, ops, s))
		if err != nil {
			return err
		}
		out.Put(e, r)
	}
	return nil
}

func (b *build) retargetClose(out *Provenance, succ *successors, e *wtg.Edge) error {
	pops := e.PopWindows()
	last := pops[len(pops)-1]
	targets := succ.of(last)
	if len(targets) == 0 {
		b.warn("close edge has no successor", "edge", e.String(), "popped", last.Name)
		return nil
	}
	src := e.Source().Window()
	for _, s := range targets {
		r, err := wtg.NewEdge(e.Source(), b.node(s), e.Handlers(), e.Tag(), e.StackOps(), b.chain(src, e.StackOps(), s))
		if err != nil {
			return err
		}
		out.Put(e, r)
	}
	return nil
}

// isProvisionalClose reports a close edge still pointing at its source.
func isProvisionalClose(e *wtg.Edge) bool {
	switch e.Tag() {
	case wtg.FinishActivity, wtg.DismissDialog, wtg.CloseMenu:
		return e.Source() == e.Target() && len(e.PopWindows()) > 0
	}
	return false
}

// recordPairs remembers every forward edge F and back edge B with
// B.source == F.target and B.target == F.source, for registration once both
// are installed.
func (b *build) recordPairs(edges []*wtg.Edge) {
	type ends struct{ from, to *wtg.Node }
	backs := make(map[ends][]*wtg.Edge)
	for _, e := range edges {
		if e.Tag() == wtg.ImplicitBack {
			k := ends{e.Source(), e.Target()}
			backs[k] = append(backs[k], e)
		}
	}
	for _, f := range edges {
		if !f.IsForward() {
			continue
		}
		for _, back := range backs[ends{f.Target(), f.Source()}] {
			b.pairs = append(b.pairs, pair{forward: f, back: back})
		}
	}
}
