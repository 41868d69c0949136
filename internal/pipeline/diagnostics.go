package pipeline

import "github.com/gyaneshwarpardhi/wtgraph/internal/wtg"

// diagnose compares two consecutive stages. An edge of prev that produced
// nothing in next is reported unless the stage is expected to drop it, and
// every forward edge in next must land where its stack ops leave the stack.
func (b *build) diagnose(prev, next *Provenance) {
	for _, e := range prev.Edges() {
		if next.Has(e.Signature()) || expectedDrop(next.Stage(), e) {
			continue
		}
		b.warn("edge dropped", "stage", next.Stage().String(), "edge", e.String())
	}
	for _, k := range next.Keys() {
		for _, e := range next.Produced(k) {
			if !e.IsForward() {
				continue
			}
			if ft := e.FinalTarget(); ft != nil && ft != e.Target().Window() {
				b.warn("forward edge target differs from its final push",
					"stage", next.Stage().String(), "edge", e.String(), "final", ft.Name)
			}
		}
	}
}

func expectedDrop(s Stage, e *wtg.Edge) bool {
	switch s {
	case BackEdge:
		// back on a non-cancelable dialog, or a window nothing opens
		return e.Tag() == wtg.ImplicitBack
	case LifecycleClose:
		return e.Tag() == wtg.FakeInterimEdge
	}
	return false
}
