package pipeline

import (
	"fmt"

	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

// Stage identifies one of the six construction stages.
type Stage int

const (
	ExplicitForward Stage = iota
	LifecycleForward
	CloseWindow
	CallbackSequence
	BackEdge
	LifecycleClose
)

var stageNames = [...]string{
	ExplicitForward:  "explicit_forward",
	LifecycleForward: "lifecycle_forward",
	CloseWindow:      "close_window",
	CallbackSequence: "callback_sequence",
	BackEdge:         "back_edge",
	LifecycleClose:   "lifecycle_close",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Provenance is the output of one stage: for every producing edge of the
// previous stage (keyed by signature) the edges it gave rise to. Values are
// deduplicated by signature within a key; key order is insertion order.
type Provenance struct {
	stage Stage
	keys  []wtg.Signature
	m     map[wtg.Signature][]*wtg.Edge
}

// NewProvenance returns an empty multimap for stage s.
func NewProvenance(s Stage) *Provenance {
	return &Provenance{stage: s, m: make(map[wtg.Signature][]*wtg.Edge)}
}

func (p *Provenance) Stage() Stage { return p.stage }

// Put records that producer gave rise to produced. It reports whether the
// produced edge was new for that producer.
func (p *Provenance) Put(producer, produced *wtg.Edge) bool {
	k := producer.Signature()
	vals, ok := p.m[k]
	if !ok {
		p.keys = append(p.keys, k)
	}
	for _, v := range vals {
		if v.Signature() == produced.Signature() {
			return false
		}
	}
	p.m[k] = append(vals, produced)
	return true
}

// Keys returns the producer signatures in insertion order.
func (p *Provenance) Keys() []wtg.Signature {
	return append([]wtg.Signature(nil), p.keys...)
}

// Produced returns the edges produced from key k.
func (p *Provenance) Produced(k wtg.Signature) []*wtg.Edge { return p.m[k] }

// Has reports whether k is a key.
func (p *Provenance) Has(k wtg.Signature) bool {
	_, ok := p.m[k]
	return ok
}

// Edges returns the stage output: every produced edge, deduplicated by
// signature, first occurrence wins.
func (p *Provenance) Edges() []*wtg.Edge {
	seen := make(map[wtg.Signature]bool)
	var out []*wtg.Edge
	for _, k := range p.keys {
		for _, e := range p.m[k] {
			if !seen[e.Signature()] {
				seen[e.Signature()] = true
				out = append(out, e)
			}
		}
	}
	return out
}

// Len is the number of keys.
func (p *Provenance) Len() int { return len(p.keys) }

// Size is the number of distinct produced edges.
func (p *Provenance) Size() int { return len(p.Edges()) }

// retain drops every value for which alive returns false and every key left
// without values. It returns the number of keys removed.
func (p *Provenance) retain(alive func(*wtg.Edge) bool) int {
	kept := p.keys[:0]
	removed := 0
	for _, k := range p.keys {
		var vals []*wtg.Edge
		for _, e := range p.m[k] {
			if alive(e) {
				vals = append(vals, e)
			}
		}
		if len(vals) == 0 {
			delete(p.m, k)
			removed++
			continue
		}
		p.m[k] = vals
		kept = append(kept, k)
	}
	p.keys = kept
	return removed
}

// Install adds every edge produced by the last stage to g. An edge counts as
// installed only when AddEdge kept that very pointer; the others were
// deduplicated against an equal edge already present.
func Install(g *wtg.Graph, last *Provenance) (installed, duplicates int, err error) {
	for _, k := range last.keys {
		for _, e := range last.m[k] {
			got, err := g.AddEdge(e)
			if err != nil {
				return installed, duplicates, fmt.Errorf("install %s: %w", e, err)
			}
			if got == e {
				installed++
			} else {
				duplicates++
			}
		}
	}
	return installed, duplicates, nil
}

// Prune runs the backward liveness sweep over stages, which must be in
// pipeline order and already installed into g. In the last stage an edge is
// alive when g holds that exact edge; in every earlier stage an edge is alive
// when it is a surviving producer key of the next stage. Dead edges and keys
// left empty are removed. The result holds the removed key count per stage.
func Prune(g *wtg.Graph, stages []*Provenance) []int {
	removed := make([]int, len(stages))
	if len(stages) == 0 {
		return removed
	}
	alive := g.Installed
	for i := len(stages) - 1; i >= 0; i-- {
		removed[i] = stages[i].retain(alive)
		next := stages[i]
		alive = func(e *wtg.Edge) bool { return next.Has(e.Signature()) }
	}
	return removed
}
