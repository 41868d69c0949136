package wtg

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Signature is the deduplication key of an edge: source, target, root tag,
// handler set and stack-op sequence. Callbacks are not part of it.
type Signature string

// Edge is a transition between two windows. It is immutable once built;
// the slices returned by its accessors must not be modified.
type Edge struct {
	id        int
	source    *Node
	target    *Node
	handlers  []*Handler
	tag       RootTag
	ops       []StackOp
	callbacks []*Handler
	sig       Signature
}

// NewEdge validates and builds an edge. The handler set is deduplicated and
// ordered by interning id; ops and callbacks are copied.
func NewEdge(source, target *Node, handlers []*Handler, tag RootTag, ops []StackOp, callbacks []*Handler) (*Edge, error) {
	if source == nil || target == nil {
		return nil, fmt.Errorf("%w: nil source or target", ErrInvalidEdge)
	}
	if tag < StartActivity || tag > FakeInterimEdge {
		return nil, fmt.Errorf("%w: root tag %d", ErrInvalidEdge, int(tag))
	}
	if len(handlers) == 0 {
		return nil, fmt.Errorf("%w: empty handler set for %s -> %s", ErrInvalidEdge, source.window.Name, target.window.Name)
	}
	set := make([]*Handler, 0, len(handlers))
	seen := make(map[*Handler]bool, len(handlers))
	for _, h := range handlers {
		if h == nil {
			return nil, fmt.Errorf("%w: nil handler", ErrInvalidEdge)
		}
		if !h.sameTrigger(handlers[0]) {
			return nil, fmt.Errorf("%w: handlers %s and %s disagree on trigger", ErrInvalidEdge, handlers[0], h)
		}
		if !seen[h] {
			seen[h] = true
			set = append(set, h)
		}
	}
	sort.Slice(set, func(i, j int) bool { return set[i].id < set[j].id })
	for _, op := range ops {
		if op.Window == nil {
			return nil, fmt.Errorf("%w: stack op without window", ErrInvalidEdge)
		}
	}
	for _, cb := range callbacks {
		if cb == nil {
			return nil, fmt.Errorf("%w: nil callback", ErrInvalidEdge)
		}
	}
	e := &Edge{
		source:    source,
		target:    target,
		handlers:  set,
		tag:       tag,
		ops:       append([]StackOp(nil), ops...),
		callbacks: append([]*Handler(nil), callbacks...),
	}
	e.sig = e.signature()
	return e, nil
}

func (e *Edge) signature() Signature {
	var b strings.Builder
	b.WriteString(strconv.Itoa(e.source.id))
	b.WriteByte('>')
	b.WriteString(strconv.Itoa(e.target.id))
	b.WriteByte('|')
	b.WriteString(e.tag.String())
	b.WriteString("|h")
	for _, h := range e.handlers {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(h.id))
	}
	b.WriteString("|o")
	for _, op := range e.ops {
		if op.IsPush() {
			b.WriteString(":+")
		} else {
			b.WriteString(":-")
		}
		b.WriteString(op.Window.Name)
	}
	return Signature(b.String())
}

// ID is assigned when the edge is installed in a graph; 0 before that.
func (e *Edge) ID() int               { return e.id }
func (e *Edge) Source() *Node         { return e.source }
func (e *Edge) Target() *Node         { return e.target }
func (e *Edge) Tag() RootTag          { return e.tag }
func (e *Edge) Handlers() []*Handler  { return e.handlers }
func (e *Edge) StackOps() []StackOp   { return e.ops }
func (e *Edge) Callbacks() []*Handler { return e.callbacks }
func (e *Edge) Signature() Signature  { return e.sig }

func (e *Edge) IsForward() bool  { return e.tag.IsForward() }
func (e *Edge) IsBackward() bool { return e.tag.IsBackward() }
func (e *Edge) IsHardware() bool { return e.tag.IsHardware() }

// Widget and Event describe the trigger shared by all handlers.
func (e *Edge) Widget() string   { return e.handlers[0].widget }
func (e *Edge) Event() EventType { return e.handlers[0].event }

// IsLauncherSelfLoop reports an edge from the launcher back to itself.
func (e *Edge) IsLauncherSelfLoop() bool {
	return e.source == e.target && e.source.window.IsLauncher()
}

// FinalTarget returns the window the edge leaves on top of the stack, found by
// pairing pushes with later pops from the end of the op list. With no ops, or
// when the source itself is popped, it returns nil.
func (e *Edge) FinalTarget() *Window {
	if len(e.ops) == 0 {
		return nil
	}
	popped := make(map[*Window]int)
	for i := len(e.ops) - 1; i >= 0; i-- {
		op := e.ops[i]
		if !op.IsPush() {
			popped[op.Window]++
			continue
		}
		if popped[op.Window] == 0 {
			return op.Window
		}
		popped[op.Window]--
	}
	if popped[e.source.window] > 0 {
		return nil
	}
	return e.source.window
}

// InterimTargets maps windows pushed by the edge that are neither its source
// nor its target (and never popped by it) to the index of their push.
func (e *Edge) InterimTargets() map[*Window]int {
	out := make(map[*Window]int)
	for i, op := range e.ops {
		if op.IsPush() {
			out[op.Window] = i
		}
	}
	for _, op := range e.ops {
		if !op.IsPush() {
			delete(out, op.Window)
		}
	}
	delete(out, e.source.window)
	delete(out, e.target.window)
	return out
}

// PopSelf returns the window of a leading pop, or nil.
func (e *Edge) PopSelf() *Window {
	if len(e.ops) == 0 || e.ops[0].IsPush() {
		return nil
	}
	return e.ops[0].Window
}

// PopOwner returns the window of a pop in second position, or nil.
func (e *Edge) PopOwner() *Window {
	if len(e.ops) < 2 || e.ops[1].IsPush() {
		return nil
	}
	return e.ops[1].Window
}

func (e *Edge) PushWindows() []*Window { return e.windows(Push) }
func (e *Edge) PopWindows() []*Window  { return e.windows(Pop) }

func (e *Edge) windows(kind OpKind) []*Window {
	var out []*Window
	for _, op := range e.ops {
		if op.Kind == kind {
			out = append(out, op.Window)
		}
	}
	return out
}

func (e *Edge) String() string {
	ops := make([]string, len(e.ops))
	for i, op := range e.ops {
		ops[i] = op.String()
	}
	return fmt.Sprintf("%s -> %s [%s] %s/%s {%s}",
		e.source.window.Name, e.target.window.Name, e.tag, e.Widget(), e.Event(), strings.Join(ops, ", "))
}
