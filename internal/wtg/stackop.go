package wtg

import "fmt"

// OpKind is push or pop.
type OpKind uint8

const (
	Push OpKind = iota
	Pop
)

func (k OpKind) String() string {
	if k == Push {
		return "push"
	}
	return "pop"
}

// StackOp is a simulated push or pop of a window on the back-stack.
// It is comparable; equal kinds and the same window make equal ops.
type StackOp struct {
	Kind   OpKind
	Window *Window
}

func PushOp(w *Window) StackOp { return StackOp{Kind: Push, Window: w} }
func PopOp(w *Window) StackOp  { return StackOp{Kind: Pop, Window: w} }

func (op StackOp) IsPush() bool { return op.Kind == Push }

func (op StackOp) String() string {
	return fmt.Sprintf("%s %s", op.Kind, op.Window.Name)
}
