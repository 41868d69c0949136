// Package filter implements a small boolean expression language over edge
// attributes, used to restrict which edges path exploration may take:
//
//	tag == "start_activity" AND target.kind != "dialog"
//	callback contains "onClick" OR NOT (ops > 1)
//	source matches "^Main"
package filter

import (
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

// Predicate is a compiled expression.
type Predicate struct {
	src  string
	expr Expr
}

// Compile parses expr. An empty expression matches every edge.
func Compile(expr string) (*Predicate, error) {
	p := &Predicate{src: strings.TrimSpace(expr)}
	if p.src == "" {
		return p, nil
	}
	e, err := Parse(p.src)
	if err != nil {
		return nil, fmt.Errorf("filter %q: %w", p.src, err)
	}
	p.expr = e
	return p, nil
}

// MustCompile is Compile for expressions known to be valid.
func MustCompile(expr string) *Predicate {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Predicate) String() string { return p.src }

// Match reports whether e satisfies the predicate.
func (p *Predicate) Match(e *wtg.Edge) bool {
	if p == nil || p.expr == nil {
		return true
	}
	return Evaluate(p.expr, e)
}

// Evaluate walks the AST against e.
func Evaluate(expr Expr, e *wtg.Edge) bool {
	switch x := expr.(type) {
	case *BinaryExpr:
		if x.Op == "AND" {
			return Evaluate(x.Left, e) && Evaluate(x.Right, e)
		}
		return Evaluate(x.Left, e) || Evaluate(x.Right, e)
	case *NotExpr:
		return !Evaluate(x.Expr, e)
	case *ComparisonExpr:
		return x.compare(x.Field.get(e), resolve(x.Right, e))
	}
	return false
}

func resolve(op Operand, e *wtg.Edge) any {
	switch o := op.(type) {
	case *LiteralOperand:
		return o.Value
	case *FieldOperand:
		return o.Field.get(e)
	}
	return nil
}
