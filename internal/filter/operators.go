package filter

import (
	"math"
	"strings"
)

// Operator represents a comparison operator.
type Operator string

const (
	OpEq       Operator = "=="
	OpNeq      Operator = "!="
	OpGt       Operator = ">"
	OpGte      Operator = ">="
	OpLt       Operator = "<"
	OpLte      Operator = "<="
	OpContains Operator = "contains"
	OpMatches  Operator = "matches"
)

// compare applies c's operator. Operand kinds were checked at parse time.
func (c *ComparisonExpr) compare(left, right any) bool {
	switch c.Op {
	case OpEq:
		return equal(left, right)
	case OpNeq:
		return !equal(left, right)
	case OpGt:
		return left.(float64) > right.(float64)
	case OpGte:
		return left.(float64) >= right.(float64)
	case OpLt:
		return left.(float64) < right.(float64)
	case OpLte:
		return left.(float64) <= right.(float64)
	case OpContains:
		return strings.Contains(left.(string), right.(string))
	case OpMatches:
		return c.re.MatchString(left.(string))
	}
	return false
}

func equal(left, right any) bool {
	if lf, ok := left.(float64); ok {
		rf, ok := right.(float64)
		return ok && math.Abs(lf-rf) < 1e-9
	}
	return left == right
}
