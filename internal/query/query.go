// Package query is the request and response model of graph queries.
package query

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Kind selects what a query computes.
type Kind string

const (
	KindExplore  Kind = "explore"  // all paths of a given length from a window
	KindShortest Kind = "shortest" // all shortest paths between two windows
	KindStack    Kind = "stack"    // replay an explicit edge path on the window stack
)

// Query is the canonical input model for all queries.
type Query struct {
	ID         string    `json:"id"`
	App        string    `json:"app" validate:"required"`
	Kind       Kind      `json:"kind" validate:"required,oneof=explore shortest stack"`
	From       string    `json:"from,omitempty"` // defaults to the launcher
	To         string    `json:"to,omitempty" validate:"required_if=Kind shortest"`
	Depth      int       `json:"depth,omitempty" validate:"required_if=Kind explore,min=0,max=64"`
	Feasible   bool      `json:"feasible"`
	AllowLoop  bool      `json:"allow_loop"`
	Filter     string    `json:"filter,omitempty"`
	Path       []int     `json:"path,omitempty" validate:"required_if=Kind stack"`
	ReceivedAt time.Time `json:"-"`
}

var validate = validator.New()

// ErrInvalid marks a query that fails validation.
var ErrInvalid = errors.New("invalid query")

// Validate checks the query's fields.
func (q *Query) Validate() error {
	err := validate.Struct(q)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_if":
			msgs = append(msgs, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		default:
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// Result is the outcome of a single query.
type Result struct {
	QueryID    string     `json:"query_id"`
	App        string     `json:"app"`
	Kind       Kind       `json:"kind"`
	DurationMs int64      `json:"duration_ms"`
	Count      int        `json:"count"`
	NaiveCount int        `json:"naive_count,omitempty"` // explore only: paths ignoring the stack
	Truncated  bool       `json:"truncated,omitempty"`
	Paths      []PathView `json:"paths,omitempty"`
	Stats      *PathStats `json:"stats,omitempty"`
	Stack      *StackView `json:"stack,omitempty"`
}
