package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

// Kind is the value type of a field or literal.
type Kind string

const (
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindBool   Kind = "bool"
)

func kindOf(v any) Kind {
	switch v.(type) {
	case float64:
		return KindNumber
	case bool:
		return KindBool
	}
	return KindString
}

// Field is an edge attribute usable in an expression.
type Field struct {
	Name string
	Kind Kind
	get  func(*wtg.Edge) any
}

var fields = map[string]Field{}

func field(kind Kind, get func(*wtg.Edge) any, names ...string) {
	for _, n := range names {
		fields[n] = Field{Name: n, Kind: kind, get: get}
	}
}

func init() {
	field(KindNumber, func(e *wtg.Edge) any { return float64(e.ID()) }, "id")
	field(KindString, func(e *wtg.Edge) any { return e.Tag().String() }, "tag")
	field(KindString, func(e *wtg.Edge) any { return e.Source().Window().Name }, "source", "source.name")
	field(KindString, func(e *wtg.Edge) any { return string(e.Source().Window().Kind) }, "source.kind")
	field(KindString, func(e *wtg.Edge) any { return e.Target().Window().Name }, "target", "target.name")
	field(KindString, func(e *wtg.Edge) any { return string(e.Target().Window().Kind) }, "target.kind")
	field(KindString, func(e *wtg.Edge) any { return e.Widget() }, "widget", "handler.widget")
	field(KindString, func(e *wtg.Edge) any { return string(e.Event()) }, "event", "handler.event")
	field(KindString, func(e *wtg.Edge) any {
		var cbs []string
		for _, h := range e.Handlers() {
			if h.HasCallback() {
				cbs = append(cbs, h.Callback())
			}
		}
		return strings.Join(cbs, ",")
	}, "callback", "handler.callback")
	field(KindNumber, func(e *wtg.Edge) any { return float64(len(e.Handlers())) }, "handlers")
	field(KindNumber, func(e *wtg.Edge) any { return float64(len(e.Callbacks())) }, "callbacks")
	field(KindNumber, func(e *wtg.Edge) any { return float64(len(e.StackOps())) }, "ops")
	field(KindNumber, func(e *wtg.Edge) any { return float64(len(e.PushWindows())) }, "pushes")
	field(KindNumber, func(e *wtg.Edge) any { return float64(len(e.PopWindows())) }, "pops")
	field(KindBool, func(e *wtg.Edge) any { return e.IsForward() }, "forward")
	field(KindBool, func(e *wtg.Edge) any { return e.IsBackward() }, "backward")
	field(KindBool, func(e *wtg.Edge) any { return e.IsHardware() }, "hardware")
}

func lookupField(name string) (Field, error) {
	f, ok := fields[strings.ToLower(name)]
	if !ok {
		return Field{}, fmt.Errorf("unknown field %q (known: %s)", name, strings.Join(FieldNames(), ", "))
	}
	return f, nil
}

// FieldNames lists every field name, sorted.
func FieldNames() []string {
	names := make([]string, 0, len(fields))
	for n := range fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
