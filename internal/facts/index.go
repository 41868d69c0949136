package facts

import (
	"fmt"

	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

// Index is the resolved view of one validated document. It mints exactly one
// *wtg.Window per declared window plus the launcher, so window identity is
// stable for every graph built from it.
type Index struct {
	app      *App
	launcher *wtg.Window
	main     *wtg.Window
	byName   map[string]*wtg.Window
	order    []*wtg.Window
	facts    map[*wtg.Window]*Window
	handlers map[string]*Handler
}

// Target is a resolved window opening.
type Target struct {
	Window      *wtg.Window
	Tag         wtg.RootTag
	Conditional bool
}

// NewIndex validates app and resolves its windows.
func NewIndex(app *App) (*Index, error) {
	if app.Launcher == "" {
		applyDefaults(app)
	}
	if err := Validate(app); err != nil {
		return nil, err
	}
	ix := &Index{
		app:      app,
		byName:   make(map[string]*wtg.Window, len(app.Windows)+1),
		facts:    make(map[*wtg.Window]*Window, len(app.Windows)),
		handlers: make(map[string]*Handler, len(app.Handlers)),
	}
	ix.launcher = wtg.NewWindow(app.Launcher, wtg.KindLauncher)
	ix.byName[app.Launcher] = ix.launcher
	ix.order = append(ix.order, ix.launcher)
	for i := range app.Windows {
		f := &app.Windows[i]
		kind, err := wtg.ParseWindowKind(f.Kind)
		if err != nil {
			return nil, fmt.Errorf("window %s: %w", f.Name, err)
		}
		w := wtg.NewWindow(f.Name, kind)
		ix.byName[f.Name] = w
		ix.facts[w] = f
		ix.order = append(ix.order, w)
	}
	ix.main = ix.byName[app.MainActivity]
	for i := range app.Handlers {
		h := &app.Handlers[i]
		ix.handlers[h.Callback] = h
	}
	return ix, nil
}

func (ix *Index) App() *App                 { return ix.app }
func (ix *Index) Name() string              { return ix.app.App }
func (ix *Index) Launcher() *wtg.Window     { return ix.launcher }
func (ix *Index) MainActivity() *wtg.Window { return ix.main }

// Windows returns the launcher followed by the declared windows in document
// order.
func (ix *Index) Windows() []*wtg.Window {
	return append([]*wtg.Window(nil), ix.order...)
}

// Window looks a window up by name.
func (ix *Index) Window(name string) (*wtg.Window, bool) {
	w, ok := ix.byName[name]
	return w, ok
}

// Facts returns the declaration of w; nil for the launcher.
func (ix *Index) Facts(w *wtg.Window) *Window { return ix.facts[w] }

// Handler returns the effects declared for a callback, or nil.
func (ix *Index) Handler(callback string) *Handler { return ix.handlers[callback] }

// Lifecycle returns the callback bound to phase p of w, or "".
func (ix *Index) Lifecycle(w *wtg.Window, p Phase) string {
	f := ix.facts[w]
	if f == nil {
		return ""
	}
	return f.Lifecycle[string(p)]
}

// Cancelable reports whether the back key closes dialog w.
func (ix *Index) Cancelable(w *wtg.Window) bool {
	f := ix.facts[w]
	return f == nil || f.IsCancelable()
}

// OptionsMenuOwner returns the activity an options menu belongs to.
func (ix *Index) OptionsMenuOwner(menu *wtg.Window) *wtg.Window {
	f := ix.facts[menu]
	if f == nil || f.Owner == "" {
		return nil
	}
	return ix.byName[f.Owner]
}

// Opens resolves the windows a callback opens.
func (ix *Index) Opens(callback string) []Target {
	h := ix.handlers[callback]
	if h == nil {
		return nil
	}
	out := make([]Target, 0, len(h.Opens))
	for _, o := range h.Opens {
		w := ix.byName[o.Window]
		tag, ok := wtg.OpenTagFor(w.Kind)
		if o.Via != "" {
			if t, err := wtg.ParseRootTag(o.Via); err == nil {
				tag, ok = t, true
			}
		}
		if !ok {
			continue
		}
		out = append(out, Target{Window: w, Tag: tag, Conditional: o.Conditional})
	}
	return out
}

// Closes returns the raw close declarations of a callback.
func (ix *Index) Closes(callback string) []Close {
	if h := ix.handlers[callback]; h != nil {
		return h.Closes
	}
	return nil
}
