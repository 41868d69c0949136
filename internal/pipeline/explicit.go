package pipeline

import (
	"sort"
	"strings"

	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

// explicitForward creates the launch edge, one edge per listener target,
// options and context menu openings, and an implicit back self-edge on every
// window. Every edge is its own producer.
func (b *build) explicitForward() (*Provenance, error) {
	out := NewProvenance(ExplicitForward)
	emit := func(source, target *wtg.Window, h []*wtg.Handler, tag wtg.RootTag) error {
		e, err := wtg.NewEdge(b.node(source), b.node(target), h, tag, nil, nil)
		if err != nil {
			return err
		}
		out.Put(e, e)
		return nil
	}

	launcher := b.ix.Launcher()
	launch := b.g.Handler(launcher, launcher.Name, wtg.EventLaunch, "")
	if err := emit(launcher, b.ix.MainActivity(), []*wtg.Handler{launch}, wtg.ImplicitLaunch); err != nil {
		return nil, err
	}

	for _, w := range b.ix.Windows() {
		f := b.ix.Facts(w)
		if f == nil {
			continue
		}
		for _, wd := range f.Widgets {
			for _, l := range wd.Listeners {
				for _, grp := range b.groupListener(w, wd.ID, wtg.EventType(l.Event), l.Callbacks) {
					if err := emit(w, grp.target, grp.handlers, grp.tag); err != nil {
						return nil, err
					}
				}
			}
		}
		for _, cm := range f.ContextMenus {
			menu, _ := b.ix.Window(cm.Menu)
			h := b.g.Handler(w, cm.Widget, wtg.EventLongClick, "")
			if err := emit(w, menu, []*wtg.Handler{h}, wtg.OpenContextMenu); err != nil {
				return nil, err
			}
		}
		if w.Kind == wtg.KindOptionsMenu {
			if owner := b.ix.OptionsMenuOwner(w); owner != nil {
				h := b.g.Handler(owner, owner.Name, wtg.EventPressKey, "")
				if err := emit(owner, w, []*wtg.Handler{h}, wtg.OpenOptionsMenu); err != nil {
					return nil, err
				}
			}
		}
		back := b.g.Handler(w, w.Name, wtg.EventBack, "")
		if err := emit(w, w, []*wtg.Handler{back}, wtg.ImplicitBack); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type listenerGroup struct {
	target   *wtg.Window
	tag      wtg.RootTag
	closes   string
	handlers []*wtg.Handler
}

// groupListener splits the callbacks of one listener into edges. Callbacks
// opening the same window with the same tag and the same close declarations
// share an edge; callbacks that may open nothing share a cyclic self-edge.
func (b *build) groupListener(w *wtg.Window, widget string, ev wtg.EventType, callbacks []string) []*listenerGroup {
	type key struct {
		target *wtg.Window
		tag    wtg.RootTag
		closes string
	}
	var groups []*listenerGroup
	index := make(map[key]*listenerGroup)
	join := func(k key, h *wtg.Handler) {
		grp, ok := index[k]
		if !ok {
			grp = &listenerGroup{target: k.target, tag: k.tag, closes: k.closes}
			index[k] = grp
			groups = append(groups, grp)
		}
		grp.handlers = append(grp.handlers, h)
	}

	for _, cb := range callbacks {
		h := b.g.Handler(w, widget, ev, cb)
		ck := b.closeProfile(cb)
		opens := b.ix.Opens(cb)
		stays := len(opens) == 0
		for _, t := range opens {
			join(key{t.Window, t.Tag, ck}, h)
			if t.Conditional {
				stays = true
			}
		}
		if stays {
			join(key{w, wtg.CyclicEdge, ck}, h)
		}
	}
	return groups
}

// closeProfile is a canonical string of a callback's close declarations.
func (b *build) closeProfile(cb string) string {
	closes := b.ix.Closes(cb)
	parts := make([]string, 0, len(closes))
	for _, c := range closes {
		s := c.Window
		if c.Conditional {
			s += "?"
		}
		parts = append(parts, s)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
