package facts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid marks a fact document that failed validation.
var ErrInvalid = errors.New("invalid facts")

var validate = validator.New()

// Validate checks a document in two passes: struct tags (required fields,
// enumerations) and then cross references between windows and callbacks.
// All violations are reported together.
func Validate(app *App) error {
	var errs []string
	if err := validate.Struct(app); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		for _, fe := range verrs {
			errs = append(errs, describe(fe))
		}
	}
	if len(errs) == 0 {
		errs = crossCheck(app)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalid, strings.Join(errs, "\n  - "))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "App.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s: %q is not one of [%s]", field, fe.Value(), fe.Param())
	}
	return fmt.Sprintf("%s fails %q", field, fe.Tag())
}

func crossCheck(app *App) []string {
	var errs []string
	windows := make(map[string]*Window, len(app.Windows))
	for i := range app.Windows {
		w := &app.Windows[i]
		if w.Name == app.Launcher {
			errs = append(errs, fmt.Sprintf("window %s: name is reserved for the launcher", w.Name))
		}
		if _, dup := windows[w.Name]; dup {
			errs = append(errs, fmt.Sprintf("duplicate window %q", w.Name))
			continue
		}
		windows[w.Name] = w
	}

	if main, ok := windows[app.MainActivity]; !ok {
		errs = append(errs, fmt.Sprintf("main_activity %q is not a declared window", app.MainActivity))
	} else if main.Kind != "activity" {
		errs = append(errs, fmt.Sprintf("main_activity %q is a %s, not an activity", app.MainActivity, main.Kind))
	}

	// Callbacks reachable from listeners or lifecycle slots.
	known := make(map[string]bool)
	for i := range app.Windows {
		w := &app.Windows[i]
		allowed := make(map[Phase]bool)
		for _, p := range phasesByKind[w.Kind] {
			allowed[p] = true
		}
		for phase, cb := range w.Lifecycle {
			if !allowed[Phase(phase)] {
				errs = append(errs, fmt.Sprintf("window %s: lifecycle phase %q not valid for a %s", w.Name, phase, w.Kind))
			}
			if cb != "" {
				known[cb] = true
			}
		}
		for _, wd := range w.Widgets {
			for _, l := range wd.Listeners {
				for _, cb := range l.Callbacks {
					known[cb] = true
				}
			}
		}
		for _, cm := range w.ContextMenus {
			m, ok := windows[cm.Menu]
			switch {
			case !ok:
				errs = append(errs, fmt.Sprintf("window %s: context menu %q is not declared", w.Name, cm.Menu))
			case m.Kind != "context_menu":
				errs = append(errs, fmt.Sprintf("window %s: %q registered as context menu but is a %s", w.Name, cm.Menu, m.Kind))
			}
		}
		switch w.Kind {
		case "options_menu":
			o, ok := windows[w.Owner]
			if w.Owner == "" || !ok || o.Kind != "activity" {
				errs = append(errs, fmt.Sprintf("options menu %s: owner %q must be a declared activity", w.Name, w.Owner))
			}
		default:
			if w.Owner != "" {
				errs = append(errs, fmt.Sprintf("window %s: owner is only valid for options menus", w.Name))
			}
		}
		if w.Cancelable != nil && w.Kind != "dialog" {
			errs = append(errs, fmt.Sprintf("window %s: cancelable is only valid for dialogs", w.Name))
		}
	}

	seen := make(map[string]bool)
	for _, h := range app.Handlers {
		if seen[h.Callback] {
			errs = append(errs, fmt.Sprintf("duplicate handler for callback %q", h.Callback))
		}
		seen[h.Callback] = true
		if !known[h.Callback] {
			errs = append(errs, fmt.Sprintf("handler %s: callback is not bound to any listener or lifecycle slot", h.Callback))
		}
		for _, o := range h.Opens {
			t, ok := windows[o.Window]
			if !ok {
				errs = append(errs, fmt.Sprintf("handler %s: opens unknown window %q", h.Callback, o.Window))
				continue
			}
			if o.Via != "" && o.Via != openTagForKind(t.Kind) {
				errs = append(errs, fmt.Sprintf("handler %s: %s cannot open %s %q", h.Callback, o.Via, t.Kind, o.Window))
			}
		}
		for _, c := range h.Closes {
			if c.Window == CloseSelf || c.Window == CloseOwner {
				continue
			}
			if _, ok := windows[c.Window]; !ok {
				errs = append(errs, fmt.Sprintf("handler %s: closes unknown window %q", h.Callback, c.Window))
			}
		}
	}
	return errs
}

func openTagForKind(kind string) string {
	switch kind {
	case "activity":
		return "start_activity"
	case "dialog":
		return "show_dialog"
	case "options_menu":
		return "open_options_menu"
	case "context_menu":
		return "open_context_menu"
	}
	return ""
}
