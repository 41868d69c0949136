package wtg

import "fmt"

// WindowKind discriminates the five kinds of windows.
type WindowKind string

const (
	KindLauncher    WindowKind = "launcher"
	KindActivity    WindowKind = "activity"
	KindDialog      WindowKind = "dialog"
	KindOptionsMenu WindowKind = "options_menu"
	KindContextMenu WindowKind = "context_menu"
)

// IsMenu reports whether k is one of the two menu kinds.
func (k WindowKind) IsMenu() bool {
	return k == KindOptionsMenu || k == KindContextMenu
}

// ParseWindowKind maps the textual kind used in fact files.
func ParseWindowKind(s string) (WindowKind, error) {
	switch k := WindowKind(s); k {
	case KindLauncher, KindActivity, KindDialog, KindOptionsMenu, KindContextMenu:
		return k, nil
	}
	return "", fmt.Errorf("unknown window kind %q", s)
}

// Window is an externally supplied screen-level unit. Equality is pointer
// identity: the fact provider mints exactly one *Window per window.
type Window struct {
	Name string
	Kind WindowKind
}

// NewWindow allocates a window.
func NewWindow(name string, kind WindowKind) *Window {
	return &Window{Name: name, Kind: kind}
}

func (w *Window) String() string {
	if w == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s[%s]", w.Name, w.Kind)
}

func (w *Window) IsActivity() bool { return w != nil && w.Kind == KindActivity }
func (w *Window) IsLauncher() bool { return w != nil && w.Kind == KindLauncher }
func (w *Window) IsDialog() bool   { return w != nil && w.Kind == KindDialog }
func (w *Window) IsMenu() bool     { return w != nil && w.Kind.IsMenu() }
