package wtg

import "fmt"

// RootTag is the cause of a transition.
type RootTag int

const (
	StartActivity RootTag = iota
	ShowDialog
	OpenContextMenu
	OpenOptionsMenu
	FinishActivity
	DismissDialog
	CloseMenu
	ImplicitRotate
	ImplicitPower
	ImplicitHome
	ImplicitBack
	ImplicitLaunch
	CyclicEdge
	JumpEdge
	FakeInterimEdge
)

var rootTagNames = [...]string{
	StartActivity:   "start_activity",
	ShowDialog:      "show_dialog",
	OpenContextMenu: "open_context_menu",
	OpenOptionsMenu: "open_options_menu",
	FinishActivity:  "finish_activity",
	DismissDialog:   "dismiss_dialog",
	CloseMenu:       "close_menu",
	ImplicitRotate:  "implicit_rotate",
	ImplicitPower:   "implicit_power",
	ImplicitHome:    "implicit_home",
	ImplicitBack:    "implicit_back",
	ImplicitLaunch:  "implicit_launch",
	CyclicEdge:      "self_edge",
	JumpEdge:        "jump_edge",
	FakeInterimEdge: "fake_interim_edge",
}

func (t RootTag) String() string {
	if t < 0 || int(t) >= len(rootTagNames) {
		return fmt.Sprintf("root_tag(%d)", int(t))
	}
	return rootTagNames[t]
}

// MarshalText renders the tag by name so JSON output stays readable.
func (t RootTag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseRootTag is the inverse of String. "cyclic_edge" is accepted as an
// alias of "self_edge".
func ParseRootTag(s string) (RootTag, error) {
	if s == "cyclic_edge" {
		return CyclicEdge, nil
	}
	for i, name := range rootTagNames {
		if name == s {
			return RootTag(i), nil
		}
	}
	return 0, fmt.Errorf("unknown root tag %q", s)
}

// IsExplicitForward covers the four user-triggered open tags.
func (t RootTag) IsExplicitForward() bool {
	switch t {
	case StartActivity, ShowDialog, OpenContextMenu, OpenOptionsMenu:
		return true
	}
	return false
}

// IsForward is IsExplicitForward plus the launch edge.
func (t RootTag) IsForward() bool {
	return t.IsExplicitForward() || t == ImplicitLaunch
}

func (t RootTag) IsBackward() bool {
	switch t {
	case FinishActivity, DismissDialog, CloseMenu, ImplicitBack:
		return true
	}
	return false
}

func (t RootTag) IsHardware() bool {
	switch t {
	case ImplicitHome, ImplicitPower, ImplicitRotate:
		return true
	}
	return false
}

// OpenTagFor returns the explicit forward tag that opens a window of kind k.
func OpenTagFor(k WindowKind) (RootTag, bool) {
	switch k {
	case KindActivity:
		return StartActivity, true
	case KindDialog:
		return ShowDialog, true
	case KindOptionsMenu:
		return OpenOptionsMenu, true
	case KindContextMenu:
		return OpenContextMenu, true
	}
	return 0, false
}

// CloseTagFor returns the backward tag used when a window of kind k closes
// itself.
func CloseTagFor(k WindowKind) (RootTag, bool) {
	switch k {
	case KindActivity:
		return FinishActivity, true
	case KindDialog:
		return DismissDialog, true
	case KindOptionsMenu, KindContextMenu:
		return CloseMenu, true
	}
	return 0, false
}
