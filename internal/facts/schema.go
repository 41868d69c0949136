// Package facts loads the externally computed GUI facts of an application:
// its windows, the listeners registered on their widgets, lifecycle
// callbacks, and which windows each callback opens or closes.
package facts

// App is the top-level YAML document, one per application.
type App struct {
	App          string    `yaml:"app" validate:"required"`
	MainActivity string    `yaml:"main_activity" validate:"required"`
	Launcher     string    `yaml:"launcher"`
	Windows      []Window  `yaml:"windows" validate:"required,min=1,dive"`
	Handlers     []Handler `yaml:"handlers" validate:"dive"`

	// Source is the file the document was read from, if any.
	Source string `yaml:"-"`
}

// Window describes one activity, dialog or menu.
type Window struct {
	Name         string            `yaml:"name" validate:"required"`
	Kind         string            `yaml:"kind" validate:"required,oneof=activity dialog options_menu context_menu"`
	Lifecycle    map[string]string `yaml:"lifecycle"`
	Widgets      []Widget          `yaml:"widgets" validate:"dive"`
	ContextMenus []ContextMenu     `yaml:"context_menus" validate:"dive"`
	Cancelable   *bool             `yaml:"cancelable"` // dialogs only, default true
	Owner        string            `yaml:"owner"`      // options menus only
}

// Widget is a view that carries listeners.
type Widget struct {
	ID        string     `yaml:"id" validate:"required"`
	Listeners []Listener `yaml:"listeners" validate:"dive"`
}

// Listener binds an event on a widget to the callbacks that handle it.
type Listener struct {
	Event     string   `yaml:"event" validate:"required,oneof=click long_click item_click item_long_click press_key dialog_cancel"`
	Callbacks []string `yaml:"callbacks" validate:"required,min=1,dive,required"`
}

// ContextMenu registers a context menu on a widget of the enclosing window.
type ContextMenu struct {
	Widget string `yaml:"widget" validate:"required"`
	Menu   string `yaml:"menu" validate:"required"`
}

// Handler lists the window effects of one callback.
type Handler struct {
	Callback string  `yaml:"callback" validate:"required"`
	Opens    []Open  `yaml:"opens" validate:"dive"`
	Closes   []Close `yaml:"closes" validate:"dive"`
}

// Open is a window a callback may open. Via defaults to the open tag
// matching the target's kind.
type Open struct {
	Window      string `yaml:"window" validate:"required"`
	Via         string `yaml:"via" validate:"omitempty,oneof=start_activity show_dialog open_options_menu open_context_menu"`
	Conditional bool   `yaml:"conditional"`
}

// Close is a window a callback may close: "self", "owner" or a window name.
type Close struct {
	Window      string `yaml:"window" validate:"required"`
	Conditional bool   `yaml:"conditional"`
}

const (
	CloseSelf  = "self"
	CloseOwner = "owner"
)

// Phase names a lifecycle callback slot.
type Phase string

const (
	OnCreate  Phase = "on_create"
	OnStart   Phase = "on_start"
	OnResume  Phase = "on_resume"
	OnPause   Phase = "on_pause"
	OnStop    Phase = "on_stop"
	OnRestart Phase = "on_restart"
	OnDestroy Phase = "on_destroy"
	OnClose   Phase = "on_close"
)

// phasesByKind lists the lifecycle slots each window kind accepts.
var phasesByKind = map[string][]Phase{
	"activity":     {OnCreate, OnStart, OnResume, OnPause, OnStop, OnRestart, OnDestroy},
	"dialog":       {OnCreate, OnStop},
	"options_menu": {OnCreate, OnClose},
	"context_menu": {OnCreate, OnClose},
}

// IsCancelable reports whether a dialog closes on the back key.
func (w *Window) IsCancelable() bool {
	return w.Cancelable == nil || *w.Cancelable
}
