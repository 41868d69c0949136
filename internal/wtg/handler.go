package wtg

import "fmt"

// EventType is the GUI or system event a handler reacts to.
type EventType string

const (
	EventClick             EventType = "click"
	EventLongClick         EventType = "long_click"
	EventItemClick         EventType = "item_click"
	EventItemLongClick     EventType = "item_long_click"
	EventPressKey          EventType = "press_key"
	EventDialogCancel      EventType = "dialog_cancel"
	EventCreateContextMenu EventType = "implicit_create_context_menu"
	EventLifecycle         EventType = "implicit_lifecycle_event"
	EventBack              EventType = "implicit_back_event"
	EventRotate            EventType = "implicit_rotate_event"
	EventHome              EventType = "implicit_home_event"
	EventPower             EventType = "implicit_power_event"
	EventLaunch            EventType = "implicit_launch_event"
)

// Known reports whether e is one of the event types above.
func (e EventType) Known() bool {
	switch e {
	case EventClick, EventLongClick, EventItemClick, EventItemLongClick,
		EventPressKey, EventDialogCancel, EventCreateContextMenu, EventLifecycle,
		EventBack, EventRotate, EventHome, EventPower, EventLaunch:
		return true
	}
	return false
}

// Handler is an interned (window, widget, event, callback) tuple. Obtain one
// through Graph.Handler; two requests with equal fields return the same
// pointer, so handler sets can be compared by identity.
type Handler struct {
	id       int
	window   *Window
	widget   string
	event    EventType
	callback string
}

type handlerKey struct {
	window   *Window
	widget   string
	event    EventType
	callback string
}

func (h *Handler) ID() int           { return h.id }
func (h *Handler) Window() *Window   { return h.window }
func (h *Handler) Widget() string    { return h.widget }
func (h *Handler) Event() EventType  { return h.event }
func (h *Handler) Callback() string  { return h.callback }
func (h *Handler) HasCallback() bool { return h.callback != "" }

func (h *Handler) String() string {
	cb := h.callback
	if cb == "" {
		cb = "-"
	}
	return fmt.Sprintf("%s/%s/%s/%s", h.window.Name, h.widget, h.event, cb)
}

// sameTrigger reports whether h and o fire on the same (window, widget, event).
func (h *Handler) sameTrigger(o *Handler) bool {
	return h.window == o.window && h.widget == o.widget && h.event == o.event
}
