package hotkey

import (
	"log/slog"

	"markestedt/clippath/events"
)

// ID is the identifier passed to RegisterHotKey for the application's only
// hotkey.
const ID = 1

// API is the OS hotkey table. platform.Window implements it on Windows.
type API interface {
	RegisterHotKey(id int, mods Modifiers, key Key) error
	UnregisterHotKey(id int) error
}

// Registrar owns the global hotkey registration and turns hotkey events
// into a callback. It is used from the loop goroutine only.
type Registrar struct {
	api        API
	binding    Binding
	registered bool
	onPress    func()
}

// NewRegistrar creates a registrar and registers its handler on bus.
func NewRegistrar(api API, bus *events.Bus) *Registrar {
	r := &Registrar{api: api}
	bus.Register(r.handle)
	return r
}

func (r *Registrar) handle(ev events.Event) (uintptr, bool) {
	if ev.Code != events.CodeHotkey || ev.Param1 != ID {
		return 0, false
	}
	if r.onPress != nil {
		r.onPress()
	}
	return 0, true
}

// OnPress sets the callback for hotkey presses, replacing any previous one.
func (r *Registrar) OnPress(fn func()) {
	r.onPress = fn
}

// Register claims b with the OS. It returns false when another application
// holds the combination.
func (r *Registrar) Register(b Binding) bool {
	if b.IsZero() {
		return false
	}
	if err := r.api.RegisterHotKey(ID, b.Modifiers|ModNoRepeat, b.Key); err != nil {
		slog.Warn("Hotkey registration failed", "shortcut", b.String(), "error", err)
		return false
	}
	r.binding = b
	r.registered = true
	slog.Info("Hotkey registered", "shortcut", b.String())
	return true
}

// Unregister releases the current registration. It does nothing when no
// hotkey is registered.
func (r *Registrar) Unregister() {
	if !r.registered {
		return
	}
	if err := r.api.UnregisterHotKey(ID); err != nil {
		slog.Warn("Hotkey unregister failed", "shortcut", r.binding.String(), "error", err)
	}
	r.registered = false
}

// Reregister releases the current registration and claims b.
func (r *Registrar) Reregister(b Binding) bool {
	r.Unregister()
	return r.Register(b)
}

// Binding returns the most recently registered binding. It stays valid
// while temporarily unregistered.
func (r *Registrar) Binding() Binding {
	return r.binding
}

// Registered reports whether the OS currently holds the registration.
func (r *Registrar) Registered() bool {
	return r.registered
}
