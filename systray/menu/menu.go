// Package menu defines the tray menu commands and the state the tray shows.
// Menu clicks travel through the message window as CodeTrayCommand events
// so they are handled on the loop like every other event.
package menu

import (
	"fmt"
	"log/slog"

	"markestedt/clippath/events"
	"markestedt/clippath/paths"
)

// Command is a tray menu item id.
type Command uintptr

const (
	CmdHeader Command = 1001 + iota
	CmdModeWindows
	CmdModeWSL
	CmdModeAuto
	CmdOpenFolder
	CmdCleanNow
	CmdChangeShortcut
	CmdSettings
	CmdAutostart
	CmdExit
)

var commandNames = map[Command]string{
	CmdHeader:         "header",
	CmdModeWindows:    "mode-windows",
	CmdModeWSL:        "mode-wsl",
	CmdModeAuto:       "mode-auto",
	CmdOpenFolder:     "open-folder",
	CmdCleanNow:       "clean-now",
	CmdChangeShortcut: "change-shortcut",
	CmdSettings:       "settings",
	CmdAutostart:      "autostart",
	CmdExit:           "exit",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", uintptr(c))
}

// Event wraps c for posting to the message window.
func (c Command) Event() events.Event {
	return events.Event{Code: events.CodeTrayCommand, Param1: uintptr(c)}
}

// ModeCommand maps a path mode to its menu item.
func ModeCommand(m paths.Mode) Command {
	switch m {
	case paths.ModeWSL:
		return CmdModeWSL
	case paths.ModeWindows:
		return CmdModeWindows
	}
	return CmdModeAuto
}

// Dispatcher runs the function bound to each tray command.
type Dispatcher struct {
	handlers map[Command]func()
}

// NewDispatcher registers the dispatcher on bus.
func NewDispatcher(bus *events.Bus) *Dispatcher {
	d := &Dispatcher{handlers: make(map[Command]func())}
	bus.Register(d.handle)
	return d
}

// On binds fn to cmd, replacing any earlier binding.
func (d *Dispatcher) On(cmd Command, fn func()) {
	d.handlers[cmd] = fn
}

func (d *Dispatcher) handle(ev events.Event) (uintptr, bool) {
	if ev.Code != events.CodeTrayCommand {
		return 0, false
	}
	cmd := Command(ev.Param1)
	fn, ok := d.handlers[cmd]
	if !ok {
		slog.Debug("Unhandled tray command", "command", cmd)
		return 0, true
	}
	slog.Debug("Tray command", "command", cmd)
	fn()
	return 0, true
}
