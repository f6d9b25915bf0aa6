// Package capture lets the user redefine the global hotkey by pressing the
// new combination.
package capture

import (
	"time"

	"markestedt/clippath/hotkey"
)

// Physical modifier keys. The generic VK_SHIFT/VK_CONTROL/VK_MENU codes are
// not consulted.
const (
	vkLShift hotkey.Key = 0xA0
	vkRShift hotkey.Key = 0xA1
	vkLCtrl  hotkey.Key = 0xA2
	vkRCtrl  hotkey.Key = 0xA3
	vkLAlt   hotkey.Key = 0xA4
	vkRAlt   hotkey.Key = 0xA5
)

// KeyState reports the physical state of a key.
type KeyState interface {
	IsDown(k hotkey.Key) bool
}

// KeyFunc adapts a function to KeyState.
type KeyFunc func(k hotkey.Key) bool

// IsDown implements KeyState.
func (f KeyFunc) IsDown(k hotkey.Key) bool { return f(k) }

// Timing controls a capture session.
type Timing struct {
	Poll    time.Duration
	Grace   time.Duration
	Timeout time.Duration
}

// DefaultTiming polls every 50ms, ignores input for the first 500ms and
// gives up after 10s.
var DefaultTiming = Timing{
	Poll:    50 * time.Millisecond,
	Grace:   500 * time.Millisecond,
	Timeout: 10 * time.Second,
}

// Action is the outcome of one capture tick.
type Action int

const (
	Wait Action = iota
	Cancel
	Candidate
)

func (a Action) String() string {
	switch a {
	case Cancel:
		return "cancel"
	case Candidate:
		return "candidate"
	default:
		return "wait"
	}
}

// Decision is what a tick should do. Binding is set for Candidate, Reason
// for Cancel.
type Decision struct {
	Action  Action
	Reason  string
	Binding hotkey.Binding
}

// Modifiers returns the modifier set currently held, left or right.
func Modifiers(keys KeyState) hotkey.Modifiers {
	var mods hotkey.Modifiers
	if keys.IsDown(vkLCtrl) || keys.IsDown(vkRCtrl) {
		mods |= hotkey.ModCtrl
	}
	if keys.IsDown(vkLShift) || keys.IsDown(vkRShift) {
		mods |= hotkey.ModShift
	}
	if keys.IsDown(vkLAlt) || keys.IsDown(vkRAlt) {
		mods |= hotkey.ModAlt
	}
	return mods
}

var capturable = hotkey.CapturableKeys()

// Decide evaluates one tick of a capture session that started elapsed ago.
// Escape wins over the timeout, and the timeout wins over any held key.
func Decide(elapsed time.Duration, keys KeyState, t Timing) Decision {
	if elapsed < t.Grace {
		return Decision{Action: Wait}
	}
	if keys.IsDown(hotkey.KeyEscape) {
		return Decision{Action: Cancel, Reason: "escape"}
	}
	if elapsed > t.Timeout {
		return Decision{Action: Cancel, Reason: "timeout"}
	}

	mods := Modifiers(keys)
	for _, k := range capturable {
		if !keys.IsDown(k) {
			continue
		}
		if mods == 0 && !hotkey.IsFunctionKey(k) {
			continue
		}
		return Decision{Action: Candidate, Binding: hotkey.Binding{Modifiers: mods, Key: k}}
	}
	return Decision{Action: Wait}
}
