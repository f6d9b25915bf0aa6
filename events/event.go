// Package events routes notifications delivered to the hidden message window
// to the features that care about them.
package events

import "fmt"

// Event codes delivered to the message window. The values are the Win32
// message numbers so platform events need no translation.
const (
	CodeDestroy         uint32 = 0x0002
	CodeHotkey          uint32 = 0x0312
	CodeClipboardUpdate uint32 = 0x031D
	// CodeTrayCommand is WM_APP+1; Param1 carries the menu command id.
	CodeTrayCommand uint32 = 0x8001
)

// Event is one notification as delivered by the platform.
type Event struct {
	Source uintptr
	Code   uint32
	Param1 uintptr
	Param2 uintptr
}

func (e Event) String() string {
	return fmt.Sprintf("event(code=0x%04X p1=%d p2=%d)", e.Code, e.Param1, e.Param2)
}

// Handler inspects an event and returns ok=false to let the next handler try.
type Handler func(ev Event) (result uintptr, ok bool)

// Source is the platform side of the message window.
type Source interface {
	// Next removes one pending event without blocking. ok is false once the
	// queue is empty.
	Next() (ev Event, ok bool, err error)
	// Default applies the platform's default handling to an event no
	// handler claimed.
	Default(ev Event) uintptr
}

// DirectSource is implemented by sources that also deliver some events
// synchronously, outside of Next (Win32 sent messages).
type DirectSource interface {
	Source
	SetDirect(deliver func(ev Event) uintptr)
}

// Poster queues an event for later delivery through the source. It is safe
// to call from any goroutine.
type Poster interface {
	Post(ev Event) error
}
