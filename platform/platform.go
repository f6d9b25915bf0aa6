// Package platform wraps the Win32 calls the application needs. On other
// operating systems every constructor returns ErrUnsupported.
package platform

import (
	"errors"
	"time"

	"markestedt/clippath/events"
	"markestedt/clippath/hotkey"
)

var (
	// ErrUnsupported is returned on operating systems other than Windows.
	ErrUnsupported = errors.New("not supported on this platform")
	// ErrAlreadyRunning is returned by TryLock when another instance holds
	// the lock.
	ErrAlreadyRunning = errors.New("another instance is already running")
)

// Window is the hidden message window. It is the event source for the
// pump, the owner of the global hotkey and the clipboard listener. Every
// method except Post must be called on the thread that created it.
type Window interface {
	events.DirectSource
	events.Poster
	hotkey.API

	// ListenClipboard subscribes the window to clipboard change events.
	ListenClipboard() error
	Close() error
}

// Clipboard provides clipboard access
type Clipboard interface {
	// HasImage reports whether the clipboard holds a device-independent
	// bitmap.
	HasImage() bool
	// ReadDIB returns the raw CF_DIB payload, or nil if there is none.
	ReadDIB() ([]byte, error)
	SetText(text string) error
}

// Keyboard reads physical key state.
type Keyboard interface {
	IsDown(k hotkey.Key) bool
	// WaitForRelease blocks until none of keys is held or timeout passes.
	// It returns false on timeout.
	WaitForRelease(timeout time.Duration, keys ...hotkey.Key) bool
	// ForegroundTitle returns the title of the window that has focus.
	ForegroundTitle() string
}

// Paster simulates paste operation
type Paster interface {
	Paste() error
}

// Generic modifier virtual keys, held if either side is held.
const (
	VKShift hotkey.Key = 0x10
	VKCtrl  hotkey.Key = 0x11
	VKAlt   hotkey.Key = 0x12
)
