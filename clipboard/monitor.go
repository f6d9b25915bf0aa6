// Package clipboard watches the clipboard for images and pastes the saved
// image's path into the focused window.
package clipboard

import (
	"log/slog"
	"sync/atomic"

	"markestedt/clippath/events"
	"markestedt/clippath/platform"
)

// Monitor tracks whether the clipboard currently holds an image.
type Monitor struct {
	clip     platform.Clipboard
	hasImage atomic.Bool
	onChange func(hasImage bool)
}

// NewMonitor registers a clipboard update handler on bus. The window must
// be subscribed with ListenClipboard for updates to arrive.
func NewMonitor(clip platform.Clipboard, bus *events.Bus) *Monitor {
	m := &Monitor{clip: clip}
	bus.Register(m.handle)
	return m
}

func (m *Monitor) handle(ev events.Event) (uintptr, bool) {
	if ev.Code != events.CodeClipboardUpdate {
		return 0, false
	}
	m.Check()
	return 0, true
}

// OnChange sets the callback run when image availability flips.
func (m *Monitor) OnChange(fn func(hasImage bool)) {
	m.onChange = fn
}

// Check re-reads the clipboard. It runs on the loop.
func (m *Monitor) Check() {
	available := m.clip.HasImage()
	if m.hasImage.Swap(available) == available {
		return
	}
	slog.Debug("Clipboard image state changed", "has_image", available)
	if m.onChange != nil {
		m.onChange(available)
	}
}

// HasImage reports the last observed state. Safe from any goroutine.
func (m *Monitor) HasImage() bool {
	return m.hasImage.Load()
}
