package events

import (
	"log/slog"
	"runtime/debug"
	"sync"
)

// Bus is an ordered registry of handlers. Each event is offered to the
// handlers in registration order until one claims it.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Register appends a handler. Handlers live as long as the bus.
func (b *Bus) Register(h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Len returns the number of registered handlers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Dispatch offers ev to each handler in order and returns the first claimed
// result. A handler that panics is logged and treated as declining.
func (b *Bus) Dispatch(ev Event) (uintptr, bool) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for i, h := range handlers {
		if result, ok := offer(i, h, ev); ok {
			return result, true
		}
	}
	return 0, false
}

func offer(index int, h Handler, ev Event) (result uintptr, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Event handler panicked",
				"handler", index,
				"event", ev.String(),
				"panic", r,
				"stack", string(debug.Stack()),
			)
			result, ok = 0, false
		}
	}()
	return h(ev)
}
