package events

import (
	"log/slog"
	"time"

	"markestedt/clippath/loop"
)

// PumpInterval is the drain cadence, roughly one display refresh.
const PumpInterval = 16 * time.Millisecond

// Pump drains a Source on a fixed interval and feeds every event to a Bus.
type Pump struct {
	src      Source
	bus      *Bus
	sched    loop.Scheduler
	interval time.Duration
	task     loop.Task
}

// NewPump wires src to bus. Sources that deliver events synchronously get
// the same dispatch path as drained events.
func NewPump(src Source, bus *Bus, sched loop.Scheduler) *Pump {
	p := &Pump{
		src:      src,
		bus:      bus,
		sched:    sched,
		interval: PumpInterval,
	}
	if ds, ok := src.(DirectSource); ok {
		ds.SetDirect(p.Deliver)
	}
	return p
}

// Start begins draining. Calling it while running does nothing.
func (p *Pump) Start() {
	if p.task != nil {
		return
	}
	p.task = p.sched.Every(p.interval, func() { p.Drain() })
}

// Stop halts draining. It is safe to call at any time, any number of times.
func (p *Pump) Stop() {
	if p.task == nil {
		return
	}
	p.task.Stop()
	p.task = nil
}

// Running reports whether the pump is scheduled.
func (p *Pump) Running() bool {
	return p.task != nil
}

// Drain delivers every pending event and returns how many were delivered.
// A poll error ends this drain; the next tick tries again.
func (p *Pump) Drain() int {
	n := 0
	for {
		ev, ok, err := p.src.Next()
		if err != nil {
			slog.Warn("Event poll failed", "error", err)
			return n
		}
		if !ok {
			return n
		}
		p.Deliver(ev)
		n++
	}
}

// Deliver dispatches one event and falls back to the source's default
// handling when no handler claims it.
func (p *Pump) Deliver(ev Event) uintptr {
	if result, ok := p.bus.Dispatch(ev); ok {
		return result
	}
	return p.src.Default(ev)
}
