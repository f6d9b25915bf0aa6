package events

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markestedt/clippath/loop"
)

func TestPumpDrainsToEmptyInOrder(t *testing.T) {
	q := NewQueue()
	bus := NewBus()
	var seen []uint32
	bus.Register(func(ev Event) (uintptr, bool) {
		seen = append(seen, ev.Code)
		return 0, ev.Code != 0x9999
	})

	sched := loop.NewManual(time.Unix(0, 0))
	p := NewPump(q, bus, sched)
	p.Start()

	for _, code := range []uint32{CodeClipboardUpdate, CodeHotkey, 0x9999} {
		require.NoError(t, q.Post(Event{Code: code}))
	}

	sched.Advance(PumpInterval)
	assert.Equal(t, []uint32{CodeClipboardUpdate, CodeHotkey, 0x9999}, seen)
	assert.Equal(t, 0, q.Len())

	defaulted := q.Defaulted()
	require.Len(t, defaulted, 1)
	assert.Equal(t, uint32(0x9999), defaulted[0].Code)
}

func TestPumpNothingBeforeTick(t *testing.T) {
	q := NewQueue()
	bus := NewBus()
	sched := loop.NewManual(time.Unix(0, 0))
	p := NewPump(q, bus, sched)
	p.Start()

	require.NoError(t, q.Post(Event{Code: 1}))
	sched.Advance(PumpInterval - time.Millisecond)
	assert.Equal(t, 1, q.Len())
	sched.Advance(time.Millisecond)
	assert.Equal(t, 0, q.Len())
}

func TestPumpPollErrorRetriesNextTick(t *testing.T) {
	q := NewQueue()
	bus := NewBus()
	delivered := 0
	bus.Register(func(ev Event) (uintptr, bool) {
		delivered++
		return 0, true
	})
	sched := loop.NewManual(time.Unix(0, 0))
	p := NewPump(q, bus, sched)
	p.Start()

	require.NoError(t, q.Post(Event{Code: 1}))
	q.FailNext(errors.New("peek failed"))

	sched.Advance(PumpInterval)
	assert.Equal(t, 0, delivered)
	sched.Advance(PumpInterval)
	assert.Equal(t, 1, delivered)
}

func TestPumpStopIsIdempotent(t *testing.T) {
	q := NewQueue()
	sched := loop.NewManual(time.Unix(0, 0))
	p := NewPump(q, NewBus(), sched)

	assert.NotPanics(t, p.Stop)

	p.Start()
	p.Start()
	assert.True(t, p.Running())
	assert.Equal(t, 1, sched.Pending())

	assert.NotPanics(t, func() {
		p.Stop()
		p.Stop()
		p.Stop()
	})
	assert.False(t, p.Running())

	require.NoError(t, q.Post(Event{Code: 1}))
	sched.Advance(time.Second)
	assert.Equal(t, 1, q.Len())
}

func TestPumpSurvivesPanickingHandler(t *testing.T) {
	q := NewQueue()
	bus := NewBus()
	bus.Register(func(ev Event) (uintptr, bool) { panic("bad handler") })
	sched := loop.NewManual(time.Unix(0, 0))
	p := NewPump(q, bus, sched)
	p.Start()

	require.NoError(t, q.Post(Event{Code: 1}))
	require.NoError(t, q.Post(Event{Code: 2}))
	assert.NotPanics(t, func() { sched.Advance(PumpInterval) })
	assert.Len(t, q.Defaulted(), 2)
}

type directQueue struct {
	*Queue
	deliver func(Event) uintptr
}

func (d *directQueue) SetDirect(fn func(Event) uintptr) { d.deliver = fn }

func TestPumpWiresDirectSource(t *testing.T) {
	src := &directQueue{Queue: NewQueue()}
	bus := NewBus()
	bus.Register(func(ev Event) (uintptr, bool) { return 5, ev.Code == CodeDestroy })
	NewPump(src, bus, loop.NewManual(time.Unix(0, 0)))

	require.NotNil(t, src.deliver)
	assert.Equal(t, uintptr(5), src.deliver(Event{Code: CodeDestroy}))
	src.deliver(Event{Code: 0x1234})
	assert.Len(t, src.Defaulted(), 1)
}
