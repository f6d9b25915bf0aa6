package capture

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markestedt/clippath/events"
	"markestedt/clippath/hotkey"
	"markestedt/clippath/loop"
)

// desktop fakes the OS hotkey table: a key press only produces a hotkey
// event if the combination is currently registered.
type desktop struct {
	taken      map[hotkey.Binding]bool
	registered map[int]hotkey.Binding
	bus        *events.Bus
}

func (d *desktop) RegisterHotKey(id int, mods hotkey.Modifiers, key hotkey.Key) error {
	b := hotkey.Binding{Modifiers: mods &^ hotkey.ModNoRepeat, Key: key}
	if d.taken[b] {
		return errors.New("hotkey is already registered")
	}
	d.registered[id] = b
	return nil
}

func (d *desktop) UnregisterHotKey(id int) error {
	delete(d.registered, id)
	return nil
}

func (d *desktop) press(b hotkey.Binding) {
	for id, reg := range d.registered {
		if reg == b {
			d.bus.Dispatch(events.Event{Code: events.CodeHotkey, Param1: uintptr(id)})
		}
	}
}

type harness struct {
	desk     *desktop
	reg      *hotkey.Registrar
	sched    *loop.Manual
	keys     heldKeys
	coord    *Coordinator
	presses  int
	saved    []hotkey.Binding
	finished []Snapshot
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		desk: &desktop{
			taken:      map[hotkey.Binding]bool{},
			registered: map[int]hotkey.Binding{},
			bus:        events.NewBus(),
		},
		sched: loop.NewManual(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)),
		keys:  heldKeys{},
	}
	h.reg = hotkey.NewRegistrar(h.desk, h.desk.bus)
	h.reg.OnPress(func() { h.presses++ })
	require.True(t, h.reg.Register(hotkey.Default))

	h.coord = NewCoordinator(Options{
		Registrar: h.reg,
		Keys:      h.keys,
		Scheduler: h.sched,
		Now:       h.sched.Now,
		OnChange: func(b hotkey.Binding) error {
			h.saved = append(h.saved, b)
			return nil
		},
		OnFinish: func(src Source, snap Snapshot) {
			h.finished = append(h.finished, snap)
		},
	})
	return h
}

func (h *harness) hold(keys ...hotkey.Key) {
	for _, k := range keys {
		h.keys[k] = true
	}
}

func (h *harness) release() {
	for k := range h.keys {
		delete(h.keys, k)
	}
}

func TestCaptureStartUnregisters(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.coord.TryStart(SourceMenu))
	assert.True(t, h.coord.Capturing())
	assert.False(t, h.reg.Registered())

	h.desk.press(hotkey.Default)
	assert.Equal(t, 0, h.presses)

	snap := h.coord.Status(SourceMenu)
	assert.Equal(t, Capturing, snap.Status)
	assert.NotEmpty(t, snap.Session)
	assert.Equal(t, "Ctrl+Shift+V", snap.Previous)

	assert.Equal(t, Capturing, h.coord.Status(SourceMenu).Status)
}

func TestCaptureSecondStartRefused(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.coord.TryStart(SourceMenu))
	before := h.coord.Status(SourceMenu)

	assert.False(t, h.coord.TryStart(SourceAPI))
	assert.False(t, h.coord.TryStart(SourceMenu))

	assert.Equal(t, before, h.coord.Status(SourceMenu))
	assert.Equal(t, Idle, h.coord.Status(SourceAPI).Status)
	assert.Equal(t, 1, h.sched.Pending())
}

func TestCaptureTimeout(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.coord.TryStart(SourceAPI))

	h.sched.Advance(DefaultTiming.Timeout)
	assert.Equal(t, Capturing, h.coord.Status(SourceAPI).Status)

	h.sched.Advance(DefaultTiming.Poll)
	snap := h.coord.Status(SourceAPI)
	assert.Equal(t, Cancelled, snap.Status)
	assert.Equal(t, "timeout", snap.Reason)
	assert.Empty(t, snap.Shortcut)

	assert.False(t, h.coord.Capturing())
	assert.True(t, h.reg.Registered())
	assert.Equal(t, hotkey.Default, h.reg.Binding())
	assert.Equal(t, 0, h.sched.Pending())

	h.desk.press(hotkey.Default)
	assert.Equal(t, 1, h.presses)
}

func TestCaptureEscapeAfterGrace(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.coord.TryStart(SourceMenu))

	h.hold(hotkey.KeyEscape)
	h.sched.Advance(DefaultTiming.Grace - DefaultTiming.Poll)
	assert.True(t, h.coord.Capturing())

	h.sched.Advance(DefaultTiming.Poll)
	assert.False(t, h.coord.Capturing())

	snap := h.coord.Status(SourceMenu)
	assert.Equal(t, Cancelled, snap.Status)
	assert.Equal(t, "escape", snap.Reason)

	h.release()
	h.desk.press(hotkey.Default)
	assert.Equal(t, 1, h.presses)
	assert.Empty(t, h.saved)
}

func TestCaptureEscapeDuringGraceIgnored(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.coord.TryStart(SourceMenu))

	h.hold(hotkey.KeyEscape)
	h.sched.Advance(300 * time.Millisecond)
	h.release()
	h.sched.Advance(2 * time.Second)

	assert.True(t, h.coord.Capturing())
	assert.Equal(t, Capturing, h.coord.Status(SourceMenu).Status)
}

func TestCaptureDone(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.coord.TryStart(SourceAPI))

	h.sched.Advance(time.Second)
	h.hold(vkLCtrl, vkLAlt, 'K')
	h.sched.Advance(DefaultTiming.Poll)

	want := hotkey.MustParse("Ctrl+Alt+K")
	snap := h.coord.Status(SourceAPI)
	assert.Equal(t, Done, snap.Status)
	assert.Equal(t, "Ctrl+Alt+K", snap.Shortcut)
	assert.Equal(t, []hotkey.Binding{want}, h.saved)
	assert.Equal(t, want, h.reg.Binding())
	assert.True(t, h.reg.Registered())
	assert.Equal(t, 0, h.sched.Pending())

	h.release()
	h.desk.press(hotkey.Default)
	assert.Equal(t, 0, h.presses)
	h.desk.press(want)
	assert.Equal(t, 1, h.presses)
}

func TestCaptureFailedRestoresPrevious(t *testing.T) {
	h := newHarness(t)
	taken := hotkey.MustParse("Ctrl+Alt+Delete")
	h.desk.taken[taken] = true

	require.True(t, h.coord.TryStart(SourceMenu))
	h.sched.Advance(DefaultTiming.Grace)
	h.hold(vkLCtrl, vkRAlt, 0x2E)
	h.sched.Advance(DefaultTiming.Poll)

	snap := h.coord.Status(SourceMenu)
	assert.Equal(t, Failed, snap.Status)
	assert.Empty(t, h.saved)
	assert.Equal(t, hotkey.Default, h.reg.Binding())
	assert.True(t, h.reg.Registered())

	h.release()
	h.desk.press(hotkey.Default)
	assert.Equal(t, 1, h.presses)
}

func TestCaptureSkipsLetterWithoutModifier(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.coord.TryStart(SourceAPI))
	h.sched.Advance(DefaultTiming.Grace)

	h.hold('V')
	h.sched.Advance(5 * DefaultTiming.Poll)
	assert.True(t, h.coord.Capturing())

	h.hold(hotkey.KeyF12)
	h.sched.Advance(DefaultTiming.Poll)
	snap := h.coord.Status(SourceAPI)
	assert.Equal(t, Done, snap.Status)
	assert.Equal(t, "F12", snap.Shortcut)
}

func TestCaptureStatusReadOnce(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.coord.TryStart(SourceAPI))
	h.coord.Cancel(SourceAPI)

	assert.Equal(t, Cancelled, h.coord.Status(SourceAPI).Status)
	assert.Equal(t, Snapshot{Status: Idle}, h.coord.Status(SourceAPI))
}

func TestCaptureCancelOwnSessionOnly(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.coord.TryStart(SourceMenu))

	h.coord.Cancel(SourceAPI)
	assert.True(t, h.coord.Capturing())
	assert.Equal(t, Idle, h.coord.Status(SourceAPI).Status)

	h.coord.Cancel(SourceMenu)
	assert.False(t, h.coord.Capturing())
	assert.Equal(t, 0, h.sched.Pending())
	assert.True(t, h.reg.Registered())

	snap := h.coord.Status(SourceMenu)
	assert.Equal(t, Cancelled, snap.Status)
	assert.Equal(t, "cancel", snap.Reason)

	assert.NotPanics(t, func() { h.coord.Cancel(SourceMenu) })
}

func TestCaptureNoTickAfterTerminal(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.coord.TryStart(SourceAPI))
	h.coord.Cancel(SourceAPI)

	h.hold(vkLCtrl, 'J')
	h.sched.Advance(time.Minute)
	assert.Empty(t, h.saved)
	assert.Equal(t, Cancelled, h.coord.Status(SourceAPI).Status)
	require.Len(t, h.finished, 1)
}

func TestCaptureOnFinishOncePerSession(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.coord.TryStart(SourceMenu))
	h.sched.Advance(DefaultTiming.Timeout + time.Second)

	require.True(t, h.coord.TryStart(SourceMenu))
	h.sched.Advance(DefaultTiming.Grace)
	h.hold(vkLShift, 'P')
	h.sched.Advance(DefaultTiming.Poll)

	require.Len(t, h.finished, 2)
	assert.Equal(t, Cancelled, h.finished[0].Status)
	assert.Equal(t, Done, h.finished[1].Status)
	assert.Equal(t, "Shift+P", h.finished[1].Shortcut)
	assert.NotEqual(t, h.finished[0].Session, h.finished[1].Session)
}

func TestCaptureSourcesAreIndependent(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.coord.TryStart(SourceMenu))
	h.coord.Cancel(SourceMenu)

	require.True(t, h.coord.TryStart(SourceAPI))
	h.coord.Cancel(SourceAPI)

	assert.Equal(t, Cancelled, h.coord.Status(SourceMenu).Status)
	assert.Equal(t, Cancelled, h.coord.Status(SourceAPI).Status)
	assert.Equal(t, Idle, h.coord.Status(SourceMenu).Status)
}

func TestCapturePersistErrorStillDone(t *testing.T) {
	h := newHarness(t)
	h.coord.opts.OnChange = func(hotkey.Binding) error { return errors.New("disk full") }

	require.True(t, h.coord.TryStart(SourceAPI))
	h.sched.Advance(DefaultTiming.Grace)
	h.hold(vkLCtrl, '9')
	h.sched.Advance(DefaultTiming.Poll)

	snap := h.coord.Status(SourceAPI)
	assert.Equal(t, Done, snap.Status)
	assert.Equal(t, "Ctrl+9", snap.Shortcut)
}

func TestStatusText(t *testing.T) {
	for status, want := range map[Status]string{
		Idle: "idle", Capturing: "capturing", Done: "done", Cancelled: "cancelled", Failed: "failed",
	} {
		text, err := status.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, want, string(text))
	}
	assert.Equal(t, "status(9)", Status(9).String())
}
