package capture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"markestedt/clippath/hotkey"
)

type heldKeys map[hotkey.Key]bool

func (h heldKeys) IsDown(k hotkey.Key) bool { return h[k] }

func held(keys ...hotkey.Key) heldKeys {
	h := heldKeys{}
	for _, k := range keys {
		h[k] = true
	}
	return h
}

func TestDecide(t *testing.T) {
	afterGrace := DefaultTiming.Grace + 50*time.Millisecond

	tests := []struct {
		name    string
		elapsed time.Duration
		keys    heldKeys
		want    Decision
	}{
		{"grace ignores escape", 100 * time.Millisecond, held(hotkey.KeyEscape), Decision{Action: Wait}},
		{"grace ignores combination", 499 * time.Millisecond, held(vkLCtrl, 'K'), Decision{Action: Wait}},
		{"grace ends at its boundary", DefaultTiming.Grace, held(vkLCtrl, 'K'),
			Decision{Action: Candidate, Binding: hotkey.Binding{Modifiers: hotkey.ModCtrl, Key: 'K'}}},
		{"nothing held", afterGrace, held(), Decision{Action: Wait}},
		{"escape cancels", afterGrace, held(hotkey.KeyEscape), Decision{Action: Cancel, Reason: "escape"}},
		{"escape beats a combination", afterGrace, held(hotkey.KeyEscape, vkLCtrl, 'A'), Decision{Action: Cancel, Reason: "escape"}},
		{"escape beats timeout", 11 * time.Second, held(hotkey.KeyEscape), Decision{Action: Cancel, Reason: "escape"}},
		{"timeout", DefaultTiming.Timeout + time.Millisecond, held(), Decision{Action: Cancel, Reason: "timeout"}},
		{"timeout beats a combination", 11 * time.Second, held(vkLCtrl, 'A'), Decision{Action: Cancel, Reason: "timeout"}},
		{"exactly at timeout still scans", DefaultTiming.Timeout, held(vkRShift, 'Z'),
			Decision{Action: Candidate, Binding: hotkey.Binding{Modifiers: hotkey.ModShift, Key: 'Z'}}},
		{"letter without modifier is skipped", afterGrace, held('V'), Decision{Action: Wait}},
		{"modifiers alone wait", afterGrace, held(vkLCtrl, vkLShift, vkLAlt), Decision{Action: Wait}},
		{"function key without modifier", afterGrace, held(0x74),
			Decision{Action: Candidate, Binding: hotkey.Binding{Key: 0x74}}},
		{"skipped letter does not hide a function key", afterGrace, held('V', hotkey.KeyF12),
			Decision{Action: Candidate, Binding: hotkey.Binding{Key: hotkey.KeyF12}}},
		{"first key in table order wins", afterGrace, held(vkLCtrl, 'B', 'A', '1'),
			Decision{Action: Candidate, Binding: hotkey.Binding{Modifiers: hotkey.ModCtrl, Key: 'A'}}},
		{"letters before digits", afterGrace, held(vkLAlt, '7', 'Q'),
			Decision{Action: Candidate, Binding: hotkey.Binding{Modifiers: hotkey.ModAlt, Key: 'Q'}}},
		{"right hand modifiers", afterGrace, held(vkRCtrl, vkRAlt, vkRShift, 0x2E),
			Decision{Action: Candidate, Binding: hotkey.Binding{Modifiers: hotkey.ModCtrl | hotkey.ModAlt | hotkey.ModShift, Key: 0x2E}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.elapsed, tt.keys, DefaultTiming))
		})
	}
}

func TestModifiers(t *testing.T) {
	assert.Equal(t, hotkey.Modifiers(0), Modifiers(held()))
	assert.Equal(t, hotkey.ModCtrl, Modifiers(held(vkRCtrl)))
	assert.Equal(t, hotkey.ModShift|hotkey.ModAlt, Modifiers(held(vkLShift, vkRAlt)))
	assert.Equal(t, hotkey.Modifiers(0), Modifiers(held(0x10, 0x11, 0x12)))
}

func TestKeyFunc(t *testing.T) {
	keys := KeyFunc(func(k hotkey.Key) bool { return k == 'X' })
	assert.True(t, keys.IsDown('X'))
	assert.False(t, keys.IsDown('Y'))
}
