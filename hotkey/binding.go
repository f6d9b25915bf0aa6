// Package hotkey parses shortcut strings and owns the single global hotkey
// registration.
package hotkey

import (
	"errors"
	"fmt"
	"strings"
)

// Modifiers is a Win32 MOD_* bitmask.
type Modifiers uint32

// Modifier flags accepted by RegisterHotKey.
const (
	ModAlt      Modifiers = 0x0001
	ModCtrl     Modifiers = 0x0002
	ModShift    Modifiers = 0x0004
	ModNoRepeat Modifiers = 0x4000
)

// Key is a Win32 virtual-key code.
type Key uint32

// Virtual-key codes referenced directly by the application.
const (
	KeyEscape Key = 0x1B
	KeyV      Key = 0x56
	KeyF1     Key = 0x70
	KeyF12    Key = 0x7B
)

// ErrInvalidShortcut is wrapped by every Parse error.
var ErrInvalidShortcut = errors.New("invalid shortcut")

// Binding is one hotkey: a modifier set and a key.
type Binding struct {
	Modifiers Modifiers
	Key       Key
}

// Default is used when the configured shortcut cannot be parsed.
var Default = Binding{Modifiers: ModCtrl | ModShift, Key: KeyV}

// IsZero reports whether b has no key.
func (b Binding) IsZero() bool {
	return b.Key == 0
}

// String renders b in canonical form, e.g. "Ctrl+Shift+V".
func (b Binding) String() string {
	var parts []string
	if b.Modifiers&ModCtrl != 0 {
		parts = append(parts, "Ctrl")
	}
	if b.Modifiers&ModAlt != 0 {
		parts = append(parts, "Alt")
	}
	if b.Modifiers&ModShift != 0 {
		parts = append(parts, "Shift")
	}
	parts = append(parts, KeyName(b.Key))
	return strings.Join(parts, "+")
}

// MarshalText implements encoding.TextMarshaler.
func (b Binding) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Binding) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// IsFunctionKey reports whether k is one of F1-F12, the only keys that may
// be bound without a modifier.
func IsFunctionKey(k Key) bool {
	return k >= KeyF1 && k <= KeyF12
}

var modifierByName = map[string]Modifiers{
	"CTRL":    ModCtrl,
	"CONTROL": ModCtrl,
	"SHIFT":   ModShift,
	"ALT":     ModAlt,
}

// Parse converts a string such as "ctrl + shift + v" into a Binding.
// Tokens are case-insensitive and may be padded with whitespace.
func Parse(s string) (Binding, error) {
	if strings.TrimSpace(s) == "" {
		return Binding{}, fmt.Errorf("%w: empty", ErrInvalidShortcut)
	}

	var b Binding
	for _, raw := range strings.Split(s, "+") {
		token := strings.ToUpper(strings.TrimSpace(raw))

		if mod, ok := modifierByName[token]; ok {
			b.Modifiers |= mod
			continue
		}

		key, ok := keyByName[token]
		if !ok {
			return Binding{}, fmt.Errorf("%w: unknown key %q in %q", ErrInvalidShortcut, strings.TrimSpace(raw), s)
		}
		if b.Key != 0 {
			return Binding{}, fmt.Errorf("%w: more than one key in %q", ErrInvalidShortcut, s)
		}
		b.Key = key
	}

	if b.Key == 0 {
		return Binding{}, fmt.Errorf("%w: no key in %q", ErrInvalidShortcut, s)
	}
	if b.Modifiers == 0 && !IsFunctionKey(b.Key) {
		return Binding{}, fmt.Errorf("%w: %q needs Ctrl, Alt or Shift", ErrInvalidShortcut, s)
	}
	return b, nil
}

// MustParse is Parse for constant shortcut strings.
func MustParse(s string) Binding {
	b, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return b
}
