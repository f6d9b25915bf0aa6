package hotkey

import (
	"fmt"
	"strings"
)

type keyDef struct {
	name    string
	code    Key
	aliases []string
}

// keyTable is the fixed declaration order of bindable keys. Capture scans
// keys in this order, so the first held key in the table wins.
var keyTable = buildKeyTable()

func buildKeyTable() []keyDef {
	var table []keyDef
	for c := 'A'; c <= 'Z'; c++ {
		table = append(table, keyDef{name: string(c), code: Key(c)})
	}
	for c := '0'; c <= '9'; c++ {
		table = append(table, keyDef{name: string(c), code: Key(c)})
	}
	for i := 0; i < 12; i++ {
		table = append(table, keyDef{name: fmt.Sprintf("F%d", i+1), code: KeyF1 + Key(i)})
	}
	return append(table,
		keyDef{name: "Insert", code: 0x2D},
		keyDef{name: "Delete", code: 0x2E},
		keyDef{name: "Home", code: 0x24},
		keyDef{name: "End", code: 0x23},
		keyDef{name: "PgUp", code: 0x21, aliases: []string{"PAGEUP"}},
		keyDef{name: "PgDn", code: 0x22, aliases: []string{"PAGEDOWN"}},
		keyDef{name: "Space", code: 0x20},
		keyDef{name: "Tab", code: 0x09},
		keyDef{name: "Escape", code: KeyEscape, aliases: []string{"ESC"}},
		keyDef{name: "Backspace", code: 0x08},
		keyDef{name: "Enter", code: 0x0D, aliases: []string{"RETURN"}},
		keyDef{name: "Up", code: 0x26},
		keyDef{name: "Down", code: 0x28},
		keyDef{name: "Left", code: 0x25},
		keyDef{name: "Right", code: 0x27},
		keyDef{name: "PrtSc", code: 0x2C, aliases: []string{"PRINTSCREEN"}},
		keyDef{name: "Pause", code: 0x13},
		keyDef{name: "ScrollLock", code: 0x91},
		keyDef{name: "NumLock", code: 0x90},
		keyDef{name: "CapsLock", code: 0x14},
	)
}

var (
	keyByName = map[string]Key{}
	nameByKey = map[Key]string{}
)

func init() {
	for _, def := range keyTable {
		keyByName[strings.ToUpper(def.name)] = def.code
		for _, alias := range def.aliases {
			keyByName[alias] = def.code
		}
		nameByKey[def.code] = def.name
	}
}

// KeyName returns the display name of k, or a hex code for unknown keys.
func KeyName(k Key) string {
	if name, ok := nameByKey[k]; ok {
		return name
	}
	return fmt.Sprintf("0x%X", uint32(k))
}

// LookupKey returns the key code for a case-insensitive key name.
func LookupKey(name string) (Key, bool) {
	k, ok := keyByName[strings.ToUpper(strings.TrimSpace(name))]
	return k, ok
}

// CapturableKeys returns the non-modifier keys a capture session may bind,
// in scan order. Escape is excluded because it cancels capture.
func CapturableKeys() []Key {
	keys := make([]Key, 0, len(keyTable))
	for _, def := range keyTable {
		if def.code == KeyEscape {
			continue
		}
		keys = append(keys, def.code)
	}
	return keys
}
