package hotkey

import (
	"fmt"
	"strings"
)

// Key identifies a modifier key usable as a spotlight trigger
type Key uint8

const (
	KeyCtrl Key = iota
	KeyShift
	KeyAlt
)

var keyNames = [...]string{
	KeyCtrl:  "ctrl",
	KeyShift: "shift",
	KeyAlt:   "alt",
}

// String returns the persisted name of the key
func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return fmt.Sprintf("key(%d)", uint8(k))
}

// Valid reports whether k is one of the known modifier keys
func (k Key) Valid() bool {
	return int(k) < len(keyNames)
}

// ParseKey resolves a persisted key name, case-insensitive
func ParseKey(s string) (Key, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range keyNames {
		if n == name {
			return Key(i), nil
		}
	}
	return 0, fmt.Errorf("unknown modifier key %q", s)
}

// Keys returns all modifier keys in declaration order
func Keys() []Key {
	return []Key{KeyCtrl, KeyShift, KeyAlt}
}
