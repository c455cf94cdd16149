// Package settings defines the shared spotlight settings record, its
// persisted key names and the store contract every page instance reads
// from and subscribes to.
package settings

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lixenwraith/spotlight/hotkey"
)

var (
	// ErrUnknownKey is returned for keys outside the settings schema
	ErrUnknownKey = errors.New("unknown settings key")
	// ErrInvalidValue is returned when a value cannot be coerced to the key's type
	ErrInvalidValue = errors.New("invalid settings value")
	// ErrUnavailable is returned by stores that cannot be read or written
	ErrUnavailable = errors.New("settings store unavailable")
)

// CursorStyle is the pointer policy while the spotlight is active
type CursorStyle uint8

const (
	CursorNormal    CursorStyle = iota // native pointer, no marker
	CursorHighlight                    // native pointer hidden, marker follows pointer
	CursorNone                         // native pointer hidden, no marker
)

var cursorStyleNames = [...]string{
	CursorNormal:    "normal",
	CursorHighlight: "highlight",
	CursorNone:      "none",
}

func (c CursorStyle) String() string {
	if int(c) < len(cursorStyleNames) {
		return cursorStyleNames[c]
	}
	return fmt.Sprintf("cursor(%d)", uint8(c))
}

// HidesPointer reports whether the native pointer is hidden under this style
func (c CursorStyle) HidesPointer() bool {
	return c != CursorNormal
}

// ParseCursorStyle resolves a persisted cursor style name
func ParseCursorStyle(s string) (CursorStyle, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range cursorStyleNames {
		if n == name {
			return CursorStyle(i), nil
		}
	}
	return 0, fmt.Errorf("%w: cursor style %q", ErrInvalidValue, s)
}

// Key identifies one field of the settings record
type Key uint8

const (
	KeySpotlightRadius Key = iota
	KeyDimOpacity
	KeyGradientSize
	KeyHotkey1
	KeyHotkey2
	KeyCursorStyle
	KeyEnabled
)

var keyNames = [...]string{
	KeySpotlightRadius: "spotlightRadius",
	KeyDimOpacity:      "dimOpacity",
	KeyGradientSize:    "gradientSize",
	KeyHotkey1:         "hotkey1",
	KeyHotkey2:         "hotkey2",
	KeyCursorStyle:     "cursorStyle",
	KeyEnabled:         "isEnabled",
}

// String returns the persisted record key
func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return fmt.Sprintf("key(%d)", uint8(k))
}

// ParseKey resolves a persisted record key; matching is exact
func ParseKey(name string) (Key, bool) {
	for i, n := range keyNames {
		if n == name {
			return Key(i), true
		}
	}
	return 0, false
}

// Keys returns every settings key in stable order
func Keys() []Key {
	return []Key{KeySpotlightRadius, KeyDimOpacity, KeyGradientSize, KeyHotkey1, KeyHotkey2, KeyCursorStyle, KeyEnabled}
}

// VisualKeys returns the keys that affect overlay appearance, excluding the enabled flag
func VisualKeys() []Key {
	return Keys()[:KeyEnabled]
}

// Settings is the shared, persisted spotlight configuration
type Settings struct {
	SpotlightRadius float64 // px
	DimOpacity      float64 // [0,1]
	GradientSize    float64 // px
	Hotkey1         hotkey.Key
	Hotkey2         hotkey.Key
	CursorStyle     CursorStyle
	IsEnabled       bool
}

// Defaults returns the compiled-in settings
func Defaults() Settings {
	return Settings{
		SpotlightRadius: 125,
		DimOpacity:      0.7,
		GradientSize:    20,
		Hotkey1:         hotkey.KeyCtrl,
		Hotkey2:         hotkey.KeyShift,
		CursorStyle:     CursorHighlight,
		IsEnabled:       true,
	}
}

// Effective returns a copy clamped for rendering: radius non-negative,
// opacity within [0,1] and the soft edge strictly inside the lit radius
// Non-finite fields fall back to their defaults
func (s Settings) Effective() Settings {
	out := s
	d := Defaults()
	if !finite(out.SpotlightRadius) {
		out.SpotlightRadius = d.SpotlightRadius
	}
	if !finite(out.DimOpacity) {
		out.DimOpacity = d.DimOpacity
	}
	if !finite(out.GradientSize) {
		out.GradientSize = d.GradientSize
	}
	out.SpotlightRadius = max(out.SpotlightRadius, 0)
	out.DimOpacity = min(max(out.DimOpacity, 0), 1)
	out.GradientSize = max(out.GradientSize, 0)
	if out.SpotlightRadius == 0 {
		out.GradientSize = 0
	} else if out.GradientSize >= out.SpotlightRadius {
		out.GradientSize = max(out.SpotlightRadius-1, 0)
	}
	return out
}

// Value returns the wire value of a single key
func (s Settings) Value(k Key) any {
	switch k {
	case KeySpotlightRadius:
		return s.SpotlightRadius
	case KeyDimOpacity:
		return s.DimOpacity
	case KeyGradientSize:
		return s.GradientSize
	case KeyHotkey1:
		return s.Hotkey1.String()
	case KeyHotkey2:
		return s.Hotkey2.String()
	case KeyCursorStyle:
		return s.CursorStyle.String()
	case KeyEnabled:
		return s.IsEnabled
	}
	return nil
}

// Apply sets a single key from a wire value
// The receiver is left untouched when the value cannot be coerced
func (s *Settings) Apply(k Key, v any) error {
	switch k {
	case KeySpotlightRadius, KeyDimOpacity, KeyGradientSize:
		f, ok := toFloat(v)
		if !ok || !finite(f) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidValue, k, v)
		}
		switch k {
		case KeySpotlightRadius:
			s.SpotlightRadius = f
		case KeyDimOpacity:
			s.DimOpacity = f
		default:
			s.GradientSize = f
		}
	case KeyHotkey1, KeyHotkey2:
		str, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: %s=%v", ErrInvalidValue, k, v)
		}
		hk, err := hotkey.ParseKey(str)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, k, err)
		}
		if k == KeyHotkey1 {
			s.Hotkey1 = hk
		} else {
			s.Hotkey2 = hk
		}
	case KeyCursorStyle:
		str, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: %s=%v", ErrInvalidValue, k, v)
		}
		cs, err := ParseCursorStyle(str)
		if err != nil {
			return err
		}
		s.CursorStyle = cs
	case KeyEnabled:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%w: %s=%v", ErrInvalidValue, k, v)
		}
		s.IsEnabled = b
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, k)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Record encodes every key into the store wire shape
func (s Settings) Record() Record {
	r := make(Record, len(keyNames))
	for _, k := range Keys() {
		r[k.String()] = s.Value(k)
	}
	return r
}

// FromRecord decodes recognised keys of r over base
// Unknown keys are ignored; malformed values keep the base value and are
// reported in the returned error
func FromRecord(base Settings, r Record) (Settings, error) {
	out := base
	var errs []error
	for _, k := range Keys() {
		v, ok := r[k.String()]
		if !ok {
			continue
		}
		if err := out.Apply(k, v); err != nil {
			errs = append(errs, err)
		}
	}
	return out, errors.Join(errs...)
}
