package settings

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lixenwraith/spotlight/hotkey"
)

// Editor is the settings-editing surface: a plain store client that reads
// the defaults record shape and writes single keys or a full reset
// It exchanges no messages with controllers; they observe its writes through the store
type Editor struct {
	store Store
}

// NewEditor creates an editor over store
func NewEditor(store Store) *Editor {
	return &Editor{store: store}
}

// Load returns the complete settings, defaults filling missing keys
// Read failures fall back to defaults and the error is returned alongside
func (e *Editor) Load(ctx context.Context) (Settings, error) {
	rec, err := e.store.Get(ctx, DefaultRecord())
	if err != nil {
		return Defaults(), err
	}
	return FromRecord(Defaults(), rec)
}

// Set validates and writes a single key
func (e *Editor) Set(ctx context.Context, k Key, v any) error {
	var probe Settings
	if err := probe.Apply(k, v); err != nil {
		return err
	}
	return e.store.Set(ctx, Record{k.String(): probe.Value(k)})
}

// SetString parses user-entered text for the named key and writes it
func (e *Editor) SetString(ctx context.Context, name, raw string) error {
	k, ok := LookupKey(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	v, err := ParseValue(k, raw)
	if err != nil {
		return err
	}
	return e.Set(ctx, k, v)
}

// Update applies fn to the current settings and writes only the keys it changed
func (e *Editor) Update(ctx context.Context, fn func(*Settings)) error {
	cur, err := e.Load(ctx)
	if err != nil {
		return err
	}
	next := cur
	fn(&next)

	changed := Record{}
	for _, k := range Keys() {
		if cur.Value(k) != next.Value(k) {
			changed[k.String()] = next.Value(k)
		}
	}
	if len(changed) == 0 {
		return nil
	}
	return e.store.Set(ctx, changed)
}

// Reset writes the complete defaults record
func (e *Editor) Reset(ctx context.Context) error {
	return e.store.Set(ctx, DefaultRecord())
}

// ParseValue converts user-entered text into the wire value for k
// dimOpacity accepts a fraction ("0.7") or a percentage ("70%")
func ParseValue(k Key, raw string) (any, error) {
	s := strings.TrimSpace(raw)
	switch k {
	case KeySpotlightRadius, KeyGradientSize:
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
		if err != nil || !finite(f) || f < 0 {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidValue, k, raw)
		}
		return f, nil
	case KeyDimOpacity:
		pct := strings.HasSuffix(s, "%")
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil || !finite(f) {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidValue, k, raw)
		}
		if pct {
			f /= 100
		}
		if f < 0 || f > 1 {
			return nil, fmt.Errorf("%w: %s=%q out of range", ErrInvalidValue, k, raw)
		}
		return f, nil
	case KeyHotkey1, KeyHotkey2:
		hk, err := hotkey.ParseKey(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, k, err)
		}
		return hk.String(), nil
	case KeyCursorStyle:
		cs, err := ParseCursorStyle(s)
		if err != nil {
			return nil, err
		}
		return cs.String(), nil
	case KeyEnabled:
		b, err := strconv.ParseBool(s)
		if err != nil {
			switch strings.ToLower(s) {
			case "on", "yes":
				return true, nil
			case "off", "no":
				return false, nil
			}
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidValue, k, raw)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKey, k)
}

// LookupKey resolves a record key or one of its short CLI aliases
func LookupKey(name string) (Key, bool) {
	if k, ok := ParseKey(name); ok {
		return k, true
	}
	return parseAlias(name)
}

// parseAlias accepts short CLI names for keys
func parseAlias(name string) (Key, bool) {
	switch strings.ToLower(name) {
	case "radius":
		return KeySpotlightRadius, true
	case "dim", "opacity":
		return KeyDimOpacity, true
	case "gradient", "softness":
		return KeyGradientSize, true
	case "cursor":
		return KeyCursorStyle, true
	case "enabled":
		return KeyEnabled, true
	}
	return 0, false
}
