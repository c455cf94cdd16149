package settings

import (
	"maps"
	"reflect"
)

// Record is the store wire shape: persisted key name to scalar value
type Record map[string]any

// Clone returns a shallow copy
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	return maps.Clone(r)
}

// DefaultRecord is the full defaults record used by the editing surface
func DefaultRecord() Record {
	return Defaults().Record()
}

// ControllerDefaults is the defaults record a controller loads its visual settings with
func ControllerDefaults() Record {
	full := DefaultRecord()
	out := make(Record, len(full)-1)
	for _, k := range VisualKeys() {
		out[k.String()] = full[k.String()]
	}
	return out
}

// EnabledDefaults is the defaults record for the separate enabled-flag read
func EnabledDefaults() Record {
	return Record{KeyEnabled.String(): true}
}

// Merge overlays stored values onto defaults; only keys named in defaults are returned
func Merge(defaults, stored Record) Record {
	out := make(Record, len(defaults))
	for k, v := range defaults {
		if sv, ok := stored[k]; ok {
			out[k] = sv
		} else {
			out[k] = v
		}
	}
	return out
}

// Normalize canonicalises decoded values so equal settings compare equal
// regardless of the codec: every integer or float becomes float64
func Normalize(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		if f, ok := toFloat(v); ok {
			out[k] = f
			continue
		}
		out[k] = v
	}
	return out
}

// Diff returns the per-key changes turning prev into next
// Keys absent from next are not reported as removals
func Diff(prev, next Record) Changes {
	changes := make(Changes)
	for k, nv := range next {
		ov, had := prev[k]
		if had && reflect.DeepEqual(ov, nv) {
			continue
		}
		changes[k] = Change{NewValue: nv, OldValue: ov}
	}
	return changes
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
