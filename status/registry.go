// Package status holds process-wide counters and readouts shown in the
// viewer status bar and written to the log on shutdown.
package status

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
)

// Registry groups metrics by value type
// Components cache pointers at construction and update them lock-free
type Registry struct {
	Flags  *MetricMap[atomic.Bool]
	Ints   *MetricMap[atomic.Int64]
	Gauges *MetricMap[Gauge]
	Labels *MetricMap[Label]
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{
		Flags:  NewMetricMap[atomic.Bool](),
		Ints:   NewMetricMap[atomic.Int64](),
		Gauges: NewMetricMap[Gauge](),
		Labels: NewMetricMap[Label](),
	}
}

// Len returns the number of metrics across all types
func (r *Registry) Len() int {
	return r.Flags.Len() + r.Ints.Len() + r.Gauges.Len() + r.Labels.Len()
}

// Snapshot formats every metric as key to display value
func (r *Registry) Snapshot() map[string]string {
	out := make(map[string]string, r.Len())
	r.Flags.Range(func(k string, v *atomic.Bool) { out[k] = strconv.FormatBool(v.Load()) })
	r.Ints.Range(func(k string, v *atomic.Int64) { out[k] = strconv.FormatInt(v.Load(), 10) })
	r.Gauges.Range(func(k string, v *Gauge) { out[k] = strconv.FormatFloat(v.Load(), 'g', 4, 64) })
	r.Labels.Range(func(k string, v *Label) { out[k] = v.Load() })
	return out
}

// Line renders the named metrics as "key=value" pairs separated by two spaces
// Keys are shown without the prefix up to the last dot; unknown keys are skipped
// With no keys every metric is rendered in sorted order
func (r *Registry) Line(keys ...string) string {
	snap := r.Snapshot()
	if len(keys) == 0 {
		for k := range snap {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}

	var b strings.Builder
	for _, k := range keys {
		v, ok := snap[k]
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("  ")
		}
		short := k
		if i := strings.LastIndexByte(k, '.'); i >= 0 {
			short = k[i+1:]
		}
		fmt.Fprintf(&b, "%s=%s", short, v)
	}
	return b.String()
}

// LogAttrs returns the snapshot as alternating key/value arguments for slog
func (r *Registry) LogAttrs() []any {
	snap := r.Snapshot()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, k, snap[k])
	}
	return args
}
