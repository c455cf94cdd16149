package status

import (
	"math"
	"sync/atomic"
)

// Gauge is a float64 value readable from any goroutine
// The zero value reads as 0
type Gauge struct {
	bits atomic.Uint64
}

// Set replaces the value
func (g *Gauge) Set(v float64) {
	g.bits.Store(math.Float64bits(v))
}

// Load returns the value
func (g *Gauge) Load() float64 {
	return math.Float64frombits(g.bits.Load())
}

// Add adds delta and returns the result
func (g *Gauge) Add(delta float64) float64 {
	for {
		old := g.bits.Load()
		next := math.Float64frombits(old) + delta
		if g.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}
