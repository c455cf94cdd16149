package spotlight

import (
	"fmt"
	"math"

	"github.com/lixenwraith/spotlight/parameter"
)

// Point is a viewport position in pixels
type Point struct {
	X, Y float64
}

// Mask is the radial transparency mask punched into the dim layer
// Alpha is 0 (content fully visible) up to Inner, ramps to RingAlpha at Edge,
// reaches 1 (fully dimmed) at Outer and stays opaque beyond
type Mask struct {
	Center Point
	Inner  float64 // radius - gradient; may be zero or negative
	Edge   float64 // radius
	Outer  float64 // radius + 1
}

// NewMask builds the mask for a pointer position and radius/gradient pair
func NewMask(center Point, radius, gradient float64) Mask {
	return Mask{
		Center: center,
		Inner:  radius - gradient,
		Edge:   radius,
		Outer:  radius + parameter.MaskOpaqueOffset,
	}
}

// Alpha returns the mask opacity at p in [0,1]
// Stops are interpolated linearly the way a radial gradient interpolates
// color stops, including stops at negative positions
func (m Mask) Alpha(p Point) float64 {
	d := math.Hypot(p.X-m.Center.X, p.Y-m.Center.Y)
	switch {
	case d <= m.Inner:
		return 0
	case d >= m.Outer:
		return 1
	case d <= m.Edge:
		span := m.Edge - m.Inner
		if span <= 0 {
			return parameter.MaskRingAlpha
		}
		return parameter.MaskRingAlpha * (d - m.Inner) / span
	default:
		span := m.Outer - m.Edge
		t := (d - m.Edge) / span
		return parameter.MaskRingAlpha + (1-parameter.MaskRingAlpha)*t
	}
}

// CSS renders the mask as a radial-gradient image value
func (m Mask) CSS() string {
	return fmt.Sprintf("radial-gradient(circle at %spx %spx, transparent %spx, rgba(0,0,0,%s) %spx, black %spx)",
		num(m.Center.X), num(m.Center.Y), num(m.Inner), num(parameter.MaskRingAlpha), num(m.Edge), num(m.Outer))
}

func (m Mask) String() string {
	return fmt.Sprintf("mask@(%s,%s) inner=%s edge=%s outer=%s",
		num(m.Center.X), num(m.Center.Y), num(m.Inner), num(m.Edge), num(m.Outer))
}

func num(f float64) string {
	return fmt.Sprintf("%g", f)
}
