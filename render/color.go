package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// RGB stores explicit 8-bit color channels, decoupled from tcell
type RGB struct {
	R, G, B uint8
}

// Palette
var (
	RGBBlack      = RGB{0, 0, 0}
	RGBText       = RGB{192, 202, 245}
	RGBBackground = RGB{26, 27, 38}
	RGBStatusFg   = RGB{26, 27, 38}
	RGBStatusBg   = RGB{122, 162, 247}
	RGBHeading    = RGB{255, 158, 100}

	// Highlight marker: translucent yellow fill inside an amber ring
	RGBMarkerFill = RGB{255, 255, 0}
	RGBMarkerRing = RGB{255, 191, 0}
)

// ParseHex reads a "#rrggbb" color
func ParseHex(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, err
	}
	return fromColorful(c), nil
}

// Hex formats the color as "#rrggbb"
func (c RGB) Hex() string {
	return c.colorful().Hex()
}

// Blend performs alpha blending: result = src*alpha + dst*(1-alpha)
func (dst RGB) Blend(src RGB, alpha float64) RGB {
	if alpha <= 0 {
		return dst
	}
	if alpha >= 1 {
		return src
	}
	inv := 1.0 - alpha
	return RGB{
		R: uint8(float64(src.R)*alpha + float64(dst.R)*inv + 0.5),
		G: uint8(float64(src.G)*alpha + float64(dst.G)*inv + 0.5),
		B: uint8(float64(src.B)*alpha + float64(dst.B)*inv + 0.5),
	}
}

// Tint mixes src into dst in CIE-Lab space; keeps the marker hue readable over any text color
func (dst RGB) Tint(src RGB, alpha float64) RGB {
	if alpha <= 0 {
		return dst
	}
	if alpha >= 1 {
		return src
	}
	return fromColorful(dst.colorful().BlendLab(src.colorful(), alpha).Clamped())
}

// Color converts to a tcell truecolor value
func (c RGB) Color() tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.RGB255()
	return RGB{r, g, b}
}

// Theme is the marker stylesheet applied to a page
type Theme struct {
	Fill RGB
	Ring RGB
}

// DefaultTheme is the built-in highlight marker look
var DefaultTheme = Theme{Fill: RGBMarkerFill, Ring: RGBMarkerRing}

// ParseTheme reads "#rrggbb" fill and ring colors; empty values keep the defaults
func ParseTheme(fill, ring string) (Theme, error) {
	th := DefaultTheme
	var err error
	if fill != "" {
		if th.Fill, err = ParseHex(fill); err != nil {
			return DefaultTheme, fmt.Errorf("marker fill %q: %w", fill, err)
		}
	}
	if ring != "" {
		if th.Ring, err = ParseHex(ring); err != nil {
			return DefaultTheme, fmt.Errorf("marker ring %q: %w", ring, err)
		}
	}
	return th, nil
}
