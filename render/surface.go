// Package render composes page content, the spotlight dim overlay and the
// highlight marker onto a tcell screen.
package render

import (
	"math"

	"github.com/lixenwraith/spotlight/parameter"
	"github.com/lixenwraith/spotlight/spotlight"
)

// Surface is a spotlight.Surface over a terminal cell grid
// Handles only record state; drawing happens in Compose on the event loop
type Surface struct {
	cells CellSize
	theme Theme

	overlays []*overlay
	cursors  []*cursor

	pointer       spotlight.Point
	pointerHidden bool
}

// NewSurface returns an empty surface mapping pixels to cells with cs
func NewSurface(cs CellSize) *Surface {
	return &Surface{cells: cs.valid(), theme: DefaultTheme}
}

// SetTheme replaces the marker colors
func (s *Surface) SetTheme(th Theme) {
	s.theme = th
}

// Theme returns the marker colors in use
func (s *Surface) Theme() Theme {
	return s.theme
}

// CellSize returns the pixel footprint used for geometry
func (s *Surface) CellSize() CellSize {
	return s.cells
}

type overlay struct {
	s    *Surface
	mask spotlight.Mask
	dim  float64
}

func (o *overlay) SetMask(m spotlight.Mask) { o.mask = m }
func (o *overlay) SetDim(alpha float64)     { o.dim = alpha }

func (o *overlay) Remove() {
	o.s.overlays = removeHandle(o.s.overlays, o)
}

type cursor struct {
	s  *Surface
	at spotlight.Point
}

func (c *cursor) MoveTo(p spotlight.Point) { c.at = p }

func (c *cursor) Remove() {
	c.s.cursors = removeHandle(c.s.cursors, c)
}

func removeHandle[T comparable](list []T, h T) []T {
	for i, v := range list {
		if v == h {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// CreateOverlay adds a dim layer on top of page content
func (s *Surface) CreateOverlay(style spotlight.OverlayStyle) spotlight.Overlay {
	o := &overlay{s: s, mask: style.Mask, dim: style.Dim}
	s.overlays = append(s.overlays, o)
	return o
}

// CreateCursor adds a highlight marker drawn above every overlay
func (s *Surface) CreateCursor(at spotlight.Point) spotlight.Cursor {
	c := &cursor{s: s, at: at}
	s.cursors = append(s.cursors, c)
	return c
}

// SetPointerHidden toggles the terminal cursor standing in for the native pointer
func (s *Surface) SetPointerHidden(hidden bool) {
	s.pointerHidden = hidden
}

// PointerHidden reports whether the native pointer is suppressed
func (s *Surface) PointerHidden() bool {
	return s.pointerHidden
}

// SetPointer records where the host reports the mouse
func (s *Surface) SetPointer(p spotlight.Point) {
	s.pointer = p
}

// Live returns the number of live overlays and markers
func (s *Surface) Live() (overlays, cursors int) {
	return len(s.overlays), len(s.cursors)
}

// Reset drops every handle and shows the pointer; used when a page closes without its controller
func (s *Surface) Reset() {
	s.overlays = nil
	s.cursors = nil
	s.pointerHidden = false
}

// Compose darkens buf under every overlay and paints the markers
// Dimming is applied to the cell center, so a cell is either inside the hole or shaded by the ramp
func (s *Surface) Compose(buf *Buffer) {
	w, h := buf.Size()
	for _, o := range s.overlays {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				a := o.dim * o.mask.Alpha(s.cells.Center(x, y))
				if a <= 0 {
					continue
				}
				c := buf.Get(x, y)
				c.Fg = c.Fg.Blend(RGBBlack, a)
				c.Bg = c.Bg.Blend(RGBBlack, a)
				buf.Set(x, y, c)
			}
		}
	}
	for _, c := range s.cursors {
		s.drawMarker(buf, c.at)
	}
}

func (s *Surface) drawMarker(buf *Buffer, at spotlight.Point) {
	r := parameter.CursorMarkerRadius
	ring := r - parameter.CursorMarkerRingWidth

	x0, y0 := s.cells.Cell(spotlight.Point{X: at.X - r, Y: at.Y - r})
	x1, y1 := s.cells.Cell(spotlight.Point{X: at.X + r, Y: at.Y + r})
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			p := s.cells.Center(x, y)
			d := math.Hypot(p.X-at.X, p.Y-at.Y)
			// Cells smaller than the marker always get the cell under the pointer
			hit := x == int(math.Floor(at.X/s.cells.Width)) && y == int(math.Floor(at.Y/s.cells.Height))
			if d > r && !hit {
				continue
			}
			c := buf.Get(x, y)
			if d >= ring && d <= r {
				c.Bg = c.Bg.Tint(s.theme.Ring, parameter.CursorMarkerRingAlpha)
			} else {
				c.Bg = c.Bg.Tint(s.theme.Fill, parameter.CursorMarkerFillAlpha)
			}
			buf.Set(x, y, c)
		}
	}
}

// PlaceCursor shows the terminal cursor on the pointer cell or hides it
func (s *Surface) PlaceCursor(scr Screen) {
	if s.pointerHidden {
		scr.HideCursor()
		return
	}
	col, row := s.cells.Cell(s.pointer)
	scr.ShowCursor(col, row)
}
