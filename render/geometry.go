package render

import (
	"math"

	"github.com/lixenwraith/spotlight/parameter"
	"github.com/lixenwraith/spotlight/spotlight"
)

// CellSize is the pixel footprint of one terminal cell
type CellSize struct {
	Width, Height float64
}

// DefaultCellSize matches a common 8x16 terminal font
var DefaultCellSize = CellSize{Width: parameter.DefaultCellWidth, Height: parameter.DefaultCellHeight}

func (cs CellSize) valid() CellSize {
	if cs.Width <= 0 || cs.Height <= 0 {
		return DefaultCellSize
	}
	return cs
}

// Center returns the pixel center of cell (col, row)
func (cs CellSize) Center(col, row int) spotlight.Point {
	cs = cs.valid()
	return spotlight.Point{
		X: (float64(col) + 0.5) * cs.Width,
		Y: (float64(row) + 0.5) * cs.Height,
	}
}

// Cell returns the cell containing pixel p
func (cs CellSize) Cell(p spotlight.Point) (col, row int) {
	cs = cs.valid()
	return int(math.Floor(p.X / cs.Width)), int(math.Floor(p.Y / cs.Height))
}
