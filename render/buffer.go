package render

import (
	"github.com/gdamore/tcell/v2"
)

// Cell is one terminal grid position
type Cell struct {
	Rune rune
	Fg   RGB
	Bg   RGB
}

var emptyCell = Cell{Rune: ' ', Fg: RGBText, Bg: RGBBackground}

// Buffer is a width x height cell grid composed before every Show
type Buffer struct {
	cells  []Cell
	width  int
	height int
}

// NewBuffer creates a cleared buffer
func NewBuffer(width, height int) *Buffer {
	b := &Buffer{}
	b.Resize(width, height)
	return b
}

// Size returns the grid dimensions
func (b *Buffer) Size() (width, height int) {
	return b.width, b.height
}

// Resize adjusts dimensions, reallocating only if capacity is insufficient
func (b *Buffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	size := width * height
	if cap(b.cells) < size {
		b.cells = make([]Cell, size)
	} else {
		b.cells = b.cells[:size]
	}
	b.width = width
	b.height = height
	b.Clear()
}

// Clear resets every cell using exponential copy
func (b *Buffer) Clear() {
	if len(b.cells) == 0 {
		return
	}
	b.cells[0] = emptyCell
	for filled := 1; filled < len(b.cells); filled *= 2 {
		copy(b.cells[filled:], b.cells[:filled])
	}
}

func (b *Buffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Get returns the cell at (x, y); out of bounds reads as an empty cell
func (b *Buffer) Get(x, y int) Cell {
	if !b.inBounds(x, y) {
		return emptyCell
	}
	return b.cells[y*b.width+x]
}

// Set writes a cell, ignoring out of bounds positions
func (b *Buffer) Set(x, y int, c Cell) {
	if b.inBounds(x, y) {
		b.cells[y*b.width+x] = c
	}
}

// Text writes s starting at (x, y) and returns the column after the last rune
func (b *Buffer) Text(x, y int, s string, fg, bg RGB) int {
	for _, r := range s {
		b.Set(x, y, Cell{Rune: r, Fg: fg, Bg: bg})
		x++
	}
	return x
}

// Fill paints a row segment with spaces
func (b *Buffer) Fill(x, y, width int, bg RGB) {
	for i := 0; i < width; i++ {
		b.Set(x+i, y, Cell{Rune: ' ', Fg: bg, Bg: bg})
	}
}

// Screen is the subset of tcell.Screen the renderer draws to
type Screen interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	ShowCursor(x, y int)
	HideCursor()
	Show()
}

// Flush copies the buffer to the screen; Show is left to the caller
func (b *Buffer) Flush(s Screen) {
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			c := b.cells[y*b.width+x]
			style := tcell.StyleDefault.Foreground(c.Fg.Color()).Background(c.Bg.Color())
			s.SetContent(x, y, c.Rune, nil, style)
		}
	}
}
