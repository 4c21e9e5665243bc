package vt

// Buffer is a fixed-size grid of cells. Both the emulated screen and the
// host UI's frame use it, so blitting one into the other is a plain copy.
type Buffer struct {
	cells  [][]Cell
	width  int
	height int
}

// NewBuffer returns a width×height buffer of blank default-styled cells.
// Non-positive dimensions are clamped to zero.
func NewBuffer(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	b := &Buffer{width: width, height: height}
	b.cells = make([][]Cell, height)
	for y := range b.cells {
		b.cells[y] = blankRow(width, DefaultStyle())
	}
	return b
}

func blankRow(width int, style Style) []Cell {
	row := make([]Cell, width)
	for x := range row {
		row[x] = BlankCell(style)
	}
	return row
}

func (b *Buffer) Width() int  { return b.width }
func (b *Buffer) Height() int { return b.height }

// Cell returns the cell at (x, y), or a blank cell when out of bounds.
func (b *Buffer) Cell(x, y int) Cell {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return BlankCell(DefaultStyle())
	}
	return b.cells[y][x]
}

// SetCell writes the cell at (x, y). Out-of-bounds writes are dropped.
func (b *Buffer) SetCell(x, y int, c Cell) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return
	}
	b.cells[y][x] = c
}

// Fill overwrites every cell.
func (b *Buffer) Fill(c Cell) {
	for y := range b.cells {
		row := b.cells[y]
		for x := range row {
			row[x] = c
		}
	}
}

// Row returns the backing slice for row y, or nil when out of bounds.
// Callers may mutate it in place.
func (b *Buffer) Row(y int) []Cell {
	if y < 0 || y >= b.height {
		return nil
	}
	return b.cells[y]
}
