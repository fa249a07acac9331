package model

import (
	"crypto/md5"
	"fmt"

	"github.com/pkg/errors"
)

// Grid is one generation of the board: rows × cols cells stored row-major.
// Every Grid owns its backing slice, nothing is shared between grids.
type Grid struct {
	rows  int
	cols  int
	cells []Cell
}

// NewGrid creates an all-dead grid with the specified dimensions
func NewGrid(rows, cols int) *Grid {
	rows, cols = max(rows, 0), max(cols, 0)
	return &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
	}
}

// NewGridFromRows builds a grid from a slice of rows. The rows are copied.
// Ragged input, empty input and values outside {0, 1} fail with ErrInput.
func NewGridFromRows(data [][]Cell) (*Grid, error) {
	if len(data) == 0 || len(data[0]) == 0 {
		return nil, errors.Wrap(ErrInput, "[NewGridFromRows] grid has no cells")
	}

	g := NewGrid(len(data), len(data[0]))
	for r, row := range data {
		if len(row) != g.cols {
			return nil, errors.Wrapf(ErrInput, "[NewGridFromRows] row %d has %d cells, want %d", r, len(row), g.cols)
		}
		for c, cell := range row {
			if cell != Dead && cell != Alive {
				return nil, errors.Wrapf(ErrInput, "[NewGridFromRows] cell (%d,%d) has value %d", r, c, cell)
			}
		}
		copy(g.cells[r*g.cols:], row)
	}
	return g, nil
}

// Rows returns the number of rows
func (g *Grid) Rows() int {
	return g.rows
}

// Cols returns the number of columns
func (g *Grid) Cols() int {
	return g.cols
}

// Validate checks the grid is non-empty, rectangular and strictly binary.
func (g *Grid) Validate() error {
	if g == nil || g.rows <= 0 || g.cols <= 0 {
		return errors.Wrap(ErrInput, "[Grid.Validate] grid has no cells")
	}
	if len(g.cells) != g.rows*g.cols {
		return errors.Wrapf(ErrInvariant, "[Grid.Validate] %d cells for a %dx%d grid", len(g.cells), g.rows, g.cols)
	}
	for i, cell := range g.cells {
		if cell != Dead && cell != Alive {
			return errors.Wrapf(ErrInput, "[Grid.Validate] cell (%d,%d) has value %d", i/g.cols, i%g.cols, cell)
		}
	}
	return nil
}

// Reset resets the grid to new dimensions, all cells dead
func (g *Grid) Reset(rows, cols int) {
	rows, cols = max(rows, 0), max(cols, 0)
	g.rows = rows
	g.cols = cols

	if cap(g.cells) < rows*cols {
		g.cells = make([]Cell, rows*cols)
		return
	}
	g.cells = g.cells[:rows*cols]
	g.Clear()
}

// Clear kills all cells
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = Dead
	}
}

// Set sets a cell. Out of range coordinates are ignored.
func (g *Grid) Set(row, col int, c Cell) {
	if row >= 0 && row < g.rows && col >= 0 && col < g.cols {
		g.cells[row*g.cols+col] = c
	}
}

// Get returns the state of a cell. Out of range coordinates read as Dead.
func (g *Grid) Get(row, col int) Cell {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return Dead
	}
	return g.cells[row*g.cols+col]
}

// Row returns a copy of one row
func (g *Grid) Row(row int) []Cell {
	out := make([]Cell, g.cols)
	if row >= 0 && row < g.rows {
		copy(out, g.cells[row*g.cols:(row+1)*g.cols])
	}
	return out
}

// ToRows returns a deep copy of the grid as a slice of rows
func (g *Grid) ToRows() [][]Cell {
	out := make([][]Cell, g.rows)
	for r := range g.rows {
		out[r] = g.Row(r)
	}
	return out
}

// Clone returns a deep copy of the grid
func (g *Grid) Clone() *Grid {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return &Grid{rows: g.rows, cols: g.cols, cells: cells}
}

// Equal compares two grids cell by cell
func (g *Grid) Equal(other *Grid) bool {
	if g.rows != other.rows || g.cols != other.cols {
		return false
	}
	for i, cell := range g.cells {
		if other.cells[i] != cell {
			return false
		}
	}
	return true
}

// CountLivingCells returns the total number of living cells
func (g *Grid) CountLivingCells() (count int) {
	for _, cell := range g.cells {
		if cell.IsAlive() {
			count++
		}
	}
	return
}

// GetGridHash returns an MD5 fingerprint of the grid shape and cells
func (g *Grid) GetGridHash() string {
	h := md5.New()
	fmt.Fprintf(h, "%dx%d:", g.rows, g.cols)
	for _, cell := range g.cells {
		h.Write([]byte{byte(cell)})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
