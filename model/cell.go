package model

import "github.com/pkg/errors"

// Cell is the state of one grid position. Its domain is {Dead, Alive}.
type Cell uint8

const (
	Dead  Cell = 0
	Alive Cell = 1
)

// IsAlive reports whether the cell is alive
func (c Cell) IsAlive() bool {
	return c == Alive
}

// CellFromBool maps true to Alive and false to Dead
func CellFromBool(alive bool) Cell {
	if alive {
		return Alive
	}
	return Dead
}

// CellFromValue converts a raw pixel value into a Cell. Values outside {0, 1}
// are rejected with ErrInput unless coerce is set, in which case any non-zero
// value is alive.
func CellFromValue(v int64, coerce bool) (Cell, error) {
	switch {
	case v == 0:
		return Dead, nil
	case v == 1:
		return Alive, nil
	case coerce:
		return Alive, nil
	}
	return Dead, errors.Wrapf(ErrInput, "[CellFromValue] non-binary cell value %d", v)
}
