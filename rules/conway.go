package rules

import "github.com/sheikhrachel/go-gol/model"

/*
ApplyConwayRules applies Conway's Game of Life rules to determine the next state of a cell.

	alive, neighbors < 2  -> dead (underpopulation)
	alive, neighbors 2..3 -> alive
	alive, neighbors > 3  -> dead (overcrowding)
	dead,  neighbors == 3 -> alive (reproduction)
	dead,  otherwise      -> dead
*/
func ApplyConwayRules(neighbors int, alive bool) bool {
	return (alive && neighbors == 2) || neighbors == 3
}

// NextCell returns the state of a cell in the following generation given its
// current state and live neighbor count.
func NextCell(current model.Cell, neighbors int) model.Cell {
	return model.CellFromBool(ApplyConwayRules(neighbors, current.IsAlive()))
}
