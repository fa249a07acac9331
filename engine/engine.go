// Package engine evolves a toroidal Game of Life grid for a bounded number of
// generations, stopping early once a generation equals its predecessor.
package engine

import (
	"context"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-gol/model"
	"github.com/sheikhrachel/go-gol/rules"
	"github.com/sheikhrachel/go-gol/utils"
)

// ProgressFunc is called once per completed cycle with (cycle, total).
type ProgressFunc func(cycle, total int)

// SimulationResult is the outcome of Run.
type SimulationResult struct {
	Grid *model.Grid
	// Cycle is the index of the step that produced Grid.
	Cycle int
	// Stable is true when the run ended on a fixed point rather than the bound.
	Stable bool
	Stats  *utils.Stats
}

// Engine applies the Game of Life rule to grids. The zero value is not
// usable; build one with New.
type Engine struct {
	parallel bool
	workers  int
	pool     *model.GridPool
	progress ProgressFunc
}

// Option customises an Engine.
type Option func(*Engine)

// WithProgress installs a per-cycle observer.
func WithProgress(f ProgressFunc) Option {
	return func(e *Engine) { e.progress = f }
}

// WithPool recycles superseded generation buffers through pool.
func WithPool(pool *model.GridPool) Option {
	return func(e *Engine) { e.pool = pool }
}

// WithWorkers sets the worker count for parallel steps. n <= 0 means
// runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// Sequential disables the parallel step.
func Sequential() Option {
	return func(e *Engine) { e.parallel = false }
}

// New returns an engine that steps in parallel on all CPUs by default.
func New(opts ...Option) *Engine {
	e := &Engine{parallel: true}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers <= 0 {
		e.workers = runtime.NumCPU()
	}
	return e
}

// NewFromConfig builds an engine from a run configuration.
func NewFromConfig(config utils.Config, opts ...Option) *Engine {
	base := []Option{WithWorkers(config.Workers)}
	if !config.UseParallel {
		base = append(base, Sequential())
	}
	if config.UseMemoryPool {
		base = append(base, WithPool(model.NewGridPool()))
	}
	return New(append(base, opts...)...)
}

// CountLiveNeighbors sums the 8 Moore neighbors of (row, col), wrapping each
// axis independently. Only the zero offset is skipped, so on grids narrower
// than 3 in a dimension wrapped neighbors may alias the cell itself and are
// counted once per offset.
func CountLiveNeighbors(g *model.Grid, row, col int) int {
	rows, cols := g.Rows(), g.Cols()
	rs := [3]int{(row - 1 + rows) % rows, row, (row + 1) % rows}
	cs := [3]int{(col - 1 + cols) % cols, col, (col + 1) % cols}

	count := 0
	for i, r := range rs {
		for j, c := range cs {
			if i == 1 && j == 1 {
				continue
			}
			count += int(g.Get(r, c))
		}
	}
	return count
}

// Step computes the generation after g into a new grid. g is not modified.
func (e *Engine) Step(g *model.Grid) *model.Grid {
	next := e.newGrid(g.Rows(), g.Cols())
	if e.parallel && e.workers > 1 {
		e.stepParallel(g, next)
	} else {
		stepRows(g, next, 0, g.Rows())
	}
	return next
}

// Step computes the generation after g with a default engine.
func Step(g *model.Grid) *model.Grid {
	return New(Sequential()).Step(g)
}

func (e *Engine) newGrid(rows, cols int) *model.Grid {
	if e.pool != nil {
		return e.pool.Get(rows, cols)
	}
	return model.NewGrid(rows, cols)
}

// stepRows fills rows [startRow, endRow) of next from cur.
func stepRows(cur, next *model.Grid, startRow, endRow int) {
	for r := startRow; r < endRow; r++ {
		for c := range cur.Cols() {
			next.Set(r, c, rules.NextCell(cur.Get(r, c), CountLiveNeighbors(cur, r, c)))
		}
	}
}

// stepParallel splits the grid into row bands. Workers only read cur and each
// writes a disjoint band of next; Wait is the generation barrier.
func (e *Engine) stepParallel(cur, next *model.Grid) {
	var (
		eg            errgroup.Group
		rows          = cur.Rows()
		rowsPerWorker = (rows + e.workers - 1) / e.workers
	)

	for i := range e.workers {
		var (
			startRow = i * rowsPerWorker
			endRow   = min(startRow+rowsPerWorker, rows)
		)
		if startRow >= rows {
			break
		}

		eg.Go(func() error {
			stepRows(cur, next, startRow, endRow)
			return nil
		})
	}

	// workers never fail
	_ = eg.Wait()
}

// Run steps initial up to cycles times, stopping at the first generation
// equal to its predecessor. Run works on a clone, so initial is never
// modified or recycled.
func (e *Engine) Run(ctx context.Context, initial *model.Grid, cycles int) (SimulationResult, error) {
	if cycles <= 0 {
		return SimulationResult{}, errors.Wrapf(model.ErrConfig, "[Engine.Run] cycles must be positive, got %d", cycles)
	}
	if err := initial.Validate(); err != nil {
		return SimulationResult{}, errors.Wrap(err, "[Engine.Run] invalid initial grid")
	}

	stats := utils.NewStats()
	prev := initial.Clone()
	for cycle := 1; cycle <= cycles; cycle++ {
		if err := ctx.Err(); err != nil {
			model.GridToPool(prev, e.pool)
			return SimulationResult{}, errors.Wrapf(err, "[Engine.Run] stopped before cycle %d", cycle)
		}

		start := time.Now()
		next := e.Step(prev)
		stats.Update(cycle, next.CountLivingCells(), time.Since(start))

		if e.progress != nil {
			e.progress(cycle, cycles)
		}

		stable := next.Equal(prev)
		model.GridToPool(prev, e.pool)
		if stable || cycle == cycles {
			return SimulationResult{Grid: next, Cycle: cycle, Stable: stable, Stats: stats}, nil
		}
		prev = next
	}

	// unreachable: the loop returns on its last cycle
	return SimulationResult{}, errors.Wrap(model.ErrInvariant, "[Engine.Run] loop exited without a result")
}
