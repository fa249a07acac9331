package main

import (
	"context"
	"flag"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol/engine"
	"github.com/sheikhrachel/go-gol/fsutil"
	"github.com/sheikhrachel/go-gol/model"
	"github.com/sheikhrachel/go-gol/monitoring"
	"github.com/sheikhrachel/go-gol/raster"
	"github.com/sheikhrachel/go-gol/utils"
)

// options are the command-line parameters. Flags that are set override the
// config file.
type options struct {
	Input      string
	Output     string
	ConfigFile string
	Cycles     int
	Coerce     bool
	Quiet      bool

	fs fsutil.FileSystem
}

func newOptions() *options {
	return &options{Cycles: utils.DefaultCycles, fs: fsutil.OSFileSystem{}}
}

// Bind attaches the options to the provided FlagSet.
func (o *options) Bind(fs *flag.FlagSet) {
	fs.StringVar(&o.Input, "in", o.Input, "input raster holding the start state")
	fs.StringVar(&o.Output, "out", o.Output, "output raster for the end state")
	fs.StringVar(&o.ConfigFile, "config", o.ConfigFile, "optional JSON config file")
	fs.IntVar(&o.Cycles, "cycles", o.Cycles, "maximum number of generations")
	fs.BoolVar(&o.Coerce, "coerce", o.Coerce, "treat any non-zero pixel as alive instead of failing")
	fs.BoolVar(&o.Quiet, "quiet", o.Quiet, "suppress per-cycle progress")
}

// loadRunConfig merges the config file (if any) with explicit flags.
func loadRunConfig(o *options, explicit map[string]bool) (utils.Config, error) {
	config := utils.DefaultConfig()
	if o.ConfigFile != "" {
		var err error
		if config, err = utils.LoadConfig(o.fs, o.ConfigFile); err != nil {
			return config, errors.Wrap(err, "[loadRunConfig]")
		}
	}

	if explicit["cycles"] || o.ConfigFile == "" {
		config.Cycles = o.Cycles
	}
	if explicit["coerce"] {
		config.CoerceNonBinary = o.Coerce
	}
	if explicit["quiet"] {
		config.Progress = !o.Quiet
	}
	return config, config.Validate()
}

// setFlags returns the names of flags given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// progressLogger reports each completed cycle
func progressLogger(runID string) engine.ProgressFunc {
	return func(cycle, total int) {
		monitoring.Logf("[%s] processing Game of Life: cycle %d out of %d", runID, cycle, total)
	}
}

// reportResult logs how the run terminated and its statistics
func reportResult(runID string, res engine.SimulationResult) {
	if res.Stable {
		monitoring.Logf("[%s] stable state at cycle %d", runID, res.Cycle)
	} else {
		monitoring.Logf("[%s] reached cycle bound %d", runID, res.Cycle)
	}
	stats := res.Stats
	monitoring.Logf("[%s] living: %d | avg pop: %.1f (sd %.1f) | %.1f gen/sec | runtime: %s | hash: %s",
		runID, res.Grid.CountLivingCells(), stats.AveragePopulation, stats.PopulationStdDev,
		stats.GenerationsPerSecond, time.Since(stats.StartTime).Round(time.Millisecond), res.Grid.GetGridHash())
}

// run performs read -> simulate -> write
func run(ctx context.Context, o *options) error {
	return runWithFlags(ctx, o, setFlags(flag.CommandLine))
}

func runWithFlags(ctx context.Context, o *options, explicit map[string]bool) error {
	if o.Input == "" || o.Output == "" {
		return errors.Wrap(model.ErrConfig, "[run] both -in and -out are required")
	}

	config, err := loadRunConfig(o, explicit)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	adapter := raster.NewAdapter(o.fs, config.CoerceNonBinary)

	grid, georef, err := adapter.Read(o.Input)
	if err != nil {
		return err
	}
	monitoring.Logf("[%s] read %s: %dx%d grid, %d living cells", runID, o.Input, grid.Rows(), grid.Cols(), grid.CountLivingCells())

	var engineOpts []engine.Option
	if config.Progress {
		engineOpts = append(engineOpts, engine.WithProgress(progressLogger(runID)))
	}
	eng := engine.NewFromConfig(config, engineOpts...)

	res, err := eng.Run(ctx, grid, config.Cycles)
	if err != nil {
		return err
	}
	reportResult(runID, res)

	if err := adapter.Write(o.Output, res.Grid, georef); err != nil {
		return err
	}
	monitoring.Logf("[%s] wrote %s", runID, o.Output)
	return nil
}
