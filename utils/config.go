package utils

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol/fsutil"
	"github.com/sheikhrachel/go-gol/model"
)

// DefaultCycles is the generation bound used when none is configured
const DefaultCycles = 5

// Config holds the configuration for a simulation run
type Config struct {
	Cycles          int  `json:"cycles"`
	UseParallel     bool `json:"use_parallel"`
	UseMemoryPool   bool `json:"use_memory_pool"`
	Workers         int  `json:"workers"` // 0 means runtime.NumCPU()
	CoerceNonBinary bool `json:"coerce_non_binary"`
	Progress        bool `json:"progress"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Cycles:          DefaultCycles,
		UseParallel:     true,
		UseMemoryPool:   true,
		Workers:         0,
		CoerceNonBinary: false,
		Progress:        true,
	}
}

// LoadConfig loads configuration from a JSON file on top of the defaults
func LoadConfig(fs fsutil.FileSystem, filename string) (Config, error) {
	config := DefaultConfig()
	if fs == nil {
		fs = fsutil.OSFileSystem{}
	}

	data, err := fs.ReadFile(filename)
	if err != nil {
		return config, model.WrapKind(model.ErrConfig, err, "[LoadConfig] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &config); err != nil {
		return config, model.WrapKind(model.ErrConfig, err, "[LoadConfig] failed to unmarshal data from file %+v", filename)
	}

	return config, config.Validate()
}

// Validate rejects configurations the engine cannot run with
func (c Config) Validate() error {
	if c.Cycles <= 0 {
		return errors.Wrapf(model.ErrConfig, "[Config.Validate] cycles must be positive, got %d", c.Cycles)
	}
	if c.Workers < 0 {
		return errors.Wrapf(model.ErrConfig, "[Config.Validate] workers must not be negative, got %d", c.Workers)
	}
	return nil
}
