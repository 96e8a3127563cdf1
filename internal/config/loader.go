// Package config loads and validates a BBD run's SimulationConfig from a
// YAML scenario file, the way rgehrsitz-rpgo's internal/config/input.go
// loads its Configuration: read the file, unmarshal with gopkg.in/yaml.v3,
// apply defaults the domain layer doesn't own, then delegate the bulk of
// validation to domain.SimulationConfig.Validate.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/onedigerati/bbd-sim/internal/domain"
	"github.com/onedigerati/bbd-sim/internal/logging"
)

// RunFile is the on-disk shape of a scenario file: a single `simulation`
// key holding the SimulationConfig (the estate tax exemption included). It
// carries no other fields.
type RunFile struct {
	Simulation domain.SimulationConfig `yaml:"simulation"`
}

// Loader reads and validates run configuration. A zero Loader is usable;
// Logger defaults to a no-op if left nil.
type Loader struct {
	Logger logging.Logger
}

// NewLoader constructs a Loader with a no-op logger.
func NewLoader() *Loader {
	return &Loader{Logger: logging.NopLogger{}}
}

// LoadFromFile reads filename as YAML, applies defaults, and validates the
// resulting SimulationConfig against every configuration invariant.
func (l *Loader) LoadFromFile(filename string) (*domain.SimulationConfig, error) {
	if l.Logger == nil {
		l.Logger = logging.NopLogger{}
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", filename, err)
	}

	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", filename, err)
	}

	l.applyDefaults(&rf.Simulation)

	if err := rf.Simulation.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", filename, err)
	}
	return &rf.Simulation, nil
}

// applyDefaults fills in the one field that must warn-and-default rather
// than hard-fail: an unset or invalid liquidationTargetMultiplier becomes
// domain.DefaultLiquidationTargetMultiplier (0.8).
func (l *Loader) applyDefaults(cfg *domain.SimulationConfig) {
	if cfg.SBLOC.LiquidationTargetMultiplier <= 0 || cfg.SBLOC.LiquidationTargetMultiplier > 1 {
		l.Logger.Warnf("sbloc.liquidationTargetMultiplier missing or out of range, defaulting to %v",
			domain.DefaultLiquidationTargetMultiplier)
		cfg.SBLOC.LiquidationTargetMultiplier = domain.DefaultLiquidationTargetMultiplier
	}
}
