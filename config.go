package particles

import (
	"errors"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/gekko3d/particles/core"
)

const (
	DefaultWindowWidth  = 800
	DefaultWindowHeight = 600
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrInvalidConfig = errors.New("invalid config")

// Config is the file form of a run. Zero fields in a file keep their defaults.
type Config struct {
	NumParticles  int     `json:"particles"`
	LimitToBounce float32 `json:"limit_to_bounce"`
	Seed          int64   `json:"seed"`
	VelocityInit  string  `json:"velocity_init"`
	Spread        float32 `json:"spread"`

	Width  int    `json:"width"`
	Height int    `json:"height"`
	Title  string `json:"title"`
	Debug  bool   `json:"debug"`

	Headless      bool   `json:"headless"`
	Frames        int    `json:"frames"`
	OutDir        string `json:"out"`
	SnapshotScale int    `json:"snapshot_scale"`
	MetricsAddr   string `json:"metrics_addr"`
}

func DefaultConfig() Config {
	sim := core.DefaultSimulationConfig()
	return Config{
		NumParticles:  sim.NumParticles,
		LimitToBounce: sim.LimitToBounce,
		Seed:          sim.Seed,
		VelocityInit:  string(sim.VelocityInit),
		Spread:        core.DefaultSpread,
		Width:         DefaultWindowWidth,
		Height:        DefaultWindowHeight,
		Title:         "Particles",
		Frames:        120,
		OutDir:        "snapshots",
		SnapshotScale: 4,
	}
}

// LoadConfig reads path over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c Config) Validate() error {
	switch {
	case c.NumParticles <= 0:
		return fmt.Errorf("%w: particles must be positive, got %d", ErrInvalidConfig, c.NumParticles)
	case c.LimitToBounce <= 0:
		return fmt.Errorf("%w: limit_to_bounce must be positive, got %g", ErrInvalidConfig, c.LimitToBounce)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.Frames < 0:
		return fmt.Errorf("%w: frames must not be negative", ErrInvalidConfig)
	}
	if _, err := core.ParseVelocityInit(c.VelocityInit); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Simulation returns the simulation constants of c. c must be valid.
func (c Config) Simulation() core.SimulationConfig {
	mode, _ := core.ParseVelocityInit(c.VelocityInit)
	return core.SimulationConfig{
		NumParticles:  c.NumParticles,
		LimitToBounce: c.LimitToBounce,
		Seed:          c.Seed,
		VelocityInit:  mode,
	}
}
