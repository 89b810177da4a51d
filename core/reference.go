package core

import (
	"fmt"
	"math/rand"
)

// ReferenceSimulation is the in-memory backend: texture composers and CPU passes.
type ReferenceSimulation = Simulation[*StateTexture]

// SimulationConfig holds the construction-time constants of a simulation.
type SimulationConfig struct {
	NumParticles  int
	LimitToBounce float32
	Seed          int64
	VelocityInit  VelocityInit
}

func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		NumParticles:  DefaultNumParticles,
		LimitToBounce: DefaultLimitToBounce,
		Seed:          1,
		VelocityInit:  VelocityInitX,
	}
}

// SeedData generates the initial velocity and position textures for cfg.
func SeedData(cfg SimulationConfig, rng *rand.Rand) (vel, pos *StateTexture, err error) {
	vel, err = InitialVelocityData(cfg.NumParticles, rng, cfg.VelocityInit)
	if err != nil {
		return nil, nil, fmt.Errorf("initial velocity: %w", err)
	}
	pos, err = InitialPositionData(cfg.NumParticles)
	if err != nil {
		return nil, nil, fmt.Errorf("initial position: %w", err)
	}
	return vel, pos, nil
}

// NewReferenceSimulation builds and seeds an in-memory simulation.
// The velocity pass bounces at half of cfg.LimitToBounce.
func NewReferenceSimulation(cfg SimulationConfig) (*ReferenceSimulation, error) {
	sim, err := NewSimulation[*StateTexture](
		cfg.NumParticles,
		NewTextureComposer(VelocityTargetSettings()),
		NewTextureComposer(PositionTargetSettings()),
		NewVelocityPass(cfg.LimitToBounce*0.5),
		NewPositionPass(),
	)
	if err != nil {
		return nil, err
	}
	vel, pos, err := SeedData(cfg, NewRand(cfg.Seed))
	if err != nil {
		return nil, err
	}
	if err := sim.Seed(vel, pos); err != nil {
		return nil, err
	}
	return sim, nil
}
