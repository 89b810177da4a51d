package core

import (
	"errors"
	"fmt"
)

var ErrNotSeeded = errors.New("simulation not seeded")

// Simulation chains the velocity and position passes over their two composers.
// The same orchestration drives the in-memory and the GPU backend.
type Simulation[T any] struct {
	n        int
	velocity Composer[T]
	position Composer[T]
	velPass  VelocityStage[T]
	posPass  PositionStage[T]
	seeded   bool
	frame    uint64
}

func NewSimulation[T any](n int, velocity, position Composer[T], velPass VelocityStage[T], posPass PositionStage[T]) (*Simulation[T], error) {
	if n <= 0 {
		return nil, ErrInvalidGrid
	}
	s := &Simulation[T]{
		n:        n,
		velocity: velocity,
		position: position,
		velPass:  velPass,
		posPass:  posPass,
	}
	s.ResizeTargets()
	s.position.Reset()
	s.velocity.Reset()
	return s, nil
}

// Seed uploads the initial state and restarts the frame counter.
func (s *Simulation[T]) Seed(vel, pos *StateTexture) error {
	if err := s.velocity.SetSource(vel); err != nil {
		return fmt.Errorf("seed velocity: %w", err)
	}
	if err := s.position.SetSource(pos); err != nil {
		return fmt.Errorf("seed position: %w", err)
	}
	s.seeded = true
	s.frame = 0
	return nil
}

// Step advances one frame: velocity first, then position from the fresh velocity.
func (s *Simulation[T]) Step() error {
	if !s.seeded {
		return ErrNotSeeded
	}
	s.velPass.SetPositions(s.position.Output())
	if err := s.velocity.Pass(s.velPass); err != nil {
		return fmt.Errorf("frame %d: %w", s.frame, err)
	}
	s.posPass.SetVelocities(s.velocity.Output())
	if err := s.position.Pass(s.posPass); err != nil {
		return fmt.Errorf("frame %d: %w", s.frame, err)
	}
	s.frame++
	return nil
}

// Output is the latest position texture.
func (s *Simulation[T]) Output() T { return s.position.Output() }

// Velocity is the latest velocity texture.
func (s *Simulation[T]) Velocity() T { return s.velocity.Output() }

// ResizeTargets re-asserts the N×N grid on both composers.
func (s *Simulation[T]) ResizeTargets() {
	s.position.SetSize(s.n, s.n)
	s.velocity.SetSize(s.n, s.n)
}

// Size is the grid side N.
func (s *Simulation[T]) Size() int { return s.n }

// Frame is the number of frames stepped since the last Seed.
func (s *Simulation[T]) Frame() uint64 { return s.frame }
