package core

// PingPong is a double buffer: passes read Front and write Back, then Swap.
type PingPong[T any] struct {
	front T
	back  T
	swaps int
}

func NewPingPong[T any](front, back T) *PingPong[T] {
	return &PingPong[T]{front: front, back: back}
}

// Front is the current (last written) buffer.
func (p *PingPong[T]) Front() T { return p.front }

// Back is the buffer the next pass writes into.
func (p *PingPong[T]) Back() T { return p.back }

func (p *PingPong[T]) Swap() {
	p.front, p.back = p.back, p.front
	p.swaps++
}

// Swaps counts completed swaps since construction.
func (p *PingPong[T]) Swaps() int { return p.swaps }
