package parallel

import (
	"sync"
)

// Barrier is a reusable rendezvous point for a fixed number of goroutines.
//
// Each call to Wait blocks until all parties have arrived. The last goroutine
// to arrive runs the action, while every other party is still blocked, then
// releases them all and the barrier resets for the next generation.
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	parties    int
	arrived    int
	generation int
	action     func(generation int)
}

// NewBarrier creates a barrier for parties goroutines. action may be nil;
// otherwise it receives the zero-based generation number.
func NewBarrier(parties int, action func(generation int)) *Barrier {
	if parties <= 0 {
		panic("parallel: barrier needs at least one party")
	}
	b := &Barrier{
		parties: parties,
		action:  action,
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until all parties have called Wait for the current generation.
// It returns the generation that just completed.
func (b *Barrier) Wait() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.generation
	b.arrived++
	if b.arrived == b.parties {
		if b.action != nil {
			b.action(gen)
		}
		b.arrived = 0
		b.generation++
		b.cond.Broadcast()
		return gen
	}

	for gen == b.generation {
		b.cond.Wait()
	}
	return gen
}

// Generation returns the number of completed generations.
func (b *Barrier) Generation() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}
