package net

import (
	"log"
	"time"
)

// Callback observes training. Every method runs while all workers are
// parked at the iteration barrier, so implementations may read the network
// but must not keep references to it across calls.
type Callback interface {
	OnTrainBegin(n *Network)
	OnTrainEnd(n *Network)
	OnIterationEnd(iteration int, loss float64, n *Network)
}

// BaseCallback provides default empty implementations for Callback.
type BaseCallback struct{}

func (c BaseCallback) OnTrainBegin(n *Network)                                {}
func (c BaseCallback) OnTrainEnd(n *Network)                                  {}
func (c BaseCallback) OnIterationEnd(iteration int, loss float64, n *Network) {}

// CallbackFunc adapts a function to a Callback invoked after each iteration.
type CallbackFunc func(iteration int, loss float64, n *Network)

func (f CallbackFunc) OnTrainBegin(n *Network) {}
func (f CallbackFunc) OnTrainEnd(n *Network)   {}
func (f CallbackFunc) OnIterationEnd(iteration int, loss float64, n *Network) {
	f(iteration, loss, n)
}

// Logger logs training progress.
type Logger struct {
	BaseCallback
	// Interval logs every Interval-th iteration. Values below 1 disable
	// per-iteration lines.
	Interval int
	// Out defaults to the standard logger.
	Out *log.Logger

	start time.Time
	last  float64
	iters int
}

func (c *Logger) logger() *log.Logger {
	if c.Out != nil {
		return c.Out
	}
	return log.Default()
}

func (c *Logger) OnTrainBegin(n *Network) {
	c.start = time.Now()
	c.iters = 0
	c.logger().Printf("training: %d layers, %d parameters", len(n.Layers()), n.NumParams())
}

func (c *Logger) OnIterationEnd(iteration int, loss float64, n *Network) {
	c.last = loss
	c.iters = iteration + 1
	if c.Interval > 0 && iteration%c.Interval == 0 {
		c.logger().Printf("iteration %d: loss = %.6f", iteration, loss)
	}
}

func (c *Logger) OnTrainEnd(n *Network) {
	if c.iters == 0 {
		c.logger().Printf("training finished after 0 iterations in %v", time.Since(c.start))
		return
	}
	c.logger().Printf("training finished after %d iterations in %v: loss = %.6f",
		c.iters, time.Since(c.start), c.last)
}
