package batch

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool bounds the number of tasks running at once.
type Pool struct {
	size int
}

// NewPool creates a pool with the given capacity. A size <= 0 uses the number
// of logical CPUs.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &Pool{size: size}
}

// Size returns the pool capacity.
func (p *Pool) Size() int {
	return p.size
}

// group returns a fresh errgroup limited to the pool capacity. Go blocks once
// size tasks are in flight.
func (p *Pool) group() *errgroup.Group {
	g := new(errgroup.Group)
	g.SetLimit(p.size)
	return g
}
