package engine

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Gate bounds the number of simultaneous model executions. Waiters are
// admitted in FIFO order.
type Gate struct {
	sem      *semaphore.Weighted
	limit    int
	inflight atomic.Int64
}

// NewGate returns a gate admitting up to limit holders (minimum 1).
func NewGate(limit int) *Gate {
	if limit <= 0 {
		limit = 1
	}
	return &Gate{sem: semaphore.NewWeighted(int64(limit)), limit: limit}
}

// Acquire blocks until a slot is free or ctx ends.
func (g *Gate) Acquire(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	g.inflight.Add(1)
	inflightExecutions.Inc()
	return nil
}

// Release returns a slot taken by Acquire.
func (g *Gate) Release() {
	inflightExecutions.Dec()
	g.inflight.Add(-1)
	g.sem.Release(1)
}

// Limit returns the configured number of slots.
func (g *Gate) Limit() int { return g.limit }

// Inflight returns the number of slots currently held.
func (g *Gate) Inflight() int { return int(g.inflight.Load()) }
