package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"predictord/pkg/types"
)

// AssemblerConfig is the batching policy. It is fixed at construction.
type AssemblerConfig struct {
	MaxBatchSize   int
	MaxBatchRows   int
	MaxWait        time.Duration
	QueueTimeout   time.Duration
	MaxOutstanding int

	// OnExpire observes envelopes failed by QueueTimeout.
	OnExpire func(*Envelope)

	now func() time.Time
}

// Batch is an ordered set of envelopes claimed together. Membership is fixed.
type Batch struct {
	Seq       uint64
	Envelopes []*Envelope
	Claimed   time.Time
}

// Len returns the number of requests in the batch.
func (b *Batch) Len() int { return len(b.Envelopes) }

// Rows returns the summed rows of all requests in the batch.
func (b *Batch) Rows() int {
	n := 0
	for _, e := range b.Envelopes {
		n += e.rows
	}
	return n
}

// Requests returns the member requests in batch order.
func (b *Batch) Requests() []types.PredictionRequest {
	out := make([]types.PredictionRequest, len(b.Envelopes))
	for i, e := range b.Envelopes {
		out[i] = e.req
	}
	return out
}

// Assembler holds pending envelopes and hands them out as batches.
// Enqueue never blocks; any number of goroutines may call NextBatch.
type Assembler struct {
	cfg AssemblerConfig

	mu          sync.Mutex
	pending     []*Envelope
	pendingRows int
	closed      bool
	changed     chan struct{} // closed and replaced on every state change
	arrivals    uint64
	batches     uint64

	// accepted and not yet completed; only incremented under mu.
	outstanding atomic.Int64
}

// NewAssembler creates an assembler with the given policy. Zero limits fall
// back to the engine defaults.
func NewAssembler(cfg AssemblerConfig) *Assembler {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = defaultMaxBatchSize
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = defaultMaxWait
	}
	if cfg.QueueTimeout > 0 && cfg.QueueTimeout < cfg.MaxWait {
		cfg.QueueTimeout = cfg.MaxWait
	}
	if cfg.MaxOutstanding <= 0 {
		cfg.MaxOutstanding = defaultMaxOutstanding
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	return &Assembler{cfg: cfg, changed: make(chan struct{})}
}

func (a *Assembler) broadcastLocked() {
	close(a.changed)
	a.changed = make(chan struct{})
}

// Enqueue accepts e into the pending queue.
func (a *Assembler) Enqueue(e *Envelope) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrShuttingDown
	}
	if a.outstanding.Load() >= int64(a.cfg.MaxOutstanding) {
		return ErrCapacityExceeded
	}
	a.outstanding.Add(1)
	e.release = func() { a.outstanding.Add(-1) }
	a.arrivals++
	e.seq = a.arrivals
	if e.enqueued.IsZero() {
		e.enqueued = a.cfg.now()
	}
	a.pending = append(a.pending, e)
	a.pendingRows += e.rows
	a.broadcastLocked()
	return nil
}

// NextBatch blocks until a batch is due and returns it. A batch is due when
// MaxBatchSize envelopes (or MaxBatchRows rows) are pending, when the oldest
// pending envelope has waited MaxWait, or when the assembler is closed. After
// Close, the remaining envelopes are flushed and errAssemblerClosed is
// returned once the queue is empty.
func (a *Assembler) NextBatch(ctx context.Context) (*Batch, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a.mu.Lock()
		now := a.cfg.now()
		expired := a.expireLocked(now)
		wait := time.Duration(-1)
		var batch *Batch
		switch {
		case len(a.pending) > 0:
			age := now.Sub(a.pending[0].enqueued)
			if a.closed || a.fullLocked() || age >= a.cfg.MaxWait {
				batch = a.takeLocked(now)
			} else {
				wait = a.cfg.MaxWait - age
				if qt := a.cfg.QueueTimeout; qt > 0 && qt-age < wait {
					wait = qt - age + time.Millisecond
				}
			}
		case a.closed:
			a.mu.Unlock()
			a.fail(expired)
			return nil, errAssemblerClosed
		}
		ch := a.changed
		a.mu.Unlock()
		a.fail(expired)
		if batch != nil {
			return batch, nil
		}

		var timer *time.Timer
		var fire <-chan time.Time
		if wait >= 0 {
			timer = time.NewTimer(wait)
			fire = timer.C
		}
		select {
		case <-ch:
		case <-fire:
		case <-ctx.Done():
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

func (a *Assembler) fullLocked() bool {
	if len(a.pending) >= a.cfg.MaxBatchSize {
		return true
	}
	return a.cfg.MaxBatchRows > 0 && a.pendingRows >= a.cfg.MaxBatchRows
}

// takeLocked claims envelopes from the head of the queue in arrival order.
// A batch always takes at least one envelope, even one exceeding MaxBatchRows.
func (a *Assembler) takeLocked(now time.Time) *Batch {
	n, rows := 0, 0
	for n < len(a.pending) && n < a.cfg.MaxBatchSize {
		r := a.pending[n].rows
		if n > 0 && a.cfg.MaxBatchRows > 0 && rows+r > a.cfg.MaxBatchRows {
			break
		}
		rows += r
		n++
	}
	members := make([]*Envelope, n)
	copy(members, a.pending[:n])
	a.pending = a.dropLocked(n)
	a.pendingRows -= rows
	a.batches++
	if len(a.pending) > 0 {
		// Other waiters may now find a full queue or a new oldest envelope.
		a.broadcastLocked()
	}
	return &Batch{Seq: a.batches, Envelopes: members, Claimed: now}
}

func (a *Assembler) dropLocked(n int) []*Envelope {
	rest := a.pending[n:]
	if len(rest) == 0 {
		return nil
	}
	return append([]*Envelope(nil), rest...)
}

// expireLocked removes envelopes that have exceeded QueueTimeout. Pending is
// in arrival order so expired envelopes form a prefix.
func (a *Assembler) expireLocked(now time.Time) []*Envelope {
	if a.cfg.QueueTimeout <= 0 {
		return nil
	}
	n := 0
	for n < len(a.pending) && now.Sub(a.pending[n].enqueued) > a.cfg.QueueTimeout {
		a.pendingRows -= a.pending[n].rows
		n++
	}
	if n == 0 {
		return nil
	}
	expired := make([]*Envelope, n)
	copy(expired, a.pending[:n])
	a.pending = a.dropLocked(n)
	return expired
}

func (a *Assembler) fail(expired []*Envelope) {
	for _, e := range expired {
		if e.complete(nil, timeoutError{cause: errQueueTimeout}) && a.cfg.OnExpire != nil {
			a.cfg.OnExpire(e)
		}
	}
}

// Withdraw removes e if it is still pending and completes it with err.
// It returns false once e has been claimed by a batch or completed.
func (a *Assembler) Withdraw(e *Envelope, err error) bool {
	a.mu.Lock()
	idx := -1
	for i, p := range a.pending {
		if p == e {
			idx = i
			break
		}
	}
	if idx < 0 {
		a.mu.Unlock()
		return false
	}
	a.pending = append(a.pending[:idx:idx], a.pending[idx+1:]...)
	a.pendingRows -= e.rows
	a.broadcastLocked()
	a.mu.Unlock()
	e.complete(nil, err)
	return true
}

// Close stops accepting envelopes and wakes all waiters so the remaining
// queue is flushed.
func (a *Assembler) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		a.broadcastLocked()
	}
	a.mu.Unlock()
}

// Abort completes every still-pending envelope with err and returns how many
// were failed.
func (a *Assembler) Abort(err error) int {
	a.mu.Lock()
	left := a.pending
	a.pending = nil
	a.pendingRows = 0
	a.broadcastLocked()
	a.mu.Unlock()
	for _, e := range left {
		e.complete(nil, err)
	}
	return len(left)
}

// Pending returns the number of queued, unclaimed envelopes.
func (a *Assembler) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Outstanding returns accepted envelopes not yet completed.
func (a *Assembler) Outstanding() int { return int(a.outstanding.Load()) }

// Closed reports whether Close has been called.
func (a *Assembler) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}
