package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"predictord/pkg/types"
)

// Envelope owns one accepted request and its single-assignment result cell.
type Envelope struct {
	req      types.PredictionRequest
	rows     int
	seq      uint64
	enqueued time.Time

	once sync.Once
	done chan struct{}
	res  *types.PredictionResult
	err  error

	// release runs once, before the outcome becomes observable.
	release   func()
	abandoned atomic.Bool
}

func newEnvelope(req types.PredictionRequest, now time.Time) *Envelope {
	return &Envelope{
		req:      req,
		rows:     req.Rows(),
		enqueued: now,
		done:     make(chan struct{}),
	}
}

// Request returns the request carried by the envelope.
func (e *Envelope) Request() types.PredictionRequest { return e.req }

// Rows returns the number of rows the request contributes to a batch.
func (e *Envelope) Rows() int { return e.rows }

// Seq is the arrival sequence number assigned by the assembler.
func (e *Envelope) Seq() uint64 { return e.seq }

// Enqueued returns the time the envelope was accepted.
func (e *Envelope) Enqueued() time.Time { return e.enqueued }

// complete records the outcome. Only the first call has any effect; it
// reports whether this call was the one that completed the envelope.
func (e *Envelope) complete(res *types.PredictionResult, err error) bool {
	first := false
	e.once.Do(func() {
		first = true
		if err != nil {
			res = failedResult(e.req.ID, err)
		}
		e.res, e.err = res, err
		if e.release != nil {
			e.release()
		}
		close(e.done)
	})
	return first
}

func (e *Envelope) outcome() (*types.PredictionResult, error) {
	<-e.done
	return e.res, e.err
}

func failedResult(id string, err error) *types.PredictionResult {
	return &types.PredictionResult{
		ID:     id,
		Status: types.StatusError,
		Error:  err.Error(),
		Code:   Code(err),
	}
}

// Future is the caller's handle on an accepted request.
type Future struct {
	env *Envelope
	asm *Assembler
	// onWithdraw and onAbandon observe a caller giving up before and after
	// the request was claimed by a batch.
	onWithdraw func(*Envelope)
	onAbandon  func(*Envelope)
}

// ID returns the request id (generated if the caller left it empty).
func (f *Future) ID() string { return f.env.req.ID }

// Done is closed once the outcome is available.
func (f *Future) Done() <-chan struct{} { return f.env.done }

// Wait blocks until the request completes or ctx ends. If ctx ends while the
// request is still queued it is withdrawn and never executes; if it was
// already claimed by a batch the caller abandons it and the eventual outcome
// is discarded. Both cases return an error matching ErrTimeout. On failure
// the returned result carries the error status and code.
func (f *Future) Wait(ctx context.Context) (*types.PredictionResult, error) {
	select {
	case <-f.env.done:
		return f.env.outcome()
	case <-ctx.Done():
	}
	terr := timeoutError{cause: ctx.Err()}
	if f.asm.Withdraw(f.env, terr) {
		if f.onWithdraw != nil {
			f.onWithdraw(f.env)
		}
		return f.env.outcome()
	}
	select {
	case <-f.env.done:
		return f.env.outcome()
	default:
	}
	if !f.env.abandoned.Swap(true) && f.onAbandon != nil {
		f.onAbandon(f.env)
	}
	return failedResult(f.env.req.ID, terr), terr
}
