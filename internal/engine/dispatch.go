package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"predictord/internal/tensor"
	"predictord/pkg/types"
)

// worker claims batches until the assembler is closed and drained, or the
// engine is stopped hard.
func (e *Engine) worker(id int) {
	defer e.wg.Done()
	for {
		b, err := e.asm.NextBatch(e.runCtx)
		if err != nil {
			if !errors.Is(err, errAssemblerClosed) && !errors.Is(err, context.Canceled) {
				e.log.Error().Err(err).Int("worker", id).Msg("dispatch worker stopped")
			}
			return
		}
		e.dispatch(id, b)
	}
}

// dispatch runs one batch and completes every member exactly once.
func (e *Engine) dispatch(worker int, b *Batch) {
	pendingRequests.Sub(float64(b.Len()))
	for _, env := range b.Envelopes {
		queueWait.Observe(b.Claimed.Sub(env.enqueued).Seconds())
	}
	e.batches.Add(1)
	batchSize.Observe(float64(b.Len()))
	batchRows.Observe(float64(b.Rows()))

	in, err := tensor.Concat(b.Requests())
	if err != nil {
		e.failBatch(worker, b, err)
		return
	}

	// The gate only refuses on context end; executions are never cancelled
	// once the batch is claimed.
	_ = e.gate.Acquire(context.Background())
	start := e.cfg.now()
	out, err := e.execute(in)
	elapsed := e.cfg.now().Sub(start)
	e.gate.Release()
	executeDuration.Observe(elapsed.Seconds())
	if err != nil {
		e.failBatch(worker, b, err)
		return
	}

	parts, err := tensor.Split(out, in)
	if err == nil && len(out.Tensors) != len(e.sig.Outputs) {
		err = fmt.Errorf("model returned %d outputs, signature declares %d", len(out.Tensors), len(e.sig.Outputs))
	}
	if err == nil && len(parts) != b.Len() {
		err = fmt.Errorf("model returned %d result slices for %d requests", len(parts), b.Len())
	}
	if err != nil {
		e.failBatch(worker, b, fmt.Errorf("malformed model output: %w", err))
		return
	}

	// Counters move before completion so a caller that has its result sees
	// it reflected in Status.
	e.succeeded.Add(uint64(b.Len()))
	for i, env := range b.Envelopes {
		env.complete(&types.PredictionResult{
			ID:      env.req.ID,
			Outputs: parts[i],
			Status:  types.StatusOK,
		}, nil)
	}
	requestsTotal.WithLabelValues(Code(nil)).Add(float64(b.Len()))
	e.pub.Publish(Event{Name: EventBatchExecuted, Batch: b.Seq, Fields: map[string]any{
		"size": b.Len(), "rows": b.Rows(), "duration_ms": float64(elapsed) / float64(time.Millisecond),
	}})
	e.log.Debug().
		Uint64("batch", b.Seq).
		Int("worker", worker).
		Int("size", b.Len()).
		Int("rows", b.Rows()).
		Dur("duration", elapsed).
		Msg("batch executed")
}

// execute calls the model, turning a panic into an error.
func (e *Engine) execute(in *tensor.Batch) (out *tensor.Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("model panic: %v", r)
		}
	}()
	return e.exec.Execute(context.Background(), in)
}

// failBatch completes every member of b with the same ExecutionError.
func (e *Engine) failBatch(worker int, b *Batch, cause error) {
	xerr := &ExecutionError{Batch: b.Seq, Size: b.Len(), Err: cause}
	e.failed.Add(uint64(b.Len()))
	e.mu.Lock()
	e.lastErr = xerr.Error()
	e.mu.Unlock()
	for _, env := range b.Envelopes {
		env.complete(nil, xerr)
	}
	requestsTotal.WithLabelValues(Code(xerr)).Add(float64(b.Len()))
	e.pub.Publish(Event{Name: EventBatchFailed, Batch: b.Seq, Fields: map[string]any{
		"size": b.Len(), "error": cause.Error(),
	}})
	e.log.Error().
		Uint64("batch", b.Seq).
		Int("worker", worker).
		Int("size", b.Len()).
		Err(cause).
		Msg("batch execution failed")
}
