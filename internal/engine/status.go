package engine

import (
	"time"

	"predictord/pkg/types"
)

// Status builds a detailed status response for /status.
func (e *Engine) Status() types.StatusResponse {
	e.mu.RLock()
	state, lastErr, started := e.state, e.lastErr, e.started
	e.mu.RUnlock()
	now := e.cfg.now()
	return types.StatusResponse{
		State: string(state),
		Model: e.exec.Info(),
		Batching: types.BatchingStatus{
			MaxBatchSize:   e.cfg.MaxBatchSize,
			MaxBatchRows:   e.cfg.MaxBatchRows,
			MaxWaitMS:      float64(e.cfg.MaxWait) / float64(time.Millisecond),
			QueueTimeoutMS: float64(e.cfg.QueueTimeout) / float64(time.Millisecond),
			MaxOutstanding: e.cfg.MaxOutstanding,
			Dispatchers:    e.cfg.Dispatchers,
			MaxConcurrency: e.cfg.MaxConcurrency,
		},
		Pending:            e.asm.Pending(),
		Outstanding:        e.asm.Outstanding(),
		InflightExecutions: e.gate.Inflight(),
		BatchesTotal:       e.batches.Load(),
		SucceededTotal:     e.succeeded.Load(),
		FailedTotal:        e.failed.Load(),
		RejectedTotal:      e.rejected.Load(),
		LastError:          lastErr,
		UptimeSeconds:      int64(now.Sub(started).Seconds()),
		ServerTimeUnix:     now.Unix(),
	}
}
