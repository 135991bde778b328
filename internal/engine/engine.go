package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"predictord/internal/tensor"
	"predictord/pkg/types"
)

// Executor is the part of a model handle the engine drives.
type Executor interface {
	Execute(ctx context.Context, in *tensor.Batch) (*tensor.Output, error)
	MaxConcurrency() int
	Signature() types.Signature
	Info() types.ModelInfo
}

// State is the engine lifecycle state.
type State string

const (
	StateStarting State = "starting"
	StateReady    State = "ready"
	StateDraining State = "draining"
	StateStopped  State = "stopped"
)

// Engine accepts prediction requests, batches them and runs them on a model.
type Engine struct {
	cfg  Config
	exec Executor
	sig  types.Signature
	asm  *Assembler
	gate *Gate
	log  zerolog.Logger
	pub  EventPublisher

	mu      sync.RWMutex
	state   State
	lastErr string
	started time.Time

	startOnce sync.Once
	stopOnce  sync.Once
	runCtx    context.Context
	stopRun   context.CancelFunc
	wg        sync.WaitGroup

	batches   atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
	rejected  atomic.Uint64
}

// New creates an engine for exec. Zero Config fields select defaults. The
// engine accepts requests immediately; batches execute once Start is called.
func New(exec Executor, cfg Config) (*Engine, error) {
	if exec == nil {
		return nil, errors.New("engine: nil executor")
	}
	cfg = cfg.withDefaults(exec.MaxConcurrency())
	e := &Engine{
		cfg:     cfg,
		exec:    exec,
		sig:     exec.Signature(),
		gate:    NewGate(cfg.MaxConcurrency),
		log:     cfg.Logger.With().Str("component", "engine").Logger(),
		pub:     cfg.Publisher,
		state:   StateStarting,
		started: cfg.now(),
	}
	e.asm = NewAssembler(AssemblerConfig{
		MaxBatchSize:   cfg.MaxBatchSize,
		MaxBatchRows:   cfg.MaxBatchRows,
		MaxWait:        cfg.MaxWait,
		QueueTimeout:   cfg.QueueTimeout,
		MaxOutstanding: cfg.MaxOutstanding,
		OnExpire:       e.onExpire,
		now:            cfg.now,
	})
	e.runCtx, e.stopRun = context.WithCancel(context.Background())
	return e, nil
}

// Start launches the dispatch workers. Calling it more than once is a no-op.
func (e *Engine) Start() {
	e.startOnce.Do(func() {
		e.mu.Lock()
		if e.state == StateStarting {
			e.state = StateReady
		}
		e.mu.Unlock()
		for i := 0; i < e.cfg.Dispatchers; i++ {
			e.wg.Add(1)
			go e.worker(i)
		}
		e.log.Info().
			Int("dispatchers", e.cfg.Dispatchers).
			Int("max_concurrency", e.cfg.MaxConcurrency).
			Int("max_batch_size", e.cfg.MaxBatchSize).
			Dur("max_wait", e.cfg.MaxWait).
			Msg("engine started")
	})
}

// Shutdown stops accepting requests and flushes everything already queued
// through the model. If ctx ends first, requests that have not started
// executing are completed with ErrShuttingDown and ctx.Err() is returned.
// Executions already running are left to finish in the background.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.stopOnce.Do(func() {
		e.setState(StateDraining)
		e.pub.Publish(Event{Name: EventDraining, Fields: map[string]any{"pending": e.asm.Pending()}})
		e.log.Info().Int("pending", e.asm.Pending()).Msg("engine draining")
		e.asm.Close()
	})

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
		e.stopRun()
	}
	// Workers never started, or the deadline passed: nothing left may be dropped.
	if n := e.asm.Abort(ErrShuttingDown); n > 0 {
		e.failed.Add(uint64(n))
		requestsTotal.WithLabelValues(Code(ErrShuttingDown)).Add(float64(n))
		e.log.Warn().Int("requests", n).Msg("failed queued requests at shutdown")
	}
	pendingRequests.Set(0)
	if err == nil {
		e.setState(StateStopped)
		e.pub.Publish(Event{Name: EventStopped})
		e.log.Info().Msg("engine stopped")
	}
	return err
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Ready reports whether the engine is started and accepting requests.
func (e *Engine) Ready() bool { return e.State() == StateReady }

// ModelInfo describes the model served by the engine.
func (e *Engine) ModelInfo() types.ModelInfo { return e.exec.Info() }

// Enqueue validates req and queues it for batching. It never blocks. The
// request must not be modified by the caller afterwards.
func (e *Engine) Enqueue(req types.PredictionRequest) (*Future, error) {
	if err := tensor.Validate(req, e.sig); err != nil {
		return nil, e.reject(req, invalidRequestError{err: err})
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	env := newEnvelope(req, e.cfg.now())
	if err := e.asm.Enqueue(env); err != nil {
		return nil, e.reject(req, err)
	}
	pendingRequests.Inc()
	return &Future{env: env, asm: e.asm, onWithdraw: e.onWithdraw, onAbandon: e.onAbandon}, nil
}

// Predict enqueues req and waits for its result. On failure the returned
// result carries the error status and code alongside the error.
func (e *Engine) Predict(ctx context.Context, req types.PredictionRequest) (*types.PredictionResult, error) {
	f, err := e.Enqueue(req)
	if err != nil {
		return failedResult(req.ID, err), err
	}
	return f.Wait(ctx)
}

func (e *Engine) reject(req types.PredictionRequest, err error) error {
	e.rejected.Add(1)
	code := Code(err)
	rejectionsTotal.WithLabelValues(code).Inc()
	e.pub.Publish(Event{Name: EventRequestRejected, Fields: map[string]any{"id": req.ID, "code": code}})
	e.log.Debug().Str("id", req.ID).Str("code", code).Err(err).Msg("request rejected")
	return err
}

func (e *Engine) onExpire(env *Envelope) {
	e.failed.Add(1)
	pendingRequests.Dec()
	requestsTotal.WithLabelValues(Code(ErrTimeout)).Inc()
	e.pub.Publish(Event{Name: EventRequestExpired, Fields: map[string]any{"id": env.req.ID}})
	e.log.Debug().Str("id", env.req.ID).Msg("request expired in queue")
}

func (e *Engine) onWithdraw(env *Envelope) {
	e.failed.Add(1)
	pendingRequests.Dec()
	requestsTotal.WithLabelValues(Code(ErrTimeout)).Inc()
	e.log.Debug().Str("id", env.req.ID).Msg("request withdrawn before execution")
}

func (e *Engine) onAbandon(env *Envelope) {
	e.pub.Publish(Event{Name: EventRequestAbandoned, Fields: map[string]any{"id": env.req.ID}})
	e.log.Debug().Str("id", env.req.ID).Msg("caller abandoned claimed request")
}
