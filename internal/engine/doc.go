// Package engine batches prediction requests and dispatches them to a model.
// It is structured into small files by concern:
//
//   - engine.go: Engine type, constructor, Enqueue/Predict, Start/Shutdown.
//   - config.go: Config and package defaults; New applies defaults.
//   - envelope.go: Envelope (one request + single-assignment result cell) and Future.
//   - assembler.go: pending queue, size/time batching policy, withdraw, flush.
//   - gate.go: admission gate bounding simultaneous model executions.
//   - dispatch.go: worker loop, execution, positional demultiplexing.
//   - errors.go: error taxonomy and predicates (IsCapacityExceeded, IsTimeout, ...).
//   - events.go, eventpub_memory.go: lifecycle events for observers.
//   - metrics.go: Prometheus collectors.
//   - status.go: Status reporting.
//
// Every accepted request is completed exactly once: with its rows of the
// model output, or with the error of the batch it was executed in, or with a
// timeout/shutdown error if it never reached execution. Results are routed by
// position inside the batch, never by request id.
package engine
