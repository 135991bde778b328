package engine

// Event names published by the engine.
const (
	EventBatchExecuted    = "batch_executed"
	EventBatchFailed      = "batch_failed"
	EventRequestRejected  = "request_rejected"
	EventRequestExpired   = "request_expired"
	EventRequestAbandoned = "request_abandoned"
	EventDraining         = "draining"
	EventStopped          = "stopped"
)

// Event represents an engine lifecycle event.
// Minimal and stable: name + batch sequence and optional fields.
type Event struct {
	Name   string
	Batch  uint64
	Fields map[string]any
}

// EventPublisher receives events from the engine. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
