package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded signals backpressure: too many outstanding requests.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrTimeout signals that the caller stopped waiting, or the request sat in
	// the queue longer than the configured queue timeout.
	ErrTimeout = errors.New("request timed out")
	// ErrShuttingDown is returned for requests arriving after shutdown began
	// and for requests still queued when the shutdown deadline expired.
	ErrShuttingDown = errors.New("engine is shutting down")
	// ErrInvalidRequest is matched by requests that do not fit the model signature.
	ErrInvalidRequest = errors.New("invalid request")

	errQueueTimeout = errors.New("queue timeout exceeded")

	// errAssemblerClosed ends a worker once the queue is closed and drained.
	errAssemblerClosed = errors.New("assembler closed")
)

// timeoutError carries the reason a wait ended while matching ErrTimeout.
type timeoutError struct{ cause error }

func (e timeoutError) Error() string {
	if e.cause == nil {
		return ErrTimeout.Error()
	}
	return ErrTimeout.Error() + ": " + e.cause.Error()
}

func (e timeoutError) Is(target error) bool { return target == ErrTimeout }

func (e timeoutError) Unwrap() error { return e.cause }

// invalidRequestError signals a request that does not match the model signature.
type invalidRequestError struct{ err error }

func (e invalidRequestError) Error() string { return ErrInvalidRequest.Error() + ": " + e.err.Error() }

func (e invalidRequestError) Is(target error) bool { return target == ErrInvalidRequest }

func (e invalidRequestError) Unwrap() error { return e.err }

// ExecutionError is delivered to every member of a batch whose execution
// failed. Members of the same batch receive the same value.
type ExecutionError struct {
	Batch uint64
	Size  int
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("batch %d (%d requests) failed: %v", e.Batch, e.Size, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// IsCapacityExceeded reports whether err indicates backpressure (return 429).
func IsCapacityExceeded(err error) bool { return errors.Is(err, ErrCapacityExceeded) }

// IsTimeout reports whether err indicates caller abandonment or queue expiry.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// IsShuttingDown reports whether err was caused by engine shutdown.
func IsShuttingDown(err error) bool { return errors.Is(err, ErrShuttingDown) }

// IsInvalidRequest reports whether err indicates a malformed request.
func IsInvalidRequest(err error) bool { return errors.Is(err, ErrInvalidRequest) }

// IsExecutionError reports whether err is a batch execution failure.
func IsExecutionError(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}

// Code classifies err for wire responses and metric labels.
func Code(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsCapacityExceeded(err):
		return "capacity_exceeded"
	case IsTimeout(err):
		return "timeout"
	case IsShuttingDown(err):
		return "shutting_down"
	case IsInvalidRequest(err):
		return "invalid_request"
	case IsExecutionError(err):
		return "execution_error"
	default:
		return "internal"
	}
}
