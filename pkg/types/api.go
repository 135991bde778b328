package types

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// ModelResponse is returned by GET /model.
type ModelResponse struct {
	Model ModelInfo `json:"model"`
}

// BatchingStatus reports the configured batching policy.
type BatchingStatus struct {
	// example: 64
	MaxBatchSize int `json:"max_batch_size" example:"64"`
	// Zero means no row cap.
	// example: 0
	MaxBatchRows int `json:"max_batch_rows" example:"0"`
	// example: 2
	MaxWaitMS float64 `json:"max_wait_ms" example:"2"`
	// Zero disables queue expiry.
	// example: 0
	QueueTimeoutMS float64 `json:"queue_timeout_ms" example:"0"`
	// example: 1024
	MaxOutstanding int `json:"max_outstanding" example:"1024"`
	// example: 2
	Dispatchers int `json:"dispatchers" example:"2"`
	// example: 1
	MaxConcurrency int `json:"max_concurrency" example:"1"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Engine state: starting, ready, draining, stopped.
	// example: ready
	State string `json:"state" example:"ready"`
	// Loaded model summary.
	Model ModelInfo `json:"model"`
	// Batching configuration in effect.
	Batching BatchingStatus `json:"batching"`
	// Requests waiting for batch assembly.
	// example: 3
	Pending int `json:"pending" example:"3"`
	// Accepted requests not yet completed (pending + executing).
	// example: 7
	Outstanding int `json:"outstanding" example:"7"`
	// Executions currently holding the admission gate.
	// example: 1
	InflightExecutions int `json:"inflight_executions" example:"1"`
	// Total batches executed (successfully or not).
	// example: 1200
	BatchesTotal uint64 `json:"batches_total" example:"1200"`
	// Total requests completed successfully.
	// example: 9000
	SucceededTotal uint64 `json:"succeeded_total" example:"9000"`
	// Total requests completed with a failure.
	// example: 3
	FailedTotal uint64 `json:"failed_total" example:"3"`
	// Total requests rejected at enqueue.
	// example: 0
	RejectedTotal uint64 `json:"rejected_total" example:"0"`
	// Last batch execution error (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
