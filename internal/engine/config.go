package engine

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultMaxWait is the batching window used when MaxWait is unset.
const DefaultMaxWait = 2 * time.Millisecond

// Defaults applied when corresponding Config fields are unset.
const (
	defaultMaxBatchSize   = 64
	defaultMaxWait        = DefaultMaxWait
	defaultMaxOutstanding = 1024
)

// Config encapsulates all engine tunables. Zero values select defaults.
// Policy is fixed at construction.
type Config struct {
	// MaxBatchSize caps the number of requests per batch.
	MaxBatchSize int
	// MaxBatchRows caps the summed rows of a batch (0 = no cap). A request
	// larger than the cap is executed alone.
	MaxBatchRows int
	// MaxWait bounds how long the oldest pending request waits for a batch to fill.
	MaxWait time.Duration
	// QueueTimeout fails requests still pending after this long (0 = never).
	// A nonzero value below MaxWait is raised to MaxWait so an unfilled batch
	// always flushes before its members can expire.
	QueueTimeout time.Duration
	// MaxOutstanding caps accepted-but-uncompleted requests.
	MaxOutstanding int
	// Dispatchers is the number of dispatch workers (0 = effective concurrency).
	Dispatchers int
	// MaxConcurrency lowers the model's declared concurrency (0 = as declared).
	MaxConcurrency int

	Logger    *zerolog.Logger
	Publisher EventPublisher

	now func() time.Time
}

func (c Config) withDefaults(declared int) Config {
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = defaultMaxBatchSize
	}
	if c.MaxBatchRows < 0 {
		c.MaxBatchRows = 0
	}
	if c.MaxWait <= 0 {
		c.MaxWait = defaultMaxWait
	}
	if c.QueueTimeout < 0 {
		c.QueueTimeout = 0
	}
	if c.QueueTimeout > 0 && c.QueueTimeout < c.MaxWait {
		c.QueueTimeout = c.MaxWait
	}
	if c.MaxOutstanding <= 0 {
		c.MaxOutstanding = defaultMaxOutstanding
	}
	if declared <= 0 {
		declared = 1
	}
	if c.MaxConcurrency <= 0 || c.MaxConcurrency > declared {
		c.MaxConcurrency = declared
	}
	if c.Dispatchers <= 0 {
		c.Dispatchers = c.MaxConcurrency
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	if c.Publisher == nil {
		c.Publisher = noopPublisher{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}
