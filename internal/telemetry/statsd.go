// Package telemetry forwards engine events to a DogStatsD agent.
package telemetry

import (
	"fmt"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rs/zerolog"

	"predictord/internal/engine"
)

// StatsdPublisher is an engine.EventPublisher emitting DogStatsD metrics.
// The statsd client buffers and sends from its own goroutine, so Publish
// never blocks on the network.
type StatsdPublisher struct {
	client statsd.ClientInterface
	rate   float64
	log    zerolog.Logger
}

// Options configures NewStatsdPublisher.
type Options struct {
	// Addr is the agent address, e.g. 127.0.0.1:8125.
	Addr string
	// Namespace prefixes every metric name. Defaults to "predictord.".
	Namespace string
	// Tags are attached to every metric (e.g. "env:prod").
	Tags []string
	// SampleRate in (0,1]; zero means 1.
	SampleRate float64
	Logger     *zerolog.Logger
}

// NewStatsdPublisher dials the agent (UDP, no handshake) and returns a publisher.
func NewStatsdPublisher(o Options) (*StatsdPublisher, error) {
	if o.Addr == "" {
		return nil, fmt.Errorf("statsd: empty address")
	}
	ns := o.Namespace
	if ns == "" {
		ns = "predictord."
	}
	client, err := statsd.New(o.Addr,
		statsd.WithNamespace(ns),
		statsd.WithTags(o.Tags),
		statsd.WithoutTelemetry(),
		statsd.WithoutClientSideAggregation(),
	)
	if err != nil {
		return nil, fmt.Errorf("statsd: %w", err)
	}
	return newPublisher(client, o), nil
}

func newPublisher(client statsd.ClientInterface, o Options) *StatsdPublisher {
	rate := o.SampleRate
	if rate <= 0 || rate > 1 {
		rate = 1
	}
	log := zerolog.Nop()
	if o.Logger != nil {
		log = o.Logger.With().Str("component", "statsd").Logger()
	}
	return &StatsdPublisher{client: client, rate: rate, log: log}
}

// Publish implements engine.EventPublisher.
func (p *StatsdPublisher) Publish(ev engine.Event) {
	var err error
	switch ev.Name {
	case engine.EventBatchExecuted:
		err = p.client.Incr("engine.batches", []string{"outcome:ok"}, p.rate)
		if size, ok := ev.Fields["size"].(int); ok {
			p.warn(p.client.Histogram("engine.batch_size", float64(size), nil, p.rate))
		}
		if ms, ok := ev.Fields["duration_ms"].(float64); ok {
			p.warn(p.client.Timing("engine.execute", time.Duration(ms*float64(time.Millisecond)), nil, p.rate))
		}
	case engine.EventBatchFailed:
		err = p.client.Incr("engine.batches", []string{"outcome:error"}, p.rate)
		msg, _ := ev.Fields["error"].(string)
		p.warn(p.client.Event(&statsd.Event{
			Title:     "predictord batch failed",
			Text:      fmt.Sprintf("batch %d: %s", ev.Batch, msg),
			AlertType: statsd.Error,
		}))
	default:
		err = p.client.Incr("engine.events", []string{"event:" + ev.Name}, p.rate)
	}
	p.warn(err)
}

func (p *StatsdPublisher) warn(err error) {
	if err != nil {
		p.log.Warn().Err(err).Msg("statsd send failed")
	}
}

// Close flushes buffered metrics and releases the client.
func (p *StatsdPublisher) Close() error {
	return p.client.Close()
}
