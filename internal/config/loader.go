package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"predictord/internal/engine"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by defaults downstream
// (engine.Config, httpapi) or overridden by command-line flags.
type Config struct {
	Addr     string `json:"addr" yaml:"addr" toml:"addr"`
	Artifact string `json:"artifact" yaml:"artifact" toml:"artifact"`

	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`

	MaxBodyBytes    int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	PredictTimeout  Duration `json:"predict_timeout" yaml:"predict_timeout" toml:"predict_timeout"`
	ShutdownTimeout Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" toml:"shutdown_timeout"`

	Batching Batching `json:"batching" yaml:"batching" toml:"batching"`
	Statsd   Statsd   `json:"statsd" yaml:"statsd" toml:"statsd"`
	CORS     CORS     `json:"cors" yaml:"cors" toml:"cors"`
}

// Batching mirrors engine.Config.
type Batching struct {
	MaxBatchSize   int      `json:"max_batch_size" yaml:"max_batch_size" toml:"max_batch_size"`
	MaxBatchRows   int      `json:"max_batch_rows" yaml:"max_batch_rows" toml:"max_batch_rows"`
	MaxWait        Duration `json:"max_wait" yaml:"max_wait" toml:"max_wait"`
	QueueTimeout   Duration `json:"queue_timeout" yaml:"queue_timeout" toml:"queue_timeout"`
	MaxOutstanding int      `json:"max_outstanding" yaml:"max_outstanding" toml:"max_outstanding"`
	Dispatchers    int      `json:"dispatchers" yaml:"dispatchers" toml:"dispatchers"`
	MaxConcurrency int      `json:"max_concurrency" yaml:"max_concurrency" toml:"max_concurrency"`
}

// Statsd configures the optional DogStatsD event sink. Empty Addr disables it.
type Statsd struct {
	Addr string   `json:"addr" yaml:"addr" toml:"addr"`
	Tags []string `json:"tags" yaml:"tags" toml:"tags"`
}

// CORS configures the optional CORS middleware of the HTTP API.
type CORS struct {
	Enabled bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins"`
	Methods []string `json:"methods" yaml:"methods" toml:"methods"`
	Headers []string `json:"headers" yaml:"headers" toml:"headers"`
}

func (b Batching) effectiveMaxWait() time.Duration {
	if b.MaxWait == 0 {
		return engine.DefaultMaxWait
	}
	return b.MaxWait.Std()
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values no component could honour.
func (c Config) Validate() error {
	b := c.Batching
	switch {
	case b.MaxBatchSize < 0:
		return fmt.Errorf("batching.max_batch_size must be >= 0")
	case b.MaxBatchRows < 0:
		return fmt.Errorf("batching.max_batch_rows must be >= 0")
	case b.MaxWait < 0 || b.QueueTimeout < 0:
		return fmt.Errorf("batching durations must be >= 0")
	case b.QueueTimeout != 0 && b.QueueTimeout.Std() < b.effectiveMaxWait():
		return fmt.Errorf("batching.queue_timeout (%s) must be 0 or >= max_wait (%s)", b.QueueTimeout.Std(), b.effectiveMaxWait())
	case b.MaxOutstanding < 0 || b.Dispatchers < 0 || b.MaxConcurrency < 0:
		return fmt.Errorf("batching limits must be >= 0")
	case c.MaxBodyBytes < 0:
		return fmt.Errorf("max_body_bytes must be >= 0")
	case c.PredictTimeout < 0 || c.ShutdownTimeout < 0:
		return fmt.Errorf("timeouts must be >= 0")
	}
	switch c.LogFormat {
	case "", "json", "console":
	default:
		return fmt.Errorf("log_format must be json or console, got %q", c.LogFormat)
	}
	return nil
}
