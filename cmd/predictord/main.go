package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"predictord/internal/config"
	"predictord/internal/engine"
	"predictord/internal/httpapi"
	"predictord/internal/model"
	"predictord/internal/server"
	"predictord/internal/telemetry"
)

// options holds raw flag values. Explicitly set flags override the config file.
type options struct {
	configPath string

	addr      string
	logLevel  string
	logFormat string

	maxBatchSize   int
	maxBatchRows   int
	maxWait        time.Duration
	queueTimeout   time.Duration
	maxOutstanding int
	dispatchers    int
	maxConcurrency int

	maxBodyBytes    int64
	predictTimeout  time.Duration
	shutdownTimeout time.Duration

	statsdAddr  string
	statsdTags  string
	corsOrigins string
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:           "predictord [flags] <artifact>",
		Short:         "Serve a recommendation model over HTTP and gRPC with dynamic batching",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, o, args)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
			if err != nil {
				return err
			}
			return fnServe(cmd.Context(), cfg, log)
		},
	}

	// Flags with environment variable defaults
	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "Config file (.yaml, .json or .toml)")
	f.StringVar(&o.addr, "addr", envStr("PREDICTORD_ADDR", ":8080"), "Listen address for HTTP and gRPC, e.g. :8080")
	f.StringVar(&o.logLevel, "log-level", envStr("PREDICTORD_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	f.StringVar(&o.logFormat, "log-format", "json", "Log format: json|console")
	f.IntVar(&o.maxBatchSize, "max-batch-size", 0, "Max requests per batch (0 = 64)")
	f.IntVar(&o.maxBatchRows, "max-batch-rows", 0, "Max summed rows per batch (0 = no cap)")
	f.DurationVar(&o.maxWait, "max-wait", 0, "Max time the oldest request waits for a batch to fill (0 = 2ms)")
	f.DurationVar(&o.queueTimeout, "queue-timeout", 0, "Fail requests still queued after this long (0 = never)")
	f.IntVar(&o.maxOutstanding, "max-outstanding", 0, "Max accepted, uncompleted requests (0 = 1024)")
	f.IntVar(&o.dispatchers, "dispatchers", 0, "Dispatch workers (0 = effective concurrency)")
	f.IntVar(&o.maxConcurrency, "max-concurrency", 0, "Lower the model's declared concurrency (0 = as declared)")
	f.Int64Var(&o.maxBodyBytes, "max-body-bytes", 0, "Max /predict body size (0 = 1MiB)")
	f.DurationVar(&o.predictTimeout, "predict-timeout", 0, "Per-request wait bound for HTTP callers (0 = none)")
	f.DurationVar(&o.shutdownTimeout, "shutdown-timeout", 0, "Graceful shutdown bound (0 = 10s)")
	f.StringVar(&o.statsdAddr, "statsd-addr", "", "DogStatsD agent address; empty disables")
	f.StringVar(&o.statsdTags, "statsd-tags", "", "Comma separated tags attached to statsd metrics")
	f.StringVar(&o.corsOrigins, "cors-origins", "", "Comma separated allowed origins; enables CORS")
	return cmd
}

// resolveConfig layers config file values under explicitly set flags.
func resolveConfig(cmd *cobra.Command, o *options, args []string) (config.Config, error) {
	var cfg config.Config
	if o.configPath != "" {
		c, err := config.Load(o.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", o.configPath, err)
		}
		cfg = c
	}
	set := cmd.Flags().Changed
	if len(args) == 1 {
		cfg.Artifact = args[0]
	}
	if cfg.Artifact == "" {
		return cfg, errors.New("missing artifact path")
	}
	if set("addr") || cfg.Addr == "" {
		cfg.Addr = o.addr
	}
	if set("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = o.logLevel
	}
	if set("log-format") || cfg.LogFormat == "" {
		cfg.LogFormat = o.logFormat
	}
	b := &cfg.Batching
	if set("max-batch-size") {
		b.MaxBatchSize = o.maxBatchSize
	}
	if set("max-batch-rows") {
		b.MaxBatchRows = o.maxBatchRows
	}
	if set("max-wait") {
		b.MaxWait = config.Duration(o.maxWait)
	}
	if set("queue-timeout") {
		b.QueueTimeout = config.Duration(o.queueTimeout)
	}
	if set("max-outstanding") {
		b.MaxOutstanding = o.maxOutstanding
	}
	if set("dispatchers") {
		b.Dispatchers = o.dispatchers
	}
	if set("max-concurrency") {
		b.MaxConcurrency = o.maxConcurrency
	}
	if set("max-body-bytes") {
		cfg.MaxBodyBytes = o.maxBodyBytes
	}
	if set("predict-timeout") {
		cfg.PredictTimeout = config.Duration(o.predictTimeout)
	}
	if set("shutdown-timeout") {
		cfg.ShutdownTimeout = config.Duration(o.shutdownTimeout)
	}
	if set("statsd-addr") {
		cfg.Statsd.Addr = o.statsdAddr
	}
	if set("statsd-tags") {
		cfg.Statsd.Tags = splitCSV(o.statsdTags)
	}
	if set("cors-origins") {
		cfg.CORS.Origins = splitCSV(o.corsOrigins)
		cfg.CORS.Enabled = len(cfg.CORS.Origins) > 0
	}
	return cfg, cfg.Validate()
}

func newLogger(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
	}
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "predictord").Logger(), nil
}

// fnServe is swapped out in tests.
var fnServe = serve

func serve(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	h, err := model.Load(cfg.Artifact)
	if err != nil {
		return err
	}
	defer h.Close()
	info := h.Info()
	log.Info().Str("model", info.Name).Str("format", info.Format).Str("path", info.Path).
		Int("max_concurrency", info.MaxConcurrency).Msg("model loaded")

	b := cfg.Batching
	ecfg := engine.Config{
		MaxBatchSize:   b.MaxBatchSize,
		MaxBatchRows:   b.MaxBatchRows,
		MaxWait:        b.MaxWait.Std(),
		QueueTimeout:   b.QueueTimeout.Std(),
		MaxOutstanding: b.MaxOutstanding,
		Dispatchers:    b.Dispatchers,
		MaxConcurrency: b.MaxConcurrency,
		Logger:         &log,
	}
	if cfg.Statsd.Addr != "" {
		pub, err := telemetry.NewStatsdPublisher(telemetry.Options{Addr: cfg.Statsd.Addr, Tags: cfg.Statsd.Tags, Logger: &log})
		if err != nil {
			return err
		}
		defer pub.Close()
		ecfg.Publisher = pub
	}
	eng, err := engine.New(h, ecfg)
	if err != nil {
		return err
	}

	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetPredictTimeout(cfg.PredictTimeout.Std())
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.Origins, cfg.CORS.Methods, cfg.CORS.Headers)

	srv := server.New(eng, server.Options{
		Addr:            cfg.Addr,
		ShutdownTimeout: cfg.ShutdownTimeout.Std(),
		Logger:          log,
	})
	if err := srv.Listen(); err != nil {
		return err
	}
	return srv.Run(ctx)
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	// Graceful shutdown (Ctrl+C / SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "predictord:", err)
		if model.IsLoadError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
