package rpc

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var grpcRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "predictord",
		Subsystem: "grpc",
		Name:      "requests_total",
		Help:      "Total number of unary gRPC calls",
	},
	[]string{"method", "code"},
)

var grpcRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "predictord",
		Subsystem: "grpc",
		Name:      "request_duration_seconds",
		Help:      "Duration of unary gRPC calls in seconds",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "code"},
)

func init() {
	prometheus.MustRegister(grpcRequestsTotal, grpcRequestDuration)
}

// Recovery turns handler panics into codes.Internal.
func Recovery(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("method", info.FullMethod).Bytes("stack", debug.Stack()).Msgf("panic: %v", r)
				err = status.Errorf(codes.Internal, "panic recovered: %v", r)
			}
		}()
		return handler(ctx, req)
	}
}

// Logger records method, status code and latency of every unary call.
func Logger(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		dur := time.Since(start)
		grpcRequestsTotal.WithLabelValues(info.FullMethod, code.String()).Inc()
		grpcRequestDuration.WithLabelValues(info.FullMethod, code.String()).Observe(dur.Seconds())

		ev := log.Debug()
		if err != nil && code != codes.ResourceExhausted && code != codes.InvalidArgument {
			ev = log.Warn().Err(err)
		}
		ev.Str("method", info.FullMethod).Str("code", code.String()).Dur("dur", dur).Msg("rpc")
		return resp, err
	}
}
