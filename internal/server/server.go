// Package server binds one TCP endpoint and serves the HTTP API and the gRPC
// service on it, split by cmux: HTTP/1 connections go to the chi router,
// everything else (HTTP/2) to gRPC.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/soheilhy/cmux"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"predictord/internal/engine"
	"predictord/internal/httpapi"
	"predictord/internal/rpc"
)

const defaultShutdownTimeout = 10 * time.Second

// Options configures New.
type Options struct {
	Addr string
	// ShutdownTimeout bounds the graceful drain; zero selects 10s.
	ShutdownTimeout time.Duration
	Logger          zerolog.Logger
}

// Server owns the listener, both protocol servers and the engine lifecycle.
type Server struct {
	opts Options
	eng  *engine.Engine
	log  zerolog.Logger

	lis      net.Listener
	http     *http.Server
	grpc     *rpc.Server
	hardStop context.CancelFunc
	closing  atomic.Bool
}

// New wires eng into an HTTP handler and a gRPC server. Nothing is bound
// until Listen or Run.
func New(eng *engine.Engine, opts Options) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	log := opts.Logger.With().Str("component", "server").Logger()

	hard, cancel := context.WithCancel(context.Background())
	httpapi.SetBaseContext(hard)
	httpapi.SetLogger(opts.Logger)

	return &Server{
		opts:     opts,
		eng:      eng,
		log:      log,
		http:     &http.Server{Handler: httpapi.NewMux(eng), ReadHeaderTimeout: 10 * time.Second},
		grpc:     rpc.NewServer(eng, opts.Logger),
		hardStop: cancel,
	}
}

// Listen binds the configured address.
func (s *Server) Listen() error {
	lis, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	s.lis = lis
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	if s.lis != nil {
		return s.lis.Addr().String()
	}
	return s.opts.Addr
}

// Run starts the engine and serves until ctx is canceled or a server fails,
// then shuts down: health goes NOT_SERVING, the engine flushes queued
// requests while both servers drain their in-flight calls, and anything
// still waiting at ShutdownTimeout is cut off.
func (s *Server) Run(ctx context.Context) error {
	if s.lis == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	m := cmux.New(s.lis)
	httpL := m.Match(cmux.HTTP1Fast())
	grpcL := m.Match(cmux.Any())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.quiet(s.grpc.Serve(grpcL)) })
	g.Go(func() error { return s.quiet(s.http.Serve(httpL)) })
	g.Go(func() error { return s.quiet(m.Serve()) })

	s.eng.Start()
	s.grpc.SetServing(true)
	s.log.Info().Str("addr", s.Addr()).Msg("serving http and grpc")

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown(m)
	})
	return g.Wait()
}

// quiet drops the errors servers return once shutdown has begun.
func (s *Server) quiet(err error) error {
	if err == nil || s.closing.Load() {
		return nil
	}
	if errors.Is(err, http.ErrServerClosed) || errors.Is(err, grpc.ErrServerStopped) ||
		errors.Is(err, cmux.ErrListenerClosed) || errors.Is(err, cmux.ErrServerClosed) || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *Server) shutdown(m cmux.CMux) error {
	s.closing.Store(true)
	s.grpc.SetServing(false)
	s.log.Info().Dur("timeout", s.opts.ShutdownTimeout).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	engDone := make(chan error, 1)
	go func() { engDone <- s.eng.Shutdown(ctx) }()

	grpcDone := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(grpcDone)
	}()

	httpErr := s.http.Shutdown(ctx)
	select {
	case <-grpcDone:
	case <-ctx.Done():
	}
	if ctx.Err() != nil {
		// Deadline passed: release callers still waiting on results.
		s.hardStop()
		s.grpc.Stop()
		_ = s.http.Close()
	}
	engErr := <-engDone
	s.hardStop()
	m.Close()

	if engErr != nil {
		s.log.Warn().Err(engErr).Msg("engine did not drain before deadline")
		return engErr
	}
	if httpErr != nil {
		s.log.Warn().Err(httpErr).Msg("http shutdown")
		return httpErr
	}
	s.log.Info().Msg("shutdown complete")
	return nil
}
