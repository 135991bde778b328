package rpc

import (
	"context"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	predictorv1 "predictord/api/predictor/v1"
	"predictord/internal/engine"
	"predictord/pkg/types"
)

// Service is what the gRPC front needs from the engine.
type Service interface {
	Predict(ctx context.Context, req types.PredictionRequest) (*types.PredictionResult, error)
	ModelInfo() types.ModelInfo
}

type predictorServer struct {
	predictorv1.UnimplementedPredictorServer
	svc Service
}

func (s *predictorServer) Predict(ctx context.Context, in *predictorv1.PredictRequest) (*predictorv1.PredictResponse, error) {
	res, err := s.svc.Predict(ctx, RequestFromProto(in))
	if err != nil {
		return nil, toStatus(err)
	}
	return ResultToProto(res), nil
}

func (s *predictorServer) ModelInfo(context.Context, *predictorv1.ModelInfoRequest) (*predictorv1.ModelInfoResponse, error) {
	return ModelInfoToProto(s.svc.ModelInfo()), nil
}

// toStatus maps engine errors to gRPC status codes.
func toStatus(err error) error {
	var code codes.Code
	switch {
	case engine.IsInvalidRequest(err):
		code = codes.InvalidArgument
	case engine.IsCapacityExceeded(err):
		code = codes.ResourceExhausted
	case engine.IsShuttingDown(err):
		code = codes.Unavailable
	case engine.IsTimeout(err):
		code = codes.DeadlineExceeded
	default:
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}

// Server is a gRPC server with predictor.v1.Predictor and the standard health
// service registered.
type Server struct {
	*grpc.Server
	health *health.Server
}

// NewServer builds the gRPC server. Recovery runs outermost so a panicking
// handler still produces a logged Internal status.
func NewServer(svc Service, log zerolog.Logger, opts ...grpc.ServerOption) *Server {
	log = log.With().Str("component", "grpc").Logger()
	opts = append(opts, grpc.ChainUnaryInterceptor(Recovery(log), Logger(log)))
	gs := grpc.NewServer(opts...)
	predictorv1.RegisterPredictorServer(gs, &predictorServer{svc: svc})

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)
	return &Server{Server: gs, health: hs}
}

// SetServing flips the health status of predictor.v1.Predictor.
func (s *Server) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, st)
	s.health.SetServingStatus("", st)
}

// GracefulStop marks the service as not serving, then waits for in-flight
// RPCs to finish.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.Server.GracefulStop()
}

// IsStatus reports whether err carries gRPC code c.
func IsStatus(err error, c codes.Code) bool {
	return err != nil && status.Code(err) == c
}
