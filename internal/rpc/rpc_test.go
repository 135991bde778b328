package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	reflectionpb "google.golang.org/grpc/reflection/grpc_reflection_v1"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	predictorv1 "predictord/api/predictor/v1"
	"predictord/internal/engine"
	"predictord/pkg/types"
)

type fakeService struct {
	err      error
	panicMsg string
}

func (f *fakeService) Predict(ctx context.Context, req types.PredictionRequest) (*types.PredictionResult, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}
	vals := make([]float32, req.Rows())
	for i := range vals {
		vals[i] = float32(i) + 0.5
	}
	return &types.PredictionResult{
		ID:      req.ID,
		Status:  types.StatusOK,
		Outputs: []types.Tensor{{Name: "score", Kind: types.KindDense, Dim: 1, Values: vals}},
	}, nil
}

func (f *fakeService) ModelInfo() types.ModelInfo {
	return types.ModelInfo{Name: "fake", Format: "native", MaxConcurrency: 4}
}

// startServer serves svc over an in-memory listener and returns a client.
func startServer(t *testing.T, svc Service) (*Client, *Server, *grpc.ClientConn) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := NewServer(svc, zerolog.Nop())
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewClient(conn), srv, conn
}

func TestPredictRoundTrip(t *testing.T) {
	c, _, _ := startServer(t, &fakeService{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := c.Predict(ctx, types.PredictionRequest{ID: "r1", BatchSize: 3})
	require.NoError(t, err)
	assert.Equal(t, "r1", res.ID)
	assert.Equal(t, types.StatusOK, res.Status)
	require.Len(t, res.Outputs, 1)
	assert.Equal(t, []float32{0.5, 1.5, 2.5}, res.Outputs[0].Values)
}

func TestModelInfo(t *testing.T) {
	c, _, _ := startServer(t, &fakeService{})
	info, err := c.ModelInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fake", info.Name)
	assert.Equal(t, 4, info.MaxConcurrency)
}

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("%w: missing input", engine.ErrInvalidRequest), codes.InvalidArgument},
		{engine.ErrCapacityExceeded, codes.ResourceExhausted},
		{engine.ErrShuttingDown, codes.Unavailable},
		{engine.ErrTimeout, codes.DeadlineExceeded},
		{&engine.ExecutionError{Batch: 1, Size: 1, Err: errors.New("boom")}, codes.Internal},
	}
	for _, tc := range cases {
		t.Run(tc.want.String(), func(t *testing.T) {
			c, _, _ := startServer(t, &fakeService{err: tc.err})
			_, err := c.Predict(context.Background(), types.PredictionRequest{ID: "x"})
			require.Error(t, err)
			assert.True(t, IsStatus(err, tc.want), "got %v", err)
		})
	}
}

func TestPanicBecomesInternal(t *testing.T) {
	c, _, _ := startServer(t, &fakeService{panicMsg: "kaboom"})
	_, err := c.Predict(context.Background(), types.PredictionRequest{ID: "x"})
	require.Error(t, err)
	assert.True(t, IsStatus(err, codes.Internal))
	assert.Contains(t, err.Error(), "kaboom")
}

func TestHealthFollowsServingState(t *testing.T) {
	_, srv, conn := startServer(t, &fakeService{})
	hc := healthpb.NewHealthClient(conn)
	ctx := context.Background()

	resp, err := hc.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	srv.SetServing(true)
	resp, err = hc.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestJSONSubtypeRoundTrip(t *testing.T) {
	c, _, _ := startServer(t, &fakeService{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := c.Predict(ctx, types.PredictionRequest{ID: "j1", BatchSize: 2}, grpc.CallContentSubtype(CodecName))
	require.NoError(t, err)
	assert.Equal(t, "j1", res.ID)
	require.Len(t, res.Outputs, 1)
	assert.Equal(t, []float32{0.5, 1.5}, res.Outputs[0].Values)

	info, err := c.ModelInfo(ctx, grpc.CallContentSubtype(CodecName))
	require.NoError(t, err)
	assert.Equal(t, "fake", info.Name)
}

func TestJSONCodecUsesProtoNames(t *testing.T) {
	var c jsonCodec
	assert.Equal(t, "json", c.Name())

	b, err := c.Marshal(&predictorv1.PredictRequest{Id: "a", BatchSize: 2})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"batch_size"`)

	var back predictorv1.PredictRequest
	require.NoError(t, c.Unmarshal(b, &back))
	assert.Equal(t, int32(2), back.GetBatchSize())

	_, err = c.Marshal(struct{}{})
	assert.Error(t, err)
}

func TestReflectionResolvesPredictor(t *testing.T) {
	_, _, conn := startServer(t, &fakeService{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := reflectionpb.NewServerReflectionClient(conn).ServerReflectionInfo(ctx)
	require.NoError(t, err)

	require.NoError(t, stream.Send(&reflectionpb.ServerReflectionRequest{
		MessageRequest: &reflectionpb.ServerReflectionRequest_ListServices{},
	}))
	resp, err := stream.Recv()
	require.NoError(t, err)
	var names []string
	for _, s := range resp.GetListServicesResponse().GetService() {
		names = append(names, s.GetName())
	}
	assert.Contains(t, names, ServiceName)

	require.NoError(t, stream.Send(&reflectionpb.ServerReflectionRequest{
		MessageRequest: &reflectionpb.ServerReflectionRequest_FileContainingSymbol{FileContainingSymbol: ServiceName},
	}))
	resp, err = stream.Recv()
	require.NoError(t, err)
	files := resp.GetFileDescriptorResponse().GetFileDescriptorProto()
	require.NotEmpty(t, files)

	var fd descriptorpb.FileDescriptorProto
	require.NoError(t, proto.Unmarshal(files[0], &fd))
	assert.Equal(t, "predictor.v1", fd.GetPackage())
	require.Len(t, fd.GetService(), 1)
	var methods []string
	for _, m := range fd.GetService()[0].GetMethod() {
		methods = append(methods, m.GetName())
	}
	assert.Equal(t, []string{"Predict", "ModelInfo"}, methods)
}

func TestServiceNameMatchesGeneratedDescriptor(t *testing.T) {
	assert.Equal(t, ServiceName, predictorv1.Predictor_ServiceDesc.ServiceName)
	sd := predictorv1.File_predictor_v1_predictor_proto.Services().ByName("Predictor")
	require.NotNil(t, sd)
	assert.Equal(t, ServiceName, string(sd.FullName()))
}

func TestConvertSparseAndSignature(t *testing.T) {
	in := types.PredictionRequest{
		ID:        "s",
		BatchSize: 2,
		Inputs: []types.Tensor{
			{Name: "dense", Kind: types.KindDense, Dim: 2, Values: []float32{1, 2, 3, 4}},
			{Name: "ids", Kind: types.KindSparse, IDs: []int64{7, 8, 9}, Lengths: []int32{1, 2}, Values: []float32{0.5, 1, 2}},
		},
	}
	b, err := proto.Marshal(RequestToProto(in))
	require.NoError(t, err)
	var wire predictorv1.PredictRequest
	require.NoError(t, proto.Unmarshal(b, &wire))
	assert.Equal(t, in, RequestFromProto(&wire))

	info := types.ModelInfo{
		Name:           "m",
		Format:         "native",
		SizeBytes:      10,
		MaxConcurrency: 2,
		Signature: types.Signature{
			Inputs:  []types.FeatureSpec{{Name: "ids", Kind: types.KindSparse, Cardinality: 100}},
			Outputs: []types.OutputSpec{{Name: "score", Dim: 1}},
		},
	}
	assert.Equal(t, &info, ModelInfoFromProto(ModelInfoToProto(info)))
}
