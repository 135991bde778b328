package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	predictorv1 "predictord/api/predictor/v1"
	"predictord/pkg/types"
)

// Client wraps the generated predictor.v1.Predictor client and speaks
// pkg/types at its surface.
type Client struct {
	pc predictorv1.PredictorClient
}

// Dial connects to target without TLS. Extra options are appended.
func Dial(target string, opts ...grpc.DialOption) (*Client, *grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, nil, err
	}
	return NewClient(conn), conn, nil
}

// NewClient wraps an existing connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{pc: predictorv1.NewPredictorClient(cc)}
}

// Predict calls predictor.v1.Predictor/Predict.
func (c *Client) Predict(ctx context.Context, req types.PredictionRequest, opts ...grpc.CallOption) (*types.PredictionResult, error) {
	out, err := c.pc.Predict(ctx, RequestToProto(req), opts...)
	if err != nil {
		return nil, err
	}
	return ResultFromProto(out), nil
}

// ModelInfo calls predictor.v1.Predictor/ModelInfo.
func (c *Client) ModelInfo(ctx context.Context, opts ...grpc.CallOption) (*types.ModelInfo, error) {
	out, err := c.pc.ModelInfo(ctx, &predictorv1.ModelInfoRequest{}, opts...)
	if err != nil {
		return nil, err
	}
	return ModelInfoFromProto(out), nil
}
