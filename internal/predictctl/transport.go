package predictctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	predictorv1 "predictord/api/predictor/v1"
	"predictord/internal/rpc"
	"predictord/pkg/types"
)

// backend is the subset of the server API the CLI talks to.
type backend interface {
	Predict(ctx context.Context, req types.PredictionRequest) (*types.PredictionResult, error)
	ModelInfo(ctx context.Context) (*types.ModelInfo, error)
	Close() error
}

// fnDial is replaced in tests.
var fnDial = dial

func dial(cfg *Config) (backend, error) {
	switch cfg.Protocol {
	case "grpc":
		conn, err := grpc.NewClient(cfg.Target, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, err
		}
		return newGRPCBackend(conn), nil
	case "http":
		return newHTTPBackend(cfg.Target, nil), nil
	default:
		return nil, fmt.Errorf("unknown protocol %q (want grpc or http)", cfg.Protocol)
	}
}

type grpcBackend struct {
	pc   predictorv1.PredictorClient
	conn *grpc.ClientConn
}

func newGRPCBackend(conn *grpc.ClientConn) *grpcBackend {
	return &grpcBackend{pc: predictorv1.NewPredictorClient(conn), conn: conn}
}

func (b *grpcBackend) Predict(ctx context.Context, req types.PredictionRequest) (*types.PredictionResult, error) {
	out, err := b.pc.Predict(ctx, rpc.RequestToProto(req))
	if err != nil {
		return nil, err
	}
	return rpc.ResultFromProto(out), nil
}

func (b *grpcBackend) ModelInfo(ctx context.Context) (*types.ModelInfo, error) {
	out, err := b.pc.ModelInfo(ctx, &predictorv1.ModelInfoRequest{})
	if err != nil {
		return nil, err
	}
	return rpc.ModelInfoFromProto(out), nil
}

func (b *grpcBackend) Close() error { return b.conn.Close() }

type httpBackend struct {
	base   string
	client *http.Client
}

func newHTTPBackend(target string, client *http.Client) *httpBackend {
	if client == nil {
		client = http.DefaultClient
	}
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "http://" + target
	}
	return &httpBackend{base: strings.TrimRight(target, "/"), client: client}
}

// httpError carries a non-2xx response. Predict failures still decode the
// PredictionResult body.
type httpError struct {
	Status int
	Body   string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, strings.TrimSpace(e.Body))
}

func (b *httpBackend) Predict(ctx context.Context, req types.PredictionRequest) (*types.PredictionResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, b.base+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	hr.Header.Set("Content-Type", "application/json")
	resp, err := b.client.Do(hr)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var res types.PredictionResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, &httpError{Status: resp.StatusCode, Body: string(raw)}
	}
	if resp.StatusCode != http.StatusOK {
		return &res, &httpError{Status: resp.StatusCode, Body: res.Error}
	}
	return &res, nil
}

func (b *httpBackend) ModelInfo(ctx context.Context) (*types.ModelInfo, error) {
	var out types.ModelResponse
	if err := b.getJSON(ctx, "/model", &out); err != nil {
		return nil, err
	}
	return &out.Model, nil
}

func (b *httpBackend) Status(ctx context.Context) (*types.StatusResponse, error) {
	var out types.StatusResponse
	if err := b.getJSON(ctx, "/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *httpBackend) getJSON(ctx context.Context, path string, v any) error {
	hr, err := http.NewRequestWithContext(ctx, http.MethodGet, b.base+path, nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(hr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return &httpError{Status: resp.StatusCode, Body: string(raw)}
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (b *httpBackend) Close() error { return nil }
