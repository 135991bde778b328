package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"predictord/internal/engine"
	"predictord/internal/model"
	"predictord/internal/rpc"
	"predictord/internal/tensor"
	"predictord/pkg/types"
)

// slowModel wraps a handle and delays every execution.
type slowModel struct {
	model.Handle
	delay time.Duration
}

func (m slowModel) Execute(ctx context.Context, in *tensor.Batch) (*tensor.Output, error) {
	time.Sleep(m.delay)
	return m.Handle.Execute(ctx, in)
}

func newHandle(t *testing.T) model.Handle {
	t.Helper()
	h, err := model.NewNative(model.NewRandomSpec(model.DefaultRandomOptions()))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

type running struct {
	srv    *Server
	eng    *engine.Engine
	cancel context.CancelFunc
	done   chan error
}

func start(t *testing.T, exec engine.Executor, timeout time.Duration) *running {
	t.Helper()
	eng, err := engine.New(exec, engine.Config{MaxWait: time.Millisecond})
	require.NoError(t, err)
	srv := New(eng, Options{Addr: "127.0.0.1:0", ShutdownTimeout: timeout, Logger: zerolog.Nop()})
	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	r := &running{srv: srv, eng: eng, cancel: cancel, done: done}
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
		}
	})
	require.Eventually(t, eng.Ready, 2*time.Second, 5*time.Millisecond)
	return r
}

func (r *running) stop(t *testing.T) error {
	t.Helper()
	r.cancel()
	select {
	case err := <-r.done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
		return nil
	}
}

func postPredict(t *testing.T, addr string, req types.PredictionRequest) (*http.Response, types.PredictionResult) {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post("http://"+addr+"/predict", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var res types.PredictionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return resp, res
}

func TestServesHTTPAndGRPCOnOnePort(t *testing.T) {
	h := newHandle(t)
	r := start(t, h, 2*time.Second)
	addr := r.srv.Addr()
	gen := model.NewRequestGenerator(h.Signature(), 1)

	resp, res := postPredict(t, addr, gen.Next("http-1", 2))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http-1", res.ID)
	require.Len(t, res.Outputs, 1)
	assert.Len(t, res.Outputs[0].Values, 2)

	c, conn, err := rpc.Dial(addr)
	require.NoError(t, err)
	defer conn.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	gres, err := c.Predict(ctx, gen.Next("grpc-1", 1))
	require.NoError(t, err)
	assert.Equal(t, "grpc-1", gres.ID)
	assert.Len(t, gres.Outputs[0].Values, 1)

	info, err := c.ModelInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dlrm-demo", info.Name)

	hr, err := http.Get("http://" + addr + "/readyz")
	require.NoError(t, err)
	hr.Body.Close()
	assert.Equal(t, http.StatusOK, hr.StatusCode)

	require.NoError(t, r.stop(t))
	assert.Equal(t, engine.StateStopped, r.eng.State())
}

func TestInvalidRequestMapsOnBothProtocols(t *testing.T) {
	r := start(t, newHandle(t), 2*time.Second)
	bad := types.PredictionRequest{ID: "bad", Inputs: []types.Tensor{{Name: "nope", Kind: types.KindDense, Dim: 1, Values: []float32{1}}}}

	resp, res := postPredict(t, r.srv.Addr(), bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_request", res.Code)

	c, conn, err := rpc.Dial(r.srv.Addr())
	require.NoError(t, err)
	defer conn.Close()
	_, err = c.Predict(context.Background(), bad)
	assert.True(t, rpc.IsStatus(err, codes.InvalidArgument), "got %v", err)
}

func TestShutdownCompletesInFlightRequests(t *testing.T) {
	h := newHandle(t)
	r := start(t, slowModel{Handle: h, delay: 150 * time.Millisecond}, 3*time.Second)
	gen := model.NewRequestGenerator(h.Signature(), 2)

	body, err := json.Marshal(gen.Next("inflight", 1))
	require.NoError(t, err)
	type outcome struct {
		code int
		res  types.PredictionResult
		err  error
	}
	got := make(chan outcome, 1)
	go func() {
		resp, err := http.Post("http://"+r.srv.Addr()+"/predict", "application/json", bytes.NewReader(body))
		if err != nil {
			got <- outcome{err: err}
			return
		}
		defer resp.Body.Close()
		var o outcome
		o.code = resp.StatusCode
		o.err = json.NewDecoder(resp.Body).Decode(&o.res)
		got <- o
	}()
	require.Eventually(t, func() bool { return r.eng.Status().Outstanding == 1 }, 2*time.Second, time.Millisecond)

	require.NoError(t, r.stop(t))
	o := <-got
	require.NoError(t, o.err)
	assert.Equal(t, http.StatusOK, o.code)
	assert.Equal(t, types.StatusOK, o.res.Status)
}
