package predictctl

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"predictord/pkg/types"
)

var testSig = types.Signature{
	Inputs:  []types.FeatureSpec{{Name: "x", Kind: types.KindDense, Dim: 2}},
	Outputs: []types.OutputSpec{{Name: "y", Dim: 1}},
}

// fakeBackend answers every request with one zero per row, unless fail or
// wrongID is set.
type fakeBackend struct {
	fail    error
	wrongID bool
	calls   atomic.Int64
	closed  atomic.Bool
}

func (f *fakeBackend) Predict(ctx context.Context, req types.PredictionRequest) (*types.PredictionResult, error) {
	f.calls.Add(1)
	if f.fail != nil {
		return nil, f.fail
	}
	id := req.ID
	if f.wrongID {
		id = "other"
	}
	return &types.PredictionResult{
		ID:      id,
		Status:  types.StatusOK,
		Outputs: []types.Tensor{{Name: "y", Kind: types.KindDense, Dim: 1, Values: make([]float32, req.Rows())}},
	}, nil
}

func (f *fakeBackend) ModelInfo(ctx context.Context) (*types.ModelInfo, error) {
	return &types.ModelInfo{Name: "fake", Signature: testSig}, nil
}

func (f *fakeBackend) Close() error {
	f.closed.Store(true)
	return nil
}

var errBoom = errors.New("boom")

// withCLIStubs swaps the command actions and restores them after the test.
func withCLIStubs(t *testing.T, stubs func()) {
	t.Helper()
	oldDial := fnDial
	oldRunLoad := fnRunLoad
	oldStatus := fnStatus
	oldSave := fnSaveModel
	stubs()
	t.Cleanup(func() {
		fnDial = oldDial
		fnRunLoad = oldRunLoad
		fnStatus = oldStatus
		fnSaveModel = oldSave
	})
}
