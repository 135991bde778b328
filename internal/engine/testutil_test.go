package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"predictord/internal/tensor"
	"predictord/pkg/types"
)

// fakeExecutor doubles a single dense input "x" (dim 1) into output "y".
// It records batch shapes and the peak number of overlapping executions.
type fakeExecutor struct {
	maxConc int
	delay   time.Duration
	block   chan struct{} // when set, Execute waits for it to be closed
	started chan struct{} // when set, receives one value per Execute call

	mu       sync.Mutex
	sizes    []int
	rows     []int
	failNext int
	failErr  error
	panicN   int
	badRows  bool

	calls   atomic.Int64
	current atomic.Int64
	peak    atomic.Int64
}

func (f *fakeExecutor) Execute(ctx context.Context, in *tensor.Batch) (*tensor.Output, error) {
	f.calls.Add(1)
	cur := f.current.Add(1)
	defer f.current.Add(-1)
	for {
		p := f.peak.Load()
		if cur <= p || f.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.sizes = append(f.sizes, in.Members())
	f.rows = append(f.rows, in.Rows)
	failing := f.failNext > 0
	if failing {
		f.failNext--
	}
	panicking := f.panicN > 0
	if panicking {
		f.panicN--
	}
	bad := f.badRows
	ferr := f.failErr
	f.mu.Unlock()

	if panicking {
		panic("kernel exploded")
	}
	if failing {
		if ferr == nil {
			ferr = errors.New("device lost")
		}
		return nil, ferr
	}
	x := in.Inputs[0].Values
	y := make([]float32, len(x))
	for i, v := range x {
		y[i] = 2 * v
	}
	rows := in.Rows
	if bad {
		rows--
		y = y[:len(y)-1]
	}
	return &tensor.Output{Rows: rows, Tensors: []types.Tensor{{Name: "y", Kind: types.KindDense, Dim: 1, Values: y}}}, nil
}

func (f *fakeExecutor) MaxConcurrency() int { return f.maxConc }

func (f *fakeExecutor) Signature() types.Signature {
	return types.Signature{
		Inputs:  []types.FeatureSpec{{Name: "x", Kind: types.KindDense, Dim: 1}},
		Outputs: []types.OutputSpec{{Name: "y", Dim: 1}},
	}
}

func (f *fakeExecutor) Info() types.ModelInfo {
	return types.ModelInfo{Name: "fake", Format: "native", MaxConcurrency: f.maxConc, Signature: f.Signature()}
}

func (f *fakeExecutor) batchSizes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.sizes...)
}

func (f *fakeExecutor) batchRows() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.rows...)
}

// markerRequest carries one row per value; the model doubles each value.
func markerRequest(id string, vals ...float32) types.PredictionRequest {
	return types.PredictionRequest{
		ID:        id,
		BatchSize: len(vals),
		Inputs:    []types.Tensor{{Name: "x", Kind: types.KindDense, Dim: 1, Values: vals}},
	}
}

func newTestEngine(t *testing.T, exec Executor, cfg Config) *Engine {
	t.Helper()
	e, err := New(exec, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = e.Shutdown(ctx)
	})
	return e
}

func mustEnqueue(t *testing.T, e *Engine, req types.PredictionRequest) *Future {
	t.Helper()
	f, err := e.Enqueue(req)
	if err != nil {
		t.Fatalf("Enqueue %q: %v", req.ID, err)
	}
	return f
}

func waitResult(t *testing.T, f *Future) (*types.PredictionResult, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return f.Wait(ctx)
}

func expectValues(t *testing.T, res *types.PredictionResult, want ...float32) {
	t.Helper()
	if res == nil || res.Status != types.StatusOK {
		t.Fatalf("expected ok result, got %+v", res)
	}
	if len(res.Outputs) != 1 {
		t.Fatalf("expected 1 output, got %d", len(res.Outputs))
	}
	got := res.Outputs[0].Values
	if len(got) != len(want) {
		t.Fatalf("values: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("values: got %v want %v", got, want)
		}
	}
}
