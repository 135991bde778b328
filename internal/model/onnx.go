//go:build onnx

package model

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	ort "github.com/yalue/onnxruntime_go"

	"predictord/internal/registry"
	"predictord/internal/tensor"
	"predictord/pkg/types"
)

// ONNX input contract:
//   - float inputs shaped [-1, D] are dense features of width D;
//   - an int64 input X shaped [-1] paired with an int64 input X_lengths is
//     the sparse feature X (flat ids + per-row counts);
//   - an optional float input X_weights shaped [-1] carries one weight per id
//     of X.
//
// Every float output shaped [-1, D] becomes a dense output of width D.
const (
	lengthsSuffix = "_lengths"
	weightsSuffix = "_weights"
)

var ortInit struct {
	once sync.Once
	err  error
}

func initORT() error {
	ortInit.once.Do(func() {
		if lib := os.Getenv("PREDICTORD_ORT_LIB"); lib != "" {
			ort.SetSharedLibraryPath(lib)
		}
		if !ort.IsInitialized() {
			ortInit.err = ort.InitializeEnvironment()
		}
	})
	return ortInit.err
}

type onnxModel struct {
	info       types.ModelInfo
	sig        types.Signature
	session    *ort.DynamicAdvancedSession
	inputNames []string
	// sparse features whose graph declares a X_weights input
	weighted map[string]bool
	closed   atomic.Bool
}

func loadONNX(art registry.Artifact) (Handle, error) {
	if err := initORT(); err != nil {
		return nil, &LoadError{Path: art.Path, Err: fmt.Errorf("onnxruntime init: %w", err)}
	}
	inputs, outputs, err := ort.GetInputOutputInfo(art.Path)
	if err != nil {
		return nil, &LoadError{Path: art.Path, Err: err}
	}
	sig, inputNames, weighted, err := onnxSignature(inputs, outputs)
	if err != nil {
		return nil, &LoadError{Path: art.Path, Err: err}
	}
	outputNames := make([]string, len(sig.Outputs))
	for i, o := range sig.Outputs {
		outputNames[i] = o.Name
	}
	sess, err := ort.NewDynamicAdvancedSession(art.Path, inputNames, outputNames, nil)
	if err != nil {
		return nil, &LoadError{Path: art.Path, Err: err}
	}
	conc := runtime.GOMAXPROCS(0)
	return &onnxModel{
		sig:        sig,
		session:    sess,
		inputNames: inputNames,
		weighted:   weighted,
		info: types.ModelInfo{
			Name:           art.ID,
			Format:         registry.FormatONNX,
			Path:           art.Path,
			SizeBytes:      art.SizeBytes,
			MaxConcurrency: conc,
			Signature:      sig,
		},
	}, nil
}

func onnxSignature(inputs, outputs []ort.InputOutputInfo) (types.Signature, []string, map[string]bool, error) {
	var sig types.Signature
	var names []string
	weighted := make(map[string]bool)
	byName := make(map[string]ort.InputOutputInfo, len(inputs))
	for _, in := range inputs {
		byName[in.Name] = in
	}
	isSparse := func(name string) bool {
		in, ok := byName[name]
		return ok && in.DataType == ort.TensorElementDataTypeInt64
	}
	for _, in := range inputs {
		switch in.DataType {
		case ort.TensorElementDataTypeFloat:
			if base, ok := strings.CutSuffix(in.Name, weightsSuffix); ok && isSparse(base) {
				if len(in.Dimensions) != 1 {
					return sig, nil, nil, fmt.Errorf("weights input %q must be [-1], got %v", in.Name, in.Dimensions)
				}
				continue
			}
			if len(in.Dimensions) != 2 || in.Dimensions[1] <= 0 {
				return sig, nil, nil, fmt.Errorf("dense input %q must be [-1, D], got %v", in.Name, in.Dimensions)
			}
			sig.Inputs = append(sig.Inputs, types.FeatureSpec{Name: in.Name, Kind: types.KindDense, Dim: int(in.Dimensions[1])})
			names = append(names, in.Name)
		case ort.TensorElementDataTypeInt64:
			if strings.HasSuffix(in.Name, lengthsSuffix) {
				continue
			}
			if _, ok := byName[in.Name+lengthsSuffix]; !ok {
				return sig, nil, nil, fmt.Errorf("sparse input %q has no %q companion", in.Name, in.Name+lengthsSuffix)
			}
			sig.Inputs = append(sig.Inputs, types.FeatureSpec{Name: in.Name, Kind: types.KindSparse})
			names = append(names, in.Name, in.Name+lengthsSuffix)
			if w, ok := byName[in.Name+weightsSuffix]; ok && w.DataType == ort.TensorElementDataTypeFloat {
				names = append(names, in.Name+weightsSuffix)
				weighted[in.Name] = true
			}
		default:
			return sig, nil, nil, fmt.Errorf("input %q has unsupported element type %v", in.Name, in.DataType)
		}
	}
	for _, out := range outputs {
		if out.DataType != ort.TensorElementDataTypeFloat || len(out.Dimensions) != 2 || out.Dimensions[1] <= 0 {
			return sig, nil, nil, fmt.Errorf("output %q must be float [-1, D]", out.Name)
		}
		sig.Outputs = append(sig.Outputs, types.OutputSpec{Name: out.Name, Dim: int(out.Dimensions[1])})
	}
	if len(sig.Outputs) == 0 {
		return sig, nil, nil, fmt.Errorf("model has no outputs")
	}
	return sig, names, weighted, nil
}

// sparseFeed lays out sparse feature t for the graph: flat ids, per-row
// lengths and, when the graph takes weights, one weight per id. Unweighted
// requests get weight 1. Weights sent to a graph without a weights input are
// an error rather than being dropped.
func sparseFeed(t types.Tensor, takesWeights bool) (ids, lens []int64, weights []float32, err error) {
	offs := tensor.SparseOffsets(t)
	lens = make([]int64, 0, len(offs)-1)
	for r := 0; r+1 < len(offs); r++ {
		lens = append(lens, int64(offs[r+1]-offs[r]))
	}
	switch {
	case takesWeights && len(t.Values) > 0:
		if len(t.Values) != len(t.IDs) {
			return nil, nil, nil, fmt.Errorf("sparse input %q: %d weights for %d ids", t.Name, len(t.Values), len(t.IDs))
		}
		weights = t.Values
	case takesWeights:
		weights = make([]float32, len(t.IDs))
		for i := range weights {
			weights[i] = 1
		}
	case len(t.Values) > 0:
		return nil, nil, nil, fmt.Errorf("sparse input %q is weighted but the model declares no %q input", t.Name, t.Name+weightsSuffix)
	}
	return t.IDs, lens, weights, nil
}

func (m *onnxModel) MaxConcurrency() int        { return m.info.MaxConcurrency }
func (m *onnxModel) Signature() types.Signature { return m.sig }
func (m *onnxModel) Info() types.ModelInfo      { return m.info }

func (m *onnxModel) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	return m.session.Destroy()
}

func (m *onnxModel) Execute(ctx context.Context, in *tensor.Batch) (*tensor.Output, error) {
	if m.closed.Load() {
		return nil, &ExecutionError{Err: errClosed}
	}
	if err := ctx.Err(); err != nil {
		return nil, &ExecutionError{Err: err}
	}
	if in == nil || in.Rows <= 0 || len(in.Inputs) != len(m.sig.Inputs) {
		return nil, execErr("batch does not match model inputs")
	}
	rows := int64(in.Rows)
	values := make([]ort.Value, 0, len(m.inputNames))
	defer func() {
		for _, v := range values {
			_ = v.Destroy()
		}
	}()
	for i, spec := range m.sig.Inputs {
		t := in.Inputs[i]
		if t.Name != spec.Name || t.Kind != spec.Kind {
			return nil, execErr("input %d: expected %s %q", i, spec.Kind, spec.Name)
		}
		switch spec.Kind {
		case types.KindDense:
			v, err := ort.NewTensor(ort.NewShape(rows, int64(spec.Dim)), t.Values)
			if err != nil {
				return nil, &ExecutionError{Err: err}
			}
			values = append(values, v)
		case types.KindSparse:
			ids, lens, weights, err := sparseFeed(t, m.weighted[spec.Name])
			if err != nil {
				return nil, &ExecutionError{Err: err}
			}
			iv, err := ort.NewTensor(ort.NewShape(int64(len(ids))), ids)
			if err != nil {
				return nil, &ExecutionError{Err: err}
			}
			values = append(values, iv)
			lv, err := ort.NewTensor(ort.NewShape(int64(len(lens))), lens)
			if err != nil {
				return nil, &ExecutionError{Err: err}
			}
			values = append(values, lv)
			if weights != nil {
				wv, err := ort.NewTensor(ort.NewShape(int64(len(weights))), weights)
				if err != nil {
					return nil, &ExecutionError{Err: err}
				}
				values = append(values, wv)
			}
		}
	}
	outs := make([]ort.Value, len(m.sig.Outputs))
	if err := m.session.Run(values, outs); err != nil {
		return nil, &ExecutionError{Err: err}
	}
	defer func() {
		for _, v := range outs {
			if v != nil {
				_ = v.Destroy()
			}
		}
	}()
	res := &tensor.Output{Rows: in.Rows}
	for i, spec := range m.sig.Outputs {
		ft, ok := outs[i].(*ort.Tensor[float32])
		if !ok {
			return nil, execErr("output %q is not a float tensor", spec.Name)
		}
		data := ft.GetData()
		if len(data) != in.Rows*spec.Dim {
			return nil, execErr("output %q has %d values, want %d", spec.Name, len(data), in.Rows*spec.Dim)
		}
		vals := make([]float32, len(data))
		copy(vals, data)
		res.Tensors = append(res.Tensors, types.Tensor{Name: spec.Name, Kind: types.KindDense, Dim: spec.Dim, Values: vals})
	}
	return res, nil
}
