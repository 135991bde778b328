package model

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync/atomic"

	"predictord/internal/registry"
	"predictord/internal/tensor"
	"predictord/pkg/types"
)

var errClosed = errors.New("model closed")

type denseLayer struct {
	in, out int
	w, b    []float32
	act     string
}

// forward applies the layer to rows row-major vectors of width l.in.
func (l *denseLayer) forward(x []float32, rows int) []float32 {
	y := make([]float32, rows*l.out)
	for r := 0; r < rows; r++ {
		xr := x[r*l.in : (r+1)*l.in]
		yr := y[r*l.out : (r+1)*l.out]
		for o := 0; o < l.out; o++ {
			acc := l.b[o]
			wo := l.w[o*l.in : (o+1)*l.in]
			for i, v := range xr {
				acc += wo[i] * v
			}
			yr[o] = activate(l.act, acc)
		}
	}
	return y
}

func activate(act string, v float32) float32 {
	switch act {
	case ActReLU:
		if v < 0 {
			return 0
		}
		return v
	case ActSigmoid:
		return float32(1 / (1 + math.Exp(-float64(v))))
	default:
		return v
	}
}

type embTable struct {
	rows int64
	dim  int
	w    []float32
}

type sparseFeature struct {
	name  string
	table *embTable
	mean  bool
}

type nativeModel struct {
	info       types.ModelInfo
	sig        types.Signature
	dense      []DenseInput
	denseWidth int
	sparse     []sparseFeature
	embWidth   int
	bottom     []denseLayer
	over       []denseLayer
	head       string
	output     string
	maxConc    int
	closed     atomic.Bool
}

func loadNative(art registry.Artifact) (Handle, error) {
	f, err := os.Open(art.Path)
	if err != nil {
		return nil, &LoadError{Path: art.Path, Err: err}
	}
	defer f.Close()
	spec, err := ReadArtifact(bufio.NewReader(f))
	if err != nil {
		return nil, &LoadError{Path: art.Path, Err: err}
	}
	h, err := NewNative(spec)
	if err != nil {
		return nil, &LoadError{Path: art.Path, Err: err}
	}
	m := h.(*nativeModel)
	m.info.Path = art.Path
	m.info.SizeBytes = art.SizeBytes
	return m, nil
}

// NewNative builds an in-memory Handle from a manifest.
func NewNative(spec *Spec) (Handle, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	m := &nativeModel{
		dense:   append([]DenseInput(nil), spec.Dense...),
		head:    spec.Head,
		output:  spec.Output,
		maxConc: spec.MaxConcurrency,
		sig:     spec.Signature(),
	}
	if m.maxConc <= 0 {
		m.maxConc = 1
	}
	for _, d := range spec.Dense {
		m.denseWidth += d.Dim
	}
	tables := make(map[string]*embTable, len(spec.Tables))
	for _, t := range spec.Tables {
		w, err := t.Weights.Float32s()
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", t.Name, err)
		}
		tables[t.Name] = &embTable{rows: t.Rows, dim: t.Dim, w: w}
	}
	for _, sp := range spec.Sparse {
		tb := tables[sp.Table]
		m.sparse = append(m.sparse, sparseFeature{name: sp.Name, table: tb, mean: sp.Pooling == PoolMean})
		m.embWidth += tb.dim
	}
	var err error
	if m.bottom, err = decodeLayers("bottom", spec.Bottom); err != nil {
		return nil, err
	}
	if m.over, err = decodeLayers("over", spec.Over); err != nil {
		return nil, err
	}
	m.info = types.ModelInfo{
		Name:           spec.Name,
		Version:        spec.Version,
		Format:         registry.FormatNative,
		MaxConcurrency: m.maxConc,
		Signature:      m.sig,
	}
	return m, nil
}

func decodeLayers(arch string, layers []Layer) ([]denseLayer, error) {
	out := make([]denseLayer, len(layers))
	for i, l := range layers {
		w, err := l.Weights.Float32s()
		if err != nil {
			return nil, fmt.Errorf("%s layer %d weights: %w", arch, i, err)
		}
		b, err := l.Bias.Float32s()
		if err != nil {
			return nil, fmt.Errorf("%s layer %d bias: %w", arch, i, err)
		}
		out[i] = denseLayer{in: l.In, out: l.Out, w: w, b: b, act: l.Activation}
	}
	return out, nil
}

func (m *nativeModel) MaxConcurrency() int        { return m.maxConc }
func (m *nativeModel) Signature() types.Signature { return m.sig }
func (m *nativeModel) Info() types.ModelInfo      { return m.info }

func (m *nativeModel) Close() error {
	m.closed.Store(true)
	return nil
}

func execErr(format string, args ...any) error {
	return &ExecutionError{Err: fmt.Errorf(format, args...)}
}

// Execute runs the forward pass for every row of in.
func (m *nativeModel) Execute(ctx context.Context, in *tensor.Batch) (*tensor.Output, error) {
	if m.closed.Load() {
		return nil, &ExecutionError{Err: errClosed}
	}
	if err := ctx.Err(); err != nil {
		return nil, &ExecutionError{Err: err}
	}
	if in == nil || in.Rows <= 0 {
		return nil, execErr("empty batch")
	}
	if len(in.Inputs) != len(m.sig.Inputs) {
		return nil, execErr("batch has %d inputs, model expects %d", len(in.Inputs), len(m.sig.Inputs))
	}
	rows := in.Rows

	// Dense features side by side, then the bottom arch.
	x := make([]float32, rows*m.denseWidth)
	col := 0
	for i, d := range m.dense {
		t := in.Inputs[i]
		if t.Name != d.Name || t.Kind != types.KindDense || t.Dim != d.Dim || len(t.Values) != rows*d.Dim {
			return nil, execErr("input %d: expected dense %q with %d x %d values", i, d.Name, rows, d.Dim)
		}
		for r := 0; r < rows; r++ {
			copy(x[r*m.denseWidth+col:], t.Values[r*d.Dim:(r+1)*d.Dim])
		}
		col += d.Dim
	}
	h, width := x, m.denseWidth
	for i := range m.bottom {
		h = m.bottom[i].forward(h, rows)
		width = m.bottom[i].out
	}

	// Interaction: bottom output followed by every pooled embedding.
	zw := width + m.embWidth
	z := make([]float32, rows*zw)
	for r := 0; r < rows; r++ {
		copy(z[r*zw:], h[r*width:(r+1)*width])
	}
	col = width
	for k, sf := range m.sparse {
		t := in.Inputs[len(m.dense)+k]
		if t.Name != sf.name || t.Kind != types.KindSparse {
			return nil, execErr("input %d: expected sparse %q", len(m.dense)+k, sf.name)
		}
		offs := tensor.SparseOffsets(t)
		if len(offs)-1 != rows || offs[rows] != len(t.IDs) {
			return nil, execErr("input %q: lengths do not cover %d rows", sf.name, rows)
		}
		weighted := len(t.Values) > 0
		if weighted && len(t.Values) != len(t.IDs) {
			return nil, execErr("input %q: %d weights for %d ids", sf.name, len(t.Values), len(t.IDs))
		}
		dim := sf.table.dim
		for r := 0; r < rows; r++ {
			dst := z[r*zw+col : r*zw+col+dim]
			lo, hi := offs[r], offs[r+1]
			for p := lo; p < hi; p++ {
				id := t.IDs[p]
				if id < 0 || id >= sf.table.rows {
					return nil, execErr("input %q: id %d out of range [0,%d)", sf.name, id, sf.table.rows)
				}
				wgt := float32(1)
				if weighted {
					wgt = t.Values[p]
				}
				emb := sf.table.w[int(id)*dim : int(id+1)*dim]
				for c := range dst {
					dst[c] += wgt * emb[c]
				}
			}
			if sf.mean && hi > lo {
				inv := 1 / float32(hi-lo)
				for c := range dst {
					dst[c] *= inv
				}
			}
		}
		col += dim
	}

	out := z
	for i := range m.over {
		out = m.over[i].forward(out, rows)
	}
	outDim := m.over[len(m.over)-1].out
	for i, v := range out {
		if m.head == ActSigmoid {
			v = activate(ActSigmoid, v)
			out[i] = v
		}
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, execErr("non-finite output at row %d", i/outDim)
		}
	}
	return &tensor.Output{
		Rows:    rows,
		Tensors: []types.Tensor{{Name: m.output, Kind: types.KindDense, Dim: outDim, Values: out}},
	}, nil
}
