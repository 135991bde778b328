package model

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/x448/float16"

	"predictord/pkg/types"
)

// Weight blob element types.
//
// DTypeINT8 is row-wise quantized: each row (the leading dimension; the
// whole blob when it is one-dimensional) stores its int8 codes followed by an
// fp16 scale and an fp16 bias, and decodes as code*scale + bias.
const (
	DTypeFP32 = "fp32"
	DTypeFP16 = "fp16"
	DTypeINT8 = "int8"
)

// ValidDType reports whether d names a supported blob element type.
func ValidDType(d string) bool {
	switch d {
	case DTypeFP32, DTypeFP16, DTypeINT8:
		return true
	}
	return false
}

// Pooling modes for embedding bags.
const (
	PoolSum  = "sum"
	PoolMean = "mean"
)

// Activations.
const (
	ActNone    = "none"
	ActReLU    = "relu"
	ActSigmoid = "sigmoid"
)

// Blob is a little-endian weight buffer.
type Blob struct {
	DType string `json:"dtype"`
	Shape []int  `json:"shape"`
	Data  []byte `json:"data"`
}

// NewBlob encodes vals with the given dtype.
func NewBlob(dtype string, shape []int, vals []float32) Blob {
	switch dtype {
	case DTypeFP16:
		buf := make([]byte, 2*len(vals))
		for i, v := range vals {
			binary.LittleEndian.PutUint16(buf[2*i:], float16.Fromfloat32(v).Bits())
		}
		return Blob{DType: DTypeFP16, Shape: shape, Data: buf}
	case DTypeINT8:
		b := Blob{DType: DTypeINT8, Shape: shape}
		rows, width := b.rowLayout()
		buf := make([]byte, 0, rows*(width+4))
		for r := 0; r < rows; r++ {
			buf = appendInt8Row(buf, vals[r*width:(r+1)*width])
		}
		b.Data = buf
		return b
	default:
		buf := make([]byte, 4*len(vals))
		for i, v := range vals {
			binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
		}
		return Blob{DType: DTypeFP32, Shape: shape, Data: buf}
	}
}

func (b Blob) elems() int {
	n := 1
	for _, d := range b.Shape {
		n *= d
	}
	return n
}

// rowLayout splits the blob into quantization rows.
func (b Blob) rowLayout() (rows, width int) {
	n := b.elems()
	if len(b.Shape) < 2 {
		if n == 0 {
			return 0, 0
		}
		return 1, n
	}
	rows = b.Shape[0]
	if rows <= 0 {
		return 0, 0
	}
	return rows, n / rows
}

// appendInt8Row quantizes row so that its minimum maps to code -128 and its
// maximum to 127. Scale and bias are rounded to fp16 before the codes are
// computed so decoding sees exactly the values used here.
func appendInt8Row(buf []byte, row []float32) []byte {
	lo, hi := float32(0), float32(0)
	for i, v := range row {
		if i == 0 || v < lo {
			lo = v
		}
		if i == 0 || v > hi {
			hi = v
		}
	}
	scale := float16.Fromfloat32((hi - lo) / 255)
	s := scale.Float32()
	bias := float16.Fromfloat32(lo + 128*s)
	bv := bias.Float32()
	for _, v := range row {
		var code float64
		if s > 0 {
			code = math.Round(float64((v - bv) / s))
		}
		code = math.Max(-128, math.Min(127, code))
		buf = append(buf, byte(int8(code)))
	}
	buf = binary.LittleEndian.AppendUint16(buf, scale.Bits())
	return binary.LittleEndian.AppendUint16(buf, bias.Bits())
}

// Float32s decodes the blob, checking its size against Shape.
func (b Blob) Float32s() ([]float32, error) {
	n := b.elems()
	switch b.DType {
	case DTypeFP32:
		if len(b.Data) != 4*n {
			return nil, fmt.Errorf("fp32 blob %v has %d bytes, want %d", b.Shape, len(b.Data), 4*n)
		}
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b.Data[4*i:]))
		}
		return out, nil
	case DTypeFP16:
		if len(b.Data) != 2*n {
			return nil, fmt.Errorf("fp16 blob %v has %d bytes, want %d", b.Shape, len(b.Data), 2*n)
		}
		out := make([]float32, n)
		for i := range out {
			out[i] = float16.Frombits(binary.LittleEndian.Uint16(b.Data[2*i:])).Float32()
		}
		return out, nil
	case DTypeINT8:
		rows, width := b.rowLayout()
		stride := width + 4
		if len(b.Data) != rows*stride {
			return nil, fmt.Errorf("int8 blob %v has %d bytes, want %d", b.Shape, len(b.Data), rows*stride)
		}
		out := make([]float32, 0, n)
		for r := 0; r < rows; r++ {
			row := b.Data[r*stride : (r+1)*stride]
			scale := float16.Frombits(binary.LittleEndian.Uint16(row[width:])).Float32()
			bias := float16.Frombits(binary.LittleEndian.Uint16(row[width+2:])).Float32()
			for _, c := range row[:width] {
				out = append(out, float32(int8(c))*scale+bias)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown dtype %q", b.DType)
	}
}

// DenseInput is a dense feature fed to the bottom MLP.
type DenseInput struct {
	Name string `json:"name"`
	Dim  int    `json:"dim"`
}

// SparseInput is an id-list feature pooled through an embedding table.
type SparseInput struct {
	Name    string `json:"name"`
	Table   string `json:"table"`
	Pooling string `json:"pooling"`
}

// Table is an embedding table of Rows x Dim.
type Table struct {
	Name    string `json:"name"`
	Rows    int64  `json:"rows"`
	Dim     int    `json:"dim"`
	Weights Blob   `json:"weights"`
}

// Layer is a fully connected layer y = act(W x + b), W stored Out x In.
type Layer struct {
	In         int    `json:"in"`
	Out        int    `json:"out"`
	Weights    Blob   `json:"weights"`
	Bias       Blob   `json:"bias"`
	Activation string `json:"activation"`
}

// Spec is the manifest stored inside a native artifact.
type Spec struct {
	Name           string        `json:"name"`
	Version        string        `json:"version"`
	MaxConcurrency int           `json:"max_concurrency"`
	Dense          []DenseInput  `json:"dense"`
	Sparse         []SparseInput `json:"sparse"`
	Tables         []Table       `json:"tables"`
	Bottom         []Layer       `json:"bottom"`
	Over           []Layer       `json:"over"`
	Output         string        `json:"output"`
	Head           string        `json:"head"`
}

// Signature derives the ordered input/output contract: dense inputs first,
// then sparse inputs, in manifest order.
func (s *Spec) Signature() types.Signature {
	tables := make(map[string]Table, len(s.Tables))
	for _, t := range s.Tables {
		tables[t.Name] = t
	}
	sig := types.Signature{}
	for _, d := range s.Dense {
		sig.Inputs = append(sig.Inputs, types.FeatureSpec{Name: d.Name, Kind: types.KindDense, Dim: d.Dim})
	}
	for _, sp := range s.Sparse {
		sig.Inputs = append(sig.Inputs, types.FeatureSpec{Name: sp.Name, Kind: types.KindSparse, Cardinality: tables[sp.Table].Rows})
	}
	outDim := 0
	if n := len(s.Over); n > 0 {
		outDim = s.Over[n-1].Out
	}
	sig.Outputs = []types.OutputSpec{{Name: s.Output, Dim: outDim}}
	return sig
}

// Validate checks that every layer chains and every blob matches its shape.
func (s *Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("model name is required")
	}
	if s.Output == "" {
		return fmt.Errorf("output name is required")
	}
	if s.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be >= 0")
	}
	switch s.Head {
	case "", ActNone, ActSigmoid:
	default:
		return fmt.Errorf("unknown head %q", s.Head)
	}
	if len(s.Dense)+len(s.Sparse) == 0 {
		return fmt.Errorf("model declares no inputs")
	}
	seen := map[string]bool{}
	denseWidth := 0
	for _, d := range s.Dense {
		if d.Name == "" || seen[d.Name] {
			return fmt.Errorf("dense input name %q is empty or duplicated", d.Name)
		}
		if d.Dim <= 0 {
			return fmt.Errorf("dense input %q: dim must be > 0", d.Name)
		}
		seen[d.Name] = true
		denseWidth += d.Dim
	}
	tables := map[string]Table{}
	for _, t := range s.Tables {
		if t.Rows <= 0 || t.Dim <= 0 {
			return fmt.Errorf("table %q: rows and dim must be > 0", t.Name)
		}
		if len(t.Weights.Shape) != 2 || int64(t.Weights.Shape[0]) != t.Rows || t.Weights.Shape[1] != t.Dim {
			return fmt.Errorf("table %q: weights shape %v, want [%d %d]", t.Name, t.Weights.Shape, t.Rows, t.Dim)
		}
		tables[t.Name] = t
	}
	embWidth := 0
	for _, sp := range s.Sparse {
		if sp.Name == "" || seen[sp.Name] {
			return fmt.Errorf("sparse input name %q is empty or duplicated", sp.Name)
		}
		seen[sp.Name] = true
		t, ok := tables[sp.Table]
		if !ok {
			return fmt.Errorf("sparse input %q: unknown table %q", sp.Name, sp.Table)
		}
		switch sp.Pooling {
		case PoolSum, PoolMean:
		default:
			return fmt.Errorf("sparse input %q: unknown pooling %q", sp.Name, sp.Pooling)
		}
		embWidth += t.Dim
	}
	width, err := checkChain("bottom", s.Bottom, denseWidth)
	if err != nil {
		return err
	}
	if len(s.Over) == 0 {
		return fmt.Errorf("over arch must have at least one layer")
	}
	if _, err := checkChain("over", s.Over, width+embWidth); err != nil {
		return err
	}
	return nil
}

func checkChain(arch string, layers []Layer, in int) (int, error) {
	for i, l := range layers {
		if l.In != in {
			return 0, fmt.Errorf("%s layer %d: in=%d, previous width %d", arch, i, l.In, in)
		}
		if l.Out <= 0 {
			return 0, fmt.Errorf("%s layer %d: out must be > 0", arch, i)
		}
		if len(l.Weights.Shape) != 2 || l.Weights.Shape[0] != l.Out || l.Weights.Shape[1] != l.In {
			return 0, fmt.Errorf("%s layer %d: weights shape %v, want [%d %d]", arch, i, l.Weights.Shape, l.Out, l.In)
		}
		if len(l.Bias.Shape) != 1 || l.Bias.Shape[0] != l.Out {
			return 0, fmt.Errorf("%s layer %d: bias shape %v, want [%d]", arch, i, l.Bias.Shape, l.Out)
		}
		switch l.Activation {
		case "", ActNone, ActReLU, ActSigmoid:
		default:
			return 0, fmt.Errorf("%s layer %d: unknown activation %q", arch, i, l.Activation)
		}
		in = l.Out
	}
	return in, nil
}
