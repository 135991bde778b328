package model

import (
	"fmt"
	"math"
	"math/rand"
)

// RandomOptions shapes a randomly initialised model.
type RandomOptions struct {
	Name           string
	Version        string
	Seed           int64
	DenseDims      []int
	Cardinalities  []int64
	EmbeddingDim   int
	Bottom         []int
	Over           []int
	OutputDim      int
	Pooling        string
	DType          string
	MaxConcurrency int
}

// DefaultRandomOptions returns a small DLRM-shaped model: two dense inputs,
// three id-list features, sigmoid score head.
func DefaultRandomOptions() RandomOptions {
	return RandomOptions{
		Name:           "dlrm-demo",
		Version:        "1",
		Seed:           1,
		DenseDims:      []int{8, 4},
		Cardinalities:  []int64{1000, 500, 100},
		EmbeddingDim:   8,
		Bottom:         []int{16, 8},
		Over:           []int{16},
		OutputDim:      1,
		Pooling:        PoolSum,
		DType:          DTypeFP32,
		MaxConcurrency: 2,
	}
}

// NewRandomSpec builds a valid Spec with Xavier-style random weights. The
// same options always yield the same weights.
func NewRandomSpec(o RandomOptions) *Spec {
	rng := rand.New(rand.NewSource(o.Seed))
	if o.OutputDim <= 0 {
		o.OutputDim = 1
	}
	if o.EmbeddingDim <= 0 {
		o.EmbeddingDim = 4
	}
	if o.Pooling == "" {
		o.Pooling = PoolSum
	}
	s := &Spec{
		Name:           o.Name,
		Version:        o.Version,
		MaxConcurrency: o.MaxConcurrency,
		Output:         "score",
		Head:           ActSigmoid,
	}
	denseWidth := 0
	for i, d := range o.DenseDims {
		s.Dense = append(s.Dense, DenseInput{Name: fmt.Sprintf("dense_%d", i), Dim: d})
		denseWidth += d
	}
	for i, card := range o.Cardinalities {
		table := fmt.Sprintf("t_%d", i)
		s.Tables = append(s.Tables, Table{
			Name:    table,
			Rows:    card,
			Dim:     o.EmbeddingDim,
			Weights: NewBlob(o.DType, []int{int(card), o.EmbeddingDim}, randVals(rng, int(card)*o.EmbeddingDim, 0.1)),
		})
		s.Sparse = append(s.Sparse, SparseInput{Name: fmt.Sprintf("sparse_%d", i), Table: table, Pooling: o.Pooling})
	}
	width := denseWidth
	if denseWidth > 0 {
		s.Bottom, width = randLayers(rng, o.DType, denseWidth, o.Bottom, ActReLU)
	}
	width += len(o.Cardinalities) * o.EmbeddingDim
	over, last := randLayers(rng, o.DType, width, o.Over, ActReLU)
	head, _ := randLayers(rng, o.DType, last, []int{o.OutputDim}, ActNone)
	s.Over = append(over, head...)
	return s
}

func randLayers(rng *rand.Rand, dtype string, in int, sizes []int, act string) ([]Layer, int) {
	var layers []Layer
	for _, out := range sizes {
		scale := float32(math.Sqrt(2 / float64(in+out)))
		layers = append(layers, Layer{
			In:         in,
			Out:        out,
			Weights:    NewBlob(dtype, []int{out, in}, randVals(rng, out*in, scale)),
			Bias:       NewBlob(dtype, []int{out}, make([]float32, out)),
			Activation: act,
		})
		in = out
	}
	return layers, in
}

func randVals(rng *rand.Rand, n int, scale float32) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = float32(rng.NormFloat64()) * scale
	}
	return v
}
