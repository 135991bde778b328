package model

import (
	"math/rand"

	"predictord/pkg/types"
)

// RequestGenerator produces random requests that satisfy a signature. Sparse
// ids stay within each feature's cardinality (or below 100 when unknown).
type RequestGenerator struct {
	sig     types.Signature
	rng     *rand.Rand
	maxIDs  int
	weights bool
}

// NewRequestGenerator seeds a generator for sig.
func NewRequestGenerator(sig types.Signature, seed int64) *RequestGenerator {
	return &RequestGenerator{sig: sig, rng: rand.New(rand.NewSource(seed)), maxIDs: 4}
}

// WithWeights makes sparse features carry per-id weights.
func (g *RequestGenerator) WithWeights() *RequestGenerator {
	g.weights = true
	return g
}

// Next returns a request with the given id and row count.
func (g *RequestGenerator) Next(id string, rows int) types.PredictionRequest {
	if rows <= 0 {
		rows = 1
	}
	req := types.PredictionRequest{ID: id, BatchSize: rows, Inputs: make([]types.Tensor, len(g.sig.Inputs))}
	for i, spec := range g.sig.Inputs {
		t := types.Tensor{Name: spec.Name, Kind: spec.Kind}
		switch spec.Kind {
		case types.KindDense:
			t.Dim = spec.Dim
			t.Values = make([]float32, rows*spec.Dim)
			for k := range t.Values {
				t.Values[k] = float32(g.rng.NormFloat64())
			}
		case types.KindSparse:
			card := spec.Cardinality
			if card <= 0 {
				card = 100
			}
			t.Lengths = make([]int32, rows)
			for r := 0; r < rows; r++ {
				n := g.rng.Intn(g.maxIDs + 1)
				t.Lengths[r] = int32(n)
				for k := 0; k < n; k++ {
					t.IDs = append(t.IDs, g.rng.Int63n(card))
					if g.weights {
						t.Values = append(t.Values, g.rng.Float32())
					}
				}
			}
		}
		req.Inputs[i] = t
	}
	return req
}
