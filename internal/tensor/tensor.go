// Package tensor collates per-request inputs into one batch and splits batch
// outputs back into per-request slices. Member i of a batch owns rows
// [Offsets[i], Offsets[i]+Counts[i]) of every input and output tensor.
package tensor

import (
	"fmt"

	"predictord/pkg/types"
)

// Batch is the concatenated input fed to a model.
type Batch struct {
	Rows    int
	Offsets []int
	Counts  []int
	Inputs  []types.Tensor
}

// Members returns the number of requests collated into the batch.
func (b *Batch) Members() int { return len(b.Counts) }

// Output is what a model returns for a Batch: dense tensors of Rows rows each.
type Output struct {
	Rows    int
	Tensors []types.Tensor
}

// Concat collates requests in order. Requests are expected to share the same
// input layout (see Validate); the first request fixes names, kinds and dims.
func Concat(reqs []types.PredictionRequest) (*Batch, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("empty batch")
	}
	b := &Batch{
		Offsets: make([]int, len(reqs)),
		Counts:  make([]int, len(reqs)),
	}
	for i, r := range reqs {
		b.Offsets[i] = b.Rows
		b.Counts[i] = r.Rows()
		b.Rows += r.Rows()
	}

	first := reqs[0].Inputs
	b.Inputs = make([]types.Tensor, len(first))
	for j, proto := range first {
		out := types.Tensor{Name: proto.Name, Kind: proto.Kind, Dim: proto.Dim}
		weighted := false
		for _, r := range reqs {
			if len(r.Inputs) != len(first) {
				return nil, fmt.Errorf("request %q has %d inputs, want %d", r.ID, len(r.Inputs), len(first))
			}
			in := r.Inputs[j]
			if in.Name != proto.Name || in.Kind != proto.Kind || in.Dim != proto.Dim {
				return nil, fmt.Errorf("request %q input %d is %s/%s/%d, want %s/%s/%d",
					r.ID, j, in.Name, in.Kind, in.Dim, proto.Name, proto.Kind, proto.Dim)
			}
			if in.Kind == types.KindSparse && len(in.Values) > 0 {
				weighted = true
			}
		}
		switch proto.Kind {
		case types.KindDense:
			out.Values = make([]float32, 0, b.Rows*proto.Dim)
			for _, r := range reqs {
				out.Values = append(out.Values, r.Inputs[j].Values...)
			}
		case types.KindSparse:
			out.Lengths = make([]int32, 0, b.Rows)
			for _, r := range reqs {
				in := r.Inputs[j]
				out.IDs = append(out.IDs, in.IDs...)
				if len(in.Lengths) == 0 {
					out.Lengths = append(out.Lengths, int32(len(in.IDs)))
				} else {
					out.Lengths = append(out.Lengths, in.Lengths...)
				}
				if weighted {
					if len(in.Values) > 0 {
						out.Values = append(out.Values, in.Values...)
					} else {
						for range in.IDs {
							out.Values = append(out.Values, 1)
						}
					}
				}
			}
		default:
			return nil, fmt.Errorf("input %q has unknown kind %q", proto.Name, proto.Kind)
		}
		b.Inputs[j] = out
	}
	return b, nil
}

// Split slices out into one output set per batch member. It fails when the
// output does not cover exactly the batch's rows.
func Split(out *Output, b *Batch) ([][]types.Tensor, error) {
	if out == nil {
		return nil, fmt.Errorf("nil output")
	}
	if out.Rows != b.Rows {
		return nil, fmt.Errorf("output has %d rows for a batch of %d rows", out.Rows, b.Rows)
	}
	for _, t := range out.Tensors {
		if t.Dim <= 0 || len(t.Values) != out.Rows*t.Dim {
			return nil, fmt.Errorf("output %q has %d values, want %d rows of dim %d", t.Name, len(t.Values), out.Rows, t.Dim)
		}
	}
	parts := make([][]types.Tensor, b.Members())
	for i := range parts {
		lo, hi := b.Offsets[i], b.Offsets[i]+b.Counts[i]
		member := make([]types.Tensor, len(out.Tensors))
		for k, t := range out.Tensors {
			vals := make([]float32, (hi-lo)*t.Dim)
			copy(vals, t.Values[lo*t.Dim:hi*t.Dim])
			member[k] = types.Tensor{Name: t.Name, Kind: types.KindDense, Dim: t.Dim, Values: vals}
		}
		parts[i] = member
	}
	return parts, nil
}

// SparseOffsets returns the starting id position of every row of a sparse
// tensor plus a final sentinel equal to len(t.IDs).
func SparseOffsets(t types.Tensor) []int {
	if len(t.Lengths) == 0 {
		return []int{0, len(t.IDs)}
	}
	offs := make([]int, len(t.Lengths)+1)
	for i, n := range t.Lengths {
		offs[i+1] = offs[i] + int(n)
	}
	return offs
}
