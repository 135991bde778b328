package tensor

import (
	"fmt"

	"predictord/pkg/types"
)

// Validate checks that req matches sig structurally: same inputs in the same
// order, every tensor holding exactly req.Rows() rows, and consistent sparse
// lengths/weights. Id ranges are left to the model.
func Validate(req types.PredictionRequest, sig types.Signature) error {
	if req.BatchSize < 0 {
		return fmt.Errorf("batch_size must be >= 0, got %d", req.BatchSize)
	}
	if len(req.Inputs) != len(sig.Inputs) {
		return fmt.Errorf("expected %d inputs, got %d", len(sig.Inputs), len(req.Inputs))
	}
	rows := req.Rows()
	for i, spec := range sig.Inputs {
		in := req.Inputs[i]
		if in.Name != spec.Name {
			return fmt.Errorf("input %d: expected %q, got %q", i, spec.Name, in.Name)
		}
		if in.Kind != spec.Kind {
			return fmt.Errorf("input %q: expected kind %s, got %s", in.Name, spec.Kind, in.Kind)
		}
		switch spec.Kind {
		case types.KindDense:
			if in.Dim != spec.Dim {
				return fmt.Errorf("input %q: expected dim %d, got %d", in.Name, spec.Dim, in.Dim)
			}
			if len(in.Values) != rows*spec.Dim {
				return fmt.Errorf("input %q: expected %d values for %d rows, got %d", in.Name, rows*spec.Dim, rows, len(in.Values))
			}
		case types.KindSparse:
			if in.Dim != 0 {
				return fmt.Errorf("input %q: sparse inputs carry no dim", in.Name)
			}
			if len(in.Lengths) == 0 {
				if rows != 1 {
					return fmt.Errorf("input %q: lengths required for %d rows", in.Name, rows)
				}
			} else {
				if len(in.Lengths) != rows {
					return fmt.Errorf("input %q: expected %d lengths, got %d", in.Name, rows, len(in.Lengths))
				}
				total := 0
				for _, n := range in.Lengths {
					if n < 0 {
						return fmt.Errorf("input %q: negative length", in.Name)
					}
					total += int(n)
				}
				if total != len(in.IDs) {
					return fmt.Errorf("input %q: lengths sum to %d but %d ids given", in.Name, total, len(in.IDs))
				}
			}
			if len(in.Values) != 0 && len(in.Values) != len(in.IDs) {
				return fmt.Errorf("input %q: expected %d weights, got %d", in.Name, len(in.IDs), len(in.Values))
			}
		default:
			return fmt.Errorf("input %q: unknown kind %q", in.Name, in.Kind)
		}
	}
	return nil
}
