package types

// TensorKind distinguishes dense float features from sparse id lists.
type TensorKind string

const (
	KindDense  TensorKind = "dense"
	KindSparse TensorKind = "sparse"
)

// Tensor is one named input or output of a prediction.
//
// Dense tensors carry Dim values per row in row-major order. Sparse tensors
// carry a flat list of IDs; Lengths gives the number of ids owned by each row
// and may be omitted when the tensor holds a single row. Weights, when set,
// has one entry per id (weighted id-list features).
type Tensor struct {
	// Feature name as declared by the model signature.
	// example: user_dense
	Name string `json:"name" example:"user_dense"`
	// Either "dense" or "sparse".
	// example: dense
	Kind TensorKind `json:"kind" example:"dense"`
	// Width of a dense row.
	// example: 4
	Dim int `json:"dim,omitempty" example:"4"`
	// Dense values (rows*dim) or per-id weights for sparse tensors.
	Values []float32 `json:"values,omitempty"`
	// Sparse categorical ids.
	IDs []int64 `json:"ids,omitempty"`
	// Per-row id counts for sparse tensors.
	Lengths []int32 `json:"lengths,omitempty"`
}

// Rows reports how many rows the tensor carries, or -1 when the layout is
// inconsistent.
func (t Tensor) Rows() int {
	switch t.Kind {
	case KindDense:
		if t.Dim <= 0 || len(t.Values)%t.Dim != 0 {
			return -1
		}
		return len(t.Values) / t.Dim
	case KindSparse:
		if len(t.Lengths) == 0 {
			return 1
		}
		return len(t.Lengths)
	}
	return -1
}

// PredictionRequest is one caller's request. It may carry several rows
// (BatchSize); every input tensor must hold exactly that many rows.
type PredictionRequest struct {
	// Caller supplied identifier, echoed in the result. Not required to be unique.
	// example: req-42
	ID string `json:"id,omitempty" example:"req-42"`
	// Number of rows carried by this request. Zero means one.
	// example: 1
	BatchSize int `json:"batch_size,omitempty" example:"1"`
	// Ordered input tensors.
	Inputs []Tensor `json:"inputs"`
}

// Rows returns the effective row count of the request.
func (r PredictionRequest) Rows() int {
	if r.BatchSize <= 0 {
		return 1
	}
	return r.BatchSize
}

// Status is the outcome of a prediction.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// PredictionResult is produced exactly once per PredictionRequest.
type PredictionResult struct {
	// ID copied from the request.
	// example: req-42
	ID string `json:"id,omitempty" example:"req-42"`
	// Ordered dense output tensors holding this request's rows only.
	Outputs []Tensor `json:"outputs,omitempty"`
	// ok or error.
	// example: ok
	Status Status `json:"status" example:"ok"`
	// Error message when Status is error.
	Error string `json:"error,omitempty"`
	// Error class when Status is error (capacity_exceeded, timeout, execution_error, ...).
	Code string `json:"code,omitempty"`
}

// FeatureSpec declares one model input.
type FeatureSpec struct {
	Name string     `json:"name" yaml:"name"`
	Kind TensorKind `json:"kind" yaml:"kind"`
	// Dense width; zero for sparse inputs.
	Dim int `json:"dim,omitempty" yaml:"dim,omitempty"`
	// Number of embedding rows addressed by a sparse input.
	Cardinality int64 `json:"cardinality,omitempty" yaml:"cardinality,omitempty"`
}

// OutputSpec declares one model output.
type OutputSpec struct {
	Name string `json:"name" yaml:"name"`
	Dim  int    `json:"dim" yaml:"dim"`
}

// Signature is the ordered input/output contract of a loaded model.
type Signature struct {
	Inputs  []FeatureSpec `json:"inputs"`
	Outputs []OutputSpec  `json:"outputs"`
}

// ModelInfo describes the loaded artifact.
type ModelInfo struct {
	// example: dlrm-small
	Name string `json:"name" example:"dlrm-small"`
	// example: 3
	Version string `json:"version,omitempty" example:"3"`
	// native or onnx
	// example: native
	Format string `json:"format" example:"native"`
	// Absolute path to the artifact.
	Path string `json:"path"`
	// Size of the artifact on disk.
	SizeBytes int64 `json:"size_bytes"`
	// Maximum number of simultaneous executions the runtime tolerates.
	// example: 2
	MaxConcurrency int       `json:"max_concurrency" example:"2"`
	Signature      Signature `json:"signature"`
}
