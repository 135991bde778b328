package rpc

import (
	predictorv1 "predictord/api/predictor/v1"
	"predictord/pkg/types"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "predictor.v1.Predictor"

func tensorToProto(t types.Tensor) *predictorv1.Tensor {
	return &predictorv1.Tensor{
		Name:    t.Name,
		Kind:    string(t.Kind),
		Dim:     int32(t.Dim),
		Values:  t.Values,
		Ids:     t.IDs,
		Lengths: t.Lengths,
	}
}

func tensorFromProto(t *predictorv1.Tensor) types.Tensor {
	return types.Tensor{
		Name:    t.GetName(),
		Kind:    types.TensorKind(t.GetKind()),
		Dim:     int(t.GetDim()),
		Values:  t.GetValues(),
		IDs:     t.GetIds(),
		Lengths: t.GetLengths(),
	}
}

func tensorsToProto(ts []types.Tensor) []*predictorv1.Tensor {
	if len(ts) == 0 {
		return nil
	}
	out := make([]*predictorv1.Tensor, len(ts))
	for i, t := range ts {
		out[i] = tensorToProto(t)
	}
	return out
}

func tensorsFromProto(ts []*predictorv1.Tensor) []types.Tensor {
	if len(ts) == 0 {
		return nil
	}
	out := make([]types.Tensor, len(ts))
	for i, t := range ts {
		out[i] = tensorFromProto(t)
	}
	return out
}

// RequestToProto converts a prediction request to its wire form.
func RequestToProto(r types.PredictionRequest) *predictorv1.PredictRequest {
	return &predictorv1.PredictRequest{
		Id:        r.ID,
		BatchSize: int32(r.BatchSize),
		Inputs:    tensorsToProto(r.Inputs),
	}
}

// RequestFromProto is the inverse of RequestToProto.
func RequestFromProto(r *predictorv1.PredictRequest) types.PredictionRequest {
	return types.PredictionRequest{
		ID:        r.GetId(),
		BatchSize: int(r.GetBatchSize()),
		Inputs:    tensorsFromProto(r.GetInputs()),
	}
}

// ResultToProto converts a prediction result to its wire form.
func ResultToProto(r *types.PredictionResult) *predictorv1.PredictResponse {
	if r == nil {
		return &predictorv1.PredictResponse{}
	}
	return &predictorv1.PredictResponse{
		Id:      r.ID,
		Outputs: tensorsToProto(r.Outputs),
		Status:  string(r.Status),
		Error:   r.Error,
		Code:    r.Code,
	}
}

// ResultFromProto is the inverse of ResultToProto.
func ResultFromProto(r *predictorv1.PredictResponse) *types.PredictionResult {
	return &types.PredictionResult{
		ID:      r.GetId(),
		Outputs: tensorsFromProto(r.GetOutputs()),
		Status:  types.Status(r.GetStatus()),
		Error:   r.GetError(),
		Code:    r.GetCode(),
	}
}

// ModelInfoToProto converts the model description to its wire form.
func ModelInfoToProto(m types.ModelInfo) *predictorv1.ModelInfoResponse {
	sig := &predictorv1.Signature{}
	for _, f := range m.Signature.Inputs {
		sig.Inputs = append(sig.Inputs, &predictorv1.FeatureSpec{
			Name:        f.Name,
			Kind:        string(f.Kind),
			Dim:         int32(f.Dim),
			Cardinality: f.Cardinality,
		})
	}
	for _, o := range m.Signature.Outputs {
		sig.Outputs = append(sig.Outputs, &predictorv1.OutputSpec{Name: o.Name, Dim: int32(o.Dim)})
	}
	return &predictorv1.ModelInfoResponse{
		Name:           m.Name,
		Version:        m.Version,
		Format:         m.Format,
		Path:           m.Path,
		SizeBytes:      m.SizeBytes,
		MaxConcurrency: int32(m.MaxConcurrency),
		Signature:      sig,
	}
}

// ModelInfoFromProto is the inverse of ModelInfoToProto.
func ModelInfoFromProto(m *predictorv1.ModelInfoResponse) *types.ModelInfo {
	info := &types.ModelInfo{
		Name:           m.GetName(),
		Version:        m.GetVersion(),
		Format:         m.GetFormat(),
		Path:           m.GetPath(),
		SizeBytes:      m.GetSizeBytes(),
		MaxConcurrency: int(m.GetMaxConcurrency()),
	}
	for _, f := range m.GetSignature().GetInputs() {
		info.Signature.Inputs = append(info.Signature.Inputs, types.FeatureSpec{
			Name:        f.GetName(),
			Kind:        types.TensorKind(f.GetKind()),
			Dim:         int(f.GetDim()),
			Cardinality: f.GetCardinality(),
		})
	}
	for _, o := range m.GetSignature().GetOutputs() {
		info.Signature.Outputs = append(info.Signature.Outputs, types.OutputSpec{Name: o.GetName(), Dim: int(o.GetDim())})
	}
	return info
}
