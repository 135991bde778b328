package model

import (
	"context"
	"fmt"

	"predictord/internal/registry"
	"predictord/internal/tensor"
	"predictord/pkg/types"
)

// Handle is a loaded model.
type Handle interface {
	// Execute runs one batch. It blocks for the duration of compute and
	// either returns an output covering every batch row or an error.
	Execute(ctx context.Context, in *tensor.Batch) (*tensor.Output, error)
	// MaxConcurrency is the number of Execute calls that may safely overlap.
	MaxConcurrency() int
	Signature() types.Signature
	Info() types.ModelInfo
	// Close releases runtime resources. Execute must not be called afterwards.
	Close() error
}

// Load resolves path (a file, or a directory holding exactly one artifact)
// and loads it with the matching runtime.
func Load(path string) (Handle, error) {
	art, err := registry.Resolve(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	switch art.Format {
	case registry.FormatNative:
		return loadNative(art)
	case registry.FormatONNX:
		return loadONNX(art)
	default:
		return nil, &LoadError{Path: art.Path, Err: fmt.Errorf("unsupported format %q", art.Format)}
	}
}
