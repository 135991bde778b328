//go:build !onnx

package model

import (
	"errors"

	"predictord/internal/registry"
)

// loadONNX refuses ONNX artifacts in builds without the 'onnx' tag so that
// default builds stay CGO-free.
func loadONNX(art registry.Artifact) (Handle, error) {
	return nil, &LoadError{Path: art.Path, Err: errors.New("onnx support not built (missing 'onnx' build tag)")}
}
