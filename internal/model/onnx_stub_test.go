//go:build !onnx

package model

const onnxBuilt = false
