// Package model wraps a packaged recommendation model as an opaque,
// immutable executor. It is structured into small files by concern:
//
//   - handle.go: Handle interface, Load entry point.
//   - errors.go: LoadError / ExecutionError and predicates.
//   - artifact.go: native artifact container (magic, version, zstd manifest).
//   - spec.go: manifest types and structural validation.
//   - native.go: pure-Go forward pass (bottom MLP, pooled embedding bags,
//     over MLP, sigmoid head).
//   - random.go: deterministic random specs for tests and demos.
//
// Runtimes:
//
//   - Native (.prdm): always available.
//   - ONNX (.onnx): enabled with `-tags=onnx` (onnxruntime_go, needs the
//     onnxruntime shared library). A stub returning a LoadError is compiled
//     when the tag is not set: onnx_stub.go.
//
// A Handle is never mutated after Load. Callers must respect MaxConcurrency:
// at most that many Execute calls may overlap.
package model
