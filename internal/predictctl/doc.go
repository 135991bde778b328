// Package predictctl implements the predictctl client utility. It is
// structured into small files by concern:
//
//   - cli.go: Config, MainWithArgs (exit codes).
//   - cobra_root.go: command tree (predict, model, status, gen-model, completion).
//   - transport.go: grpc and http backends behind one interface.
//   - loadgen.go: concurrent request generation and the latency summary.
//   - logenv.go: zerolog setup and env helpers.
//
// Commands call through fn* variables so tests can stub the network.
package predictctl
