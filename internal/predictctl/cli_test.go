package predictctl

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"predictord/internal/model"
	"predictord/pkg/types"
)

func run(args ...string) (int, string, string) {
	var out, errb bytes.Buffer
	code := mainWithIO(args, &out, &errb)
	return code, out.String(), errb.String()
}

func TestMainWithArgs_NoArgs_Exit2(t *testing.T) {
	if code := MainWithArgs([]string{}); code != 2 {
		t.Fatalf("expected exit code 2 for no args, got %d", code)
	}
}

func TestMainWithArgs_UnknownCommand_Exit1(t *testing.T) {
	if code, _, _ := run("wat"); code != 1 {
		t.Fatalf("expected exit code 1 for unknown command, got %d", code)
	}
}

func TestPredict_Success(t *testing.T) {
	fb := &fakeBackend{}
	var gotCfg Config
	withCLIStubs(t, func() {
		fnDial = func(c *Config) (backend, error) { gotCfg = *c; return fb, nil }
	})
	code, out, errs := run("--target", "host:1234", "--protocol", "http", "predict", "-n", "20", "-c", "4", "--rows", "3")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errs)
	}
	if gotCfg.Target != "host:1234" || gotCfg.Protocol != "http" {
		t.Fatalf("flags not passed to dial: %+v", gotCfg)
	}
	if fb.calls.Load() != 20 {
		t.Fatalf("expected 20 calls, got %d", fb.calls.Load())
	}
	if !fb.closed.Load() {
		t.Fatalf("backend not closed")
	}
	if !strings.Contains(out, "sent=20 ok=20 failed=0") {
		t.Fatalf("unexpected summary: %q", out)
	}
}

func TestPredict_FailuresExit1(t *testing.T) {
	withCLIStubs(t, func() {
		fnDial = func(c *Config) (backend, error) { return &fakeBackend{fail: errBoom}, nil }
	})
	code, out, errs := run("predict", "-n", "5")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errs, "5 of 5 requests failed") || !strings.Contains(out, "error transport: 5") {
		t.Fatalf("unexpected output: out=%q err=%q", out, errs)
	}
}

func TestPredict_DialError(t *testing.T) {
	withCLIStubs(t, func() {
		fnDial = func(c *Config) (backend, error) { return nil, errBoom }
	})
	if code, _, errs := run("predict"); code != 1 || !strings.Contains(errs, "boom") {
		t.Fatalf("expected dial error, got %d %q", code, errs)
	}
}

func TestModelCommand(t *testing.T) {
	withCLIStubs(t, func() {
		fnDial = func(c *Config) (backend, error) { return &fakeBackend{}, nil }
	})
	code, out, _ := run("model")
	if code != 0 || !strings.Contains(out, `"name": "fake"`) {
		t.Fatalf("unexpected: %d %q", code, out)
	}
}

func TestStatusCommand(t *testing.T) {
	withCLIStubs(t, func() {
		fnStatus = func(ctx context.Context, c *Config) (*types.StatusResponse, error) {
			return &types.StatusResponse{State: "ready", Pending: 3}, nil
		}
	})
	code, out, _ := run("status")
	if code != 0 || !strings.Contains(out, `"state": "ready"`) || !strings.Contains(out, `"pending": 3`) {
		t.Fatalf("unexpected: %d %q", code, out)
	}
}

func TestGenModelWritesLoadableArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.prdm")
	code, out, errs := run("gen-model", path, "--name", "tiny", "--dense-dims", "3", "--cardinalities", "10,20", "--embedding-dim", "4", "--dtype", "fp16")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errs)
	}
	if !strings.Contains(out, "wrote "+path) {
		t.Fatalf("unexpected output %q", out)
	}
	h, err := model.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer h.Close()
	info := h.Info()
	if info.Name != "tiny" || len(info.Signature.Inputs) != 3 {
		t.Fatalf("unexpected model: %+v", info)
	}
}

func TestGenModelInt8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.prdm")
	code, _, errs := run("gen-model", path, "--dtype", "int8", "--embedding-dim", "4")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errs)
	}
	h, err := model.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer h.Close()
	if h.Info().Name != "dlrm-demo" {
		t.Fatalf("unexpected model: %+v", h.Info())
	}

	if code, _, errs := run("gen-model", filepath.Join(t.TempDir(), "x.prdm"), "--dtype", "int4"); code != 1 || !strings.Contains(errs, "int4") {
		t.Fatalf("expected dtype rejection, got %d %q", code, errs)
	}
}

func TestGenModelRequiresPath(t *testing.T) {
	if code, _, _ := run("gen-model"); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
}
