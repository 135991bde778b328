package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"debug": LevelDebug,
		"weird": LevelInfo, // default
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("shorthand query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
}

func TestLogPredict(t *testing.T) {
	var buf bytes.Buffer
	orig := zlog
	defer func() { zlog = orig }()
	SetLogger(zerolog.New(&buf))

	r := httptest.NewRequest("POST", "/predict", nil)
	logPredict(r, LevelError, "quiet", 200, time.Now(), nil)
	if buf.Len() != 0 {
		t.Fatalf("success logged at error level: %q", buf.String())
	}
	logPredict(r, LevelError, "loud", 500, time.Now(), errors.New("boom"))
	out := buf.String()
	if !strings.Contains(out, `"id":"loud"`) || !strings.Contains(out, `"status":500`) || !strings.Contains(out, "boom") {
		t.Fatalf("unexpected log: %q", out)
	}
	if !strings.Contains(out, `"component":"http"`) {
		t.Fatalf("missing component: %q", out)
	}
}

func TestPredictLogsAssignedID(t *testing.T) {
	var buf bytes.Buffer
	orig := zlog
	defer func() { zlog = orig }()
	SetLogger(zerolog.New(&buf))

	svc := &mockService{genID: "6f1c2a9e-assigned"}
	req := httptest.NewRequest(http.MethodPost, "/predict?log=info", strings.NewReader(`{"inputs":[{"name":"x","kind":"dense","dim":1,"values":[1]}]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	NewMux(svc).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if out := buf.String(); !strings.Contains(out, `"id":"6f1c2a9e-assigned"`) {
		t.Fatalf("log lacks assigned id: %q", out)
	}
}
