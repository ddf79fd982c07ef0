package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithRequestLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	h := WithRequestLogging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}), log)

	req := httptest.NewRequest(http.MethodGet, "/teapot", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", rr.Code)
	}

	var rec struct {
		Msg    string `json:"msg"`
		Method string `json:"method"`
		Path   string `json:"path"`
		Status int    `json:"status"`
		Bytes  int64  `json:"bytes"`
	}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if rec.Msg != "http.request" || rec.Method != "GET" || rec.Path != "/teapot" {
		t.Fatalf("unexpected log record: %+v", rec)
	}
	if rec.Status != http.StatusTeapot || rec.Bytes != int64(len("short and stout")) {
		t.Fatalf("status/bytes not captured: %+v", rec)
	}
}

func TestLoggingWriterPreservesUnwrap(t *testing.T) {
	t.Parallel()

	// http.ResponseController relies on Unwrap to reach the optional
	// interfaces of the underlying writer.
	rr := httptest.NewRecorder()
	lrw := &loggingResponseWriter{ResponseWriter: rr, status: http.StatusOK}

	if got := lrw.Unwrap(); got != http.ResponseWriter(rr) {
		t.Fatalf("Unwrap returned %T, want the wrapped recorder", got)
	}
}

func TestWithSecurityHeaders(t *testing.T) {
	t.Parallel()

	h := WithSecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("missing nosniff: %q", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("missing frame options: %q", got)
	}
	if got := rr.Header().Get("Referrer-Policy"); got != "no-referrer" {
		t.Fatalf("missing referrer policy: %q", got)
	}
}
