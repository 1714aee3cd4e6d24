package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecoverer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestID(Recoverer(logger, false)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("countdown exploded")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/countdown", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["success"] != false || body["code"] != "INTERNAL_ERROR" || body["recovery"] != "reload" {
		t.Errorf("unexpected recovery payload: %v", body)
	}
	if strings.Contains(rec.Body.String(), "countdown exploded") {
		t.Error("panic value must not leak to the client")
	}
	if !strings.Contains(buf.String(), "countdown exploded") {
		t.Error("panic value should be logged")
	}
}

func TestRecoverer_PassThrough(t *testing.T) {
	t.Parallel()

	handler := Recoverer(discardLogger(), false)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}
