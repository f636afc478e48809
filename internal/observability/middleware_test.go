package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggerLogsRouteAndStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Get("/api/quotes/{id}", func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusNotFound)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/quotes/abc", nil))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Message != "inside handler" {
		t.Fatalf("expected handler log first, got %q", entries[0].Message)
	}

	done := entries[1]
	if done.Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level for 404, got %v", done.Level)
	}
	fields := done.ContextMap()
	if fields["route"] != "/api/quotes/{id}" {
		t.Fatalf("route = %v, want pattern", fields["route"])
	}
	if fields["status"] != int64(http.StatusNotFound) {
		t.Fatalf("status = %v, want 404", fields["status"])
	}
	if id, _ := fields["request_id"].(string); id == "" {
		t.Fatalf("expected request_id field")
	}
}

func TestFromContextDefaultsToNop(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if FromContext(req.Context()) == nil {
		t.Fatalf("expected a logger")
	}
}

func TestNewLoggerFallsBackOnUnknownLevel(t *testing.T) {
	logger, err := NewLogger("loud")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) || logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected info level fallback")
	}
}
