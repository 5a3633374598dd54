package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCors(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("handles OPTIONS preflight request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/actions", nil)
		rec := httptest.NewRecorder()

		Cors("*")(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
		}

		if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin == "" {
			t.Error("expected Access-Control-Allow-Origin header to be set")
		}

		if methods := rec.Header().Get("Access-Control-Allow-Methods"); methods == "" {
			t.Error("expected Access-Control-Allow-Methods header to be set")
		}
	})

	t.Run("passes POST request to next handler", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/actions", nil)
		rec := httptest.NewRecorder()

		Cors("*")(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
	})

	t.Run("uses the configured origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/state", nil)
		rec := httptest.NewRecorder()

		Cors("https://harness.example")(handler).ServeHTTP(rec, req)

		if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "https://harness.example" {
			t.Errorf("expected configured origin, got %q", origin)
		}
	})

	t.Run("empty origin allows any", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/state", nil)
		rec := httptest.NewRecorder()

		Cors("")(handler).ServeHTTP(rec, req)

		if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
			t.Errorf("expected *, got %q", origin)
		}
	})

	t.Run("sets CORS headers on all requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		Cors("*")(handler).ServeHTTP(rec, req)

		for _, header := range []string{
			"Access-Control-Allow-Origin",
			"Access-Control-Allow-Methods",
			"Access-Control-Allow-Headers",
			"Access-Control-Max-Age",
		} {
			if rec.Header().Get(header) == "" {
				t.Errorf("expected %s header to be set", header)
			}
		}
	})
}
