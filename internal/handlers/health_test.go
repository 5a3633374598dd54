package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirescope/core/internal/engine"
)

func getHealth(t *testing.T, h http.Handler) HealthResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var response HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response
}

func TestHealthHandler(t *testing.T) {
	t.Run("reports service and runtime", func(t *testing.T) {
		response := getHealth(t, HealthHandler(nil))

		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "wirescope-api", response.Service)
		assert.NotEmpty(t, response.Uptime)
		assert.Equal(t, runtime.Version(), response.Details["go_version"])
		_, err := time.Parse(time.RFC3339, response.Timestamp)
		assert.NoError(t, err)
		assert.NotContains(t, response.Details, "state_version")
	})

	t.Run("reports an empty workspace", func(t *testing.T) {
		response := getHealth(t, HealthHandler(engine.New(nil)))

		assert.Equal(t, "1", response.Details["state_version"])
		assert.Equal(t, "0", response.Details["networks"])
		assert.Equal(t, "0", response.Details["undo_depth"])
		assert.Equal(t, "0", response.Details["validation_errors"])
	})

	t.Run("follows the workspace", func(t *testing.T) {
		e := engine.New(nil)
		require.NoError(t, e.LoadSample())

		response := getHealth(t, HealthHandler(e))

		assert.Equal(t, "2", response.Details["state_version"])
		assert.Equal(t, "1", response.Details["networks"])
		assert.Equal(t, "0", response.Details["validation_errors"])
	})

	t.Run("uses the configured service name", func(t *testing.T) {
		previous := ServiceName
		ServiceName = "harness-lab"
		defer func() { ServiceName = previous }()

		assert.Equal(t, "harness-lab", getHealth(t, HealthHandler(nil)).Service)
	})

	t.Run("rejects other methods", func(t *testing.T) {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
			req := httptest.NewRequest(method, "/health", nil)
			w := httptest.NewRecorder()

			HealthHandler(nil).ServeHTTP(w, req)

			assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		}
	})
}
