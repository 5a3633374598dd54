// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling mechanisms.
package handlers

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/wirescope/core/internal/engine"
)

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Service   string            `json:"service"`
	Uptime    string            `json:"uptime,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// ServiceName is reported by the health endpoint.
var ServiceName = "wirescope-api"

var startTime = time.Now()

// HealthHandler reports liveness plus a snapshot of the workspace held by e.
// A nil engine reports runtime details only.
func HealthHandler(e *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		details := map[string]string{
			"go_version": runtime.Version(),
		}
		if e != nil {
			history := e.History()
			summary := e.IssueSummary()
			details["state_version"] = strconv.FormatUint(history.Version, 10)
			details["networks"] = strconv.Itoa(len(e.Networks()))
			details["undo_depth"] = strconv.Itoa(history.UndoDepth)
			details["validation_errors"] = strconv.Itoa(summary.Errors)
		}

		response := HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Service:   ServiceName,
			Uptime:    time.Since(startTime).String(),
			Details:   details,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	}
}
