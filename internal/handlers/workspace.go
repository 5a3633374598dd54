// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling mechanisms.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/wirescope/core/internal/engine"
	"github.com/wirescope/core/internal/models"
	"github.com/wirescope/core/internal/occupancy"
	"github.com/wirescope/core/internal/store"
	"github.com/wirescope/core/internal/validation"
)

// maxBodyBytes bounds imported documents and action envelopes.
const maxBodyBytes = 8 << 20

type ErrorResponse struct {
	Error          string              `json:"error"`
	Occupant       *occupancy.Occupant `json:"occupant,omitempty"`
	SuggestedIndex int                 `json:"suggested_index,omitempty"`
}

type ActionResponse struct {
	Version uint64 `json:"version"`
	Result  any    `json:"result,omitempty"`
}

type HistoryResponse struct {
	engine.HistoryStatus
	Moved bool `json:"moved"`
}

type ValidationResponse struct {
	Summary validation.Summary `json:"summary"`
	Issues  []validation.Issue `json:"issues,omitempty"`
	Groups  []validation.Group `json:"groups,omitempty"`
}

// WorkspaceHandler exposes one engine over HTTP.
type WorkspaceHandler struct {
	engine *engine.Engine
	logger *zap.Logger
}

func NewWorkspaceHandler(e *engine.Engine, logger *zap.Logger) *WorkspaceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkspaceHandler{engine: e, logger: logger}
}

// Register mounts every workspace route on mux.
func (h *WorkspaceHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/state", h.State)
	mux.HandleFunc("/state/sample", h.Sample)
	mux.HandleFunc("/state/empty", h.Empty)
	mux.HandleFunc("/actions", h.Actions)
	mux.HandleFunc("/undo", h.Undo)
	mux.HandleFunc("/redo", h.Redo)
	mux.HandleFunc("/history", h.History)
	mux.HandleFunc("/validation", h.Validation)
	mux.HandleFunc("/occupancy", h.Occupancy)
	mux.HandleFunc("/graph", h.Graph)
}

func (h *WorkspaceHandler) State(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data, err := h.engine.Export(r.URL.Query().Get("pretty") == "true")
		if err != nil {
			h.logger.Error("export failed", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(data); err != nil {
			h.logger.Warn("write failed", zap.Error(err))
		}
	case http.MethodPut:
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			http.Error(w, "Failed to read body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if err := h.engine.Import(body); err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		h.writeJSON(w, r, http.StatusOK, h.engine.History())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *WorkspaceHandler) Sample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := h.engine.LoadSample(); err != nil {
		h.logger.Error("sample load failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.engine.History())
}

func (h *WorkspaceHandler) Empty(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.engine.Reset()
	h.writeJSON(w, r, http.StatusOK, h.engine.History())
}

func (h *WorkspaceHandler) Actions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var env engine.Envelope
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&env); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.engine.DispatchEnvelope(env)
	if err != nil {
		h.writeError(w, StatusFor(err), err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, ActionResponse{Version: h.engine.Version(), Result: result})
}

func (h *WorkspaceHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.engine.Undo)
}

func (h *WorkspaceHandler) Redo(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.engine.Redo)
}

func (h *WorkspaceHandler) step(w http.ResponseWriter, r *http.Request, fn func() bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	moved := fn()
	h.writeJSON(w, r, http.StatusOK, HistoryResponse{HistoryStatus: h.engine.History(), Moved: moved})
}

func (h *WorkspaceHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.engine.History())
}

// Validation lists issues, optionally narrowed by severity and category.
// group=true returns them bucketed by category instead of as a flat list.
func (h *WorkspaceHandler) Validation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	query := r.URL.Query()
	issues := h.engine.Issues()
	if severity := query.Get("severity"); severity != "" {
		issues = validation.FilterBySeverity(issues, validation.Severity(severity))
	}
	if category := query.Get("category"); category != "" {
		issues = validation.FilterByCategory(issues, validation.Category(category))
	}

	resp := ValidationResponse{Summary: validation.Summarize(issues)}
	if query.Get("group") == "true" {
		resp.Groups = validation.GroupByCategory(issues)
	} else {
		resp.Issues = issues
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

func (h *WorkspaceHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	query := r.URL.Query()
	report, err := h.engine.Occupancy(models.EntityKind(query.Get("kind")), query.Get("id"))
	if err != nil {
		h.writeError(w, StatusFor(err), err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, report)
}

func (h *WorkspaceHandler) Graph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.engine.Graph())
}

// StatusFor maps engine errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, occupancy.ErrUnknownEntity),
		errors.Is(err, occupancy.ErrUnknownWire):
		return http.StatusNotFound
	case errors.Is(err, occupancy.ErrOccupied),
		errors.Is(err, store.ErrStillReferenced),
		errors.Is(err, store.ErrDuplicateTechnicalID):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func (h *WorkspaceHandler) writeError(w http.ResponseWriter, status int, err error) {
	resp := ErrorResponse{Error: err.Error()}
	var occupied *occupancy.SlotOccupiedError
	if errors.As(err, &occupied) {
		resp.Occupant = &occupied.Occupant
		resp.SuggestedIndex = occupied.SuggestedIndex
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		h.logger.Warn("error encoding response", zap.Error(encErr))
	}
}

func (h *WorkspaceHandler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	if r.URL.Query().Get("pretty") == "true" {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(v); err != nil {
		h.logger.Warn("error encoding response", zap.Error(err))
	}
}
