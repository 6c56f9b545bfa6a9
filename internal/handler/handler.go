// Package handler implements the HTTP layer of the meshmap API.
//
// Success responses return JSON with appropriate status codes (200, 201).
// Error responses return JSON with an {error, details} structure.
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"meshmap/internal/service"
)

// TopologyHandler handles topology API requests.
type TopologyHandler struct {
	svc *service.TopologyService
}

// NewTopologyHandler creates a new topology handler.
func NewTopologyHandler(svc *service.TopologyService) *TopologyHandler {
	return &TopologyHandler{svc: svc}
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ImportSnapshot accepts one capture document from a collector.
func (h *TopologyHandler) ImportSnapshot(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	source := r.URL.Query().Get("source")
	if source == "" {
		source = r.RemoteAddr
	}

	rec, err := h.svc.ImportCapture(r.Context(), r.Body, source)
	if err != nil {
		log.Printf("Failed to import capture: %v", err)
		h.writeError(w, "Invalid capture document", err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, rec, http.StatusCreated)
}

// ListSnapshots lists stored capture metadata.
func (h *TopologyHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListSnapshots(r.Context())
	if err != nil {
		log.Printf("Failed to list snapshots: %v", err)
		h.writeError(w, "Failed to list snapshots", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, records, http.StatusOK)
}

// RunInference runs one inference pass over the current aggregate.
func (h *TopologyHandler) RunInference(w http.ResponseWriter, r *http.Request) {
	pass, err := h.svc.RunInference(r.Context())
	if err != nil {
		log.Printf("Failed to run inference: %v", err)
		h.writeError(w, "Failed to run inference", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, pass, http.StatusCreated)
}

// Reload rebuilds the aggregate from the capture directory and re-infers.
func (h *TopologyHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Refresh(r.Context()); err != nil {
		log.Printf("Failed to reload captures: %v", err)
		h.writeError(w, "Failed to reload captures", err.Error(), http.StatusInternalServerError)
		return
	}

	pass, err := h.svc.LatestPass(r.Context())
	if err != nil {
		h.writeError(w, "Failed to fetch latest pass", err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, pass, http.StatusOK)
}

// ListPasses lists stored inference passes, newest first.
func (h *TopologyHandler) ListPasses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeError(w, "Invalid limit", "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	passes, err := h.svc.ListPasses(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to list passes: %v", err)
		h.writeError(w, "Failed to list passes", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, passes, http.StatusOK)
}

// GetPass returns a single inference pass.
func (h *TopologyHandler) GetPass(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, "Invalid pass ID", "Pass ID is required", http.StatusBadRequest)
		return
	}

	pass, err := h.svc.GetPass(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to get pass: %v", err)
		h.writeError(w, "Failed to get pass", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, pass, http.StatusOK)
}

// GetLatestPass returns the most recent inference pass.
func (h *TopologyHandler) GetLatestPass(w http.ResponseWriter, r *http.Request) {
	pass, err := h.svc.LatestPass(r.Context())
	if err != nil {
		log.Printf("Failed to get latest pass: %v", err)
		h.writeError(w, "Failed to get latest pass", err.Error(), http.StatusInternalServerError)
		return
	}
	if pass == nil {
		h.writeError(w, "Not found", "No inference pass has run yet", http.StatusNotFound)
		return
	}

	h.writeJSON(w, pass, http.StatusOK)
}

// GetTopology streams the current document with connections appended.
func (h *TopologyHandler) GetTopology(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := h.svc.ExportTopology(r.Context(), w); err != nil {
		log.Printf("Failed to export topology: %v", err)
		// Headers are already written; nothing more to do.
		return
	}
}

// GetGraph returns the renderer-facing derived view.
func (h *TopologyHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Graph(r.Context()), http.StatusOK)
}

// GetSources lists the captures contributing to the current aggregate.
func (h *TopologyHandler) GetSources(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Sources(), http.StatusOK)
}

// Helper methods

func (h *TopologyHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *TopologyHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
