package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fartlog/fartlog-be/internal/services"
)

// FartTypeHandler handles HTTP requests for the shared category registry.
type FartTypeHandler struct {
	service services.FartTypeServiceProvider
}

// NewFartTypeHandler creates a new FartTypeHandler.
func NewFartTypeHandler(service services.FartTypeServiceProvider) *FartTypeHandler {
	return &FartTypeHandler{service: service}
}

// List handles GET /fart-types.
func (h *FartTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	types, err := h.service.List()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, types)
}

// Create handles POST /fart-types.
func (h *FartTypeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Missing name", "INVALID_REQUEST")
		return
	}

	ft, err := h.service.Create(payload.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, ft)
}
