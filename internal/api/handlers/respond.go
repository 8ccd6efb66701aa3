package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fartlog/fartlog-be/internal/auth"
	"github.com/fartlog/fartlog-be/internal/models"
	"github.com/fartlog/fartlog-be/internal/services"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message, code string) {
	respondJSON(w, status, map[string]string{"error": message, "code": code})
}

// respondServiceError maps typed service errors to their contract status and
// code; anything else is a 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		respondError(w, svcErr.Status, svcErr.Message, svcErr.Code)
		return
	}
	log.Error().Err(err).Msg("Unhandled service error")
	respondError(w, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR")
}

// currentUser pulls the caller resolved by the auth middleware. The fallback
// 401 only fires if a protected route was wired without the middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "UNAUTHORIZED")
	}
	return user, ok
}
