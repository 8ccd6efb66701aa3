package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fartlog/fartlog-be/internal/auth"
	"github.com/fartlog/fartlog-be/internal/models"
	"github.com/fartlog/fartlog-be/internal/services"
)

// AuthHandler handles registration, login and session introspection.
type AuthHandler struct {
	users  services.UserServiceProvider
	tokens *auth.Manager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, tokens *auth.Manager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// CredentialsPayload is the request body for register and login.
type CredentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func userBody(user models.User) map[string]any {
	return map[string]any{"username": user.Username}
}

// Register creates an account and returns a token for it.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Missing username or password", "INVALID_REQUEST")
		return
	}

	user, err := h.users.Register(payload.Username, payload.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	token, err := h.tokens.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate token")
		respondError(w, http.StatusInternalServerError, "Failed to generate token", "INTERNAL_ERROR")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"token": token, "user": userBody(user)})
}

// Login authenticates a user and returns a fresh token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Missing username or password", "INVALID_REQUEST")
		return
	}

	user, err := h.users.Authenticate(payload.Username, payload.Password)
	if err != nil {
		if err == services.ErrInvalidCredentials {
			log.Warn().Str("username", payload.Username).Msg("Failed authentication attempt")
		}
		respondServiceError(w, err)
		return
	}

	token, err := h.tokens.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate token")
		respondError(w, http.StatusInternalServerError, "Failed to generate token", "INTERNAL_ERROR")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"token": token, "user": userBody(user)})
}

// Logout is a stateless no-op; tokens simply expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me returns the caller behind the presented token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": userBody(user)})
}
