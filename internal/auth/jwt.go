package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fartlog/fartlog-be/internal/models"
)

// Claims defines the JWT claims structure.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

type contextKey string

// userContextKey is the context key for the resolved caller.
const userContextKey = contextKey("authUser")

const tokenTTL = 24 * time.Hour

// Manager issues and validates bearer tokens and resolves callers to stored
// users once per request.
type Manager struct {
	key     []byte
	resolve func(id int64) (models.User, error)
}

// NewManager creates a Manager. The resolver maps a token's user id to the
// stored account and fails for accounts that no longer exist.
func NewManager(secret string, resolve func(id int64) (models.User, error)) *Manager {
	return &Manager{key: []byte(secret), resolve: resolve}
}

// GenerateJWT creates a new signed token for a user.
func (m *Manager) GenerateJWT(user models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

// ValidateJWT parses and validates a token string.
func (m *Manager) ValidateJWT(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Middleware protects a route subtree. It extracts the bearer token, validates
// it, resolves the caller to a stored user and stashes the user in the request
// context, so handlers never re-derive identity.
func (m *Manager) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				writeAuthError(w, "Unauthorized", "UNAUTHORIZED")
				return
			}

			claims, err := m.ValidateJWT(tokenStr)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					writeAuthError(w, "Token expired", "TOKEN_EXPIRED")
					return
				}
				writeAuthError(w, "Invalid token", "INVALID_TOKEN")
				return
			}

			user, err := m.resolve(claims.UserID)
			if err != nil {
				writeAuthError(w, "Unauthorized", "UNAUTHORIZED")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the caller resolved by Middleware.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeAuthError(w http.ResponseWriter, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}
