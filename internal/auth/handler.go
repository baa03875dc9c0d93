package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/xempie/trade-sub002/internal/api/dto"
	"github.com/xempie/trade-sub002/pkg/hash"
	"github.com/xempie/trade-sub002/pkg/jwt"
)

// Handler issues admin tokens. The service has a single operator, so login
// checks one bcrypt hash from configuration rather than a user table.
type Handler struct {
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

func NewHandler(passwordHash, jwtSecret string, tokenTTL time.Duration) *Handler {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Handler{PasswordHash: passwordHash, JWTSecret: jwtSecret, TokenTTL: tokenTTL}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON input")
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.PasswordHash == "" || !hash.CheckPassword(h.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := jwt.GenerateToken(h.JWTSecret, "admin", h.TokenTTL)
	if err != nil {
		log.Printf("Auth: token generation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Could not issue token")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":    true,
		"token":      token,
		"expires_in": int64(h.TokenTTL.Seconds()),
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}
