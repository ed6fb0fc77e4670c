package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/teamred/preguntas/internal/locales"
	"github.com/teamred/preguntas/pkg/repository"
)

type AuthHandler struct {
	userRepo      repository.UserRepo
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(ur repository.UserRepo, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{userRepo: ur, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type loginRequest struct {
	Codigo string `json:"codigo"`
}

type loginResponse struct {
	Token  string `json:"token"`
	Rol    string `json:"rol"`
	Nombre string `json:"nombre,omitempty"`
}

// Login looks the submitted code up by exact match and, when it belongs to an
// active user, returns a role token bounded by the configured TTL. The role
// travels in the token instead of ambient session state, so a deactivated
// code stays usable only until the token expires.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, locales.MsgPeticionInvalida)
		return
	}

	codigo := strings.TrimSpace(req.Codigo)
	if codigo == "" {
		writeError(w, r, http.StatusBadRequest, locales.MsgCodigoRequerido)
		return
	}

	ctx := r.Context()

	user, err := h.userRepo.GetByCodigo(ctx, codigo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, r, http.StatusUnauthorized, locales.MsgCodigoInvalido)
			return
		}
		reportError("login lookup", err)
		writeError(w, r, http.StatusInternalServerError, locales.MsgErrorInterno)
		return
	}
	if !user.Activo {
		writeError(w, r, http.StatusUnauthorized, locales.MsgCodigoInvalido)
		return
	}

	if err := h.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		// not fatal for the login itself
		logger.Warn("touch lastLoginAt", "err", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"rol":    user.Rol,
		"nombre": user.Nombre,
		"exp":    time.Now().Add(h.tokenDuration).Unix(),
	})
	tokenStr, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		reportError("sign token", err)
		writeError(w, r, http.StatusInternalServerError, locales.MsgErrorInterno)
		return
	}

	writeJSON(w, loginResponse{Token: tokenStr, Rol: user.Rol, Nombre: user.Nombre}, http.StatusOK)
}

// Logout is stateless: the client discards its token. Kept as an endpoint so
// the "change user" action has something to call.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"message": localize(r, locales.MsgSesionCerrada)}, http.StatusOK)
}
