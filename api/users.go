package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/teamred/preguntas/internal/locales"
	"github.com/teamred/preguntas/internal/models"
	"github.com/teamred/preguntas/internal/stream"
	"github.com/teamred/preguntas/pkg/repository"
)

// UsersHandler manages the set of login codes. Every route it serves is
// admin-gated in the router.
type UsersHandler struct {
	userRepo repository.UserRepo
	hub      *stream.Hub
}

func NewUsersHandler(ur repository.UserRepo, hub *stream.Hub) *UsersHandler {
	return &UsersHandler{userRepo: ur, hub: hub}
}

type userListResponse struct {
	Total int           `json:"total"`
	Items []models.User `json:"items"`
}

// List returns every user newest-first with an optional substring search
// over nombre, codigo and rol.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.ListUsers(r.Context())
	if err != nil {
		reportError("list users", err)
		writeError(w, r, http.StatusInternalServerError, locales.MsgErrorInterno)
		return
	}

	writeJSON(w, buildUserList(users, r.URL.Query().Get("q")), http.StatusOK)
}

func buildUserList(users []models.User, search string) userListResponse {
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedMillis() > users[j].CreatedMillis()
	})

	if s := strings.ToLower(strings.TrimSpace(search)); s != "" {
		matched := users[:0:0]
		for i := range users {
			u := users[i]
			if strings.Contains(strings.ToLower(u.Nombre), s) ||
				strings.Contains(strings.ToLower(u.Codigo), s) ||
				strings.Contains(strings.ToLower(u.Rol), s) {
				matched = append(matched, u)
			}
		}
		users = matched
	}

	if users == nil {
		users = []models.User{}
	}
	return userListResponse{Total: len(users), Items: users}
}

type createUserRequest struct {
	Nombre string `json:"nombre"`
	Codigo string `json:"codigo"`
	Rol    string `json:"rol"`
	Activo *bool  `json:"activo"`
}

type createUserResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Create adds a login code through the atomic code-index path: claiming the
// code and writing the user either both happen or neither does, so a
// duplicate code can never leave a second user document behind.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, locales.MsgPeticionInvalida)
		return
	}
	if err := validatePayload(r.Context(), createUserSchema, body); err != nil {
		writeError(w, r, http.StatusBadRequest, locales.MsgPeticionInvalida)
		return
	}

	var req createUserRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, locales.MsgPeticionInvalida)
		return
	}

	nombre := strings.TrimSpace(req.Nombre)
	codigo := strings.TrimSpace(req.Codigo)
	if nombre == "" || codigo == "" {
		writeError(w, r, http.StatusBadRequest, locales.MsgCamposObligatorios)
		return
	}

	rol := req.Rol
	if rol == "" {
		rol = models.RolViewer
	}
	if !models.ValidRol(rol) {
		writeError(w, r, http.StatusBadRequest, locales.MsgRolInvalido)
		return
	}

	activo := true
	if req.Activo != nil {
		activo = *req.Activo
	}

	u := &models.User{Nombre: nombre, Codigo: codigo, Rol: rol, Activo: activo}
	id, err := h.userRepo.CreateUser(r.Context(), u)
	if err != nil {
		if errors.Is(err, repository.ErrCodigoTaken) {
			writeError(w, r, http.StatusConflict, locales.MsgCodigoEnUso)
			return
		}
		reportError("create user", err)
		writeError(w, r, http.StatusInternalServerError, locales.MsgErrorInterno)
		return
	}
	h.hub.Publish(stream.TopicUsuarios)

	writeJSON(w, createUserResponse{ID: id.Hex(), Message: localize(r, locales.MsgUsuarioCreado)}, http.StatusCreated)
}

type setActivoRequest struct {
	Activo bool `json:"activo"`
}

// SetActivo toggles whether a code can log in. Tokens already issued for the
// code keep working until they expire.
func (h *UsersHandler) SetActivo(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, http.StatusBadRequest, locales.MsgPeticionInvalida)
		return
	}

	var req setActivoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, locales.MsgPeticionInvalida)
		return
	}

	if err := h.userRepo.SetActivo(r.Context(), id, req.Activo); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, locales.MsgNoEncontrado)
			return
		}
		reportError("set activo", err)
		writeError(w, r, http.StatusInternalServerError, locales.MsgNoActualizado)
		return
	}
	h.hub.Publish(stream.TopicUsuarios)

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a user permanently. Questions are untouched and no session
// cascade happens.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, http.StatusBadRequest, locales.MsgPeticionInvalida)
		return
	}

	if err := h.userRepo.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, locales.MsgNoEncontrado)
			return
		}
		reportError("delete user", err)
		writeError(w, r, http.StatusInternalServerError, locales.MsgNoEliminado)
		return
	}
	h.hub.Publish(stream.TopicUsuarios)

	w.WriteHeader(http.StatusNoContent)
}
