package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/teamred/preguntas/internal/locales"
	"github.com/teamred/preguntas/internal/models"
	"github.com/teamred/preguntas/internal/stream"
	"github.com/teamred/preguntas/pkg/repository"
)

type QuestionsHandler struct {
	questionRepo repository.QuestionRepo
	hub          *stream.Hub
}

func NewQuestionsHandler(qr repository.QuestionRepo, hub *stream.Hub) *QuestionsHandler {
	return &QuestionsHandler{questionRepo: qr, hub: hub}
}

type submitRequest struct {
	Nombre  string `json:"nombre"`
	Texto   string `json:"texto"`
	Anonimo bool   `json:"anonimo"`
}

type submitResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Submit accepts a new question and stores it as pendiente. Blank text is
// rejected before any write; the anonymous flag (or a blank name) resolves
// the author to the anonymous label.
func (h *QuestionsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, locales.MsgPeticionInvalida)
		return
	}
	if err := validatePayload(r.Context(), submitSchema, body); err != nil {
		writeError(w, r, http.StatusBadRequest, locales.MsgPeticionInvalida)
		return
	}

	var req submitRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, locales.MsgPeticionInvalida)
		return
	}

	texto := strings.TrimSpace(req.Texto)
	if texto == "" {
		writeError(w, r, http.StatusBadRequest, locales.MsgPreguntaVacia)
		return
	}

	nombre := models.AnonimoLabel
	if !req.Anonimo {
		if n := strings.TrimSpace(req.Nombre); n != "" {
			nombre = n
		}
	}

	q := &models.Question{
		Texto:  texto,
		Nombre: nombre,
		Estado: models.EstadoPendiente,
	}
	id, err := h.questionRepo.CreateQuestion(r.Context(), q)
	if err != nil {
		reportError("create question", err)
		writeError(w, r, http.StatusInternalServerError, locales.MsgErrorInterno)
		return
	}
	h.hub.Publish(stream.TopicPreguntas)

	writeJSON(w, submitResponse{ID: id.Hex(), Message: localize(r, locales.MsgPreguntaRecibida)}, http.StatusCreated)
}

type questionCounts struct {
	Pendiente int `json:"pendiente"`
	Aprobada  int `json:"aprobada"`
	Rechazada int `json:"rechazada"`
	Leida     int `json:"leida"`
}

type questionListResponse struct {
	Total  int            `json:"total"`
	Counts questionCounts `json:"counts"`
	Items  []questionView `json:"items"`
}

type questionView struct {
	models.Question
	DisplayName string `json:"displayName"`
}

// List returns the whole collection newest-first with per-status counts, an
// optional status filter and a case-insensitive search over text and resolved
// display name. It doubles as the one-shot reload when the live stream errors.
func (h *QuestionsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.questionRepo.ListQuestions(r.Context())
	if err != nil {
		reportError("list questions", err)
		writeError(w, r, http.StatusInternalServerError, locales.MsgErrorInterno)
		return
	}

	writeJSON(w, buildQuestionList(items, r.URL.Query().Get("estado"), r.URL.Query().Get("q")), http.StatusOK)
}

func buildQuestionList(items []models.Question, estado, search string) questionListResponse {
	sortQuestionsByRecency(items)

	var counts questionCounts
	for i := range items {
		switch items[i].Estado {
		case models.EstadoPendiente:
			counts.Pendiente++
		case models.EstadoAprobada:
			counts.Aprobada++
		case models.EstadoRechazada:
			counts.Rechazada++
		case models.EstadoLeida:
			counts.Leida++
		}
	}

	filtered := items
	if estado != "" && estado != models.EstadoTodos {
		filtered = filtered[:0:0]
		for i := range items {
			if items[i].Estado == estado {
				filtered = append(filtered, items[i])
			}
		}
	}

	if s := strings.ToLower(strings.TrimSpace(search)); s != "" {
		matched := filtered[:0:0]
		for i := range filtered {
			q := filtered[i]
			if strings.Contains(strings.ToLower(q.Texto), s) ||
				strings.Contains(strings.ToLower(q.DisplayName()), s) {
				matched = append(matched, q)
			}
		}
		filtered = matched
	}

	views := make([]questionView, 0, len(filtered))
	for i := range filtered {
		views = append(views, questionView{Question: filtered[i], DisplayName: filtered[i].DisplayName()})
	}

	return questionListResponse{Total: len(items), Counts: counts, Items: views}
}

func sortQuestionsByRecency(items []models.Question) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedMillis() > items[j].CreatedMillis()
	})
}

type changeEstadoRequest struct {
	Estado string `json:"estado"`
}

// ChangeEstado applies an admin moderation transition. Approval and rejection
// stamp their audit fields; returning to pending stamps returnedToPendingAt
// and deliberately leaves earlier audit fields in place. Last write wins.
func (h *QuestionsHandler) ChangeEstado(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, http.StatusBadRequest, locales.MsgPeticionInvalida)
		return
	}

	var req changeEstadoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, locales.MsgPeticionInvalida)
		return
	}

	actor := NombreFromContext(r.Context())
	if actor == "" {
		actor = models.RolAdmin
	}

	now := time.Now().UTC()
	fields := map[string]any{"estado": req.Estado}
	switch req.Estado {
	case models.EstadoAprobada:
		fields["approvedAt"] = now
		fields["approvedBy"] = actor
	case models.EstadoRechazada:
		// the original flow records the rejecting admin under approvedBy
		fields["rejectedAt"] = now
		fields["approvedBy"] = actor
	case models.EstadoPendiente:
		fields["returnedToPendingAt"] = now
	default:
		writeError(w, r, http.StatusBadRequest, locales.MsgEstadoInvalido)
		return
	}

	if err := h.questionRepo.UpdateQuestion(r.Context(), id, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, locales.MsgNoEncontrado)
			return
		}
		reportError("change estado", err)
		writeError(w, r, http.StatusInternalServerError, locales.MsgNoActualizado)
		return
	}
	h.hub.Publish(stream.TopicPreguntas)

	w.WriteHeader(http.StatusNoContent)
}

// MarkLeida moves an approved question to leida, recording readAt and the
// reader's role. Only the approved bucket can be marked read.
func (h *QuestionsHandler) MarkLeida(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, http.StatusBadRequest, locales.MsgPeticionInvalida)
		return
	}

	q, err := h.questionRepo.GetQuestion(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, locales.MsgNoEncontrado)
			return
		}
		reportError("load question", err)
		writeError(w, r, http.StatusInternalServerError, locales.MsgNoActualizado)
		return
	}
	if q.Estado != models.EstadoAprobada {
		writeError(w, r, http.StatusConflict, locales.MsgSoloAprobadas)
		return
	}

	readBy := RoleFromContext(r.Context())
	if readBy == "" {
		readBy = models.RolViewer
	}

	fields := map[string]any{
		"estado": models.EstadoLeida,
		"readAt": time.Now().UTC(),
		"readBy": readBy,
	}
	if err := h.questionRepo.UpdateQuestion(r.Context(), id, fields); err != nil {
		reportError("mark leida", err)
		writeError(w, r, http.StatusInternalServerError, locales.MsgNoActualizado)
		return
	}
	h.hub.Publish(stream.TopicPreguntas)

	w.WriteHeader(http.StatusNoContent)
}
