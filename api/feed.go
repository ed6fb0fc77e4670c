package api

import (
	"net/http"

	"github.com/teamred/preguntas/internal/locales"
	"github.com/teamred/preguntas/internal/models"
	"github.com/teamred/preguntas/internal/stream"
	"github.com/teamred/preguntas/pkg/repository"
)

// FeedHandler serves the public feed: the approved bucket and, unless the
// caller opts out, the read bucket below it. One parameterized controller
// replaces the two divergent feed views of the original app.
type FeedHandler struct {
	questionRepo repository.QuestionRepo
	hub          *stream.Hub
}

func NewFeedHandler(qr repository.QuestionRepo, hub *stream.Hub) *FeedHandler {
	return &FeedHandler{questionRepo: qr, hub: hub}
}

type feedSnapshot struct {
	Aprobadas []questionView `json:"aprobadas"`
	Leidas    []questionView `json:"leidas,omitempty"`
}

func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	items, err := h.questionRepo.ListQuestions(r.Context())
	if err != nil {
		reportError("list feed", err)
		writeError(w, r, http.StatusInternalServerError, locales.MsgErrorInterno)
		return
	}

	includeRead := r.URL.Query().Get("includeRead") != "false"
	writeJSON(w, buildFeedSnapshot(items, includeRead), http.StatusOK)
}

func buildFeedSnapshot(items []models.Question, includeRead bool) feedSnapshot {
	sortQuestionsByRecency(items)

	snap := feedSnapshot{Aprobadas: []questionView{}}
	for i := range items {
		switch items[i].Estado {
		case models.EstadoAprobada:
			snap.Aprobadas = append(snap.Aprobadas, questionView{Question: items[i], DisplayName: items[i].DisplayName()})
		case models.EstadoLeida:
			if includeRead {
				snap.Leidas = append(snap.Leidas, questionView{Question: items[i], DisplayName: items[i].DisplayName()})
			}
		}
	}
	return snap
}
