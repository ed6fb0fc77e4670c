package api

import (
	"context"
	"net/http"
	"time"

	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/teamred/preguntas/internal/locales"
	"github.com/teamred/preguntas/internal/stream"
	"github.com/teamred/preguntas/pkg/repository"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHandler serves the live views: each connection gets an immediate
// snapshot and a fresh one every time the underlying collection changes,
// mirroring the snapshot-per-change live queries of the original app. The
// hub subscription is torn down when the client goes away.
type WSHandler struct {
	questionRepo repository.QuestionRepo
	userRepo     repository.UserRepo
	hub          *stream.Hub
}

func NewWSHandler(qr repository.QuestionRepo, ur repository.UserRepo, hub *stream.Hub) *WSHandler {
	return &WSHandler{questionRepo: qr, userRepo: ur, hub: hub}
}

type wsFrame struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Questions streams the full moderation view (admin).
func (h *WSHandler) Questions(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, stream.TopicPreguntas, func(ctx context.Context) (any, error) {
		items, err := h.questionRepo.ListQuestions(ctx)
		if err != nil {
			return nil, err
		}
		return buildQuestionList(items, "", ""), nil
	})
}

// Feed streams the approved/read buckets (viewer or admin).
func (h *WSHandler) Feed(w http.ResponseWriter, r *http.Request) {
	includeRead := r.URL.Query().Get("includeRead") != "false"
	h.serve(w, r, stream.TopicPreguntas, func(ctx context.Context) (any, error) {
		items, err := h.questionRepo.ListQuestions(ctx)
		if err != nil {
			return nil, err
		}
		return buildFeedSnapshot(items, includeRead), nil
	})
}

// Users streams the user-management list (admin).
func (h *WSHandler) Users(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, stream.TopicUsuarios, func(ctx context.Context) (any, error) {
		users, err := h.userRepo.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		return buildUserList(users, ""), nil
	})
}

func (h *WSHandler) serve(w http.ResponseWriter, r *http.Request, topic string, snapshot func(context.Context) (any, error)) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		logger.Warn("ws upgrade", slog.Any("err", err))
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe(topic)
	defer sub.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// the read pump only detects the client closing the connection
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	send := func() bool {
		data, err := snapshot(ctx)
		frame := wsFrame{Type: "snapshot", Data: data}
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			reportError("ws snapshot", err)
			frame = wsFrame{Type: "error", Error: locales.Localize(r.Header.Get("Accept-Language"), locales.MsgErrorInterno)}
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(frame); err != nil {
			return false
		}
		return true
	}

	if !send() {
		return
	}

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Updates():
			if !send() {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}
