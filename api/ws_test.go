package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teamred/preguntas/api"
	"github.com/teamred/preguntas/internal/models"
	"github.com/teamred/preguntas/internal/stream"
	"github.com/teamred/preguntas/pkg/repository/mock"
)

func dialWS(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	return conn
}

type wsTestFrame struct {
	Type string `json:"type"`
	Data struct {
		Total int `json:"total"`
		Items []struct {
			Texto  string `json:"texto"`
			Nombre string `json:"nombre"`
		} `json:"items"`
	} `json:"data"`
	Error string `json:"error"`
}

func readFrame(t *testing.T, conn *websocket.Conn) wsTestFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame wsTestFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

func TestQuestionsStream(t *testing.T) {
	mocks := mock.NewMocks()
	now := time.Now().UTC()
	mocks.Questions.Seed(models.Question{Texto: "primera", Estado: models.EstadoPendiente, CreatedAt: &now})

	hub := stream.NewHub()
	h := api.NewWSHandler(mocks.Questions, mocks.Users, hub)
	srv := httptest.NewServer(http.HandlerFunc(h.Questions))
	defer srv.Close()

	conn := dialWS(t, srv, "")
	defer conn.Close()

	initial := readFrame(t, conn)
	if initial.Type != "snapshot" || initial.Data.Total != 1 {
		t.Fatalf("unexpected initial frame: %+v", initial)
	}
	if initial.Data.Items[0].Texto != "primera" {
		t.Fatalf("unexpected item: %+v", initial.Data.Items)
	}

	mocks.Questions.Seed(models.Question{Texto: "segunda", Estado: models.EstadoPendiente, CreatedAt: &now})
	hub.Publish(stream.TopicPreguntas)

	updated := readFrame(t, conn)
	if updated.Type != "snapshot" || updated.Data.Total != 2 {
		t.Fatalf("unexpected updated frame: %+v", updated)
	}
}

func TestUsersStream(t *testing.T) {
	mocks := mock.NewMocks()
	now := time.Now().UTC()
	mocks.Users.Seed(models.User{Nombre: "Ana", Codigo: "abc123", Rol: models.RolAdmin, Activo: true, CreatedAt: &now})

	hub := stream.NewHub()
	h := api.NewWSHandler(mocks.Questions, mocks.Users, hub)
	srv := httptest.NewServer(http.HandlerFunc(h.Users))
	defer srv.Close()

	conn := dialWS(t, srv, "")
	defer conn.Close()

	initial := readFrame(t, conn)
	if initial.Type != "snapshot" || initial.Data.Total != 1 {
		t.Fatalf("unexpected initial frame: %+v", initial)
	}
	if initial.Data.Items[0].Nombre != "Ana" {
		t.Fatalf("unexpected item: %+v", initial.Data.Items)
	}
}

func TestStreamUnsubscribesOnClose(t *testing.T) {
	mocks := mock.NewMocks()
	hub := stream.NewHub()
	h := api.NewWSHandler(mocks.Questions, mocks.Users, hub)
	srv := httptest.NewServer(http.HandlerFunc(h.Questions))
	defer srv.Close()

	conn := dialWS(t, srv, "")
	readFrame(t, conn)

	if got := hub.Subscribers(stream.TopicPreguntas); got != 1 {
		t.Fatalf("subscribers = %d, want 1", got)
	}

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers(stream.TopicPreguntas) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscription not released after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
