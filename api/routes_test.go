package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/teamred/preguntas/api"
	"github.com/teamred/preguntas/internal/config"
	"github.com/teamred/preguntas/internal/models"
	"github.com/teamred/preguntas/internal/stream"
	"github.com/teamred/preguntas/pkg/repository/mock"
)

func TestRouteGates(t *testing.T) {
	secret := "testsecret"
	cfg := &config.Config{
		Addr:          ":0",
		JWTSecret:     secret,
		APITimeout:    5 * time.Second,
		TokenDuration: time.Hour,
	}
	mocks := mock.NewMocks()
	router := api.SetupRoutes(cfg, "test", "now", mocks.Questions, mocks.Users, stream.NewHub())

	adminToken := signToken(t, secret, models.RolAdmin, "Ana", time.Hour)
	viewerToken := signToken(t, secret, models.RolViewer, "Luis", time.Hour)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		token      string
		wantStatus int
	}{
		{"SubmitIsPublic", http.MethodPost, "/v1/questions", map[string]any{"texto": "hola"}, "", http.StatusCreated},
		{"HealthIsPublic", http.MethodGet, "/health", nil, "", http.StatusOK},
		{"ListNeedsAuth", http.MethodGet, "/v1/questions", nil, "", http.StatusUnauthorized},
		{"ListRejectsViewer", http.MethodGet, "/v1/questions", nil, viewerToken, http.StatusForbidden},
		{"ListAllowsAdmin", http.MethodGet, "/v1/questions", nil, adminToken, http.StatusOK},
		{"FeedNeedsAuth", http.MethodGet, "/v1/feed", nil, "", http.StatusUnauthorized},
		{"FeedAllowsViewer", http.MethodGet, "/v1/feed", nil, viewerToken, http.StatusOK},
		{"FeedAllowsAdmin", http.MethodGet, "/v1/feed", nil, adminToken, http.StatusOK},
		{"UsersRejectsViewer", http.MethodGet, "/v1/users", nil, viewerToken, http.StatusForbidden},
		{"UsersAllowsAdmin", http.MethodGet, "/v1/users", nil, adminToken, http.StatusOK},
		{"LogoutAllowsViewer", http.MethodPost, "/v1/auth/logout", nil, viewerToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body *bytes.Reader
			if tt.body != nil {
				b, _ := json.Marshal(tt.body)
				body = bytes.NewReader(b)
			} else {
				body = bytes.NewReader(nil)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}
