package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/teamred/preguntas/api"
	"github.com/teamred/preguntas/internal/models"
	"github.com/teamred/preguntas/internal/stream"
	"github.com/teamred/preguntas/pkg/repository/mock"
)

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		prepare    func(m *mock.Mocks)
		wantStatus int
		check      func(t *testing.T, m *mock.Mocks)
	}{
		{
			name:       "InvalidJSON",
			body:       "not a json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "MissingNombre",
			body:       map[string]any{"codigo": "abc123"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "MissingCodigo",
			body:       map[string]any{"nombre": "Ana", "codigo": "  "},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "InvalidRol",
			body:       map[string]any{"nombre": "Ana", "codigo": "abc123", "rol": "root"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "DefaultsViewerActive",
			body:       map[string]any{"nombre": "Ana", "codigo": "abc123"},
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, m *mock.Mocks) {
				u := m.Users.Stored[0]
				if u.Rol != models.RolViewer || !u.Activo {
					t.Fatalf("defaults not applied: %+v", u)
				}
			},
		},
		{
			name:       "AdminInactive",
			body:       map[string]any{"nombre": "Ana", "codigo": "abc123", "rol": "admin", "activo": false},
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, m *mock.Mocks) {
				u := m.Users.Stored[0]
				if u.Rol != models.RolAdmin || u.Activo {
					t.Fatalf("explicit fields not honored: %+v", u)
				}
			},
		},
		{
			name: "DuplicateCodigo_NoSecondDoc",
			body: map[string]any{"nombre": "Ana", "codigo": "abc123"},
			prepare: func(m *mock.Mocks) {
				m.Users.Seed(models.User{Nombre: "Primero", Codigo: "abc123", Rol: models.RolViewer, Activo: true})
			},
			wantStatus: http.StatusConflict,
			check: func(t *testing.T, m *mock.Mocks) {
				if len(m.Users.Stored) != 1 {
					t.Fatalf("duplicate code must not create a second user")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := mock.NewMocks()
			if tt.prepare != nil {
				tt.prepare(mocks)
			}
			h := api.NewUsersHandler(mocks.Users, stream.NewHub())

			b, _ := json.Marshal(tt.body)
			w := httptest.NewRecorder()
			h.Create(w, httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader(b)))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.check != nil {
				tt.check(t, mocks)
			}
		})
	}
}

func TestListUsers(t *testing.T) {
	mocks := mock.NewMocks()
	old := time.Now().Add(-time.Hour).UTC()
	recent := time.Now().UTC()
	mocks.Users.Seed(models.User{Nombre: "Ana", Codigo: "aaa111", Rol: models.RolAdmin, Activo: true, CreatedAt: &old})
	mocks.Users.Seed(models.User{Nombre: "Luis", Codigo: "bbb222", Rol: models.RolViewer, Activo: true, CreatedAt: &recent})

	h := api.NewUsersHandler(mocks.Users, stream.NewHub())

	get := func(target string) userList {
		w := httptest.NewRecorder()
		h.List(w, httptest.NewRequest(http.MethodGet, target, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var out userList
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return out
	}

	t.Run("NewestFirst", func(t *testing.T) {
		out := get("/v1/users")
		if out.Total != 2 || out.Items[0].Nombre != "Luis" {
			t.Fatalf("unexpected list: %+v", out)
		}
	})

	t.Run("SearchByCodigo", func(t *testing.T) {
		out := get("/v1/users?q=aaa")
		if out.Total != 1 || out.Items[0].Nombre != "Ana" {
			t.Fatalf("unexpected search result: %+v", out)
		}
	})

	t.Run("SearchByRol", func(t *testing.T) {
		out := get("/v1/users?q=viewer")
		if out.Total != 1 || out.Items[0].Nombre != "Luis" {
			t.Fatalf("unexpected search result: %+v", out)
		}
	})
}

type userList struct {
	Total int `json:"total"`
	Items []struct {
		Nombre string `json:"nombre"`
		Codigo string `json:"codigo"`
		Rol    string `json:"rol"`
		Activo bool   `json:"activo"`
	} `json:"items"`
}

func TestSetActivo(t *testing.T) {
	mocks := mock.NewMocks()
	u := mocks.Users.Seed(models.User{Nombre: "Ana", Codigo: "abc123", Rol: models.RolViewer, Activo: true})
	h := api.NewUsersHandler(mocks.Users, stream.NewHub())

	b, _ := json.Marshal(map[string]bool{"activo": false})
	req := httptest.NewRequest(http.MethodPatch, "/v1/users/"+u.ID.Hex()+"/activo", bytes.NewReader(b))
	req = mux.SetURLVars(req, map[string]string{"id": u.ID.Hex()})
	w := httptest.NewRecorder()
	h.SetActivo(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 (body: %s)", w.Code, w.Body.String())
	}
	if mocks.Users.Stored[0].Activo {
		t.Fatalf("user still active")
	}
}

func TestSetActivoUnknownID(t *testing.T) {
	mocks := mock.NewMocks()
	h := api.NewUsersHandler(mocks.Users, stream.NewHub())

	b, _ := json.Marshal(map[string]bool{"activo": true})
	req := httptest.NewRequest(http.MethodPatch, "/v1/users/ffffffffffffffffffffffff/activo", bytes.NewReader(b))
	req = mux.SetURLVars(req, map[string]string{"id": "ffffffffffffffffffffffff"})
	w := httptest.NewRecorder()
	h.SetActivo(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestDeleteUser(t *testing.T) {
	mocks := mock.NewMocks()
	u := mocks.Users.Seed(models.User{Nombre: "Ana", Codigo: "abc123", Rol: models.RolViewer, Activo: true})
	h := api.NewUsersHandler(mocks.Users, stream.NewHub())

	req := httptest.NewRequest(http.MethodDelete, "/v1/users/"+u.ID.Hex(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": u.ID.Hex()})
	w := httptest.NewRecorder()
	h.Delete(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if len(mocks.Users.Stored) != 0 {
		t.Fatalf("user not deleted")
	}

	// code is free again once the user is gone
	if _, err := mocks.Users.CreateUser(req.Context(), &models.User{Nombre: "Otra", Codigo: "abc123", Rol: models.RolViewer, Activo: true}); err != nil {
		t.Fatalf("code not released after delete: %v", err)
	}
}
