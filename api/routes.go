package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/teamred/preguntas/internal/config"
	"github.com/teamred/preguntas/internal/models"
	"github.com/teamred/preguntas/internal/stream"
	"github.com/teamred/preguntas/pkg/repository"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, questions repository.QuestionRepo, users repository.UserRepo, hub *stream.Hub) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(users, cfg.JWTSecret, cfg.TokenDuration)
	questionsHandler := NewQuestionsHandler(questions, hub)
	feedHandler := NewFeedHandler(questions, hub)
	usersHandler := NewUsersHandler(users, hub)
	wsHandler := NewWSHandler(questions, users, hub)

	admin := RequireRole(cfg.JWTSecret, models.RolAdmin)
	anyRole := RequireRole(cfg.JWTSecret, models.RolAdmin, models.RolViewer)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/v1/questions", questionsHandler.Submit).Methods("POST")

	// Viewer or admin
	r.Handle("/v1/auth/logout", anyRole(http.HandlerFunc(authHandler.Logout))).Methods("POST")
	r.Handle("/v1/feed", anyRole(http.HandlerFunc(feedHandler.Get))).Methods("GET")
	r.Handle("/v1/feed/ws", anyRole(http.HandlerFunc(wsHandler.Feed))).Methods("GET")
	r.Handle("/v1/questions/{id}/leida", anyRole(http.HandlerFunc(questionsHandler.MarkLeida))).Methods("POST")

	// Admin only
	r.Handle("/v1/questions", admin(http.HandlerFunc(questionsHandler.List))).Methods("GET")
	r.Handle("/v1/questions/ws", admin(http.HandlerFunc(wsHandler.Questions))).Methods("GET")
	r.Handle("/v1/questions/{id}/estado", admin(http.HandlerFunc(questionsHandler.ChangeEstado))).Methods("POST")
	r.Handle("/v1/users", admin(http.HandlerFunc(usersHandler.List))).Methods("GET")
	r.Handle("/v1/users", admin(http.HandlerFunc(usersHandler.Create))).Methods("POST")
	r.Handle("/v1/users/ws", admin(http.HandlerFunc(wsHandler.Users))).Methods("GET")
	r.Handle("/v1/users/{id}/activo", admin(http.HandlerFunc(usersHandler.SetActivo))).Methods("PATCH")
	r.Handle("/v1/users/{id}", admin(http.HandlerFunc(usersHandler.Delete))).Methods("DELETE")

	return r
}
