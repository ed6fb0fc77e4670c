package api

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/golang-jwt/jwt/v5"

	"github.com/teamred/preguntas/internal/locales"
	"github.com/teamred/preguntas/internal/models"
)

type ctxKey string

const (
	// CtxRole carries the authenticated role ("admin" | "viewer").
	CtxRole ctxKey = "rol"
	// CtxNombre carries the authenticated display name.
	CtxNombre ctxKey = "nombre"
)

// package-level logger used by middleware and helpers; can be set via SetLogger from caller
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger installs a logger for the api package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
		)
		next.ServeHTTP(w, r)
	})
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Accept-Language")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic", slog.Any("err", err))
				sentry.CaptureException(fmt.Errorf("panic serving %s: %v", r.URL.Path, err))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// RequireRole wraps a handler with bearer-token authentication and a role
// gate. The token may arrive in the Authorization header or, for WebSocket
// clients that cannot set headers, in the "token" query parameter. A missing
// or invalid token yields 401; a valid token with the wrong role yields an
// explicit 403 body instead of a silent redirect.
func RequireRole(secret string, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				writeError(w, r, http.StatusUnauthorized, locales.MsgSesionRequerida)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}

				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				writeError(w, r, http.StatusUnauthorized, locales.MsgSesionRequerida)
				return
			}

			rol := ""
			nombre := ""
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if v, found := claims["rol"]; found {
					rol, _ = v.(string)
				}
				if v, found := claims["nombre"]; found {
					nombre, _ = v.(string)
				}
			}
			if !roleAllowed(rol, roles) {
				msg := locales.MsgSoloAdmin
				if rol != models.RolAdmin && rol != models.RolViewer {
					msg = locales.MsgSesionRequerida
				}
				writeError(w, r, http.StatusForbidden, msg)
				return
			}

			ctx := context.WithValue(r.Context(), CtxRole, rol)
			ctx = context.WithValue(ctx, CtxNombre, nombre)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		var tokenString string
		if _, err := fmt.Sscanf(authHeader, "Bearer %s", &tokenString); err == nil {
			return tokenString
		}
	}
	return r.URL.Query().Get("token")
}

func roleAllowed(rol string, allowed []string) bool {
	for _, a := range allowed {
		if rol == a {
			return true
		}
	}
	return false
}

// RoleFromContext returns the authenticated role, or "" for an anonymous
// request.
func RoleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxRole).(string); ok {
		return v
	}
	return ""
}

// NombreFromContext returns the authenticated display name, or "".
func NombreFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxNombre).(string); ok {
		return v
	}
	return ""
}
