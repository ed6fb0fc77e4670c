package api

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/teamred/preguntas/internal/locales"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError renders a localized error body; clients surface it as-is.
func writeError(w http.ResponseWriter, r *http.Request, status int, msgID string) {
	writeJSON(w, errorResponse{Error: localize(r, msgID)}, status)
}

func localize(r *http.Request, msgID string) string {
	return locales.Localize(r.Header.Get("Accept-Language"), msgID)
}

// reportError logs a repository or transport failure and forwards it to
// Sentry when a DSN is configured.
func reportError(msg string, err error) {
	logger.Error(msg, slog.Any("err", err))
	sentry.CaptureException(err)
}
