package locales_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teamred/preguntas/internal/locales"
)

func TestLocalizeDefaultsToSpanish(t *testing.T) {
	locales.Init("es")

	got := locales.Localize("", locales.MsgCodigoInvalido)
	assert.Equal(t, "Código inválido", got)
}

func TestLocalizeHonorsAcceptLanguage(t *testing.T) {
	locales.Init("es")

	got := locales.Localize("en-US,en;q=0.9", locales.MsgCodigoInvalido)
	assert.Equal(t, "Invalid code", got)
}

func TestLocalizeFallsBackToDefault(t *testing.T) {
	locales.Init("es")

	got := locales.Localize("fr-FR", locales.MsgPreguntaVacia)
	assert.Equal(t, "Escribe una pregunta", got)
}

func TestLocalizeUnknownIDReturnsID(t *testing.T) {
	locales.Init("es")

	got := locales.Localize("es", "MsgQueNoExiste")
	assert.Equal(t, "MsgQueNoExiste", got)
}

func TestInitBadCodeFallsBackToSpanish(t *testing.T) {
	locales.Init("not-a-lang")

	got := locales.Localize("", locales.MsgSesionCerrada)
	assert.Equal(t, "Sesión cerrada", got)
}
