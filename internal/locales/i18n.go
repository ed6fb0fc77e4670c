package locales

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed *.json
var localeFS embed.FS

var (
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
)

// Message IDs for every user-facing string. The values live in the embedded
// locale catalogs (es is the default, matching the original UI).
const (
	MsgCodigoInvalido     = "MsgCodigoInvalido"
	MsgCodigoRequerido    = "MsgCodigoRequerido"
	MsgSesionCerrada      = "MsgSesionCerrada"
	MsgSesionRequerida    = "MsgSesionRequerida"
	MsgSoloAdmin          = "MsgSoloAdmin"
	MsgPreguntaVacia      = "MsgPreguntaVacia"
	MsgPreguntaRecibida   = "MsgPreguntaRecibida"
	MsgEstadoInvalido     = "MsgEstadoInvalido"
	MsgNoActualizado      = "MsgNoActualizado"
	MsgNoEncontrado       = "MsgNoEncontrado"
	MsgSoloAprobadas      = "MsgSoloAprobadas"
	MsgCamposObligatorios = "MsgCamposObligatorios"
	MsgRolInvalido        = "MsgRolInvalido"
	MsgCodigoEnUso        = "MsgCodigoEnUso"
	MsgNoEliminado        = "MsgNoEliminado"
	MsgUsuarioCreado      = "MsgUsuarioCreado"
	MsgErrorInterno       = "MsgErrorInterno"
	MsgPeticionInvalida   = "MsgPeticionInvalida"
)

// Init loads the embedded catalogs and sets the default language.
// It must run once before any Localize call.
func Init(defaultLangCode string) {
	var err error
	defaultLanguage, err = language.Parse(defaultLangCode)
	if err != nil {
		slog.Warn("invalid default language, falling back to Spanish", "code", defaultLangCode, "err", err)
		defaultLanguage = language.Spanish
	}

	bundle = i18n.NewBundle(defaultLanguage)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir(".")
	if err != nil {
		panic("locales: read embedded dir: " + err.Error())
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, e.Name()); err != nil {
			panic("locales: load " + e.Name() + ": " + err.Error())
		}
	}
}

// Localize resolves a message ID against the caller's language preferences
// (typically the Accept-Language header), falling back to the default
// language and finally to the ID itself.
func Localize(langPrefs string, msgID string) string {
	if bundle == nil {
		Init("es")
	}
	loc := i18n.NewLocalizer(bundle, langPrefs, defaultLanguage.String())
	msg, err := loc.Localize(&i18n.LocalizeConfig{MessageID: msgID})
	if err != nil {
		return msgID
	}
	return msg
}
