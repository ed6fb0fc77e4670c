package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Estado values a question moves through during moderation.
const (
	EstadoPendiente = "pendiente"
	EstadoAprobada  = "aprobada"
	EstadoRechazada = "rechazada"
	EstadoLeida     = "leida"
)

// EstadoTodos is the filter value that selects every status.
const EstadoTodos = "todos"

// Roles a login code can carry.
const (
	RolAdmin  = "admin"
	RolViewer = "viewer"
)

// AnonimoLabel is stored as the author name for anonymous submissions.
const AnonimoLabel = "Anónimo"

func ValidEstado(s string) bool {
	switch s {
	case EstadoPendiente, EstadoAprobada, EstadoRechazada, EstadoLeida:
		return true
	}
	return false
}

func ValidRol(s string) bool {
	return s == RolAdmin || s == RolViewer
}

// Question is one submitted question document.
type Question struct {
	ID     primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Texto  string             `json:"texto" bson:"texto"`
	Nombre string             `json:"nombre" bson:"nombre"`
	Estado string             `json:"estado" bson:"estado"`

	// Legacy author fields; older documents stored the name under one of
	// these instead of nombre.
	Name       string `json:"name,omitempty" bson:"name,omitempty"`
	Usuario    string `json:"usuario,omitempty" bson:"usuario,omitempty"`
	UserName   string `json:"userName,omitempty" bson:"userName,omitempty"`
	Autor      string `json:"autor,omitempty" bson:"autor,omitempty"`
	AuthorName string `json:"authorName,omitempty" bson:"authorName,omitempty"`

	CreatedAt *time.Time `json:"createdAt" bson:"createdAt,omitempty"`

	// Audit fields stamped on the matching transition. A later transition
	// never clears a field set by an earlier one.
	ApprovedAt          *time.Time `json:"approvedAt,omitempty" bson:"approvedAt,omitempty"`
	ApprovedBy          string     `json:"approvedBy,omitempty" bson:"approvedBy,omitempty"`
	RejectedAt          *time.Time `json:"rejectedAt,omitempty" bson:"rejectedAt,omitempty"`
	ReturnedToPendingAt *time.Time `json:"returnedToPendingAt,omitempty" bson:"returnedToPendingAt,omitempty"`
	ReadAt              *time.Time `json:"readAt,omitempty" bson:"readAt,omitempty"`
	ReadBy              string     `json:"readBy,omitempty" bson:"readBy,omitempty"`
}

// DisplayName resolves the author label, falling through the legacy name
// fields before defaulting to the anonymous label.
func (q *Question) DisplayName() string {
	for _, raw := range []string{q.Nombre, q.Name, q.Usuario, q.UserName, q.Autor, q.AuthorName} {
		if s := strings.TrimSpace(raw); s != "" {
			return s
		}
	}
	return AnonimoLabel
}

// CreatedMillis orders questions by recency; documents without a creation
// timestamp sort last.
func (q *Question) CreatedMillis() int64 {
	if q.CreatedAt == nil {
		return 0
	}
	return q.CreatedAt.UnixMilli()
}

// User is one login-code document.
type User struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Nombre      string             `json:"nombre" bson:"nombre"`
	Codigo      string             `json:"codigo" bson:"codigo"`
	Rol         string             `json:"rol" bson:"rol"`
	Activo      bool               `json:"activo" bson:"activo"`
	CreatedAt   *time.Time         `json:"createdAt" bson:"createdAt,omitempty"`
	LastLoginAt *time.Time         `json:"lastLoginAt,omitempty" bson:"lastLoginAt,omitempty"`
}

func (u *User) CreatedMillis() int64 {
	if u.CreatedAt == nil {
		return 0
	}
	return u.CreatedAt.UnixMilli()
}
