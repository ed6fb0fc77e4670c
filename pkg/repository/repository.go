package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/teamred/preguntas/internal/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrCodigoTaken is returned when a login code collides with an
	// existing entry in the code index.
	ErrCodigoTaken = errors.New("codigo already in use")
)

type QuestionRepo interface {
	CreateQuestion(ctx context.Context, q *models.Question) (primitive.ObjectID, error)
	ListQuestions(ctx context.Context) ([]models.Question, error)
	GetQuestion(ctx context.Context, id primitive.ObjectID) (*models.Question, error)
	// UpdateQuestion applies a partial field update to one document.
	// Last write wins; no concurrency guard.
	UpdateQuestion(ctx context.Context, id primitive.ObjectID, fields map[string]any) error
}

type UserRepo interface {
	// CreateUser writes the code-index entry and the user document.
	// Returns ErrCodigoTaken when the code is already indexed.
	CreateUser(ctx context.Context, u *models.User) (primitive.ObjectID, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetByCodigo(ctx context.Context, codigo string) (*models.User, error)
	SetActivo(ctx context.Context, id primitive.ObjectID, activo bool) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	TouchLastLogin(ctx context.Context, id primitive.ObjectID) error
}
