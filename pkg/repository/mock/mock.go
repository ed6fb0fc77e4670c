package mock

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/teamred/preguntas/internal/models"
	"github.com/teamred/preguntas/pkg/repository"
)

// Test helpers and mocks
type Mocks struct {
	Questions *QuestionRepo
	Users     *UserRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		Questions: &QuestionRepo{},
		Users:     &UserRepo{},
	}
}

// QuestionRepo is an in-memory repository.QuestionRepo.
type QuestionRepo struct {
	mu        sync.Mutex
	Stored    []models.Question
	CreateErr error
	ListErr   error
	UpdateErr error
}

func (m *QuestionRepo) CreateQuestion(ctx context.Context, q *models.Question) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return primitive.NilObjectID, m.CreateErr
	}
	q.ID = primitive.NewObjectID()
	if q.CreatedAt == nil {
		now := time.Now().UTC()
		q.CreatedAt = &now
	}
	m.Stored = append(m.Stored, *q)
	return q.ID, nil
}

func (m *QuestionRepo) ListQuestions(ctx context.Context) ([]models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.Question, len(m.Stored))
	copy(out, m.Stored)
	return out, nil
}

func (m *QuestionRepo) GetQuestion(ctx context.Context, id primitive.ObjectID) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			q := m.Stored[i]
			return &q, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *QuestionRepo) UpdateQuestion(ctx context.Context, id primitive.ObjectID, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for i := range m.Stored {
		if m.Stored[i].ID != id {
			continue
		}
		applyFields(&m.Stored[i], fields)
		return nil
	}
	return repository.ErrNotFound
}

// Seed adds a question with a fresh ID and returns it.
func (m *QuestionRepo) Seed(q models.Question) models.Question {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.ID.IsZero() {
		q.ID = primitive.NewObjectID()
	}
	m.Stored = append(m.Stored, q)
	return q
}

func applyFields(q *models.Question, fields map[string]any) {
	for k, v := range fields {
		switch k {
		case "estado":
			q.Estado = v.(string)
		case "approvedAt":
			t := v.(time.Time)
			q.ApprovedAt = &t
		case "approvedBy":
			q.ApprovedBy = v.(string)
		case "rejectedAt":
			t := v.(time.Time)
			q.RejectedAt = &t
		case "returnedToPendingAt":
			t := v.(time.Time)
			q.ReturnedToPendingAt = &t
		case "readAt":
			t := v.(time.Time)
			q.ReadAt = &t
		case "readBy":
			q.ReadBy = v.(string)
		}
	}
}

// UserRepo is an in-memory repository.UserRepo backed by the same
// code-index rule as the Mongo implementation.
type UserRepo struct {
	mu        sync.Mutex
	Stored    []models.User
	CreateErr error
	ListErr   error
	GetErr    error
}

func (m *UserRepo) CreateUser(ctx context.Context, u *models.User) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return primitive.NilObjectID, m.CreateErr
	}
	for i := range m.Stored {
		if m.Stored[i].Codigo == u.Codigo {
			return primitive.NilObjectID, repository.ErrCodigoTaken
		}
	}
	u.ID = primitive.NewObjectID()
	if u.CreatedAt == nil {
		now := time.Now().UTC()
		u.CreatedAt = &now
	}
	m.Stored = append(m.Stored, *u)
	return u.ID, nil
}

func (m *UserRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.User, len(m.Stored))
	copy(out, m.Stored)
	return out, nil
}

func (m *UserRepo) GetByCodigo(ctx context.Context, codigo string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for i := range m.Stored {
		if m.Stored[i].Codigo == codigo {
			u := m.Stored[i]
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *UserRepo) SetActivo(ctx context.Context, id primitive.ObjectID, activo bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			m.Stored[i].Activo = activo
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *UserRepo) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			m.Stored = append(m.Stored[:i], m.Stored[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *UserRepo) TouchLastLogin(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			now := time.Now().UTC()
			m.Stored[i].LastLoginAt = &now
			return nil
		}
	}
	return repository.ErrNotFound
}

// Seed adds a user with a fresh ID and returns it.
func (m *UserRepo) Seed(u models.User) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.Stored = append(m.Stored, u)
	return u
}
