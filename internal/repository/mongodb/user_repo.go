package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/teamred/preguntas/internal/models"
	"github.com/teamred/preguntas/pkg/repository"
)

// UserRepository implements repository.UserRepo on MongoDB.
type UserRepository struct {
	users   *mongo.Collection
	codigos *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		users:   db.Collection(UsersCollection),
		codigos: db.Collection(CodeIndexCollection),
	}
}

type codeIndexDoc struct {
	Codigo    string             `bson:"_id"`
	UserID    primitive.ObjectID `bson:"userId"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// CreateUser claims the code in the index collection first; a duplicate-key
// error there is the collision signal and no user document is written. If the
// user insert fails afterwards the index entry is released again.
func (r *UserRepository) CreateUser(ctx context.Context, u *models.User) (primitive.ObjectID, error) {
	u.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	u.CreatedAt = &now

	idx := codeIndexDoc{Codigo: u.Codigo, UserID: u.ID, CreatedAt: now}
	if _, err := r.codigos.InsertOne(ctx, idx); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrCodigoTaken
		}
		return primitive.NilObjectID, fmt.Errorf("failed to claim codigo %q: %w", u.Codigo, err)
	}

	if _, err := r.users.InsertOne(ctx, u); err != nil {
		_, _ = r.codigos.DeleteOne(ctx, bson.M{"_id": u.Codigo})
		return primitive.NilObjectID, fmt.Errorf("failed to insert user: %w", err)
	}
	return u.ID, nil
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) GetByCodigo(ctx context.Context, codigo string) (*models.User, error) {
	var u models.User
	err := r.users.FindOne(ctx, bson.M{"codigo": codigo}).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by codigo: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) SetActivo(ctx context.Context, id primitive.ObjectID, activo bool) error {
	result, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"activo": activo}})
	if err != nil {
		return fmt.Errorf("failed to update activo for user %s: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteUser removes the user document and releases its code-index entry.
// Deletion is permanent; tokens already issued for the code stay valid until
// they expire.
func (r *UserRepository) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	var u models.User
	if err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to load user %s: %w", id.Hex(), err)
	}

	if _, err := r.users.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id.Hex(), err)
	}
	_, _ = r.codigos.DeleteOne(ctx, bson.M{"_id": u.Codigo})
	return nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastLoginAt": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("failed to update lastLoginAt for user %s: %w", id.Hex(), err)
	}
	return nil
}
