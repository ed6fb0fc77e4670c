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

// QuestionRepository implements repository.QuestionRepo on MongoDB.
type QuestionRepository struct {
	collection *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{collection: db.Collection(QuestionsCollection)}
}

func (r *QuestionRepository) CreateQuestion(ctx context.Context, q *models.Question) (primitive.ObjectID, error) {
	q.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	q.CreatedAt = &now

	if _, err := r.collection.InsertOne(ctx, q); err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert question: %w", err)
	}
	return q.ID, nil
}

// ListQuestions returns the whole collection. Ordering happens in memory at
// the caller because createdAt may be absent on historical documents.
func (r *QuestionRepository) ListQuestions(ctx context.Context) ([]models.Question, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find questions: %w", err)
	}
	defer cursor.Close(ctx)

	var questions []models.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	return questions, nil
}

func (r *QuestionRepository) GetQuestion(ctx context.Context, id primitive.ObjectID) (*models.Question, error) {
	var q models.Question
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find question %s: %w", id.Hex(), err)
	}
	return &q, nil
}

func (r *QuestionRepository) UpdateQuestion(ctx context.Context, id primitive.ObjectID, fields map[string]any) error {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update question %s: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
