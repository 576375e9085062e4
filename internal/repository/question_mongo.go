package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gittldr/server/internal/models"
)

// QuestionMongo provides Mongo-backed persistence for Q&A history.
type QuestionMongo struct {
	col *mongo.Collection
}

// NewQuestionRepository returns a QuestionMongo that operates on the
// "questions" collection.
func NewQuestionRepository(db *mongo.Database) *QuestionMongo {
	return &QuestionMongo{
		col: db.Collection("questions"),
	}
}

// Insert stores an answered question.
func (r *QuestionMongo) Insert(ctx context.Context, q models.Question) error {
	_, err := r.col.InsertOne(ctx, q)
	return err
}

// FindByID fetches a single question.
func (r *QuestionMongo) FindByID(ctx context.Context, id string) (models.Question, error) {
	var q models.Question
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return models.Question{}, models.ErrQuestionNotFound
	}
	return q, err
}

// ListByRepo returns the question history for one repository, newest first.
func (r *QuestionMongo) ListByRepo(ctx context.Context, repoID string, limit int) ([]models.Question, error) {
	opts := listNewestFirst("created_at")
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.col.Find(ctx, bson.M{"repo_full_name": repoID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Question
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
