package repository

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gittldr/server/internal/models"
)

// FixMongo provides Mongo-backed persistence for issue auto-fix jobs.
type FixMongo struct {
	col *mongo.Collection
}

// NewFixRepository returns a FixMongo that operates on the "fix_jobs"
// collection.
func NewFixRepository(db *mongo.Database) *FixMongo {
	return &FixMongo{
		col: db.Collection("fix_jobs"),
	}
}

// Insert stores a freshly started job.
func (r *FixMongo) Insert(ctx context.Context, fix models.IssueFix) error {
	_, err := r.col.InsertOne(ctx, fix)
	return err
}

// FindByID fetches a job by its id.
func (r *FixMongo) FindByID(ctx context.Context, id string) (models.IssueFix, error) {
	var fix models.IssueFix
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&fix)
	if err == mongo.ErrNoDocuments {
		return models.IssueFix{}, models.ErrFixNotFound
	}
	return fix, err
}

// ListByRepo returns the fix jobs for one repository, newest first.
func (r *FixMongo) ListByRepo(ctx context.Context, repoID string) ([]models.IssueFix, error) {
	cur, err := r.col.Find(ctx, bson.M{"repo_full_name": repoID}, listNewestFirst("created_at"))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.IssueFix
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateResult mirrors a backend status transition into the job document.
func (r *FixMongo) UpdateResult(ctx context.Context, id, status, patch, explanation, errMsg string) error {
	log.Printf("[Fix Repository] Updating job %s -> %s", id, status)

	update := bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}
	if patch != "" {
		update["patch"] = patch
	}
	if explanation != "" {
		update["explanation"] = explanation
	}
	if errMsg != "" {
		update["error"] = errMsg
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		log.Printf("[Fix Repository] Error updating job %s: %v", id, err)
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrFixNotFound
	}
	return nil
}
