package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gittldr/server/internal/models"
)

// TeamMongo provides Mongo-backed persistence for workspace members.
type TeamMongo struct {
	col *mongo.Collection
}

// NewTeamRepository returns a TeamMongo that operates on the "team_members"
// collection.
func NewTeamRepository(db *mongo.Database) *TeamMongo {
	return &TeamMongo{
		col: db.Collection("team_members"),
	}
}

// Insert adds a member. Inviting the same login twice maps to
// models.ErrMemberExists.
func (r *TeamMongo) Insert(ctx context.Context, m models.TeamMember) error {
	_, err := r.col.InsertOne(ctx, m)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrMemberExists
	}
	return err
}

// List returns all members ordered by invite time.
func (r *TeamMongo) List(ctx context.Context) ([]models.TeamMember, error) {
	cur, err := r.col.Find(ctx, bson.M{}, listNewestFirst("invited_at"))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.TeamMember
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a member by login.
func (r *TeamMongo) Delete(ctx context.Context, login string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": login})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrMemberNotFound
	}
	return nil
}
