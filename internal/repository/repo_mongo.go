package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gittldr/server/internal/models"
)

// RepoMongo persists connected repositories and their embedded code chunks.
//
// Expected schema:
//
//	repos
//	  { _id: "owner/name", owner, name, full_name, status, summary, ... }
//
//	repo_chunks
//	  { _id, repo_id: "owner/name", file, text, vector: []float32 }
type RepoMongo struct {
	repoCol   *mongo.Collection
	chunkCol  *mongo.Collection
	vectorIdx string // name of Atlas Vector Search index on repo_chunks
}

// NewRepoRepository wires the collections.
func NewRepoRepository(db *mongo.Database) *RepoMongo {
	return &RepoMongo{
		repoCol:   db.Collection("repos"),
		chunkCol:  db.Collection("repo_chunks"),
		vectorIdx: "chunk_embedding_index",
	}
}

// -------------------------- public API --------------------------------------

// Insert stores a newly connected repository. A duplicate full name maps to
// models.ErrRepoExists.
func (r *RepoMongo) Insert(ctx context.Context, repo models.Repository) error {
	_, err := r.repoCol.InsertOne(ctx, repo)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrRepoExists
	}
	return err
}

// FindByID fetches a repo document by its full name.
func (r *RepoMongo) FindByID(ctx context.Context, id string) (models.Repository, error) {
	var repo models.Repository
	err := r.repoCol.FindOne(ctx, bson.M{"_id": id}).Decode(&repo)
	if err == mongo.ErrNoDocuments {
		return models.Repository{}, models.ErrRepoNotFound
	}
	return repo, err
}

// List returns all connected repositories, newest first.
func (r *RepoMongo) List(ctx context.Context) ([]models.Repository, error) {
	cur, err := r.repoCol.Find(ctx, bson.M{}, listNewestFirst("connected_at"))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var repos []models.Repository
	if err := cur.All(ctx, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// UpdateStatus transitions a repository and optionally records its summary.
func (r *RepoMongo) UpdateStatus(ctx context.Context, id, status, summary string) error {
	update := bson.M{"status": status, "updated_at": time.Now()}
	if summary != "" {
		update["summary"] = summary
	}

	res, err := r.repoCol.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrRepoNotFound
	}
	return nil
}

// Delete removes a repository and all of its chunks.
func (r *RepoMongo) Delete(ctx context.Context, id string) error {
	res, err := r.repoCol.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrRepoNotFound
	}

	_, err = r.chunkCol.DeleteMany(ctx, bson.M{"repo_id": id})
	return err
}

// ChunkVectorSearch grabs the most similar code chunks for a query vector,
// scoped to one repository. The score comes back via $meta.
func (r *RepoMongo) ChunkVectorSearch(ctx context.Context, repoID string, queryVec []float32, k int) ([]models.CodeChunk, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: r.vectorIdx},
			{Key: "queryVector", Value: queryVec},
			{Key: "path", Value: "vector"},
			{Key: "numCandidates", Value: k * 10},
			{Key: "limit", Value: k},
			{Key: "filter", Value: bson.M{"repo_id": repoID}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "repo_id", Value: 1},
			{Key: "file", Value: 1},
			{Key: "text", Value: 1},
			{Key: "score", Value: bson.M{"$meta": "vectorSearchScore"}},
		}}},
	}

	cur, err := r.chunkCol.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var chunks []models.CodeChunk
	if err := cur.All(ctx, &chunks); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks found for repo %s", repoID)
	}
	return chunks, nil
}
