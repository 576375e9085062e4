package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gittldr/server/internal/models"
)

// CreditMongo provides Mongo-backed persistence for the credit ledger.
// The balance is never stored; it is the sum of the ledger.
type CreditMongo struct {
	col *mongo.Collection
}

// NewCreditRepository returns a CreditMongo that operates on the
// "credit_ledger" collection.
func NewCreditRepository(db *mongo.Database) *CreditMongo {
	return &CreditMongo{
		col: db.Collection("credit_ledger"),
	}
}

// Append records one ledger entry.
func (r *CreditMongo) Append(ctx context.Context, e models.CreditEntry) error {
	_, err := r.col.InsertOne(ctx, e)
	return err
}

// Balance sums the ledger.
func (r *CreditMongo) Balance(ctx context.Context) (int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.M{"$sum": "$amount"}},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var out []struct {
		Total int `bson:"total"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		// Empty ledger, empty workspace.
		return 0, nil
	}
	return out[0].Total, nil
}

// Recent returns the latest ledger entries.
func (r *CreditMongo) Recent(ctx context.Context, limit int) ([]models.CreditEntry, error) {
	opts := listNewestFirst("created_at")
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.CreditEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
