// internal/app/store/snapshots/snapshotstore.go
package snapshotstore

import (
	"context"
	"time"

	"github.com/dalemusser/attendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store holds periodic defaulter snapshots.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("defaulter_snapshots")}
}

// Save inserts snap, filling ID and TakenAt when zero.
func (s *Store) Save(ctx context.Context, snap models.DefaulterSnapshot) (models.DefaulterSnapshot, error) {
	if snap.ID.IsZero() {
		snap.ID = primitive.NewObjectID()
	}
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now().UTC()
	}
	if snap.StudentIDs == nil {
		snap.StudentIDs = []primitive.ObjectID{}
	}
	snap.Count = len(snap.StudentIDs)
	if _, err := s.c.InsertOne(ctx, snap); err != nil {
		return models.DefaulterSnapshot{}, err
	}
	return snap, nil
}

// Recent returns up to limit snapshots, newest first.
func (s *Store) Recent(ctx context.Context, limit int64) ([]models.DefaulterSnapshot, error) {
	if limit <= 0 {
		limit = 30
	}
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "taken_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.DefaulterSnapshot{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
