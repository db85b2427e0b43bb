// internal/app/store/settings/settingsstore.go
package settingsstore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/dalemusser/attendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrBadThreshold is returned when a threshold is not a number in [0, 100].
var ErrBadThreshold = errors.New("defaulter threshold must be a number between 0 and 100")

// Store provides access to the settings collection, one document per key.
type Store struct {
	c *mongo.Collection
}

// New creates a new settings store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("settings")}
}

// Get returns the setting for key. ok is false when it was never set.
func (s *Store) Get(ctx context.Context, key string) (models.Setting, bool, error) {
	var st models.Setting
	err := s.c.FindOne(ctx, bson.M{"key": key}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Setting{}, false, nil
	}
	if err != nil {
		return models.Setting{}, false, err
	}
	return st, true, nil
}

// Set upserts key to value.
func (s *Store) Set(ctx context.Context, key, value string, by *primitive.ObjectID) error {
	set := bson.M{
		"key":        key,
		"value":      value,
		"updated_at": time.Now().UTC(),
	}
	if by != nil {
		set["updated_by"] = *by
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"key": key},
		bson.M{"$set": set, "$setOnInsert": bson.M{"_id": primitive.NewObjectID()}},
		options.Update().SetUpsert(true),
	)
	return err
}

// All returns every stored setting ordered by key.
func (s *Store) All(ctx context.Context) ([]models.Setting, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "key", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Setting{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseThreshold validates a threshold string.
func ParseThreshold(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 100 {
		return 0, ErrBadThreshold
	}
	return f, nil
}

// DefaulterThreshold returns the stored threshold, or fallback when none is
// stored or the stored value is unusable.
func (s *Store) DefaulterThreshold(ctx context.Context, fallback float64) (float64, error) {
	st, ok, err := s.Get(ctx, models.SettingDefaulterThreshold)
	if err != nil {
		return fallback, err
	}
	if !ok {
		return fallback, nil
	}
	f, err := ParseThreshold(st.Value)
	if err != nil {
		return fallback, nil
	}
	return f, nil
}

// SetDefaulterThreshold validates and stores the threshold.
func (s *Store) SetDefaulterThreshold(ctx context.Context, v float64, by *primitive.ObjectID) error {
	if v < 0 || v > 100 {
		return ErrBadThreshold
	}
	return s.Set(ctx, models.SettingDefaulterThreshold, strconv.FormatFloat(v, 'f', -1, 64), by)
}
