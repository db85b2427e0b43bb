package userstore

import (
	"context"
	"errors"

	"github.com/dalemusser/attendhub/internal/app/system/auth"
	"github.com/dalemusser/attendhub/internal/app/system/normalize"
	"github.com/dalemusser/attendhub/internal/app/system/timeouts"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection("users")}
}

// FetchSessionUser returns (nil, nil) when the id is malformed, the user no
// longer exists, or the account is not active.
func (f *Fetcher) FetchSessionUser(ctx context.Context, userID string) (*auth.SessionUser, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":       1,
		"full_name": 1,
		"login_id":  1,
		"role":      1,
		"status":    1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	if u.Status != models.UserActive {
		return nil, nil
	}

	return &auth.SessionUser{
		ID:      u.ID.Hex(),
		Name:    u.FullName,
		LoginID: u.LoginID,
		Role:    normalize.Role(u.Role),
	}, nil
}
