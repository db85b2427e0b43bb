// internal/app/store/logins/loginstore.go
package loginstore

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("login_records")}
}

// Create inserts rec. A missing SessionID gets a fresh uuid and a zero
// LoginAt is set to now.
func (s *Store) Create(ctx context.Context, rec models.LoginRecord) (models.LoginRecord, error) {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if rec.SessionID == "" {
		rec.SessionID = uuid.NewString()
	}
	if rec.LoginAt.IsZero() {
		rec.LoginAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, rec); err != nil {
		return models.LoginRecord{}, err
	}
	return rec, nil
}

// CreateFrom builds a LoginRecord from the HTTP request and inserts it.
func (s *Store) CreateFrom(ctx context.Context, r *http.Request, userID primitive.ObjectID) (models.LoginRecord, error) {
	return s.Create(ctx, models.LoginRecord{
		UserID:    userID,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	})
}

// MarkLogout stamps logout_at on the open record for sessionID. It reports
// whether a record was updated.
func (s *Store) MarkLogout(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "logout_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"logout_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// RecentForUser returns up to limit records for userID, newest first.
func (s *Store) RecentForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.LoginRecord, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "login_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.LoginRecord{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		return strings.TrimSpace(xr)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
