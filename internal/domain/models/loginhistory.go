// internal/domain/models/loginhistory.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginRecord captures one signed-in session. SessionID ties the login to
// the matching logout; LogoutAt stays nil until the user signs out.
type LoginRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	SessionID string             `bson:"session_id" json:"session_id"`
	IP        string             `bson:"ip" json:"ip"`
	UserAgent string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	LoginAt   time.Time          `bson:"login_at" json:"login_at"`
	LogoutAt  *time.Time         `bson:"logout_at,omitempty" json:"logout_at,omitempty"`
}
