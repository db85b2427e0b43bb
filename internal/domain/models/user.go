// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User statuses.
const (
	UserActive   = "active"
	UserDisabled = "disabled"
	UserLocked   = "locked"
)

// User is an account that can sign in. Teachers and students link back to
// their user through Teacher.UserID and Student.UserID.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LoginID      string             `bson:"login_id" json:"login_id"`
	LoginIDCI    string             `bson:"login_id_ci" json:"-"` // folded, unique
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	FullName     string             `bson:"full_name" json:"full_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"-"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"` // admin | teacher | student
	Status       string             `bson:"status" json:"status"`

	LastLoginAt    *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	FailedAttempts int        `bson:"failed_attempts" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
