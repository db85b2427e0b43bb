// internal/domain/models/teacher.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Teacher types.
const (
	TeacherMajor     = "Major"
	TeacherMinor     = "Minor"
	TeacherAssistant = "Assistant"
)

// Teacher is a member of faculty. UserID links the teacher to the
// account they sign in with.
type Teacher struct {
	ID          primitive.ObjectID  `bson:"_id" json:"id"`
	UserID      *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Name        string              `bson:"name" json:"name"`
	NameCI      string              `bson:"name_ci" json:"-"`
	TeacherType string              `bson:"teacher_type" json:"teacher_type"`
	Contact     string              `bson:"contact,omitempty" json:"contact,omitempty"`
	Status      string              `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Active reports whether the teacher may record attendance.
func (t Teacher) Active() bool { return t.Status == StatusActive }
