// internal/domain/models/student.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roster status values shared by students and teachers.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Student is an enrolled student.
//
// NOTE:
//   - RollNumber is unique and never changes once assigned.
//   - Students are soft-deleted by setting Status to "inactive".
//   - Batch, Division and Semester scope which sessions a student may
//     appear in.
type Student struct {
	ID         primitive.ObjectID  `bson:"_id" json:"id"`
	UserID     *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	RollNumber string              `bson:"roll_number" json:"roll_number"`
	Name       string              `bson:"name" json:"name"`
	NameCI     string              `bson:"name_ci" json:"-"`
	ProgramID  primitive.ObjectID  `bson:"program_id" json:"program_id"`
	Batch      string              `bson:"batch" json:"batch"`
	Division   string              `bson:"division" json:"division"`
	Semester   int                 `bson:"semester" json:"semester"`
	Status     string              `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Active reports whether the student is currently enrolled.
func (s Student) Active() bool { return s.Status == StatusActive }
