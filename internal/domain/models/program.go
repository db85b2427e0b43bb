// internal/domain/models/program.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Program types.
const (
	ProgramUG = "UG"
	ProgramPG = "PG"
)

// Program is an academic program (e.g. B.Sc Computer Science).
// Duration is the number of semesters.
type Program struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	NameCI   string             `bson:"name_ci" json:"-"`
	Code     string             `bson:"code" json:"code"` // unique, upper-cased
	Type     string             `bson:"type" json:"type"` // UG | PG
	Duration int                `bson:"duration" json:"duration"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
