// internal/domain/models/settings.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Setting keys.
const (
	SettingDefaulterThreshold = "defaulter_threshold"
)

// Setting is one key/value system setting.
type Setting struct {
	Key       string              `bson:"key" json:"key"`
	Value     string              `bson:"value" json:"value"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updated_at"`
	UpdatedBy *primitive.ObjectID `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
}

// DefaulterSnapshot records the defaulter list at a point in time.
type DefaulterSnapshot struct {
	ID         primitive.ObjectID   `bson:"_id" json:"id"`
	TakenAt    time.Time            `bson:"taken_at" json:"taken_at"`
	Threshold  float64              `bson:"threshold" json:"threshold"`
	Count      int                  `bson:"count" json:"count"`
	StudentIDs []primitive.ObjectID `bson:"student_ids" json:"student_ids"`
}
