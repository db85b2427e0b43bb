// internal/domain/models/timetable.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Weekdays in the form stored on timetable slots.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// TimetableSlot is one recurring weekly teaching slot.
type TimetableSlot struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	SubjectID   primitive.ObjectID `bson:"subject_id" json:"subject_id"`
	TeacherID   primitive.ObjectID `bson:"teacher_id" json:"teacher_id"`
	Day         string             `bson:"day" json:"day"`
	Period      int                `bson:"period" json:"period"`
	SessionType SessionType        `bson:"session_type" json:"session_type"`
	Room        string             `bson:"room,omitempty" json:"room,omitempty"`
	Batch       string             `bson:"batch" json:"batch"`
	Division    string             `bson:"division" json:"division"`
}

// ValidWeekday reports whether d is a full English weekday name.
func ValidWeekday(d string) bool { return contains(Weekdays, d) }
