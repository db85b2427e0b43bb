// internal/domain/models/teachersubject.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TeacherSubject assigns a teacher to teach a subject to one batch/division
// in a semester. A subject may have several teachers for the same batch; the
// tuple (teacher, subject, batch, division, semester) is unique.
type TeacherSubject struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	TeacherID    primitive.ObjectID `bson:"teacher_id" json:"teacher_id"`
	SubjectID    primitive.ObjectID `bson:"subject_id" json:"subject_id"`
	Batch        string             `bson:"batch" json:"batch"`
	Division     string             `bson:"division" json:"division"`
	Semester     int                `bson:"semester" json:"semester"`
	AcademicYear string             `bson:"academic_year,omitempty" json:"academic_year,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}
