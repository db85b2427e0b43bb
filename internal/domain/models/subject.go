// internal/domain/models/subject.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubjectTypes lists the accepted subject classifications.
var SubjectTypes = []string{"Major", "Minor", "AEC", "VAC", "MDC", "SEC", "Lab"}

// ClassTypes lists the accepted delivery modes.
var ClassTypes = []string{"Theory", "Lab"}

// Subject is a course taught in one semester of one program.
// Subjects are immutable once created.
type Subject struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Code        string             `bson:"code" json:"code"`
	Name        string             `bson:"name" json:"name"`
	Credits     int                `bson:"credits" json:"credits"`
	SubjectType string             `bson:"subject_type" json:"subject_type"`
	ClassType   string             `bson:"class_type" json:"class_type"`
	ProgramID   primitive.ObjectID `bson:"program_id" json:"program_id"`
	Semester    int                `bson:"semester" json:"semester"`
}

// ValidSubjectType reports whether t is one of SubjectTypes.
func ValidSubjectType(t string) bool { return contains(SubjectTypes, t) }

// ValidClassType reports whether t is one of ClassTypes.
func ValidClassType(t string) bool { return contains(ClassTypes, t) }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
