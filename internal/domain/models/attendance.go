// internal/domain/models/attendance.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AttendanceStatus is the outcome recorded for one student in one session.
type AttendanceStatus string

// Known statuses. Which of these a deployment accepts is configuration;
// see AttendedStatuses for the ones that count as attended.
const (
	StatusPresent   AttendanceStatus = "Present"
	StatusAbsent    AttendanceStatus = "Absent"
	StatusLate      AttendanceStatus = "Late"
	StatusOD        AttendanceStatus = "OD"
	StatusEarlyExit AttendanceStatus = "EarlyExit"
	StatusML        AttendanceStatus = "ML"
	StatusEL        AttendanceStatus = "EL"
)

// KnownStatuses lists every status the system understands.
var KnownStatuses = []AttendanceStatus{
	StatusPresent, StatusAbsent, StatusLate, StatusOD, StatusEarlyExit, StatusML, StatusEL,
}

// DefaultStatuses is the accepted set when none is configured.
var DefaultStatuses = []AttendanceStatus{StatusPresent, StatusAbsent, StatusLate, StatusOD}

// AttendedStatuses count toward the attendance numerator. The set is fixed;
// configuring extra statuses never widens it.
var AttendedStatuses = []AttendanceStatus{StatusPresent, StatusLate, StatusOD}

// Known reports whether s is one of KnownStatuses.
func (s AttendanceStatus) Known() bool {
	for _, k := range KnownStatuses {
		if s == k {
			return true
		}
	}
	return false
}

// Attended reports whether s counts toward the numerator.
func (s AttendanceStatus) Attended() bool {
	for _, k := range AttendedStatuses {
		if s == k {
			return true
		}
	}
	return false
}

// SessionType selects half-day or period-wise granularity.
type SessionType string

const (
	SessionFN     SessionType = "FN"
	SessionAN     SessionType = "AN"
	SessionPeriod SessionType = "Period"
)

// Valid reports whether t is FN, AN or Period.
func (t SessionType) Valid() bool {
	return t == SessionFN || t == SessionAN || t == SessionPeriod
}

// DateLayout is the calendar-date format used for attendance and leave dates.
// Dates are stored as strings in this layout so they sort and compare
// lexically.
const DateLayout = "2006-01-02"

// SessionKey identifies one taught session. Period is 0 for FN/AN sessions.
type SessionKey struct {
	SubjectID   primitive.ObjectID `bson:"subject_id" json:"subject_id"`
	Date        string             `bson:"date" json:"date"`
	SessionType SessionType        `bson:"session_type" json:"session_type"`
	Period      int                `bson:"period" json:"period"`
}

// AttendanceRecord is one student's outcome for one session.
// (student_id, subject_id, date, session_type, period) is unique.
type AttendanceRecord struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	StudentID   primitive.ObjectID `bson:"student_id" json:"student_id"`
	SubjectID   primitive.ObjectID `bson:"subject_id" json:"subject_id"`
	TeacherID   primitive.ObjectID `bson:"teacher_id" json:"teacher_id"`
	Date        string             `bson:"date" json:"date"`
	SessionType SessionType        `bson:"session_type" json:"session_type"`
	Period      int                `bson:"period" json:"period"`
	Status      AttendanceStatus   `bson:"status" json:"status"`
	Remarks     string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
	MarkedAt    time.Time          `bson:"marked_at" json:"marked_at"`

	IsLocked bool                `bson:"is_locked" json:"is_locked"`
	LockedAt *time.Time          `bson:"locked_at,omitempty" json:"locked_at,omitempty"`
	LockedBy *primitive.ObjectID `bson:"locked_by,omitempty" json:"locked_by,omitempty"`
}

// Key returns the session the record belongs to.
func (r AttendanceRecord) Key() SessionKey {
	return SessionKey{SubjectID: r.SubjectID, Date: r.Date, SessionType: r.SessionType, Period: r.Period}
}
