// internal/domain/models/leave.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Leave request statuses. A request moves from pending to approved or
// rejected exactly once.
const (
	LeavePending  = "pending"
	LeaveApproved = "approved"
	LeaveRejected = "rejected"
)

// ValidLeaveStatus reports whether s is a leave request status.
func ValidLeaveStatus(s string) bool {
	return s == LeavePending || s == LeaveApproved || s == LeaveRejected
}

// LeaveTypes lists the accepted leave types.
var LeaveTypes = []string{"Medical", "Personal", "OnDuty"}

// ValidLeaveType reports whether t is one of LeaveTypes.
func ValidLeaveType(t string) bool { return contains(LeaveTypes, t) }

// LeaveRequest is a student's request to be excused for an inclusive
// date range. FromDate and ToDate use DateLayout.
type LeaveRequest struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	RefCode   string             `bson:"ref_code" json:"ref_code"`
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`
	FromDate  string             `bson:"from_date" json:"from_date"`
	ToDate    string             `bson:"to_date" json:"to_date"`
	LeaveType string             `bson:"leave_type" json:"leave_type"`
	Reason    string             `bson:"reason,omitempty" json:"reason,omitempty"`
	Status    string             `bson:"status" json:"status"`

	AppliedBy primitive.ObjectID  `bson:"applied_by" json:"applied_by"`
	DecidedBy *primitive.ObjectID `bson:"decided_by,omitempty" json:"decided_by,omitempty"`
	DecidedAt *time.Time          `bson:"decided_at,omitempty" json:"decided_at,omitempty"`

	// ReconciledCount is the number of attendance records rewritten to OD
	// when the leave was approved.
	ReconciledCount int `bson:"reconciled_count,omitempty" json:"reconciled_count,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
