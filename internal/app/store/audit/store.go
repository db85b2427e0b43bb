// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth       = "auth"
	CategoryAdmin      = "admin"
	CategoryAttendance = "attendance"
)

// Auth event types
const (
	EventLoginSuccess             = "login_success"
	EventLoginFailedUserNotFound  = "login_failed_user_not_found"
	EventLoginFailedWrongPassword = "login_failed_wrong_password"
	EventLoginFailedUserDisabled  = "login_failed_user_disabled"
	EventAccountLocked            = "account_locked"
	EventLogout                   = "logout"
)

// Admin event types
const (
	EventUserCreated        = "user_created"
	EventProgramCreated     = "program_created"
	EventStudentCreated     = "student_created"
	EventStudentDeactivated = "student_deactivated"
	EventTeacherCreated     = "teacher_created"
	EventTeacherDeactivated = "teacher_deactivated"
	EventSubjectCreated     = "subject_created"
	EventSubjectAssigned    = "subject_assigned"
	EventTimetableSlotAdded = "timetable_slot_added"
	EventSettingChanged     = "setting_changed"
)

// Attendance event types
const (
	EventSessionRecorded = "session_recorded"
	EventSessionLocked   = "session_locked"
	EventSessionUnlocked = "session_unlocked"
	EventLeaveApplied    = "leave_applied"
	EventLeaveApproved   = "leave_approved"
	EventLeaveRejected   = "leave_rejected"
)

// Event represents an audit event.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`

	Category  string `bson:"category" json:"category"`
	EventType string `bson:"event_type" json:"event_type"`

	UserID  *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`   // affected user
	ActorID *primitive.ObjectID `bson:"actor_id,omitempty" json:"actor_id,omitempty"` // who performed the action

	IP        string `bson:"ip" json:"ip"`
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`

	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	UserID    *primitive.ObjectID
	ActorID   *primitive.ObjectID
	Category  string
	EventType string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
	Offset    int64
}

func (f QueryFilter) toBSON() bson.M {
	q := bson.M{}
	if f.UserID != nil {
		q["user_id"] = *f.UserID
	}
	if f.ActorID != nil {
		q["actor_id"] = *f.ActorID
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.EventType != "" {
		q["event_type"] = f.EventType
	}
	if f.StartTime != nil || f.EndTime != nil {
		tq := bson.M{}
		if f.StartTime != nil {
			tq["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			tq["$lte"] = *f.EndTime
		}
		q["timestamp"] = tq
	}
	return q
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query retrieves audit events matching filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cur, err := s.c.Find(ctx, filter.toBSON(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByFilter returns the count of events matching filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.toBSON())
}

// GetByUser retrieves recent audit events for a specific user.
func (s *Store) GetByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{UserID: &userID, Limit: limit})
}

// GetRecent retrieves the most recent audit events.
func (s *Store) GetRecent(ctx context.Context, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{Limit: limit})
}
