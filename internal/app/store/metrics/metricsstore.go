package metricsstore

import (
	"context"

	"github.com/dalemusser/attendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of totals shown on the admin dashboard.
type Counts struct {
	Programs       int64 `json:"programs"`
	ActiveStudents int64 `json:"active_students"`
	ActiveTeachers int64 `json:"active_teachers"`
	Subjects       int64 `json:"subjects"`
	PendingLeaves  int64 `json:"pending_leaves"`
}

// FetchDashboardCounts returns the high-level counts used by dashboards.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchDashboardCounts(ctx context.Context, db *mongo.Database) Counts {
	var out Counts

	count := func(coll string, filter bson.M, dst *int64) {
		if n, err := db.Collection(coll).CountDocuments(ctx, filter); err == nil {
			*dst = n
		}
	}

	count("programs", bson.M{}, &out.Programs)
	count("students", bson.M{"status": models.StatusActive}, &out.ActiveStudents)
	count("teachers", bson.M{"status": models.StatusActive}, &out.ActiveTeachers)
	count("subjects", bson.M{}, &out.Subjects)
	count("leave_requests", bson.M{"status": models.LeavePending}, &out.PendingLeaves)

	return out
}
