// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	steps := []struct {
		coll string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"users", ensureUsers},
		{"programs", ensurePrograms},
		{"students", ensureStudents},
		{"teachers", ensureTeachers},
		{"subjects", ensureSubjects},
		{"teacher_subjects", ensureTeacherSubjects},
		{"timetable_slots", ensureTimetable},
		{"attendance_records", ensureAttendance},
		{"leave_requests", ensureLeaves},
		{"login_records", ensureLoginRecords},
		{"settings", ensureSettings},
		{"audit_events", ensureAuditEvents},
		{"defaulter_snapshots", ensureSnapshots},
	}

	var problems []string
	for _, s := range steps {
		if err := s.fn(ctx, db); err != nil {
			problems = append(problems, s.coll+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(b *bool) bool { return b != nil && *b }

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet makes the collection carry each desired index. An index
// with the same key pattern is reused when its uniqueness matches and its
// name matches (or no name is requested); otherwise it is dropped and
// recreated.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, desired []mongo.IndexModel) error {
	existing, err := listIndexes(ctx, coll)
	if err != nil {
		// A collection that does not exist yet has no indexes to reconcile.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range desired {
		var name string
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if isUnique(ex.Unique) == isUnique(unique) && (name == "" || ex.Name == name) {
				zap.L().Debug("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", sig))
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
			zap.L().Info("dropped index for recreation",
				zap.String("collection", coll.Name()),
				zap.String("from", ex.Name),
				zap.String("to", name))
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && isUnique(unique) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present on %s)", coll.Name(), name, sig))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", isUnique(unique)),
			zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Per-collection index sets                                                  */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "login_id_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_login_id_ci"),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}, {Key: "full_name_ci", Value: 1}},
			Options: options.Index().SetName("idx_users_role_status_fullnameci"),
		},
	})
}

func ensurePrograms(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("programs"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_programs_code"),
		},
	})
}

func ensureStudents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("students"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "roll_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_students_roll_number"),
		},
		{
			// roster lookups: program/semester/batch/division among active students
			Keys: bson.D{
				{Key: "program_id", Value: 1},
				{Key: "semester", Value: 1},
				{Key: "batch", Value: 1},
				{Key: "division", Value: 1},
				{Key: "status", Value: 1},
			},
			Options: options.Index().SetName("idx_students_program_sem_batch_div_status"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_students_user"),
		},
	})
}

func ensureTeachers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("teachers"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_teachers_user"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_teachers_status_nameci"),
		},
	})
}

func ensureSubjects(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("subjects"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_subjects_code"),
		},
		{
			Keys:    bson.D{{Key: "program_id", Value: 1}, {Key: "semester", Value: 1}},
			Options: options.Index().SetName("idx_subjects_program_sem"),
		},
	})
}

func ensureTeacherSubjects(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("teacher_subjects"), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "teacher_id", Value: 1},
				{Key: "subject_id", Value: 1},
				{Key: "batch", Value: 1},
				{Key: "division", Value: 1},
				{Key: "semester", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_ts_teacher_subject_batch_div_sem"),
		},
		{
			Keys:    bson.D{{Key: "subject_id", Value: 1}},
			Options: options.Index().SetName("idx_ts_subject"),
		},
	})
}

func ensureTimetable(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("timetable_slots"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "teacher_id", Value: 1}, {Key: "day", Value: 1}, {Key: "period", Value: 1}},
			Options: options.Index().SetName("idx_timetable_teacher_day_period"),
		},
	})
}

func ensureAttendance(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("attendance_records"), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "student_id", Value: 1},
				{Key: "subject_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "session_type", Value: 1},
				{Key: "period", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_attendance_student_subject_date_session_period"),
		},
		{
			// session key: replace, lock and unlock operate on this
			Keys: bson.D{
				{Key: "subject_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "session_type", Value: 1},
				{Key: "period", Value: 1},
			},
			Options: options.Index().SetName("idx_attendance_session_key"),
		},
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("idx_attendance_student_date"),
		},
		{
			Keys:    bson.D{{Key: "teacher_id", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("idx_attendance_teacher_date"),
		},
		{
			// keyset listing
			Keys:    bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_attendance_date_id"),
		},
	})
}

func ensureLeaves(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("leave_requests"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_leaves_student_status"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_leaves_status_created"),
		},
		{
			Keys:    bson.D{{Key: "ref_code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_leaves_ref_code"),
		},
	})
}

func ensureLoginRecords(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("login_records"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "login_at", Value: -1}},
			Options: options.Index().SetName("idx_logins_user_login_at"),
		},
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetName("idx_logins_session"),
		},
	})
}

func ensureSettings(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("settings"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_settings_key"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_user_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "actor_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_actor_timestamp"),
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_category_type_timestamp"),
		},
	})
}

func ensureSnapshots(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("defaulter_snapshots"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "taken_at", Value: -1}},
			Options: options.Index().SetName("idx_snapshots_taken_at"),
		},
	})
}
