// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/attendhub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the app's collections and attaches JSON-Schema
// validators where defined. Servers without collMod support (some DocumentDB
// versions) keep their collections unvalidated; that is logged, not fatal.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	existing, err := collectionSet(ctx, db)
	if err != nil {
		return err
	}

	schemas := []struct {
		coll   string
		schema bson.M
	}{
		{"users", usersSchema()},
		{"students", studentsSchema()},
		{"attendance_records", attendanceSchema()},
		{"leave_requests", leavesSchema()},
		// Plain collections still have to exist before a transaction
		// first writes to them.
		{"programs", nil},
		{"teachers", nil},
		{"subjects", nil},
		{"teacher_subjects", nil},
		{"timetable_slots", nil},
		{"login_records", nil},
		{"settings", nil},
		{"defaulter_snapshots", nil},
		{"audit_events", nil},
	}

	var problems []string
	for _, s := range schemas {
		if !existing[s.coll] {
			if err := db.CreateCollection(ctx, s.coll); err != nil && !commandErrorIs(err, []int32{48}, "already exists", "namespace exists") {
				problems = append(problems, s.coll+": "+err.Error())
				continue
			}
			zap.L().Info("created collection", zap.String("collection", s.coll))
		}
		if s.schema == nil {
			continue
		}
		if err := setValidator(ctx, db, s.coll, s.schema); err != nil {
			if commandErrorIs(err, []int32{59, 115}, "no such command", "not implemented", "not supported") {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", s.coll))
				continue
			}
			problems = append(problems, s.coll+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// collectionSet returns the names of the collections already in db.
func collectionSet(ctx context.Context, db *mongo.Database) (map[string]bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set, nil
}

// setValidator attaches validator to coll. Moderate level leaves documents
// written before the validator existed alone until they are next updated.
func setValidator(ctx context.Context, db *mongo.Database, coll string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: coll},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", coll))
	return nil
}

// commandErrorIs reports whether err is a server command error with one of
// codes, or whose message contains one of phrases.
func commandErrorIs(err error, codes []int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		for _, c := range codes {
			if ce.Code == c {
				return true
			}
		}
	}
	msg := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"login_id", "login_id_ci", "password_hash", "role", "status"},
			"properties": bson.M{
				"login_id":      nonBlank,
				"login_id_ci":   nonBlank,
				"password_hash": nonBlank,
				"role":          bson.M{"enum": bson.A{models.RoleAdmin, models.RoleTeacher, models.RoleStudent}},
				"status":        bson.M{"enum": bson.A{models.UserActive, models.UserDisabled, models.UserLocked}},
			},
		},
	}
}

func studentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"roll_number", "name", "program_id", "semester", "status"},
			"properties": bson.M{
				"roll_number": nonBlank,
				"name":        nonBlank,
				"program_id":  bson.M{"bsonType": "objectId"},
				"semester":    bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
				"status":      bson.M{"enum": bson.A{models.StatusActive, models.StatusInactive}},
			},
		},
	}
}

func attendanceSchema() bson.M {
	statuses := bson.A{}
	for _, s := range models.KnownStatuses {
		statuses = append(statuses, string(s))
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"student_id", "subject_id", "teacher_id", "date", "session_type", "period", "status", "is_locked"},
			"properties": bson.M{
				"student_id":   bson.M{"bsonType": "objectId"},
				"subject_id":   bson.M{"bsonType": "objectId"},
				"teacher_id":   bson.M{"bsonType": "objectId"},
				"date":         bson.M{"bsonType": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
				"session_type": bson.M{"enum": bson.A{string(models.SessionFN), string(models.SessionAN), string(models.SessionPeriod)}},
				"period":       bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"status":       bson.M{"enum": statuses},
				"is_locked":    bson.M{"bsonType": "bool"},
			},
		},
	}
}

func leavesSchema() bson.M {
	types := bson.A{}
	for _, t := range models.LeaveTypes {
		types = append(types, t)
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"student_id", "from_date", "to_date", "leave_type", "status"},
			"properties": bson.M{
				"student_id": bson.M{"bsonType": "objectId"},
				"from_date":  bson.M{"bsonType": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
				"to_date":    bson.M{"bsonType": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
				"leave_type": bson.M{"enum": types},
				"status":     bson.M{"enum": bson.A{models.LeavePending, models.LeaveApproved, models.LeaveRejected}},
			},
		},
	}
}
