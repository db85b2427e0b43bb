package attendancestore

import (
	"context"
	"time"

	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/authz"
	"github.com/dalemusser/attendhub/internal/app/system/dates"
	"github.com/dalemusser/attendhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/attendhub/internal/app/system/normalize"
	"github.com/dalemusser/attendhub/internal/app/system/txn"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Entry is one student's outcome in a submitted session.
type Entry struct {
	StudentID primitive.ObjectID      `json:"student_id"`
	Status    models.AttendanceStatus `json:"status"`
	Remarks   string                  `json:"remarks,omitempty"`
}

// Session is a whole-session submission. Batch and Division are optional;
// when set, every entry's student must belong to them.
type Session struct {
	SubjectID   primitive.ObjectID
	TeacherID   primitive.ObjectID
	Date        string
	SessionType models.SessionType
	Period      int
	Batch       string
	Division    string
	Entries     []Entry
}

// Key returns the session key after normalization.
func (in Session) Key() models.SessionKey {
	return models.SessionKey{SubjectID: in.SubjectID, Date: in.Date, SessionType: in.SessionType, Period: in.Period}
}

// validateShape checks everything that needs no database access and
// normalizes in place.
func (s *Store) validateShape(in *Session) error {
	d, err := dates.Parse("date", in.Date)
	if err != nil {
		return err
	}
	in.Date = d

	if !in.SessionType.Valid() {
		return apperr.Invalid("session_type", "must be FN, AN or Period")
	}
	switch {
	case in.SessionType == models.SessionPeriod && in.Period < 1:
		return apperr.Invalid("period", "must be at least 1 for period sessions")
	case in.SessionType != models.SessionPeriod && in.Period != 0:
		return apperr.Invalid("period", "must be omitted for FN and AN sessions")
	}

	if len(in.Entries) == 0 {
		return apperr.Invalid("entries", "at least one entry is required")
	}
	seen := make(map[primitive.ObjectID]struct{}, len(in.Entries))
	for i := range in.Entries {
		e := &in.Entries[i]
		if e.StudentID.IsZero() {
			return apperr.Invalid("entries.student_id", "is required")
		}
		if _, dup := seen[e.StudentID]; dup {
			return apperr.Invalid("entries.student_id", "student "+e.StudentID.Hex()+" appears more than once")
		}
		seen[e.StudentID] = struct{}{}
		if !s.accepts(e.Status) {
			return apperr.Invalid("entries.status", "status "+string(e.Status)+" is not accepted")
		}
		e.Remarks = htmlsanitize.PlainText(e.Remarks)
	}
	in.Batch = normalize.Label(in.Batch)
	in.Division = normalize.Label(in.Division)
	return nil
}

// authorize enforces who may record for teacher tc. For a teacher it
// returns the classes they teach the subject to; entries must fall in one
// of them. Admins get nil and are not restricted.
func (s *Store) authorize(ctx context.Context, actor authz.Actor, tc *models.Teacher, in Session) ([]models.TeacherSubject, error) {
	switch {
	case actor.IsAdmin():
		return nil, nil
	case actor.IsTeacher():
		if tc.UserID == nil || *tc.UserID != actor.ID {
			return nil, apperr.Forbidden("teachers may only record their own sessions")
		}
		ok, err := s.roster.IsAssigned(ctx, tc.ID, in.SubjectID, in.Batch, in.Division)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.Forbidden("teacher is not assigned to this subject")
		}
		all, err := s.roster.AssignmentsForTeacher(ctx, tc.ID)
		if err != nil {
			return nil, err
		}
		var classes []models.TeacherSubject
		for _, a := range all {
			if a.SubjectID == in.SubjectID {
				classes = append(classes, a)
			}
		}
		return classes, nil
	default:
		return nil, apperr.Forbidden("only teachers and admins record attendance")
	}
}

func inClass(st models.Student, classes []models.TeacherSubject) bool {
	for _, c := range classes {
		if st.Batch == c.Batch && st.Division == c.Division {
			return true
		}
	}
	return false
}

// checkRoster verifies every entry's student is active and enrolled in the
// subject's program and semester (and the batch/division when given). A
// non-nil classes also limits students to those classes.
func (s *Store) checkRoster(ctx context.Context, sub *models.Subject, in Session, classes []models.TeacherSubject) error {
	ids := make([]primitive.ObjectID, len(in.Entries))
	for i, e := range in.Entries {
		ids[i] = e.StudentID
	}
	students, err := s.roster.GetStudents(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		st, ok := students[id]
		if !ok {
			return apperr.NotFound("student", id.Hex())
		}
		switch {
		case !st.Active():
			return apperr.Invalid("entries.student_id", "student "+st.RollNumber+" is inactive")
		case st.ProgramID != sub.ProgramID || st.Semester != sub.Semester:
			return apperr.Invalid("entries.student_id", "student "+st.RollNumber+" is not enrolled in "+sub.Code)
		case in.Batch != "" && st.Batch != in.Batch:
			return apperr.Invalid("entries.student_id", "student "+st.RollNumber+" is not in batch "+in.Batch)
		case in.Division != "" && st.Division != in.Division:
			return apperr.Invalid("entries.student_id", "student "+st.RollNumber+" is not in division "+in.Division)
		case classes != nil && !inClass(st, classes):
			return apperr.Forbidden("teacher does not teach " + sub.Code + " to student " + st.RollNumber + "'s class")
		}
	}
	return nil
}

// ensureUnlocked returns a LockedSessionError when any record under k is locked.
func (s *Store) ensureUnlocked(ctx context.Context, k models.SessionKey) error {
	f := keyFilter(k)
	f["is_locked"] = true
	n, err := s.c.CountDocuments(ctx, f, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n > 0 {
		return &apperr.LockedSessionError{
			SubjectID:   k.SubjectID.Hex(),
			Date:        k.Date,
			SessionType: string(k.SessionType),
			Period:      k.Period,
		}
	}
	return nil
}

// RecordSession replaces the records of one session with in.Entries and
// returns the number of records written. Resubmitting the same entries is
// a no-op apart from marked_at; students missing from a resubmission lose
// their record for the session. A locked session is left untouched.
func (s *Store) RecordSession(ctx context.Context, actor authz.Actor, in Session) (int, error) {
	if err := s.validateShape(&in); err != nil {
		return 0, err
	}

	sub, err := s.roster.GetSubject(ctx, in.SubjectID)
	if err != nil {
		return 0, err
	}
	tc, err := s.roster.GetTeacher(ctx, in.TeacherID)
	if err != nil {
		return 0, err
	}
	if !tc.Active() {
		return 0, apperr.Invalid("teacher_id", "teacher is inactive")
	}
	classes, err := s.authorize(ctx, actor, tc, in)
	if err != nil {
		return 0, err
	}
	if err := s.checkRoster(ctx, sub, in, classes); err != nil {
		return 0, err
	}

	key := in.Key()
	now := time.Now().UTC()

	writes := make([]mongo.WriteModel, 0, len(in.Entries))
	keep := make([]primitive.ObjectID, 0, len(in.Entries))
	for _, e := range in.Entries {
		f := keyFilter(key)
		f["student_id"] = e.StudentID
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(f).
			SetUpdate(bson.M{
				"$set": bson.M{
					"teacher_id": in.TeacherID,
					"status":     e.Status,
					"remarks":    e.Remarks,
					"marked_at":  now,
				},
				"$setOnInsert": bson.M{
					"_id":       primitive.NewObjectID(),
					"is_locked": false,
				},
			}).
			SetUpsert(true))
		keep = append(keep, e.StudentID)
	}

	var removed int64
	err = txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		if err := s.ensureUnlocked(ctx, key); err != nil {
			return err
		}
		if _, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true)); err != nil {
			return err
		}
		stale := keyFilter(key)
		stale["student_id"] = bson.M{"$nin": keep}
		res, err := s.c.DeleteMany(ctx, stale)
		if err != nil {
			return err
		}
		removed = res.DeletedCount
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("attendance session recorded",
		zap.String("subject_id", key.SubjectID.Hex()),
		zap.String("date", key.Date),
		zap.String("session_type", string(key.SessionType)),
		zap.Int("period", key.Period),
		zap.Int("written", len(writes)),
		zap.Int64("removed", removed))
	return len(writes), nil
}
