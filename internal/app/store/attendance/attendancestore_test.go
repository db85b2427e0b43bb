package attendancestore_test

import (
	"testing"

	attendancestore "github.com/dalemusser/attendhub/internal/app/store/attendance"
	rosterstore "github.com/dalemusser/attendhub/internal/app/store/roster"
	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/authz"
	"github.com/dalemusser/attendhub/internal/app/system/indexes"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/attendhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type world struct {
	store   *attendancestore.Store
	fx      *testutil.Fixtures
	subject models.Subject
	teacher models.Teacher
	tcUser  primitive.ObjectID
	s1, s2  models.Student
	admin   authz.Actor
	asTeach authz.Actor
}

func setup(t *testing.T) *world {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	fx := testutil.NewFixtures(t, db)
	prog := fx.CreateProgram(ctx, "BSC")
	sub := fx.CreateSubject(ctx, "CS101", prog.ID, 1)
	tcUser := primitive.NewObjectID()
	tc := fx.CreateTeacher(ctx, "Asha Rao", &tcUser)
	fx.Assign(ctx, tc.ID, sub.ID, "2024", "A", 1)

	w := &world{
		store:   attendancestore.New(db, rosterstore.New(db), attendancestore.Config{PageSize: 2}, zap.NewNop()),
		fx:      fx,
		subject: sub,
		teacher: tc,
		tcUser:  tcUser,
		s1:      fx.CreateStudent(ctx, "R001", prog.ID, 1, "2024", "A"),
		s2:      fx.CreateStudent(ctx, "R002", prog.ID, 1, "2024", "A"),
		admin:   authz.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin},
		asTeach: authz.Actor{ID: tcUser, Role: models.RoleTeacher},
	}
	return w
}

func (w *world) session(date string, entries ...attendancestore.Entry) attendancestore.Session {
	return attendancestore.Session{
		SubjectID:   w.subject.ID,
		TeacherID:   w.teacher.ID,
		Date:        date,
		SessionType: models.SessionFN,
		Entries:     entries,
	}
}

func present(id primitive.ObjectID) attendancestore.Entry {
	return attendancestore.Entry{StudentID: id, Status: models.StatusPresent}
}

func TestRecordSession_Idempotent(t *testing.T) {
	w := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := w.session("2024-07-01", present(w.s1.ID), attendancestore.Entry{StudentID: w.s2.ID, Status: models.StatusAbsent})
	for i := 0; i < 2; i++ {
		n, err := w.store.RecordSession(ctx, w.asTeach, in)
		if err != nil {
			t.Fatalf("RecordSession #%d failed: %v", i+1, err)
		}
		if n != 2 {
			t.Errorf("RecordSession #%d wrote %d, want 2", i+1, n)
		}
	}

	recs, err := w.store.SessionRecords(ctx, in.Key())
	if err != nil {
		t.Fatalf("SessionRecords failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records after resubmission, want 2", len(recs))
	}
	for _, r := range recs {
		if r.TeacherID != w.teacher.ID || r.IsLocked {
			t.Errorf("unexpected record %+v", r)
		}
	}
}

func TestRecordSession_ReplacesMissingStudents(t *testing.T) {
	w := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := w.store.RecordSession(ctx, w.admin, w.session("2024-07-01", present(w.s1.ID), present(w.s2.ID))); err != nil {
		t.Fatalf("first RecordSession failed: %v", err)
	}
	second := w.session("2024-07-01", attendancestore.Entry{StudentID: w.s2.ID, Status: models.StatusLate})
	if _, err := w.store.RecordSession(ctx, w.admin, second); err != nil {
		t.Fatalf("second RecordSession failed: %v", err)
	}

	recs, err := w.store.SessionRecords(ctx, second.Key())
	if err != nil {
		t.Fatalf("SessionRecords failed: %v", err)
	}
	if len(recs) != 1 || recs[0].StudentID != w.s2.ID || recs[0].Status != models.StatusLate {
		t.Errorf("got %+v, want only s2 Late", recs)
	}
}

func TestRecordSession_LockedSessionUnchanged(t *testing.T) {
	w := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := w.session("2024-07-02", present(w.s1.ID))
	if _, err := w.store.RecordSession(ctx, w.asTeach, in); err != nil {
		t.Fatalf("RecordSession failed: %v", err)
	}
	if n, err := w.store.LockSession(ctx, w.asTeach, in.Key()); err != nil || n != 1 {
		t.Fatalf("LockSession = %d, %v; want 1, nil", n, err)
	}

	again := w.session("2024-07-02", attendancestore.Entry{StudentID: w.s1.ID, Status: models.StatusAbsent}, present(w.s2.ID))
	_, err := w.store.RecordSession(ctx, w.admin, again)
	if !apperr.IsLocked(err) {
		t.Fatalf("expected LockedSessionError, got %v", err)
	}

	recs, _ := w.store.SessionRecords(ctx, in.Key())
	if len(recs) != 1 || recs[0].Status != models.StatusPresent || !recs[0].IsLocked {
		t.Errorf("locked session changed: %+v", recs)
	}

	if _, err := w.store.UnlockSession(ctx, w.asTeach, in.Key()); !apperr.IsForbidden(err) {
		t.Errorf("teacher unlock: expected ForbiddenError, got %v", err)
	}
	if _, err := w.store.UnlockSession(ctx, w.admin, in.Key()); err != nil {
		t.Fatalf("UnlockSession failed: %v", err)
	}
	if _, err := w.store.RecordSession(ctx, w.admin, again); err != nil {
		t.Errorf("RecordSession after unlock failed: %v", err)
	}
}

func TestRecordSession_Validation(t *testing.T) {
	w := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		name   string
		mutate func(*attendancestore.Session)
	}{
		{"bad date", func(s *attendancestore.Session) { s.Date = "2024-13-01" }},
		{"bad session type", func(s *attendancestore.Session) { s.SessionType = "Evening" }},
		{"period session without period", func(s *attendancestore.Session) { s.SessionType = models.SessionPeriod }},
		{"FN with period", func(s *attendancestore.Session) { s.Period = 2 }},
		{"no entries", func(s *attendancestore.Session) { s.Entries = nil }},
		{"unaccepted status", func(s *attendancestore.Session) { s.Entries[0].Status = models.StatusML }},
		{"duplicate student", func(s *attendancestore.Session) { s.Entries = append(s.Entries, present(w.s1.ID)) }},
		{"wrong division", func(s *attendancestore.Session) { s.Division = "B" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := w.session("2024-07-03", present(w.s1.ID))
			tt.mutate(&in)
			if _, err := w.store.RecordSession(ctx, w.admin, in); !apperr.IsValidation(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestRecordSession_RosterMembership(t *testing.T) {
	w := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	other := w.fx.CreateProgram(ctx, "BCOM")
	outsider := w.fx.CreateStudent(ctx, "C001", other.ID, 1, "2024", "A")
	if _, err := w.store.RecordSession(ctx, w.admin, w.session("2024-07-04", present(outsider.ID))); !apperr.IsValidation(err) {
		t.Errorf("student from another program: expected ValidationError, got %v", err)
	}

	w.fx.SetStudentStatus(ctx, w.s2.ID, models.StatusInactive)
	if _, err := w.store.RecordSession(ctx, w.admin, w.session("2024-07-04", present(w.s2.ID))); !apperr.IsValidation(err) {
		t.Errorf("inactive student: expected ValidationError, got %v", err)
	}

	if _, err := w.store.RecordSession(ctx, w.admin, w.session("2024-07-04", present(primitive.NewObjectID()))); !apperr.IsNotFound(err) {
		t.Errorf("unknown student: expected NotFoundError, got %v", err)
	}

	in := w.session("2024-07-04", present(w.s1.ID))
	in.SubjectID = primitive.NewObjectID()
	if _, err := w.store.RecordSession(ctx, w.admin, in); !apperr.IsNotFound(err) {
		t.Errorf("unknown subject: expected NotFoundError, got %v", err)
	}
}

func TestRecordSession_ActorRules(t *testing.T) {
	w := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := w.session("2024-07-05", present(w.s1.ID))

	stranger := authz.Actor{ID: primitive.NewObjectID(), Role: models.RoleTeacher}
	if _, err := w.store.RecordSession(ctx, stranger, in); !apperr.IsForbidden(err) {
		t.Errorf("teacher recording as someone else: expected ForbiddenError, got %v", err)
	}

	student := authz.Actor{ID: primitive.NewObjectID(), Role: models.RoleStudent}
	if _, err := w.store.RecordSession(ctx, student, in); !apperr.IsForbidden(err) {
		t.Errorf("student: expected ForbiddenError, got %v", err)
	}

	unassigned := w.fx.CreateSubject(ctx, "CS102", w.subject.ProgramID, 1)
	in.SubjectID = unassigned.ID
	if _, err := w.store.RecordSession(ctx, w.asTeach, in); !apperr.IsForbidden(err) {
		t.Errorf("unassigned subject: expected ForbiddenError, got %v", err)
	}
	if _, err := w.store.RecordSession(ctx, w.admin, in); err != nil {
		t.Errorf("admin may record for any teacher: %v", err)
	}
}

func TestRecordSession_TeacherLimitedToAssignedClass(t *testing.T) {
	w := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	otherDiv := w.fx.CreateStudent(ctx, "R101", w.subject.ProgramID, 1, "2024", "B")

	in := w.session("2024-07-08", present(w.s1.ID), present(otherDiv.ID))
	if _, err := w.store.RecordSession(ctx, w.asTeach, in); !apperr.IsForbidden(err) {
		t.Errorf("student outside the assigned division: expected ForbiddenError, got %v", err)
	}
	if n, err := w.store.RecordSession(ctx, w.asTeach, w.session("2024-07-08", present(w.s1.ID))); err != nil || n != 1 {
		t.Errorf("assigned division = %d, %v; want 1, nil", n, err)
	}
	if _, err := w.store.RecordSession(ctx, w.admin, in); err != nil {
		t.Errorf("admin is not limited to assigned classes: %v", err)
	}
}

func TestSessionRecords_OrderedByStudent(t *testing.T) {
	w := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := w.session("2024-07-09", present(w.s2.ID), present(w.s1.ID))
	if _, err := w.store.RecordSession(ctx, w.admin, in); err != nil {
		t.Fatalf("RecordSession failed: %v", err)
	}
	recs, err := w.store.SessionRecords(ctx, in.Key())
	if err != nil {
		t.Fatalf("SessionRecords failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	first, second := w.s1.ID, w.s2.ID
	if second.Hex() < first.Hex() {
		first, second = second, first
	}
	if recs[0].StudentID != first || recs[1].StudentID != second {
		t.Errorf("records not ordered by student id: %s, %s", recs[0].StudentID.Hex(), recs[1].StudentID.Hex())
	}
}

func TestListRecords_Paging(t *testing.T) {
	w := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, d := range []string{"2024-07-01", "2024-07-02", "2024-07-03"} {
		if _, err := w.store.RecordSession(ctx, w.admin, w.session(d, present(w.s1.ID))); err != nil {
			t.Fatalf("RecordSession %s failed: %v", d, err)
		}
	}

	f := attendancestore.Filter{StudentID: w.s1.ID}
	page, err := w.store.ListRecords(ctx, f, "", 0)
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(page.Records) != 2 || page.Records[0].Date != "2024-07-03" || page.NextCursor == "" {
		t.Fatalf("first page = %+v", page)
	}

	page, err = w.store.ListRecords(ctx, f, page.NextCursor, 0)
	if err != nil {
		t.Fatalf("ListRecords page 2 failed: %v", err)
	}
	if len(page.Records) != 1 || page.Records[0].Date != "2024-07-01" || page.NextCursor != "" {
		t.Errorf("second page = %+v", page)
	}

	ranged, err := w.store.ListRecords(ctx, attendancestore.Filter{From: "2024-07-02", To: "2024-07-02"}, "", 10)
	if err != nil {
		t.Fatalf("ListRecords range failed: %v", err)
	}
	if len(ranged.Records) != 1 {
		t.Errorf("date range returned %d records, want 1", len(ranged.Records))
	}

	if _, err := w.store.ListRecords(ctx, attendancestore.Filter{From: "July"}, "", 10); !apperr.IsValidation(err) {
		t.Errorf("bad from: expected ValidationError, got %v", err)
	}
}

func TestLockSession_NotFoundAndOwnership(t *testing.T) {
	w := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	key := models.SessionKey{SubjectID: w.subject.ID, Date: "2024-08-01", SessionType: models.SessionAN}
	if _, err := w.store.LockSession(ctx, w.admin, key); !apperr.IsNotFound(err) {
		t.Errorf("empty session: expected NotFoundError, got %v", err)
	}

	if _, err := w.store.RecordSession(ctx, w.admin, attendancestore.Session{
		SubjectID: w.subject.ID, TeacherID: w.teacher.ID, Date: "2024-08-01",
		SessionType: models.SessionAN, Entries: []attendancestore.Entry{present(w.s1.ID)},
	}); err != nil {
		t.Fatalf("RecordSession failed: %v", err)
	}

	otherUser := primitive.NewObjectID()
	w.fx.CreateTeacher(ctx, "Other", &otherUser)
	if _, err := w.store.LockSession(ctx, authz.Actor{ID: otherUser, Role: models.RoleTeacher}, key); !apperr.IsForbidden(err) {
		t.Errorf("other teacher: expected ForbiddenError, got %v", err)
	}
}
