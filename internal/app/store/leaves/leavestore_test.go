package leavestore_test

import (
	"testing"

	leavestore "github.com/dalemusser/attendhub/internal/app/store/leaves"
	rosterstore "github.com/dalemusser/attendhub/internal/app/store/roster"
	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/authz"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/attendhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var admin = authz.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

func setup(t *testing.T) (*testutil.Fixtures, *leavestore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return testutil.NewFixtures(t, db), leavestore.New(db, rosterstore.New(db), zap.NewNop())
}

func TestApprove_RewritesOnlyExistingRecords(t *testing.T) {
	fx, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	prog := fx.CreateProgram(ctx, "BSC")
	sub := fx.CreateSubject(ctx, "CS101", prog.ID, 1)
	tc := fx.CreateTeacher(ctx, "T", nil)
	st := fx.CreateStudent(ctx, "R001", prog.ID, 1, "2024", "A")
	other := fx.CreateStudent(ctx, "R002", prog.ID, 1, "2024", "A")

	rec := func(studentID primitive.ObjectID, date string) {
		fx.InsertRecord(ctx, models.AttendanceRecord{
			StudentID: studentID, SubjectID: sub.ID, TeacherID: tc.ID,
			Date: date, SessionType: models.SessionFN, Status: models.StatusAbsent,
		})
	}
	rec(st.ID, "2024-07-01")
	rec(st.ID, "2024-07-03")
	rec(st.ID, "2024-07-05") // outside range
	rec(other.ID, "2024-07-02")

	leave := fx.CreateLeave(ctx, st.ID, "2024-07-01", "2024-07-04", models.LeavePending)

	got, err := store.Approve(ctx, admin, leave.ID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if got.Status != models.LeaveApproved || got.DecidedBy == nil || *got.DecidedBy != admin.ID {
		t.Errorf("approved leave = %+v", got)
	}
	if got.ReconciledCount != 2 {
		t.Errorf("ReconciledCount = %d, want 2", got.ReconciledCount)
	}

	records := fx.DB().Collection("attendance_records")
	total, _ := records.CountDocuments(ctx, bson.M{})
	if total != 4 {
		t.Errorf("approval changed record count to %d, want 4", total)
	}
	od, _ := records.CountDocuments(ctx, bson.M{"status": models.StatusOD, "remarks": "Medical leave approved"})
	if od != 2 {
		t.Errorf("OD records = %d, want 2", od)
	}
	untouched, _ := records.CountDocuments(ctx, bson.M{"status": models.StatusAbsent})
	if untouched != 2 {
		t.Errorf("untouched records = %d, want 2", untouched)
	}
}

func TestApprove_LeavesLockedRecordsAlone(t *testing.T) {
	fx, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	prog := fx.CreateProgram(ctx, "BSC")
	sub := fx.CreateSubject(ctx, "CS101", prog.ID, 1)
	tc := fx.CreateTeacher(ctx, "T", nil)
	st := fx.CreateStudent(ctx, "R001", prog.ID, 1, "2024", "A")

	locked := fx.InsertRecord(ctx, models.AttendanceRecord{
		StudentID: st.ID, SubjectID: sub.ID, TeacherID: tc.ID,
		Date: "2024-03-01", SessionType: models.SessionFN, Status: models.StatusAbsent, IsLocked: true,
	})
	open := fx.InsertRecord(ctx, models.AttendanceRecord{
		StudentID: st.ID, SubjectID: sub.ID, TeacherID: tc.ID,
		Date: "2024-03-01", SessionType: models.SessionAN, Status: models.StatusAbsent,
	})

	leave := fx.CreateLeave(ctx, st.ID, "2024-03-01", "2024-03-01", models.LeavePending)
	got, err := store.Approve(ctx, admin, leave.ID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if got.ReconciledCount != 1 {
		t.Errorf("ReconciledCount = %d, want 1", got.ReconciledCount)
	}

	records := fx.DB().Collection("attendance_records")
	var rec models.AttendanceRecord
	if err := records.FindOne(ctx, bson.M{"_id": locked.ID}).Decode(&rec); err != nil {
		t.Fatalf("find locked record: %v", err)
	}
	if rec.Status != models.StatusAbsent || !rec.IsLocked {
		t.Errorf("locked record = %s (locked=%v), want Absent and still locked", rec.Status, rec.IsLocked)
	}
	if err := records.FindOne(ctx, bson.M{"_id": open.ID}).Decode(&rec); err != nil {
		t.Fatalf("find open record: %v", err)
	}
	if rec.Status != models.StatusOD {
		t.Errorf("unlocked record = %s, want OD", rec.Status)
	}
}

func TestApprove_TwiceIsInvalidState(t *testing.T) {
	fx, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	prog := fx.CreateProgram(ctx, "BSC")
	st := fx.CreateStudent(ctx, "R001", prog.ID, 1, "2024", "A")
	leave := fx.CreateLeave(ctx, st.ID, "2024-07-01", "2024-07-01", models.LeavePending)

	if _, err := store.Approve(ctx, admin, leave.ID); err != nil {
		t.Fatalf("first Approve failed: %v", err)
	}
	if _, err := store.Approve(ctx, admin, leave.ID); !apperr.IsInvalidState(err) {
		t.Errorf("second Approve: expected InvalidStateError, got %v", err)
	}
	if _, err := store.Reject(ctx, admin, leave.ID); !apperr.IsInvalidState(err) {
		t.Errorf("Reject after approve: expected InvalidStateError, got %v", err)
	}
}

func TestReject(t *testing.T) {
	fx, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	prog := fx.CreateProgram(ctx, "BSC")
	sub := fx.CreateSubject(ctx, "CS101", prog.ID, 1)
	st := fx.CreateStudent(ctx, "R001", prog.ID, 1, "2024", "A")
	fx.InsertRecord(ctx, models.AttendanceRecord{
		StudentID: st.ID, SubjectID: sub.ID, Date: "2024-07-01",
		SessionType: models.SessionFN, Status: models.StatusAbsent,
	})
	leave := fx.CreateLeave(ctx, st.ID, "2024-07-01", "2024-07-01", models.LeavePending)

	teacher := authz.Actor{ID: primitive.NewObjectID(), Role: models.RoleTeacher}
	got, err := store.Reject(ctx, teacher, leave.ID)
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if got.Status != models.LeaveRejected {
		t.Errorf("status = %q, want rejected", got.Status)
	}
	n, _ := fx.DB().Collection("attendance_records").CountDocuments(ctx, bson.M{"status": models.StatusAbsent})
	if n != 1 {
		t.Errorf("Reject touched the ledger")
	}

	if _, err := store.Reject(ctx, teacher, primitive.NewObjectID()); !apperr.IsNotFound(err) {
		t.Errorf("unknown leave: expected NotFoundError, got %v", err)
	}
	student := authz.Actor{ID: primitive.NewObjectID(), Role: models.RoleStudent}
	if _, err := store.Approve(ctx, student, leave.ID); !apperr.IsForbidden(err) {
		t.Errorf("student approve: expected ForbiddenError, got %v", err)
	}
}

func TestApply(t *testing.T) {
	fx, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	prog := fx.CreateProgram(ctx, "BSC")
	st := fx.CreateStudent(ctx, "R001", prog.ID, 1, "2024", "A")
	userID := primitive.NewObjectID()
	fx.LinkStudentUser(ctx, st.ID, userID)
	self := authz.Actor{ID: userID, Role: models.RoleStudent}

	l, err := store.Apply(ctx, self, leavestore.Application{
		StudentID: st.ID, FromDate: "2024-07-01", ToDate: "2024-07-02",
		LeaveType: "Personal", Reason: "<b>family</b> event",
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if l.Status != models.LeavePending || l.RefCode == "" || l.Reason != "family event" {
		t.Errorf("applied leave = %+v", l)
	}

	tests := []struct {
		name  string
		actor authz.Actor
		in    leavestore.Application
		check func(error) bool
	}{
		{"to before from", self, leavestore.Application{StudentID: st.ID, FromDate: "2024-07-02", ToDate: "2024-07-01", LeaveType: "Medical"}, apperr.IsValidation},
		{"bad type", self, leavestore.Application{StudentID: st.ID, FromDate: "2024-07-01", ToDate: "2024-07-01", LeaveType: "Vacation"}, apperr.IsValidation},
		{"other student", authz.Actor{ID: primitive.NewObjectID(), Role: models.RoleStudent}, leavestore.Application{StudentID: st.ID, FromDate: "2024-07-01", ToDate: "2024-07-01", LeaveType: "Medical"}, apperr.IsForbidden},
		{"teacher", authz.Actor{ID: primitive.NewObjectID(), Role: models.RoleTeacher}, leavestore.Application{StudentID: st.ID, FromDate: "2024-07-01", ToDate: "2024-07-01", LeaveType: "Medical"}, apperr.IsForbidden},
		{"unknown student", admin, leavestore.Application{StudentID: primitive.NewObjectID(), FromDate: "2024-07-01", ToDate: "2024-07-01", LeaveType: "Medical"}, apperr.IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Apply(ctx, tt.actor, tt.in); !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	onBehalf, err := store.Apply(ctx, admin, leavestore.Application{StudentID: st.ID, FromDate: "2024-08-01", ToDate: "2024-08-01", LeaveType: "OnDuty"})
	if err != nil {
		t.Fatalf("admin Apply failed: %v", err)
	}
	mine, err := store.List(ctx, leavestore.Filter{StudentID: st.ID}, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("List returned %d leaves, want 2", len(mine))
	}
	if mine[0].ID != onBehalf.ID {
		t.Errorf("newest leave = %v, want %v", mine[0].ID, onBehalf.ID)
	}
}
