package attendancequeries_test

import (
	"testing"

	"github.com/dalemusser/attendhub/internal/app/store/queries/attendancequeries"
	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/attendhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPercentage_NoRecordsIsZero(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	got, err := attendancequeries.Percentage(ctx, db, primitive.NewObjectID(), attendancequeries.Scope{})
	if err != nil {
		t.Fatalf("Percentage failed: %v", err)
	}
	if got.Total != 0 || got.Percentage != 0 {
		t.Errorf("got %+v, want zeros", got)
	}
}

func TestPercentage_CountsPresentLateOD(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	prog := fx.CreateProgram(ctx, "BSC")
	sub := fx.CreateSubject(ctx, "CS101", prog.ID, 1)
	other := fx.CreateSubject(ctx, "CS102", prog.ID, 1)
	st := fx.CreateStudent(ctx, "R001", prog.ID, 1, "2024", "A")

	statuses := []models.AttendanceStatus{
		models.StatusPresent, models.StatusPresent, models.StatusPresent,
		models.StatusPresent, models.StatusPresent, models.StatusPresent,
		models.StatusLate, models.StatusLate,
		models.StatusOD,
		models.StatusAbsent,
	}
	for i, s := range statuses {
		fx.InsertRecord(ctx, models.AttendanceRecord{
			StudentID: st.ID, SubjectID: sub.ID, Date: "2024-07-01",
			SessionType: models.SessionPeriod, Period: i + 1, Status: s,
		})
	}
	fx.InsertRecord(ctx, models.AttendanceRecord{
		StudentID: st.ID, SubjectID: other.ID, Date: "2024-07-09",
		SessionType: models.SessionFN, Status: models.StatusEarlyExit,
	})

	tests := []struct {
		name  string
		scope attendancequeries.Scope
		total int64
		want  float64
	}{
		{"subject", attendancequeries.Scope{SubjectID: sub.ID}, 10, 90.0},
		{"overall", attendancequeries.Scope{}, 11, 81.82},
		{"date range", attendancequeries.Scope{From: "2024-07-05", To: "2024-07-31"}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := attendancequeries.Percentage(ctx, db, st.ID, tt.scope)
			if err != nil {
				t.Fatalf("Percentage failed: %v", err)
			}
			if got.Total != tt.total || got.Percentage != tt.want {
				t.Errorf("got total=%d pct=%v, want total=%d pct=%v", got.Total, got.Percentage, tt.total, tt.want)
			}
		})
	}

	if _, err := attendancequeries.Percentage(ctx, db, st.ID, attendancequeries.Scope{From: "2024-08-01", To: "2024-07-01"}); !apperr.IsValidation(err) {
		t.Errorf("inverted range: expected ValidationError, got %v", err)
	}
}

func TestSubjectBreakdown_IncludesEmptySubjects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	prog := fx.CreateProgram(ctx, "BSC")
	a := fx.CreateSubject(ctx, "CS101", prog.ID, 1)
	fx.CreateSubject(ctx, "CS102", prog.ID, 1)
	fx.CreateSubject(ctx, "CS201", prog.ID, 2)
	st := fx.CreateStudent(ctx, "R001", prog.ID, 1, "2024", "A")

	fx.InsertRecord(ctx, models.AttendanceRecord{StudentID: st.ID, SubjectID: a.ID, Date: "2024-07-01", SessionType: models.SessionFN, Status: models.StatusPresent})
	fx.InsertRecord(ctx, models.AttendanceRecord{StudentID: st.ID, SubjectID: a.ID, Date: "2024-07-02", SessionType: models.SessionFN, Status: models.StatusAbsent})

	rows, err := attendancequeries.SubjectBreakdown(ctx, db, st.ID)
	if err != nil {
		t.Fatalf("SubjectBreakdown failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (semester 1 only)", len(rows))
	}
	if rows[0].SubjectCode != "CS101" || rows[0].Total != 2 || rows[0].Present != 1 || rows[0].Percentage != 50 {
		t.Errorf("CS101 row = %+v", rows[0])
	}
	if rows[1].SubjectCode != "CS102" || rows[1].Total != 0 || rows[1].Percentage != 0 {
		t.Errorf("CS102 row = %+v", rows[1])
	}

	if _, err := attendancequeries.SubjectBreakdown(ctx, db, primitive.NewObjectID()); !apperr.IsNotFound(err) {
		t.Errorf("unknown student: expected NotFoundError, got %v", err)
	}
}

func TestDefaulters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	prog := fx.CreateProgram(ctx, "BSC")
	sub := fx.CreateSubject(ctx, "CS101", prog.ID, 1)

	good := fx.CreateStudent(ctx, "R001", prog.ID, 1, "2024", "A")
	half := fx.CreateStudent(ctx, "R002", prog.ID, 1, "2024", "A")
	none := fx.CreateStudent(ctx, "R003", prog.ID, 1, "2024", "A")
	alsoNone := fx.CreateStudent(ctx, "R000", prog.ID, 1, "2024", "A")
	gone := fx.CreateStudent(ctx, "R004", prog.ID, 1, "2024", "A")
	fx.SetStudentStatus(ctx, gone.ID, models.StatusInactive)

	mark := func(id primitive.ObjectID, date string, s models.AttendanceStatus) {
		fx.InsertRecord(ctx, models.AttendanceRecord{StudentID: id, SubjectID: sub.ID, Date: date, SessionType: models.SessionFN, Status: s})
	}
	mark(good.ID, "2024-07-01", models.StatusPresent)
	mark(half.ID, "2024-07-01", models.StatusPresent)
	mark(half.ID, "2024-07-02", models.StatusAbsent)
	mark(gone.ID, "2024-07-01", models.StatusAbsent)

	got, err := attendancequeries.Defaulters(ctx, db, 75, attendancequeries.Cohort{})
	if err != nil {
		t.Fatalf("Defaulters failed: %v", err)
	}
	want := []string{"R000", "R003", "R002"}
	if len(got) != len(want) {
		t.Fatalf("got %d defaulters, want %d: %+v", len(got), len(want), got)
	}
	for i, roll := range want {
		if got[i].RollNumber != roll {
			t.Errorf("defaulter[%d] = %s, want %s", i, got[i].RollNumber, roll)
		}
	}
	if got[0].Percentage != 0 || got[2].Percentage != 50 {
		t.Errorf("percentages = %v, %v", got[0].Percentage, got[2].Percentage)
	}
	if got[0].StudentID != alsoNone.ID {
		t.Errorf("roll-number tie-break: first defaulter = %s, want R000", got[0].RollNumber)
	}
	if got[1].StudentID != none.ID || got[1].Total != 0 {
		t.Errorf("zero-record student row = %+v", got[1])
	}

	if _, err := attendancequeries.Defaulters(ctx, db, 101, attendancequeries.Cohort{}); !apperr.IsValidation(err) {
		t.Errorf("threshold 101: expected ValidationError, got %v", err)
	}

	report, err := attendancequeries.StudentReport(ctx, db, attendancequeries.Cohort{ProgramID: prog.ID})
	if err != nil {
		t.Fatalf("StudentReport failed: %v", err)
	}
	if len(report) != 4 || report[0].RollNumber != "R000" || report[1].Percentage != 100 {
		t.Errorf("StudentReport = %+v", report)
	}

	loose := attendancequeries.Cohort{ProgramID: prog.ID, Batch: " 2024 ", Division: "a"}
	report, err = attendancequeries.StudentReport(ctx, db, loose)
	if err != nil {
		t.Fatalf("StudentReport with unnormalized labels failed: %v", err)
	}
	if len(report) != 4 {
		t.Errorf("lowercase division: got %d students, want 4", len(report))
	}
	got, err = attendancequeries.Defaulters(ctx, db, 75, loose)
	if err != nil {
		t.Fatalf("Defaulters with unnormalized labels failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("lowercase division: got %d defaulters, want 3", len(got))
	}
}
