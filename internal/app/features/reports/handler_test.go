package reports_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/attendhub/internal/app/features/reports"
	"github.com/dalemusser/attendhub/internal/app/store/queries/attendancequeries"
	settingsstore "github.com/dalemusser/attendhub/internal/app/store/settings"
	snapshotstore "github.com/dalemusser/attendhub/internal/app/store/snapshots"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/attendhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type world struct {
	fx      *testutil.Fixtures
	subject models.Subject
	good    models.Student
	poor    models.Student
	self    testutil.TestUser
}

// newTestHandler seeds two students: good attends 4 of 4 sessions, poor
// attends 1 of 4.
func newTestHandler(t *testing.T) (*reports.Handler, *world) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	h := reports.NewHandler(db, 75, zap.NewNop())

	fx := testutil.NewFixtures(t, db)
	prog := fx.CreateProgram(ctx, "BCA")
	sub := fx.CreateSubject(ctx, "BCA101", prog.ID, 1)
	good := fx.CreateStudent(ctx, "BCA-01", prog.ID, 1, "2024", "A")
	poor := fx.CreateStudent(ctx, "BCA-02", prog.ID, 1, "2024", "A")
	u := fx.CreateUser(ctx, "bca01", "secret1", models.RoleStudent)
	fx.LinkStudentUser(ctx, good.ID, u.ID)

	dates := []string{"2024-07-01", "2024-07-02", "2024-07-03", "2024-07-04"}
	for i, d := range dates {
		fx.InsertRecord(ctx, models.AttendanceRecord{StudentID: good.ID, SubjectID: sub.ID, Date: d, SessionType: models.SessionFN, Status: models.StatusPresent})
		status := models.StatusAbsent
		if i == 0 {
			status = models.StatusLate
		}
		fx.InsertRecord(ctx, models.AttendanceRecord{StudentID: poor.ID, SubjectID: sub.ID, Date: d, SessionType: models.SessionFN, Status: status})
	}

	return h, &world{fx: fx, subject: sub, good: good, poor: poor, self: testutil.StudentUser(u.ID)}
}

func get(fn http.HandlerFunc, target string, user testutil.TestUser) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	fn(rec, testutil.WithUser(httptest.NewRequest(http.MethodGet, target, nil), user))
	return rec
}

func TestServePercentage(t *testing.T) {
	h, w := newTestHandler(t)

	tests := []struct {
		name   string
		target string
		user   testutil.TestUser
		status int
		pct    float64
	}{
		{"student self", "/reports/percentage", w.self, http.StatusOK, 100},
		{"teacher names student", "/reports/percentage?student=" + w.poor.ID.Hex(), testutil.TeacherUser(primitive.NewObjectID()), http.StatusOK, 25},
		{"date range", "/reports/percentage?student=" + w.poor.ID.Hex() + "&from=2024-07-02", testutil.AdminUser(), http.StatusOK, 0},
		{"student names peer", "/reports/percentage?student=" + w.poor.ID.Hex(), w.self, http.StatusForbidden, 0},
		{"admin omits student", "/reports/percentage", testutil.AdminUser(), http.StatusBadRequest, 0},
		{"reversed range", "/reports/percentage?student=" + w.poor.ID.Hex() + "&from=2024-07-04&to=2024-07-01", testutil.AdminUser(), http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(h.ServePercentage, tt.target, tt.user)
			testutil.AssertStatus(t, rec, tt.status)
			if tt.status != http.StatusOK {
				return
			}
			var c attendancequeries.Counts
			testutil.DecodeJSON(t, rec, &c)
			if c.Percentage != tt.pct {
				t.Errorf("percentage = %v, want %v", c.Percentage, tt.pct)
			}
		})
	}
}

func TestServeBreakdown(t *testing.T) {
	h, w := newTestHandler(t)

	rec := get(h.ServeBreakdown, "/reports/breakdown", w.self)
	testutil.AssertStatus(t, rec, http.StatusOK)
	var resp struct {
		Subjects []attendancequeries.SubjectRow `json:"subjects"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if len(resp.Subjects) != 1 || resp.Subjects[0].SubjectCode != w.subject.Code || resp.Subjects[0].Present != 4 {
		t.Errorf("subjects = %+v", resp.Subjects)
	}
}

func TestServeDefaulters_ThresholdSources(t *testing.T) {
	h, w := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	type body struct {
		Threshold  float64                        `json:"threshold"`
		Defaulters []attendancequeries.StudentRow `json:"defaulters"`
	}
	admin := testutil.AdminUser()

	rec := get(h.ServeDefaulters, "/reports/defaulters", admin)
	testutil.AssertStatus(t, rec, http.StatusOK)
	var b body
	testutil.DecodeJSON(t, rec, &b)
	if b.Threshold != 75 || len(b.Defaulters) != 1 || b.Defaulters[0].StudentID != w.poor.ID {
		t.Errorf("fallback threshold: %+v", b)
	}

	if err := settingsstore.New(w.fx.DB()).SetDefaulterThreshold(ctx, 20, nil); err != nil {
		t.Fatalf("SetDefaulterThreshold failed: %v", err)
	}
	rec = get(h.ServeDefaulters, "/reports/defaulters", admin)
	b = body{}
	testutil.DecodeJSON(t, rec, &b)
	if b.Threshold != 20 || len(b.Defaulters) != 0 {
		t.Errorf("stored threshold: %+v", b)
	}

	rec = get(h.ServeDefaulters, "/reports/defaulters?threshold=101", admin)
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
	rec = get(h.ServeDefaulters, "/reports/defaulters?semester=zero", admin)
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
}

func TestServeStudentReport(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := get(h.ServeStudentReport, "/reports/students?batch=2024", testutil.AdminUser())
	testutil.AssertStatus(t, rec, http.StatusOK)
	var resp struct {
		Students []attendancequeries.StudentRow `json:"students"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if len(resp.Students) != 2 {
		t.Errorf("students = %d, want 2", len(resp.Students))
	}
}

func TestServeDefaulterHistory(t *testing.T) {
	h, w := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	snaps := snapshotstore.New(w.fx.DB())
	ids := []primitive.ObjectID{}
	for i := 0; i < 3; i++ {
		if _, err := snaps.Save(ctx, models.DefaulterSnapshot{
			TakenAt:    time.Now().UTC().Add(time.Duration(i) * time.Minute),
			Threshold:  75,
			StudentIDs: ids,
		}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		ids = append(ids, primitive.NewObjectID())
	}

	rec := get(h.ServeDefaulterHistory, "/reports/defaulters/history?limit=2", testutil.AdminUser())
	testutil.AssertStatus(t, rec, http.StatusOK)
	var resp struct {
		Snapshots []models.DefaulterSnapshot `json:"snapshots"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if len(resp.Snapshots) != 2 || resp.Snapshots[0].Count != 2 {
		t.Errorf("snapshots = %+v", resp.Snapshots)
	}

	rec = get(h.ServeDefaulterHistory, "/reports/defaulters/history?limit=0", testutil.AdminUser())
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
}
