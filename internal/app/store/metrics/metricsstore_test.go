package metricsstore_test

import (
	"context"
	"testing"
	"time"

	metricsstore "github.com/dalemusser/attendhub/internal/app/store/metrics"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/attendhub/internal/testutil"
)

func TestFetchDashboardCounts_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	counts := metricsstore.FetchDashboardCounts(ctx, db)
	if counts != (metricsstore.Counts{}) {
		t.Errorf("empty database counts = %+v, want zeros", counts)
	}
}

func TestFetchDashboardCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	prog := fx.CreateProgram(ctx, "BCA")
	fx.CreateSubject(ctx, "BCA101", prog.ID, 1)
	s1 := fx.CreateStudent(ctx, "BCA-01", prog.ID, 1, "2024", "A")
	s2 := fx.CreateStudent(ctx, "BCA-02", prog.ID, 1, "2024", "A")
	fx.SetStudentStatus(ctx, s2.ID, models.StatusInactive)
	fx.CreateTeacher(ctx, "Ravi", nil)
	fx.CreateLeave(ctx, s1.ID, "2024-07-01", "2024-07-01", models.LeavePending)
	fx.CreateLeave(ctx, s1.ID, "2024-07-02", "2024-07-02", models.LeaveRejected)

	got := metricsstore.FetchDashboardCounts(ctx, db)
	want := metricsstore.Counts{Programs: 1, ActiveStudents: 1, ActiveTeachers: 1, Subjects: 1, PendingLeaves: 1}
	if got != want {
		t.Errorf("counts = %+v, want %+v", got, want)
	}
}

func TestFetchDashboardCounts_CanceledContext(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	if got := metricsstore.FetchDashboardCounts(ctx, db); got != (metricsstore.Counts{}) {
		t.Errorf("canceled context counts = %+v, want zeros", got)
	}
}
