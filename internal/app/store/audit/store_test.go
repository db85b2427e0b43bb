package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/attendhub/internal/app/store/audit"
	"github.com/dalemusser/attendhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	err := store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        "10.0.0.7",
		Success:   true,
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be auto-generated")
	}
	if events[0].Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestStore_Query_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	base := time.Now().UTC().Add(-time.Hour)

	events := []audit.Event{
		{Category: audit.CategoryAttendance, EventType: audit.EventSessionRecorded, ActorID: &actor, Success: true, Timestamp: base},
		{Category: audit.CategoryAttendance, EventType: audit.EventSessionLocked, ActorID: &actor, Success: true, Timestamp: base.Add(time.Minute)},
		{Category: audit.CategoryAdmin, EventType: audit.EventStudentCreated, Success: true, Timestamp: base.Add(2 * time.Minute)},
	}
	for _, e := range events {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	got, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryAttendance})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("category filter: got %d events, want 2", len(got))
	}
	if got[0].EventType != audit.EventSessionLocked {
		t.Errorf("newest first: got %q, want %q", got[0].EventType, audit.EventSessionLocked)
	}

	got, err = store.Query(ctx, audit.QueryFilter{ActorID: &actor, EventType: audit.EventSessionRecorded})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("actor+type filter: got %d events, want 1", len(got))
	}

	start := base.Add(90 * time.Second)
	n, err := store.CountByFilter(ctx, audit.QueryFilter{StartTime: &start})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if n != 1 {
		t.Errorf("time filter count: got %d, want 1", n)
	}
}

func TestStore_Query_LimitAndOffset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		if err := store.Log(ctx, audit.Event{
			Category:  audit.CategoryAuth,
			EventType: audit.EventLogout,
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	page, err := store.Query(ctx, audit.QueryFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page size: got %d, want 2", len(page))
	}
	if !page[0].Timestamp.Before(base.Add(3 * time.Second)) {
		t.Errorf("expected offset to skip the two newest events")
	}
}
