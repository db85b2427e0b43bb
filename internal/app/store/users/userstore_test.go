package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/dalemusser/attendhub/internal/app/store/users"
	"github.com/dalemusser/attendhub/internal/app/system/indexes"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/attendhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		LoginID:  "  Asha.Rao ",
		FullName: "Asha   Rao",
		Email:    "ASHA@college.edu",
		Role:     "Teacher",
	}, "secret123")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID.IsZero() {
		t.Error("expected ID to be assigned")
	}
	if created.LoginID != "Asha.Rao" {
		t.Errorf("LoginID: got %q, want %q", created.LoginID, "Asha.Rao")
	}
	if created.FullName != "Asha Rao" {
		t.Errorf("FullName: got %q, want %q", created.FullName, "Asha Rao")
	}
	if created.Email != "asha@college.edu" {
		t.Errorf("Email: got %q, want %q", created.Email, "asha@college.edu")
	}
	if created.Role != models.RoleTeacher {
		t.Errorf("Role: got %q, want %q", created.Role, models.RoleTeacher)
	}
	if created.Status != models.UserActive {
		t.Errorf("Status: got %q, want %q", created.Status, models.UserActive)
	}
	if !userstore.CheckPassword(&created, "secret123") {
		t.Error("expected stored hash to match password")
	}
	if userstore.CheckPassword(&created, "wrong") {
		t.Error("expected wrong password to fail")
	}
}

func TestStore_Create_Invalid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		name     string
		user     models.User
		password string
	}{
		{"bad role", models.User{LoginID: "x", Role: "superadmin"}, "secret123"},
		{"no login id", models.User{Role: "admin"}, "secret123"},
		{"short password", models.User{LoginID: "y", Role: "admin"}, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Create(ctx, tt.user, tt.password)
			if !userstore.IsInputError(err) {
				t.Errorf("expected input error, got %v", err)
			}
		})
	}
}

func TestStore_Create_DuplicateLoginID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := store.Create(ctx, models.User{LoginID: "ravi", Role: "student"}, "secret123"); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.User{LoginID: "RAVI", Role: "student"}, "secret123")
	if !errors.Is(err, userstore.ErrDuplicateLoginID) {
		t.Errorf("expected ErrDuplicateLoginID, got %v", err)
	}
}

func TestStore_GetByLoginID_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Meera", "secret123", models.RoleStudent)

	got, err := store.GetByLoginID(ctx, "meera")
	if err != nil {
		t.Fatalf("GetByLoginID failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("ID: got %v, want %v", got.ID, u.ID)
	}

	if _, err := store.GetByLoginID(ctx, "nobody"); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_RecordFailedLogin_LocksAtMax(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "kiran", "secret123", models.RoleStudent)

	for i := 1; i <= 2; i++ {
		n, locked, err := store.RecordFailedLogin(ctx, u.ID, 3)
		if err != nil {
			t.Fatalf("RecordFailedLogin failed: %v", err)
		}
		if n != i || locked {
			t.Fatalf("attempt %d: got count=%d locked=%v", i, n, locked)
		}
	}

	n, locked, err := store.RecordFailedLogin(ctx, u.ID, 3)
	if err != nil {
		t.Fatalf("RecordFailedLogin failed: %v", err)
	}
	if n != 3 || !locked {
		t.Errorf("third attempt: got count=%d locked=%v, want 3 true", n, locked)
	}

	got, _ := store.GetByID(ctx, u.ID)
	if got.Status != models.UserLocked {
		t.Errorf("Status: got %q, want %q", got.Status, models.UserLocked)
	}

	if err := store.SetStatus(ctx, u.ID, models.UserActive); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	got, _ = store.GetByID(ctx, u.ID)
	if got.Status != models.UserActive || got.FailedAttempts != 0 {
		t.Errorf("after unlock: status=%q attempts=%d", got.Status, got.FailedAttempts)
	}
}

func TestStore_RecordSuccessfulLogin_ResetsCounter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "nisha", "secret123", models.RoleTeacher)
	if _, _, err := store.RecordFailedLogin(ctx, u.ID, 5); err != nil {
		t.Fatalf("RecordFailedLogin failed: %v", err)
	}
	if err := store.RecordSuccessfulLogin(ctx, u.ID); err != nil {
		t.Fatalf("RecordSuccessfulLogin failed: %v", err)
	}

	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FailedAttempts != 0 {
		t.Errorf("FailedAttempts: got %d, want 0", got.FailedAttempts)
	}
	if got.LastLoginAt == nil {
		t.Error("expected LastLoginAt to be set")
	}
}

func TestStore_EnsureAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.EnsureAdmin(ctx, "admin", "admin123", "admin@college.edu")
	if err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}
	if !created {
		t.Error("expected admin to be created on first call")
	}

	created, err = store.EnsureAdmin(ctx, "admin", "other-password", "")
	if err != nil {
		t.Fatalf("second EnsureAdmin failed: %v", err)
	}
	if created {
		t.Error("expected second call to be a no-op")
	}

	u, err := store.GetByLoginID(ctx, "admin")
	if err != nil {
		t.Fatalf("GetByLoginID failed: %v", err)
	}
	if u.Role != models.RoleAdmin || !userstore.CheckPassword(u, "admin123") {
		t.Errorf("unexpected admin: role=%q", u.Role)
	}
}

func TestFetcher_FetchSessionUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := userstore.New(db)
	fetcher := userstore.NewFetcher(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "priya", "secret123", models.RoleStudent)

	su, err := fetcher.FetchSessionUser(ctx, u.ID.Hex())
	if err != nil {
		t.Fatalf("FetchSessionUser failed: %v", err)
	}
	if su == nil || su.LoginID != "priya" || su.Role != models.RoleStudent {
		t.Fatalf("unexpected session user: %+v", su)
	}

	if err := store.SetStatus(ctx, u.ID, models.UserDisabled); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	su, err = fetcher.FetchSessionUser(ctx, u.ID.Hex())
	if err != nil {
		t.Fatalf("FetchSessionUser failed: %v", err)
	}
	if su != nil {
		t.Error("expected disabled user to be dropped")
	}

	su, err = fetcher.FetchSessionUser(ctx, "not-an-id")
	if err != nil || su != nil {
		t.Errorf("malformed id: got %+v, %v", su, err)
	}
}
