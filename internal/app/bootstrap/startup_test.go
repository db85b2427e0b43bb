package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	userstore "github.com/dalemusser/attendhub/internal/app/store/users"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/attendhub/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func testAppConfig() AppConfig {
	return AppConfig{
		MongoURI:               "mongodb://localhost:27017",
		MongoDatabase:          "attendhub_test",
		SessionKey:             "0123456789abcdef0123456789abcdef",
		SessionName:            "attendhub-session",
		SessionMaxAge:          time.Hour,
		Statuses:               models.DefaultStatuses,
		DefaulterThreshold:     75,
		PageSize:               100,
		Timezone:               "UTC",
		LoginMaxFailedAttempts: 5,
		AuditLogAuth:           "off",
		AuditLogAdmin:          "off",
		AuditLogAttendance:     "off",
		AdminLoginID:           "admin",
		AdminPassword:          defaultAdminPassword,
		SnapshotInterval:       time.Hour,
	}
}

func TestEnsureAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	if err := ensureAdmin(ctx, "dev", testAppConfig(), deps, testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	u, err := userstore.New(db).GetByLoginID(ctx, "admin")
	if err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if u.Role != models.RoleAdmin {
		t.Errorf("expected role %q, got %q", models.RoleAdmin, u.Role)
	}
	if !userstore.CheckPassword(u, defaultAdminPassword) {
		t.Error("expected the configured password to verify")
	}
}

func TestEnsureAdmin_LeavesExistingUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	existing := fx.CreateUser(ctx, "admin", "their-own-password", models.RoleAdmin)

	deps := DBDeps{MongoDatabase: db}
	if err := ensureAdmin(ctx, "prod", testAppConfig(), deps, testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}
	// a second start is a no-op too
	if err := ensureAdmin(ctx, "prod", testAppConfig(), deps, testLogger()); err != nil {
		t.Fatalf("second ensureAdmin failed: %v", err)
	}

	u, err := userstore.New(db).GetByLoginID(ctx, "admin")
	if err != nil {
		t.Fatalf("GetByLoginID: %v", err)
	}
	if u.ID != existing.ID {
		t.Errorf("expected the existing user to be kept")
	}
	if userstore.CheckPassword(u, defaultAdminPassword) {
		t.Error("existing password was overwritten")
	}
}

func TestParseStatuses(t *testing.T) {
	got := parseStatuses(" Present, Absent ,,EarlyExit")
	want := []models.AttendanceStatus{models.StatusPresent, models.StatusAbsent, models.StatusEarlyExit}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("status %d: got %q, want %q", i, got[i], want[i])
		}
	}

	if def := parseStatuses(""); len(def) != len(models.DefaultStatuses) {
		t.Errorf("empty list should yield the defaults, got %v", def)
	}
}

func TestValidateConfig(t *testing.T) {
	core := &config.CoreConfig{Env: "prod"}

	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", func(*AppConfig) {}, false},
		{"bad mongo uri", func(c *AppConfig) { c.MongoURI = "http://nope" }, true},
		{"missing session key", func(c *AppConfig) { c.SessionKey = "" }, true},
		{"unknown status", func(c *AppConfig) { c.Statuses = []models.AttendanceStatus{"Sleeping"} }, true},
		{"threshold above 100", func(c *AppConfig) { c.DefaulterThreshold = 101 }, true},
		{"negative threshold", func(c *AppConfig) { c.DefaulterThreshold = -1 }, true},
		{"zero page size", func(c *AppConfig) { c.PageSize = 0 }, true},
		{"bad timezone", func(c *AppConfig) { c.Timezone = "Mars/Olympus" }, true},
		{"extended statuses", func(c *AppConfig) {
			c.Statuses = []models.AttendanceStatus{models.StatusPresent, models.StatusML, models.StatusEL}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testAppConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(core, cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildHandler_Routes(t *testing.T) {
	db := testutil.SetupTestDB(t)

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, testAppConfig(), deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/no-such-page", http.StatusNotFound},
		{http.MethodGet, "/me", http.StatusUnauthorized},
		{http.MethodGet, "/dashboard", http.StatusUnauthorized},
		{http.MethodGet, "/attendance/records", http.StatusUnauthorized},
		{http.MethodGet, "/reports/defaulters", http.StatusUnauthorized},
		{http.MethodGet, "/admin/programs", http.StatusUnauthorized},
		{http.MethodGet, "/admin/settings", http.StatusUnauthorized},
		{http.MethodGet, "/admin/audit", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			testutil.AssertStatus(t, rec, tt.want)
		})
	}
}
