// internal/app/bootstrap/config.go
package bootstrap

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// defaultAdminPassword is the bootstrap admin's password when none is
// configured. Startup warns in prod while it is in use.
const defaultAdminPassword = "admin123"

// appConfigKeys defines the configuration keys for attendhub:
//   - Config files: mongo_uri, defaulter_threshold, etc.
//   - Environment variables: ATTENDHUB_MONGO_URI, ATTENDHUB_DEFAULTER_THRESHOLD, etc.
//   - Command-line flags: --mongo_uri, --defaulter_threshold, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "attendhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "", Desc: "Session signing key, 32+ chars (required in prod)"},
	{Name: "session_name", Default: "attendhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime (e.g., 8h, 24h)"},

	{Name: "attendance_statuses", Default: "Present,Absent,Late,OD", Desc: "Comma-separated statuses accepted when recording attendance"},
	{Name: "defaulter_threshold", Default: "75", Desc: "Default defaulter threshold percentage (overridden by the stored setting)"},
	{Name: "records_page_size", Default: 100, Desc: "Page size for record and leave listings"},
	{Name: "timezone", Default: "UTC", Desc: "IANA time zone for the college calendar"},

	{Name: "login_max_failed_attempts", Default: 5, Desc: "Consecutive failed logins before an account is locked"},

	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_attendance", Default: "all", Desc: "Attendance event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "admin_login_id", Default: "admin", Desc: "Login ID of the bootstrap admin (created on startup if missing)"},
	{Name: "admin_password", Default: defaultAdminPassword, Desc: "Password of the bootstrap admin"},
	{Name: "admin_email", Default: "", Desc: "Email of the bootstrap admin"},

	{Name: "snapshot_interval", Default: "1h", Desc: "How often the defaulter list is snapshotted"},

	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for lists and recording a session"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for leave approval and reports"},
}

// LoadConfig loads WAFFLE core config and attendhub's app config.
//
// Precedence is flags > env > config files > defaults. Core keys use the
// WAFFLE_* prefix and app keys use ATTENDHUB_*.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ATTENDHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	threshold, err := strconv.ParseFloat(strings.TrimSpace(appValues.String("defaulter_threshold")), 64)
	if err != nil {
		return nil, AppConfig{}, fmt.Errorf("defaulter_threshold: %w", err)
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		Statuses:           parseStatuses(appValues.String("attendance_statuses")),
		DefaulterThreshold: threshold,
		PageSize:           appValues.Int("records_page_size"),
		Timezone:           appValues.String("timezone"),

		LoginMaxFailedAttempts: appValues.Int("login_max_failed_attempts"),

		AuditLogAuth:       appValues.String("audit_log_auth"),
		AuditLogAdmin:      appValues.String("audit_log_admin"),
		AuditLogAttendance: appValues.String("audit_log_attendance"),

		AdminLoginID:  appValues.String("admin_login_id"),
		AdminPassword: appValues.String("admin_password"),
		AdminEmail:    appValues.String("admin_email"),

		SnapshotInterval: appValues.Duration("snapshot_interval", time.Hour),

		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
	}

	// Outside prod a missing key gets a random one. Sessions then do not
	// survive a restart.
	if appCfg.SessionKey == "" && coreCfg.Env != "prod" {
		appCfg.SessionKey = hex.EncodeToString(securecookie.GenerateRandomKey(32))
		logger.Warn("session_key not set; generated a temporary development key")
	}

	return coreCfg, appCfg, nil
}

// parseStatuses splits a comma-separated status list. An empty list yields
// the default accepted set.
func parseStatuses(raw string) []models.AttendanceStatus {
	var out []models.AttendanceStatus
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, models.AttendanceStatus(p))
		}
	}
	if len(out) == 0 {
		return append([]models.AttendanceStatus(nil), models.DefaultStatuses...)
	}
	return out
}

// ValidateConfig rejects configuration that would fail later at runtime.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.SessionKey == "" {
		return fmt.Errorf("session_key is required in %s", coreCfg.Env)
	}
	for _, st := range appCfg.Statuses {
		if !st.Known() {
			return fmt.Errorf("attendance_statuses: unknown status %q", st)
		}
	}
	if appCfg.DefaulterThreshold < 0 || appCfg.DefaulterThreshold > 100 {
		return fmt.Errorf("defaulter_threshold must be between 0 and 100, got %v", appCfg.DefaulterThreshold)
	}
	if appCfg.PageSize <= 0 {
		return fmt.Errorf("records_page_size must be positive, got %d", appCfg.PageSize)
	}
	if appCfg.LoginMaxFailedAttempts <= 0 {
		return fmt.Errorf("login_max_failed_attempts must be positive, got %d", appCfg.LoginMaxFailedAttempts)
	}
	if appCfg.SnapshotInterval <= 0 {
		return fmt.Errorf("snapshot_interval must be positive")
	}
	if appCfg.AdminLoginID == "" {
		return fmt.Errorf("admin_login_id must not be empty")
	}
	if _, err := time.LoadLocation(appCfg.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}
