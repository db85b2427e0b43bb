// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/attendhub/internal/domain/models"
)

// AppConfig holds attendhub-specific configuration.
//
// Values come from config files, ATTENDHUB_* environment variables or
// command-line flags (see LoadConfig). Framework settings such as ports,
// TLS and log level live in WAFFLE's CoreConfig instead.
type AppConfig struct {
	// MongoDB
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Sessions
	SessionKey    string
	SessionName   string
	SessionDomain string
	SessionMaxAge time.Duration

	// Attendance rules
	Statuses           []models.AttendanceStatus // accepted on recordSession
	DefaulterThreshold float64                   // used until an admin stores one
	PageSize           int                       // records and leaves per page
	Timezone           string                    // IANA zone used for "today"

	LoginMaxFailedAttempts int

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth       string
	AuditLogAdmin      string
	AuditLogAttendance string

	// Bootstrap admin created on first start
	AdminLoginID  string
	AdminPassword string
	AdminEmail    string

	SnapshotInterval time.Duration

	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
