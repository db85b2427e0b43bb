// internal/app/system/auditlog/logger.go
package auditlog

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/attendhub/internal/app/store/audit"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration per category.
// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off".
type Config struct {
	Auth       string
	Admin      string
	Attendance string
}

// Logger writes audit events to MongoDB and zap according to Config.
// A nil *Logger is valid and discards everything.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func userAgent(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.UserAgent()
}

func (l *Logger) setting(category string) string {
	switch category {
	case audit.CategoryAuth:
		return l.config.Auth
	case audit.CategoryAdmin:
		return l.config.Admin
	case audit.CategoryAttendance:
		return l.config.Attendance
	}
	return "all"
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the category's setting. Store failures
// are logged and swallowed; auditing never fails the caller's operation.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := l.setting(event.Category)
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}
	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, loginID, sessionID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   map[string]string{"login_id": loginID, "session_id": sessionID},
	})
}

// LoginFailedUserNotFound logs a login attempt for an unknown login id.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedLoginID string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserNotFound,
		IP:            clientIP(r),
		UserAgent:     userAgent(r),
		FailureReason: "user not found",
		Details:       map[string]string{"attempted_login_id": attemptedLoginID},
	})
}

// LoginFailedWrongPassword logs a bad password. attempts is the running
// failure count after this attempt.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, loginID string, attempts int) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedWrongPassword,
		UserID:        &userID,
		IP:            clientIP(r),
		UserAgent:     userAgent(r),
		FailureReason: "wrong password",
		Details:       map[string]string{"login_id": loginID, "failed_attempts": strconv.Itoa(attempts)},
	})
}

// LoginFailedUserDisabled logs a login attempt on a disabled or locked account.
func (l *Logger) LoginFailedUserDisabled(ctx context.Context, r *http.Request, userID primitive.ObjectID, loginID, status string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserDisabled,
		UserID:        &userID,
		IP:            clientIP(r),
		UserAgent:     userAgent(r),
		FailureReason: "account " + status,
		Details:       map[string]string{"login_id": loginID},
	})
}

// AccountLocked logs the failure that tipped an account into the locked state.
func (l *Logger) AccountLocked(ctx context.Context, r *http.Request, userID primitive.ObjectID, loginID string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventAccountLocked,
		UserID:        &userID,
		IP:            clientIP(r),
		UserAgent:     userAgent(r),
		FailureReason: "too many failed attempts",
		Details:       map[string]string{"login_id": loginID},
	})
}

// Logout logs a user logout.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr, sessionID string) {
	var userID *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		userID = &oid
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    userID,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   map[string]string{"session_id": sessionID},
	})
}

// --- Admin Events ---

// RosterChanged logs a roster or account change made by an admin.
// eventType is one of the audit.Event* admin constants; subjectID is the
// id of the entity created or changed.
func (l *Logger) RosterChanged(ctx context.Context, r *http.Request, actorID primitive.ObjectID, eventType string, subjectID primitive.ObjectID, details map[string]string) {
	if details == nil {
		details = map[string]string{}
	}
	details["entity_id"] = subjectID.Hex()
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorID:   &actorID,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   details,
	})
}

// SettingChanged logs an update to a runtime setting.
func (l *Logger) SettingChanged(ctx context.Context, r *http.Request, actorID primitive.ObjectID, key, value string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventSettingChanged,
		ActorID:   &actorID,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   map[string]string{"key": key, "value": value},
	})
}

// --- Attendance Events ---

func sessionDetails(k models.SessionKey) map[string]string {
	return map[string]string{
		"subject_id":   k.SubjectID.Hex(),
		"date":         k.Date,
		"session_type": string(k.SessionType),
		"period":       strconv.Itoa(k.Period),
	}
}

// SessionRecorded logs a class session being recorded or replaced.
func (l *Logger) SessionRecorded(ctx context.Context, r *http.Request, actorID primitive.ObjectID, key models.SessionKey, entries int) {
	d := sessionDetails(key)
	d["entries"] = strconv.Itoa(entries)
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAttendance,
		EventType: audit.EventSessionRecorded,
		ActorID:   &actorID,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   d,
	})
}

// SessionLocked logs a session lock. n is the number of records locked.
func (l *Logger) SessionLocked(ctx context.Context, r *http.Request, actorID primitive.ObjectID, key models.SessionKey, n int64) {
	d := sessionDetails(key)
	d["records"] = strconv.FormatInt(n, 10)
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAttendance,
		EventType: audit.EventSessionLocked,
		ActorID:   &actorID,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   d,
	})
}

// SessionUnlocked logs a session unlock.
func (l *Logger) SessionUnlocked(ctx context.Context, r *http.Request, actorID primitive.ObjectID, key models.SessionKey, n int64) {
	d := sessionDetails(key)
	d["records"] = strconv.FormatInt(n, 10)
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAttendance,
		EventType: audit.EventSessionUnlocked,
		ActorID:   &actorID,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   d,
	})
}

// LeaveApplied logs a new leave request.
func (l *Logger) LeaveApplied(ctx context.Context, r *http.Request, actorID primitive.ObjectID, leave models.LeaveRequest) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAttendance,
		EventType: audit.EventLeaveApplied,
		ActorID:   &actorID,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details: map[string]string{
			"leave_id":   leave.ID.Hex(),
			"ref_code":   leave.RefCode,
			"student_id": leave.StudentID.Hex(),
			"from":       leave.FromDate,
			"to":         leave.ToDate,
		},
	})
}

// LeaveDecided logs an approval or rejection.
func (l *Logger) LeaveDecided(ctx context.Context, r *http.Request, actorID primitive.ObjectID, leave models.LeaveRequest) {
	eventType := audit.EventLeaveRejected
	if leave.Status == models.LeaveApproved {
		eventType = audit.EventLeaveApproved
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAttendance,
		EventType: eventType,
		ActorID:   &actorID,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details: map[string]string{
			"leave_id":         leave.ID.Hex(),
			"student_id":       leave.StudentID.Hex(),
			"reconciled_count": strconv.Itoa(leave.ReconciledCount),
		},
	})
}
