// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	attendancefeature "github.com/dalemusser/attendhub/internal/app/features/attendance"
	auditlogfeature "github.com/dalemusser/attendhub/internal/app/features/auditlog"
	dashboardfeature "github.com/dalemusser/attendhub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/attendhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/attendhub/internal/app/features/health"
	leavesfeature "github.com/dalemusser/attendhub/internal/app/features/leaves"
	loginfeature "github.com/dalemusser/attendhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/attendhub/internal/app/features/logout"
	reportsfeature "github.com/dalemusser/attendhub/internal/app/features/reports"
	rosterfeature "github.com/dalemusser/attendhub/internal/app/features/roster"
	settingsfeature "github.com/dalemusser/attendhub/internal/app/features/settings"
	attendancestore "github.com/dalemusser/attendhub/internal/app/store/attendance"
	"github.com/dalemusser/attendhub/internal/app/store/audit"
	loginstore "github.com/dalemusser/attendhub/internal/app/store/logins"
	userstore "github.com/dalemusser/attendhub/internal/app/store/users"
	"github.com/dalemusser/attendhub/internal/app/system/auditlog"
	"github.com/dalemusser/attendhub/internal/app/system/auth"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root router.
//
// The session middleware runs on every request so that handlers can read
// the signed-in user. Feature routers apply their own role gates.
//
//	/health              Mongo ping
//	/login /logout /me   credentials and the current user
//	/dashboard           role-based summary
//	/attendance          recording, locking, records and class rosters
//	/leaves              leave application and decisions
//	/reports             percentages, breakdowns and defaulters
//	/admin               roster admin, /admin/settings, /admin/audit
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	// Reload the user per request so deactivation takes effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	loc, err := time.LoadLocation(appCfg.Timezone)
	if err != nil {
		return nil, err
	}

	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:       appCfg.AuditLogAuth,
		Admin:      appCfg.AuditLogAdmin,
		Attendance: appCfg.AuditLogAttendance,
	})

	r := chi.NewRouter()
	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(db, sessionMgr, auditLog, appCfg.LoginMaxFailedAttempts, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))
	r.Mount("/me", loginfeature.MeRoutes(loginHandler, sessionMgr))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, loginstore.New(db), logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	dashboardHandler := dashboardfeature.NewHandler(db, appCfg.DefaulterThreshold, loc, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Attendance ledger
	attendanceHandler := attendancefeature.NewHandler(db, auditLog, attendancestore.Config{
		Statuses: appCfg.Statuses,
		PageSize: appCfg.PageSize,
	}, logger)
	r.Mount("/attendance", attendancefeature.Routes(attendanceHandler, sessionMgr))

	leavesHandler := leavesfeature.NewHandler(db, auditLog, appCfg.PageSize, logger)
	r.Mount("/leaves", leavesfeature.Routes(leavesHandler, sessionMgr))

	reportsHandler := reportsfeature.NewHandler(db, appCfg.DefaulterThreshold, logger)
	r.Mount("/reports", reportsfeature.Routes(reportsHandler, sessionMgr))

	// Administration
	admin := rosterfeature.Routes(rosterfeature.NewHandler(db, auditLog, logger), sessionMgr)

	settingsHandler := settingsfeature.NewHandler(db, auditLog, appCfg.DefaulterThreshold, logger)
	admin.Route("/settings", func(sr chi.Router) {
		sr.Use(sessionMgr.RequireSignedIn)
		sr.Use(sessionMgr.RequireRole(models.RoleAdmin))
		settingsHandler.MountRoutes(sr)
	})

	auditHandler := auditlogfeature.NewHandler(db, logger)
	admin.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	r.Mount("/admin", admin)

	return r, nil
}
