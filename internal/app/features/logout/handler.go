// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"net/http"

	loginstore "github.com/dalemusser/attendhub/internal/app/store/logins"
	"github.com/dalemusser/attendhub/internal/app/system/auditlog"
	"github.com/dalemusser/attendhub/internal/app/system/auth"
	"github.com/dalemusser/attendhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Logins     *loginstore.Store // nil skips the login-history stamp
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logins *loginstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
		Logins:     logins,
	}
}

// HandleLogout handles POST /logout. It always clears the cookie and
// answers 204, even when the session was already gone.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		if h.Logins != nil && u.SessionID != "" {
			if _, err := h.Logins.MarkLogout(ctx, u.SessionID); err != nil {
				h.Log.Warn("logout: stamp login history", zap.Error(err), zap.String("session_id", u.SessionID))
			}
		}
		h.AuditLog.Logout(ctx, r, u.ID, u.SessionID)
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}
