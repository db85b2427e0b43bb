// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apierrors "github.com/dalemusser/attendhub/internal/app/features/errors"
	loginstore "github.com/dalemusser/attendhub/internal/app/store/logins"
	userstore "github.com/dalemusser/attendhub/internal/app/store/users"
	"github.com/dalemusser/attendhub/internal/app/system/auditlog"
	"github.com/dalemusser/attendhub/internal/app/system/auth"
	"github.com/dalemusser/attendhub/internal/app/system/normalize"
	"github.com/dalemusser/attendhub/internal/app/system/ratelimit"
	"github.com/dalemusser/attendhub/internal/app/system/timeouts"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/waffle/httputil"
	wafflerr "github.com/dalemusser/waffle/pantry/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Generic credential failure; the response never says which half was wrong.
const badCredentials = "invalid login id or password"

type Handler struct {
	Log         *zap.Logger
	SessionMgr  *auth.SessionManager
	ErrLog      *apierrors.ErrorLogger
	AuditLog    *auditlog.Logger
	Users       *userstore.Store
	Logins      *loginstore.Store
	Limiter     *ratelimit.LoginLimiter
	MaxAttempts int // consecutive failures before the account is locked
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, audit *auditlog.Logger, maxAttempts int, logger *zap.Logger) *Handler {
	return &Handler{
		Log:         logger,
		SessionMgr:  sessionMgr,
		ErrLog:      apierrors.NewErrorLogger(logger),
		AuditLog:    audit,
		Users:       userstore.New(db),
		Logins:      loginstore.New(db),
		Limiter:     ratelimit.NewLoginLimiter(ratelimit.LoginConfig{}),
		MaxAttempts: maxAttempts,
	}
}

type loginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

type meResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	LoginID string `json:"login_id"`
	Role    string `json:"role"`
}

// HandleLogin handles POST /login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.BindJSON(r, &req); err != nil {
		h.ErrLog.BadRequest(w, err)
		return
	}
	loginID := normalize.LoginID(req.LoginID)
	if loginID == "" || req.Password == "" {
		wafflerr.Write(w, wafflerr.Validation("login_id and password are required"))
		return
	}
	if ok, reason := h.Limiter.Check(r, loginID); !ok {
		h.Log.Warn("login throttled", zap.String("login_id", loginID), zap.String("ip", ratelimit.ClientIP(r)))
		wafflerr.Write(w, wafflerr.New("rate_limited", reason, http.StatusTooManyRequests))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByLoginID(ctx, loginID)
	if errors.Is(err, userstore.ErrNotFound) {
		h.AuditLog.LoginFailedUserNotFound(ctx, r, loginID)
		wafflerr.Write(w, wafflerr.Unauthorized(badCredentials))
		return
	}
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	if u.Status != models.UserActive {
		h.AuditLog.LoginFailedUserDisabled(ctx, r, u.ID, u.LoginID, u.Status)
		wafflerr.Write(w, wafflerr.Forbidden("account is "+u.Status+"; contact an administrator"))
		return
	}

	if !userstore.CheckPassword(u, req.Password) {
		attempts, locked, err := h.Users.RecordFailedLogin(ctx, u.ID, h.MaxAttempts)
		if err != nil {
			h.Log.Warn("record failed login", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		}
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, u.LoginID, attempts)
		if locked {
			h.AuditLog.AccountLocked(ctx, r, u.ID, u.LoginID)
			wafflerr.Write(w, wafflerr.Forbidden("account locked after too many failed attempts"))
			return
		}
		wafflerr.Write(w, wafflerr.Unauthorized(badCredentials))
		return
	}

	h.Limiter.Succeeded(loginID)
	if err := h.Users.RecordSuccessfulLogin(ctx, u.ID); err != nil {
		h.Log.Warn("record successful login", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}

	// Login history is best effort; a failure here must not block sign-in.
	sessionID := ""
	if rec, err := h.Logins.CreateFrom(ctx, r, u.ID); err != nil {
		h.Log.Warn("login history insert failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	} else {
		sessionID = rec.SessionID
	}

	su := auth.SessionUser{
		ID:        u.ID.Hex(),
		Name:      u.FullName,
		LoginID:   u.LoginID,
		Role:      normalize.Role(u.Role),
		SessionID: sessionID,
	}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.LoginID, sessionID)
	httputil.WriteJSON(w, http.StatusOK, toMe(&su))
}

// ServeMe handles GET /me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		wafflerr.Write(w, wafflerr.Unauthorized("sign in required"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toMe(u))
}

func toMe(u *auth.SessionUser) meResponse {
	return meResponse{ID: u.ID, Name: u.Name, LoginID: u.LoginID, Role: strings.ToLower(u.Role)}
}
