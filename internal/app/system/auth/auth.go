package auth

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	wafflerr "github.com/dalemusser/waffle/pantry/errors"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Session value keys.
const (
	isAuthKey    = "is_authenticated"
	userIDKey    = "user_id"
	userNameKey  = "user_name"
	loginIDKey   = "login_id"
	userRoleKey  = "user_role"
	sessionIDKey = "session_id"
)

// SessionUser is the signed-in user carried in the request context.
type SessionUser struct {
	ID        string
	Name      string
	LoginID   string
	Role      string
	SessionID string // links login and logout in login history
}

// UserFetcher reloads a user on each request so that role changes and
// disabled accounts take effect without waiting for the cookie to expire.
// It returns (nil, nil) when the user no longer exists or may not sign in.
type UserFetcher interface {
	FetchSessionUser(ctx context.Context, userID string) (*SessionUser, error)
}

// SessionManager owns the cookie store and the auth middleware.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher UserFetcher
	log     *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager.
//
// In production (secure=true) cookies are Secure and SameSite=None.
// Over plain http in development use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide 32+ random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "attendhub-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetUserFetcher installs the per-request user reload.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// GetSession returns the session for r. A cookie that no longer decodes
// (rotated key, tampering) yields a fresh session and a nil error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			sm.log.Debug("session cookie invalid, using fresh session", zap.Error(err))
			return sess, nil
		}
		return sess, err
	}
	return sess, nil
}

// SignIn stores u in the session cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u SessionUser) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.log.Warn("session store error during sign-in, using fresh session", zap.Error(err))
	}
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userNameKey] = u.Name
	sess.Values[loginIDKey] = u.LoginID
	sess.Values[userRoleKey] = u.Role
	sess.Values[sessionIDKey] = u.SessionID
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.GetSession(r)
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the signed-in user, if any.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// LoadSessionUser injects the signed-in user into the request context.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sm.GetSession(r)
		if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
			next.ServeHTTP(w, r)
			return
		}

		u := &SessionUser{
			ID:        getString(sess, userIDKey),
			Name:      getString(sess, userNameKey),
			LoginID:   getString(sess, loginIDKey),
			Role:      getString(sess, userRoleKey),
			SessionID: getString(sess, sessionIDKey),
		}

		if sm.fetcher != nil {
			fresh, err := sm.fetcher.FetchSessionUser(r.Context(), u.ID)
			if err != nil {
				sm.log.Warn("session user reload failed", zap.String("user_id", u.ID), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if fresh == nil {
				next.ServeHTTP(w, r)
				return
			}
			fresh.SessionID = u.SessionID
			u = fresh
		}

		next.ServeHTTP(w, withUser(r, u))
	})
}

// RequireSignedIn rejects requests without a signed-in user with 401.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			wafflerr.Write(w, wafflerr.Unauthorized("sign in required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects requests whose user lacks every allowed role:
// 401 when not signed in, 403 when signed in with another role.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				wafflerr.Write(w, wafflerr.Unauthorized("sign in required"))
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				wafflerr.Write(w, wafflerr.Forbidden("your role cannot access this resource"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithTestUser injects u into the request context without a cookie.
// Used by handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
