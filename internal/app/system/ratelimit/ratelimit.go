// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts hits per key in fixed windows. It is safe for concurrent
// use. Expired windows are swept lazily on Allow.
type Limiter struct {
	mu        sync.Mutex
	windows   map[string]*window
	limit     int
	duration  time.Duration
	nextSweep time.Time
	now       func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New allows limit hits per key within each duration.
func New(limit int, duration time.Duration) *Limiter {
	return &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}
}

// SetClock replaces the time source. Tests use it to expire windows.
func (l *Limiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many hits key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	return max(l.limit-w.count, 0)
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// sweep drops expired windows at most once per duration. Caller holds mu.
func (l *Limiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for k, w := range l.windows {
		if now.After(w.expiresAt) {
			delete(l.windows, k)
		}
	}
	l.nextSweep = now.Add(l.duration)
}

// ClientIP returns the caller's address, preferring X-Forwarded-For and
// X-Real-IP over RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginConfig sets the login throttles. Zero fields take the defaults.
type LoginConfig struct {
	PerIP         int
	IPWindow      time.Duration
	PerLoginID    int
	LoginIDWindow time.Duration
}

// LoginLimiter throttles sign-in attempts per client address and per
// login id. It runs before the account lockout in the user store.
type LoginLimiter struct {
	byIP      *Limiter
	byLoginID *Limiter
}

// NewLoginLimiter builds a LoginLimiter. Defaults are 10 attempts per
// address per minute and 5 per login id per 5 minutes.
func NewLoginLimiter(cfg LoginConfig) *LoginLimiter {
	if cfg.PerIP <= 0 {
		cfg.PerIP = 10
	}
	if cfg.IPWindow <= 0 {
		cfg.IPWindow = time.Minute
	}
	if cfg.PerLoginID <= 0 {
		cfg.PerLoginID = 5
	}
	if cfg.LoginIDWindow <= 0 {
		cfg.LoginIDWindow = 5 * time.Minute
	}
	return &LoginLimiter{
		byIP:      New(cfg.PerIP, cfg.IPWindow),
		byLoginID: New(cfg.PerLoginID, cfg.LoginIDWindow),
	}
}

// Check records an attempt. It returns false and a user-facing reason when
// the attempt is over either limit. loginID must already be normalized.
func (ll *LoginLimiter) Check(r *http.Request, loginID string) (bool, string) {
	if !ll.byIP.Allow(ClientIP(r)) {
		return false, "too many login attempts; wait a minute and try again"
	}
	if loginID != "" && !ll.byLoginID.Allow(loginID) {
		return false, "too many login attempts for this account; wait a few minutes"
	}
	return true, ""
}

// Succeeded clears the per-account counter after a good sign-in.
func (ll *LoginLimiter) Succeeded(loginID string) {
	if loginID != "" {
		ll.byLoginID.Reset(loginID)
	}
}
