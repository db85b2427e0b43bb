// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/authz"
	wafflerr "github.com/dalemusser/waffle/pantry/errors"
	"go.uber.org/zap"
)

// ErrorLogger writes handler errors as JSON and logs the ones that are the
// server's fault.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{log: logger}
}

// Write maps err to its HTTP form and writes it.
func (el *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.ToHTTP(err)
	if e.HTTPStatus() >= http.StatusInternalServerError {
		el.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	wafflerr.Write(w, e)
}

// BadRequest writes a 400 for a body that could not be bound.
func (el *ErrorLogger) BadRequest(w http.ResponseWriter, err error) {
	wafflerr.Write(w, wafflerr.BadRequest(err.Error()))
}

// Actor returns the signed-in actor, or writes 401 and returns false.
func (el *ErrorLogger) Actor(w http.ResponseWriter, r *http.Request) (authz.Actor, bool) {
	a, ok := authz.ActorFrom(r)
	if !ok {
		wafflerr.Write(w, wafflerr.Unauthorized("sign in required"))
	}
	return a, ok
}

// NotFound is the router's fallback for unknown paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	wafflerr.NotFoundHandler().ServeHTTP(w, r)
}

// MethodNotAllowed is the router's fallback for known paths with the wrong
// method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	wafflerr.MethodNotAllowedHandler().ServeHTTP(w, r)
}
