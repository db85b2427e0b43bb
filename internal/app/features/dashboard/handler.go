// Package dashboard serves the role-specific landing summary.
package dashboard

import (
	"net/http"
	"time"

	apierrors "github.com/dalemusser/attendhub/internal/app/features/errors"
	rosterstore "github.com/dalemusser/attendhub/internal/app/store/roster"
	settingsstore "github.com/dalemusser/attendhub/internal/app/store/settings"
	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// topDefaulters bounds the defaulter list on the admin dashboard.
const topDefaulters = 10

type Handler struct {
	DB               *mongo.Database
	Log              *zap.Logger
	ErrLog           *apierrors.ErrorLogger
	Roster           *rosterstore.Store
	Settings         *settingsstore.Store
	DefaultThreshold float64

	// Location decides which weekday "today" is for the teacher view.
	Location *time.Location
	Now      func() time.Time
}

func NewHandler(db *mongo.Database, defaultThreshold float64, loc *time.Location, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		DB:               db,
		Log:              logger,
		ErrLog:           apierrors.NewErrorLogger(logger),
		Roster:           rosterstore.New(db),
		Settings:         settingsstore.New(db),
		DefaultThreshold: defaultThreshold,
		Location:         loc,
		Now:              time.Now,
	}
}

// ServeDashboard dispatches to the view for the caller's role.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}

	switch {
	case actor.IsAdmin():
		h.ServeAdmin(w, r)
	case actor.IsTeacher():
		h.ServeTeacher(w, r, actor)
	case actor.IsStudent():
		h.ServeStudent(w, r, actor)
	default:
		h.ErrLog.Write(w, r, apperr.Forbidden("no dashboard for this role"))
	}
}
