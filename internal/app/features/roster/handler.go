// Package roster is the admin API for the academic structure: programs,
// teachers, students, subjects, assignments and timetable slots.
package roster

import (
	"errors"
	"net/http"

	apierrors "github.com/dalemusser/attendhub/internal/app/features/errors"
	rosterstore "github.com/dalemusser/attendhub/internal/app/store/roster"
	userstore "github.com/dalemusser/attendhub/internal/app/store/users"
	"github.com/dalemusser/attendhub/internal/app/system/auditlog"
	wafflerr "github.com/dalemusser/waffle/pantry/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *apierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Roster   *rosterstore.Store
	Users    *userstore.Store
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   apierrors.NewErrorLogger(logger),
		AuditLog: audit,
		Roster:   rosterstore.New(db),
		Users:    userstore.New(db),
	}
}

// fail writes store errors, mapping duplicate keys to 409 and user-field
// problems to 400 before falling back to the engine error mapping.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case rosterstore.IsDuplicate(err), errors.Is(err, userstore.ErrDuplicateLoginID):
		wafflerr.Write(w, wafflerr.Conflict(err.Error()))
	case userstore.IsInputError(err):
		wafflerr.Write(w, wafflerr.Validation(err.Error()))
	default:
		h.ErrLog.Write(w, r, err)
	}
}

// loginInput optionally creates the account a teacher or student signs in
// with, in the same transaction as the profile.
type loginInput struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}
