// Package settings lets admins read and change runtime settings.
package settings

import (
	apierrors "github.com/dalemusser/attendhub/internal/app/features/errors"
	settingsstore "github.com/dalemusser/attendhub/internal/app/store/settings"
	"github.com/dalemusser/attendhub/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the admin settings endpoints.
type Handler struct {
	Log              *zap.Logger
	ErrLog           *apierrors.ErrorLogger
	AuditLog         *auditlog.Logger
	Settings         *settingsstore.Store
	DefaultThreshold float64
}

// NewHandler constructs a Handler. defaultThreshold is reported when no
// threshold has been stored.
func NewHandler(db *mongo.Database, audit *auditlog.Logger, defaultThreshold float64, logger *zap.Logger) *Handler {
	return &Handler{
		Log:              logger,
		ErrLog:           apierrors.NewErrorLogger(logger),
		AuditLog:         audit,
		Settings:         settingsstore.New(db),
		DefaultThreshold: defaultThreshold,
	}
}
