// Package auditlog serves the audit trail to admins.
package auditlog

import (
	apierrors "github.com/dalemusser/attendhub/internal/app/features/errors"
	"github.com/dalemusser/attendhub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Log    *zap.Logger
	ErrLog *apierrors.ErrorLogger
	Events *audit.Store
}

// NewHandler constructs an audit log feature handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Log:    logger,
		ErrLog: apierrors.NewErrorLogger(logger),
		Events: audit.New(db),
	}
}
