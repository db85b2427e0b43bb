// Package reports serves attendance percentages, subject breakdowns,
// cohort reports and defaulter lists.
package reports

import (
	apierrors "github.com/dalemusser/attendhub/internal/app/features/errors"
	rosterstore "github.com/dalemusser/attendhub/internal/app/store/roster"
	settingsstore "github.com/dalemusser/attendhub/internal/app/store/settings"
	snapshotstore "github.com/dalemusser/attendhub/internal/app/store/snapshots"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the report endpoints. Aggregations run against DB
// directly through the attendancequeries package.
type Handler struct {
	DB               *mongo.Database
	Log              *zap.Logger
	ErrLog           *apierrors.ErrorLogger
	Roster           *rosterstore.Store
	Settings         *settingsstore.Store
	Snapshots        *snapshotstore.Store
	DefaultThreshold float64
}

// NewHandler constructs a reports Handler. defaultThreshold is used when
// no defaulter_threshold setting has been stored.
func NewHandler(db *mongo.Database, defaultThreshold float64, logger *zap.Logger) *Handler {
	return &Handler{
		DB:               db,
		Log:              logger,
		ErrLog:           apierrors.NewErrorLogger(logger),
		Roster:           rosterstore.New(db),
		Settings:         settingsstore.New(db),
		Snapshots:        snapshotstore.New(db),
		DefaultThreshold: defaultThreshold,
	}
}
